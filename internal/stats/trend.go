// Package stats contains statistics calculations and reporting.
package stats

const (
	trendSpan      = 5
	trendThreshold = 2.0
)

// AccuracyTrend classifies the direction of per-session accuracies by
// comparing the mean of the most recent five against the preceding five.
// It returns "improving", "declining" or "stable", and "" below ten
// sessions.
func AccuracyTrend(accuracies []float64) string {
	if len(accuracies) < 2*trendSpan {
		return ""
	}
	recent := mean(accuracies[len(accuracies)-trendSpan:])
	previous := mean(accuracies[len(accuracies)-2*trendSpan : len(accuracies)-trendSpan])
	switch {
	case recent-previous > trendThreshold:
		return "improving"
	case recent-previous < -trendThreshold:
		return "declining"
	default:
		return "stable"
	}
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
