// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"time"
	"unicode"

	"github.com/keydrill/keydrill/internal/engine"
	"github.com/keydrill/keydrill/internal/wordlist"
)

// DefaultPunctSet decorates words when punctuation is requested without a
// configured set.
const DefaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

// Options controls word selection and decoration.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
	// MaxWordLen caps picked word length in runes; 0 means no cap.
	MaxWordLen int

	// WeakSet biases selection toward words containing these runes.
	WeakSet    map[rune]struct{}
	WeakFactor float64
}

// Preset returns the generation options for a difficulty level. Callers
// layer user overrides on top.
func Preset(level engine.Level) Options {
	switch level {
	case engine.LevelEasy:
		return Options{Words: 15, MaxWordLen: 5}
	case engine.LevelHard:
		return Options{Words: 40, CapsPct: 0.25, PunctPct: 0.25, PunctSet: []rune(".,;:!?")}
	default:
		return Options{Words: 25, CapsPct: 0.1, PunctPct: 0.1, PunctSet: []rune(".,"), MaxWordLen: 8}
	}
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks opts.Words words from the pool and applies caps and
// punctuation. Selection is biased toward weak characters when
// opts.WeakSet is non-empty.
func (g *Generator) Generate(pool []string, opts Options) []string {
	if opts.MaxWordLen > 0 {
		capped := wordlist.Apply(pool, wordlist.FilterMaxLen(opts.MaxWordLen))
		// An aggressive cap can empty the pool; keep the full list then.
		if len(capped) > 0 {
			pool = capped
		}
	}
	pick := g.uniformPicker(pool)
	if len(opts.WeakSet) > 0 && opts.WeakFactor > 0 {
		pick = g.weightedPicker(pool, opts.WeakSet, opts.WeakFactor)
	}
	punctSet := opts.PunctSet
	if opts.PunctPct > 0 && len(punctSet) == 0 {
		punctSet = []rune(DefaultPunctSet)
	}

	result := make([]string, 0, opts.Words)
	for i := 0; i < opts.Words; i++ {
		word := pick()
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, punctSet)
		result = append(result, word)
	}
	return result
}

func (g *Generator) uniformPicker(pool []string) func() string {
	return func() string {
		return pool[g.rnd.Intn(len(pool))]
	}
}

func (g *Generator) weightedPicker(pool []string, weakSet map[rune]struct{}, factor float64) func() string {
	weights := make([]float64, len(pool))
	total := 0.0
	for i, word := range pool {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}
	return func() string {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := 0
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		return pool[idx]
	}
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
