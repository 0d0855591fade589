// Package main provides the CLI entrypoint for keydrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/keydrill/keydrill/internal/config"
	"github.com/keydrill/keydrill/internal/engine"
	"github.com/keydrill/keydrill/internal/generator"
	"github.com/keydrill/keydrill/internal/lesson"
	"github.com/keydrill/keydrill/internal/model"
	"github.com/keydrill/keydrill/internal/stats"
	"github.com/keydrill/keydrill/internal/statsui"
	"github.com/keydrill/keydrill/internal/store"
	"github.com/keydrill/keydrill/internal/tui"
	"github.com/keydrill/keydrill/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultDifficulty  = "medium"
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	rehydrateWindow    = 5
)

var (
	practiceLang       string
	practiceWords      int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceLesson     string
	practiceTimed      time.Duration
	practiceDifficulty string
	practiceAdaptive   bool

	practiceCaseSensitive     bool
	practiceAutoAdvance       bool
	practiceAllowBackspace    bool
	practiceMaxBackspaces     int
	practiceBackspaceDelayMs  int
	practiceMaxBurst          int
	practiceBurstWindowMs     int
	practiceBackspaceAfterErr bool

	practiceMinAccuracy float64
	practiceMinWPM      float64
	practiceMaxErrors   int

	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keydrill",
		Short:         "TUI typing tutor with adaptive difficulty",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	flags.IntVar(&practiceWords, "words", 0, "words per drill (0 uses the difficulty preset)")
	flags.Float64Var(&practiceCaps, "caps", -1, "probability of capitalized first letter (0-1, negative uses preset)")
	flags.Float64Var(&practicePunct, "punct", -1, "punctuation probability per word (0-1, negative uses preset)")
	flags.StringVar(&practicePunctSet, "punct-set", "", "punctuation set (empty uses preset)")
	flags.StringVar(&practiceLesson, "lesson", "", "built-in lesson name instead of generated words")
	flags.DurationVar(&practiceTimed, "timed", 0, "timed drill length, e.g. 60s or 2m (0 disables)")
	flags.StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty level: easy, medium, or hard")
	flags.BoolVar(&practiceAdaptive, "adaptive", false, "adapt difficulty from recent session accuracy")

	flags.BoolVar(&practiceCaseSensitive, "case-sensitive", false, "compare typed characters exactly")
	flags.BoolVar(&practiceAutoAdvance, "auto-advance", false, "consume the position on a mistake instead of holding it")
	flags.BoolVar(&practiceAllowBackspace, "allow-backspace", true, "enable backspace")
	flags.IntVar(&practiceMaxBackspaces, "max-backspaces", 0, "total backspace budget per session (0 = unlimited)")
	flags.IntVar(&practiceBackspaceDelayMs, "backspace-delay-ms", 0, "minimum milliseconds between backspaces")
	flags.IntVar(&practiceMaxBurst, "max-burst", 0, "max backspaces per burst window (0 = unlimited)")
	flags.IntVar(&practiceBurstWindowMs, "burst-window-ms", 0, "burst window length in milliseconds")
	flags.BoolVar(&practiceBackspaceAfterErr, "allow-backspace-after-error", true, "permit erasing a mistake directly")

	flags.Float64Var(&practiceMinAccuracy, "min-accuracy", 0, "completion: minimum accuracy percent (0 = off)")
	flags.Float64Var(&practiceMinWPM, "min-wpm", 0, "completion: minimum WPM (0 = off)")
	flags.IntVar(&practiceMaxErrors, "max-errors", -1, "completion: maximum error count (-1 = off)")

	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)

	cfg := model.Config{
		Lang:     practiceLang,
		Words:    practiceWords,
		CapsPct:  practiceCaps,
		PunctPct: practicePunct,
		PunctSet: practicePunctSet,
		Lesson:   practiceLesson,
		Timed:    practiceTimed,

		Difficulty: practiceDifficulty,
		Adaptive:   practiceAdaptive,

		CaseSensitive:            practiceCaseSensitive,
		AutoAdvance:              practiceAutoAdvance,
		AllowBackspace:           practiceAllowBackspace,
		MaxBackspaces:            practiceMaxBackspaces,
		BackspaceDelay:           time.Duration(practiceBackspaceDelayMs) * time.Millisecond,
		MaxBurst:                 practiceMaxBurst,
		BurstWindow:              time.Duration(practiceBurstWindowMs) * time.Millisecond,
		AllowBackspaceAfterError: practiceBackspaceAfterErr,

		MinAccuracy: practiceMinAccuracy,
		MinWPM:      practiceMinWPM,
		MaxErrors:   practiceMaxErrors,

		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	lessonText := ""
	if cfg.Lesson != "" {
		ls, err := lesson.Find(cfg.Lesson)
		if err != nil {
			return fmt.Errorf("%w\nList lessons: keydrill lessons", err)
		}
		lessonText = ls.Text
	}

	var wordsList []string
	if lessonText == "" {
		wordPath := config.DefaultWordListPath(cfg.Lang)
		wordsList, err = wordlist.LoadWords(wordPath)
		if err != nil {
			return wordListLoadError(cfg.Lang, wordPath, err)
		}
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	punctRunes := []rune(cfg.PunctSet)

	weakSet := map[rune]struct{}{}
	weakNoticePrinted := false
	if cfg.FocusWeak {
		aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Lang)
		if err != nil {
			logErrf("failed to load weak chars: %v\n", err)
		} else {
			weakSet = stats.SelectWeakChars(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-char focus yet; using normal generator")
				weakNoticePrinted = true
			}
		}
	}

	controller, err := buildDifficultyController(cmd, st, cfg)
	if err != nil {
		return err
	}

	gen := generator.New()
	uiModel, err := tui.NewModel(cfg, st, gen, wordsList, lessonText, punctRunes, weakSet, weakNoticePrinted, controller)
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildDifficultyController parses the configured level and, when adaptive
// mode is on without an explicit --difficulty for this run, replays the most
// recent stored accuracies so the level carries across sessions.
func buildDifficultyController(cmd *cobra.Command, st *store.Store, cfg model.Config) (*engine.DifficultyController, error) {
	level, err := engine.ParseLevel(cfg.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("invalid --difficulty: %w", err)
	}
	controller := engine.NewDifficultyController(level)
	if cfg.Adaptive && !cmd.Flags().Changed("difficulty") {
		accs, err := st.RecentAccuracies(context.Background(), rehydrateWindow, cfg.Lang)
		if err != nil {
			logErrf("failed to load recent accuracies: %v\n", err)
			return controller, nil
		}
		for _, acc := range accs {
			controller.Record(acc)
		}
	}
	return controller, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List installed wordlist languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	wordlistDir := config.DefaultWordListDir()
	entries, err := os.ReadDir(wordlistDir)
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No wordlists found. Put one word per line in: %s/<lang>.txt\n", wordlistDir)
			return fmt.Errorf("wordlist directory does not exist")
		}
		return fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	if len(langs) == 0 {
		logErrf("No wordlists found. Put one word per line in: %s/<lang>.txt\n", wordlistDir)
		return fmt.Errorf("no wordlists found")
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List built-in lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	for _, ls := range lesson.List() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", ls.Name, ls.Title); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", 0, "limit plain-report tables to top N rows (0 = all)")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printStatsReport(cmd, st, cfg, statsTop)
	}

	uiModel := statsui.NewModel(st, cfg)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStatsReport(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig, top int) error {
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if err := stats.RenderCharTable(out, topCharAggs(report.CharAggsAll, top)); err != nil {
		return fmt.Errorf("failed to render char table: %w", err)
	}
	if err := stats.RenderMistakeTable(out, report.Mistakes, top); err != nil {
		return fmt.Errorf("failed to render mistake table: %w", err)
	}
	return nil
}

// topCharAggs trims the aggregates to the n most typed characters.
func topCharAggs(aggs []model.CharAggregate, n int) []model.CharAggregate {
	if n <= 0 || len(aggs) <= n {
		return aggs
	}
	keep := make(map[string]struct{}, n)
	for _, ch := range stats.TopCharsByFrequency(aggs, n) {
		keep[ch] = struct{}{}
	}
	out := make([]model.CharAggregate, 0, n)
	for _, agg := range aggs {
		if _, ok := keep[agg.Char]; ok {
			out = append(out, agg)
		}
	}
	return out
}

func applyFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyStringConfig(cmd, "lesson", &practiceLesson, fileCfg.Practice.Lesson)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	applyBoolConfig(cmd, "case-sensitive", &practiceCaseSensitive, fileCfg.Session.CaseSensitive)
	applyBoolConfig(cmd, "auto-advance", &practiceAutoAdvance, fileCfg.Session.AutoAdvance)
	applyBoolConfig(cmd, "allow-backspace", &practiceAllowBackspace, fileCfg.Session.AllowBackspace)
	applyIntConfig(cmd, "max-backspaces", &practiceMaxBackspaces, fileCfg.Session.MaxBackspaces)
	applyIntConfig(cmd, "backspace-delay-ms", &practiceBackspaceDelayMs, fileCfg.Session.BackspaceDelayMs)
	applyIntConfig(cmd, "max-burst", &practiceMaxBurst, fileCfg.Session.MaxBurst)
	applyIntConfig(cmd, "burst-window-ms", &practiceBurstWindowMs, fileCfg.Session.BurstWindowMs)
	applyBoolConfig(cmd, "allow-backspace-after-error", &practiceBackspaceAfterErr, fileCfg.Session.AllowBackspaceAfterError)
	applyFloatConfig(cmd, "min-accuracy", &practiceMinAccuracy, fileCfg.Session.MinAccuracy)
	applyFloatConfig(cmd, "min-wpm", &practiceMinWPM, fileCfg.Session.MinWPM)
	applyIntConfig(cmd, "max-errors", &practiceMaxErrors, fileCfg.Session.MaxErrors)
	if fileCfg.Session.TimedSeconds != nil && !cmd.Flags().Changed("timed") {
		practiceTimed = time.Duration(*fileCfg.Session.TimedSeconds) * time.Second
	}

	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Difficulty.Level)
	applyBoolConfig(cmd, "adaptive", &practiceAdaptive, fileCfg.Difficulty.Adaptive)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keydrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = "en"                # Language code (default %q)
# words = 25                 # Words per drill (0 uses the difficulty preset)
# caps = 0.1                 # Probability of capitalized first letter (0-1, negative uses preset)
# punct = 0.1                # Punctuation probability per word (0-1, negative uses preset)
# punct-set = %q             # Punctuation set
# lesson = "home-row"        # Built-in lesson instead of generated words
# focus-weak = false         # Bias practice toward weak characters
# weak-top = %d              # Number of weak characters to focus on
# weak-factor = %.1f         # Weight factor for weak characters
# weak-window = %d           # Number of recent sessions to compute weak chars

[session]
# case-sensitive = false     # Compare typed characters exactly
# auto-advance = false       # Consume the position on a mistake
# allow-backspace = true     # Enable backspace
# max-backspaces = 0         # Total backspace budget (0 = unlimited)
# backspace-delay-ms = 0     # Minimum milliseconds between backspaces
# max-burst = 0              # Max backspaces per burst window (0 = unlimited)
# burst-window-ms = 0        # Burst window length in milliseconds
# allow-backspace-after-error = true # Permit erasing a mistake directly
# min-accuracy = 0.0         # Completion: minimum accuracy percent (0 = off)
# min-wpm = 0.0              # Completion: minimum WPM (0 = off)
# max-errors = -1            # Completion: maximum error count (-1 = off)
# timed-seconds = 0          # Timed drill length in seconds (0 = off)

[difficulty]
# level = %q                 # easy, medium, or hard
# adaptive = false           # Adapt level from recent session accuracy
`,
		defaultLang,
		generator.DefaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultDifficulty,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words < 0 {
		return fmt.Errorf("--words must be >= 0")
	}
	if cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.Timed < 0 {
		return fmt.Errorf("--timed must be >= 0")
	}
	if cfg.MaxBackspaces < 0 {
		return fmt.Errorf("--max-backspaces must be >= 0")
	}
	if cfg.BackspaceDelay < 0 {
		return fmt.Errorf("--backspace-delay-ms must be >= 0")
	}
	if cfg.MaxBurst < 0 {
		return fmt.Errorf("--max-burst must be >= 0")
	}
	if cfg.BurstWindow < 0 {
		return fmt.Errorf("--burst-window-ms must be >= 0")
	}
	if cfg.MinAccuracy < 0 || cfg.MinAccuracy > 100 {
		return fmt.Errorf("--min-accuracy must be between 0 and 100")
	}
	if cfg.MinWPM < 0 {
		return fmt.Errorf("--min-wpm must be >= 0")
	}
	if cfg.MaxErrors < -1 {
		return fmt.Errorf("--max-errors must be >= -1")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Put a word list (one word per line) at that path,",
		"or practice a built-in lesson: keydrill --lesson home-row",
		"List lessons: keydrill lessons",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
