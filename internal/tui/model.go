// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/keydrill/keydrill/internal/engine"
	"github.com/keydrill/keydrill/internal/generator"
	"github.com/keydrill/keydrill/internal/model"
	statsPkg "github.com/keydrill/keydrill/internal/stats"
	"github.com/keydrill/keydrill/internal/store"
)

type sessionState int

const (
	stateTyping sessionState = iota
	statePaused
	stateDone
)

// liveRefreshInterval drives footer refreshes for untimed sessions.
const liveRefreshInterval = 250 * time.Millisecond

// tickMsg carries the scheduling sequence so ticks from an abandoned
// chain (pause, reset) are dropped instead of doubling the rate.
type tickMsg struct {
	seq int
	at  time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	store  *store.Store
	gen    *generator.Generator
	words  []string

	lessonText        string
	punctSet          []rune
	weakSet           map[rune]struct{}
	weakNoticePrinted bool

	level      engine.Level
	controller *engine.DifficultyController

	session   *engine.Session
	countdown *engine.Countdown

	state   sessionState
	tickSeq int

	width  int
	height int

	targetText  string
	targetRunes []rune
	startedAt   time.Time

	summary    engine.Summary
	unmet      []string
	limitHit   bool
	saveFailed bool
	levelNote  string

	lastWPM float64
	lastAcc float64
	hasLast bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, st *store.Store, gen *generator.Generator, words []string, lessonText string, punctSet []rune, weakSet map[rune]struct{}, weakNoticePrinted bool, controller *engine.DifficultyController) (*Model, error) {
	m := &Model{
		config:            cfg,
		store:             st,
		gen:               gen,
		words:             words,
		lessonText:        lessonText,
		punctSet:          punctSet,
		weakSet:           weakSet,
		weakNoticePrinted: weakNoticePrinted,
		controller:        controller,
		level:             controller.Level(),
	}
	if cfg.Timed > 0 {
		cd, err := engine.NewCountdown(cfg.Timed)
		if err != nil {
			return nil, err
		}
		m.countdown = cd
	}
	if err := m.resetSession(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m.handleTick(msg)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m.handleEscape()
		case tea.KeyEnter:
			if m.state == stateDone {
				if err := m.resetSession(); err != nil {
					logErrf("failed to start next drill: %v\n", err)
					return m, tea.Quit
				}
				m.state = stateTyping
			}
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
			return m, nil
		case tea.KeySpace:
			return m, m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.state {
	case stateDone:
		return m.viewDone()
	case statePaused:
		return m.place(titleStyle.Render("Paused"), footerStyle.Render("esc resume · ctrl+c quit"))
	default:
		return m.viewTyping()
	}
}

func (m *Model) viewTyping() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	input := m.session.InputRunes()
	cursorIndex := -1
	if len(input) < len(m.targetRunes) {
		cursorIndex = len(input)
	}
	errorAtCursor := false
	if errs := m.session.Errors(); len(errs) > 0 && errs[len(errs)-1].Position == cursorIndex {
		errorAtCursor = true
	}
	styledRunes := buildStyledRunes(m.targetRunes, input, cursorIndex, errorAtCursor, !m.config.CaseSensitive)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	return m.place(content, m.renderFooter())
}

func (m *Model) viewDone() string {
	title := "Session complete"
	if m.countdown != nil && m.countdown.Done() {
		title = "Time is up"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("%.0f WPM · %.1f%% accuracy", m.summary.WPM, m.summary.Accuracy),
		fmt.Sprintf("%s · %d keystrokes · %d incorrect · %d backspaces",
			formatClock(m.summary.TotalTime), m.summary.CharactersTyped, m.summary.IncorrectCharacters, m.session.Backspaces()),
	}
	if weakest := m.session.Accuracy().WeakestCharacters(3); len(weakest) > 0 {
		parts := make([]string, 0, len(weakest))
		for _, cs := range weakest {
			parts = append(parts, fmt.Sprintf("%c %.0f%%", cs.Char, cs.Accuracy()))
		}
		lines = append(lines, "weakest: "+strings.Join(parts, " · "))
	}
	if samples := m.session.Accuracy().Samples(); len(samples) > 1 {
		vals := make([]float64, len(samples))
		for i, s := range samples {
			vals[i] = s.Value
		}
		line := "accuracy " + statsPkg.Sparkline(vals)
		if trend := m.session.Accuracy().Trend(); trend != engine.TrendStable {
			line += " " + trend.String()
		}
		lines = append(lines, line)
	}
	if m.levelNote != "" {
		lines = append(lines, noticeStyle.Render(m.levelNote))
	}
	if m.saveFailed {
		lines = append(lines, incorrectStyle.Render("session was not saved"))
	}
	content := strings.Join(lines, "\n")
	return m.place(content, footerStyle.Render("enter next drill · ctrl+c quit"))
}

// place centers content and pins the footer to the last line.
func (m *Model) place(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		if footer == "" {
			return content
		}
		return content + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.tickSeq || m.state != stateTyping {
		return m, nil
	}
	if m.countdown != nil && m.countdown.Tick(msg.at) {
		m.session.Finish(msg.at)
		return m, nil
	}
	if m.session.Status() != engine.StatusActive {
		return m, nil
	}
	return m, m.tick()
}

func (m *Model) handleEscape() (tea.Model, tea.Cmd) {
	now := time.Now()
	switch m.state {
	case stateTyping:
		if m.session.Pause(now) {
			if m.countdown != nil {
				m.countdown.Pause(now)
			}
			m.state = statePaused
			m.tickSeq++
			return m, nil
		}
		return m, tea.Quit
	case statePaused:
		m.session.Resume(now)
		if m.countdown != nil {
			m.countdown.Resume(now)
		}
		m.state = stateTyping
		m.tickSeq++
		return m, m.tick()
	default:
		return m, tea.Quit
	}
}

func (m *Model) tick() tea.Cmd {
	interval := liveRefreshInterval
	if m.countdown != nil {
		interval = m.countdown.TickInterval()
	}
	seq := m.tickSeq
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg{seq: seq, at: t}
	})
}

func (m *Model) handleBackspace() {
	if m.state != stateTyping {
		return
	}
	if m.session.HandleBackspace(time.Now()) {
		m.unmet = nil
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	if m.state != stateTyping {
		return nil
	}
	var cmd tea.Cmd
	now := time.Now()
	for _, r := range runes {
		if m.session.Status() == engine.StatusNotStarted && m.session.Start(now) {
			m.startedAt = now
			if m.countdown != nil {
				m.countdown.Start(now)
			}
			m.tickSeq++
			cmd = m.tick()
		}
		if m.session.ProcessCharacter(r, now) {
			m.limitHit = false
		}
		if m.state != stateTyping {
			// Completion fired inside ProcessCharacter.
			break
		}
		if m.session.Position() == len(m.targetRunes) {
			m.unmet = m.session.Evaluate(now).UnmetCriteria
		}
	}
	return cmd
}

func (m *Model) onComplete(sum engine.Summary) {
	m.summary = sum
	m.unmet = nil
	m.state = stateDone
	m.saveSession(sum)
}

func (m *Model) onBackspaceLimit() {
	m.limitHit = true
}

func (m *Model) loadFooterStats() {
	ctx := context.Background()
	sessions, err := m.store.ListSessions(ctx, model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
}

func (m *Model) renderFooter() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	now := time.Now()
	progress := int(float64(m.session.Position()) / float64(len(m.targetRunes)) * 100)
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.countdown != nil {
		segments = append(segments, formatClock(m.countdown.Remaining(now))+" left")
	}
	if m.session.Status() != engine.StatusNotStarted {
		segments = append(segments, fmt.Sprintf("Live %.0f WPM", m.session.LiveWPM(now)))
		segments = append(segments, fmt.Sprintf("Acc %.1f%%", m.session.Accuracy().Current()))
	}
	segments = append(segments, m.level.String())
	if remaining, limited := m.session.BackspaceBudget(); limited {
		segments = append(segments, fmt.Sprintf("Backspaces %d", remaining))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.limitHit {
		footer += "  " + noticeStyle.Render("backspace limit reached")
	}
	if len(m.unmet) > 0 {
		footer += "  " + noticeStyle.Render("unmet: "+strings.Join(m.unmet, ", "))
	}
	return footer
}

func (m *Model) resetSession() error {
	text := m.lessonText
	if text == "" {
		text = strings.Join(m.generateWords(), " ")
	}
	m.targetText = text
	m.targetRunes = []rune(text)

	session, err := engine.NewSession(m.engineConfig(text), engine.Callbacks{
		OnComplete:       m.onComplete,
		OnBackspaceLimit: m.onBackspaceLimit,
	})
	if err != nil {
		return err
	}
	m.session = session
	if m.countdown != nil {
		m.countdown.Reset()
	}
	m.startedAt = time.Time{}
	m.summary = engine.Summary{}
	m.unmet = nil
	m.limitHit = false
	m.saveFailed = false
	m.levelNote = ""
	m.tickSeq++
	return nil
}

func (m *Model) engineConfig(text string) engine.Config {
	return engine.Config{
		TargetText:         text,
		CaseSensitive:      m.config.CaseSensitive,
		AllowBackspace:     m.config.AllowBackspace,
		AutoAdvanceOnError: m.config.AutoAdvance,
		Completion:         m.completionCriteria(),
		Backspace: engine.BackspaceLimits{
			MaxBackspaces:   m.config.MaxBackspaces,
			MinDelay:        m.config.BackspaceDelay,
			MaxBurst:        m.config.MaxBurst,
			BurstWindow:     m.config.BurstWindow,
			BlockAfterError: !m.config.AllowBackspaceAfterError,
		},
	}
}

func (m *Model) completionCriteria() engine.CompletionCriteria {
	crit := engine.CompletionCriteria{RequireFullText: true}
	if m.config.MinAccuracy > 0 {
		v := m.config.MinAccuracy
		crit.MinAccuracy = &v
	}
	if m.config.MinWPM > 0 {
		v := m.config.MinWPM
		crit.MinWPM = &v
	}
	if m.config.MaxErrors >= 0 {
		v := m.config.MaxErrors
		crit.MaxErrors = &v
	}
	return crit
}

func (m *Model) generateWords() []string {
	opts := generator.Preset(m.level)
	if m.config.Words > 0 {
		opts.Words = m.config.Words
	}
	if m.config.CapsPct >= 0 {
		opts.CapsPct = m.config.CapsPct
	}
	if m.config.PunctPct >= 0 {
		opts.PunctPct = m.config.PunctPct
	}
	if len(m.punctSet) > 0 {
		opts.PunctSet = m.punctSet
	}
	if m.config.Timed > 0 {
		// Enough text that the clock, not the text, ends the session.
		need := int(m.config.Timed.Minutes()*250) + 20
		if opts.Words < need {
			opts.Words = need
		}
	}
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		opts.WeakSet = m.weakSet
		opts.WeakFactor = m.config.WeakFactor
	}
	return m.gen.Generate(m.words, opts)
}

func (m *Model) saveSession(sum engine.Summary) {
	rec := model.SessionRecord{
		UUID:       uuid.NewString(),
		StartedAt:  m.startedAt,
		EndedAt:    time.Now(),
		Lang:       m.config.Lang,
		Lesson:     m.config.Lesson,
		Difficulty: m.level.String(),
		Timed:      m.config.Timed > 0,
		Words:      len(strings.Fields(m.targetText)),
		Keystrokes: sum.CharactersTyped,
		Correct:    sum.CorrectCharacters,
		Incorrect:  sum.IncorrectCharacters,
		Errors:     len(m.session.Errors()),
		Backspaces: m.session.Backspaces(),
		Accuracy:   sum.Accuracy,
		WPM:        sum.WPM,
		DurationMs: sum.TotalTime.Milliseconds(),
	}

	var charStats []model.CharStats
	for _, cs := range m.session.Accuracy().Characters() {
		charStats = append(charStats, model.CharStats{
			Char:      string(cs.Char),
			Correct:   cs.Correct,
			Incorrect: cs.Incorrect,
		})
	}
	var mistakes []model.MistakeStats
	for _, p := range m.session.Accuracy().MostCommonErrors(0) {
		mistakes = append(mistakes, model.MistakeStats{
			Expected: string(p.Expected),
			Received: string(p.Received),
			Count:    p.Count,
		})
	}

	ctx := context.Background()
	if _, err := m.store.InsertSession(ctx, rec, charStats, mistakes); err != nil {
		logErrf("failed to save session: %v\n", err)
		m.saveFailed = true
	}
	m.lastWPM = rec.WPM
	m.lastAcc = rec.Accuracy
	m.hasLast = true

	if m.config.Adaptive {
		next := m.controller.Record(sum.Accuracy)
		if next != m.level {
			m.levelNote = "difficulty now " + next.String()
			m.level = next
		}
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	ctx := context.Background()
	aggs, err := m.store.GetWeakChars(ctx, m.config.WeakWindow, m.config.Lang)
	if err != nil {
		logErrf("failed to load weak chars: %v\n", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			logErrln("no stats available for weak-char focus yet; using normal generator")
			m.weakNoticePrinted = true
		}
		m.weakSet = map[rune]struct{}{}
		return
	}
	m.weakSet = statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
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
