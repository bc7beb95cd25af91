// Package result shows a scored exam: totals, the per-subject breakdown and
// the optional AI study plan.
package result

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/review"
	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screen"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// Options adjusts what the result screen shows.
type Options struct {
	// Duration is the exam's allotted time; zero hides "of <duration>".
	Duration time.Duration

	// SaveErr is shown as a warning when the result could not be stored.
	SaveErr error
}

// reviewReadyMsg carries the study plan, or why there is none, for the
// result of sessionID.
type reviewReadyMsg struct {
	sessionID string
	review    *review.Review
	err       error
}

// ResultScreen displays one completed result.
type ResultScreen struct {
	deps   deps.Deps
	log    zerolog.Logger
	result *engine.Result
	opts   Options

	reviewing bool
	review    *review.Review
	reviewErr error
	offset    int
}

var (
	_ screen.Screen          = (*ResultScreen)(nil)
	_ screen.KeyHintProvider = (*ResultScreen)(nil)
)

// New creates a result screen. When a reviewer is configured, Init starts
// generating the study plan.
func New(d deps.Deps, res *engine.Result, opts Options) *ResultScreen {
	if opts.Duration == 0 {
		opts.Duration = d.ExamDuration(res.ExamID)
	}
	return &ResultScreen{
		deps:   d,
		log:    d.Log.With().Str("component", "result").Logger(),
		result: res,
		opts:   opts,
	}
}

func (s *ResultScreen) Init() tea.Cmd {
	if !s.deps.Reviewer.Enabled() {
		return nil
	}
	return s.requestReview()
}

func (s *ResultScreen) Title() string { return "Result" }

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter/Esc", Description: "Done"},
	}
	if s.reviewErr != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retry study plan"})
	}
	return hints
}

func (s *ResultScreen) requestReview() tea.Cmd {
	s.reviewing = true
	s.reviewErr = nil
	reviewer, res, duration := s.deps.Reviewer, s.result, s.opts.Duration
	return func() tea.Msg {
		rv, err := reviewer.Review(context.Background(), res, duration)
		return reviewReadyMsg{sessionID: res.SessionID, review: rv, err: err}
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewReadyMsg:
		// A reply for a result that has since been closed.
		if msg.sessionID != s.result.SessionID {
			return s, nil
		}
		s.reviewing = false
		s.review, s.reviewErr = msg.review, msg.err
		if msg.err != nil {
			s.log.Warn().Err(msg.err).Str("session", s.result.SessionID).Msg("study plan failed")
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset = max(s.offset-10, 0)
		case "pgdown":
			s.offset += 10
		case "r":
			if s.reviewErr != nil && !s.reviewing {
				return s, s.requestReview()
			}
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	lines := strings.Split(s.render(width), "\n")
	maxOffset := max(len(lines)-height, 0)
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	end := min(s.offset+height, len(lines))
	return strings.Join(lines[s.offset:end], "\n")
}

func (s *ResultScreen) render(width int) string {
	res := s.result
	cw := components.ContentWidth(width)
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }

	var b strings.Builder

	b.WriteString(center(theme.Title.Render(res.ExamName)))
	b.WriteString("\n")
	reason := "Submitted"
	if res.Reason == engine.ReasonTimeout {
		reason = "Time ran out"
	}
	b.WriteString(center(theme.Subtitle.Render(reason + " · " + res.CompletedAt.Local().Format("2 Jan 2006 15:04"))))
	b.WriteString("\n\n")

	band := engine.BandFor(res.Percentage)
	b.WriteString(center(theme.BandStyle(band).Render(
		fmt.Sprintf("%.2f / %.2f   %.1f%%   %s", res.Score, res.MaxScore, res.Percentage, band))))
	b.WriteString("\n")

	counts := fmt.Sprintf("%s correct   %s wrong   %s unattempted",
		theme.Correct.Render(fmt.Sprint(res.Correct)),
		theme.Incorrect.Render(fmt.Sprint(res.Wrong)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(fmt.Sprint(res.Unattempted)))
	b.WriteString(center(counts))
	b.WriteString("\n")

	used := "Time used " + layout.FormatCountdown(res.Elapsed)
	if s.opts.Duration > 0 {
		used += " of " + layout.FormatCountdown(s.opts.Duration)
	}
	b.WriteString(center(theme.Hint.Render(used)))
	b.WriteString("\n")

	if s.opts.SaveErr != nil {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning).Render(
			"Result was not saved: " + s.opts.SaveErr.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(s.renderSubjects(cw)))
	b.WriteString("\n")
	b.WriteString(center(s.renderReview(cw)))

	return b.String()
}

func (s *ResultScreen) renderSubjects(cw int) string {
	var b strings.Builder
	header := fmt.Sprintf("%-22s %4s %4s %4s %15s", "Subject", "Att", "✓", "✗", "Score")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(header))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw-4)))
	b.WriteString("\n")

	barWidth := max(cw-4-lipgloss.Width(header)-2, 10)
	for _, sr := range s.result.Subjects {
		band := engine.BandFor(sr.Percentage)
		name := sr.Subject
		if r := []rune(name); len(r) > 22 {
			name = string(r[:21]) + "…"
		}
		row := fmt.Sprintf("%-22s %4d %4d %4d %15s", name, sr.Attempted, sr.Correct, sr.Wrong,
			fmt.Sprintf("%.2f/%.2f", sr.Score, sr.MaxScore))
		bar := components.ProgressBar{
			Percent:     sr.Percentage / 100,
			ShowPercent: true,
			Width:       barWidth,
			Fill:        theme.BandColor(band),
		}
		b.WriteString(theme.Body.Render(row) + "  " + bar.View())
		b.WriteString("\n")
		if sr.RawScore < 0 {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("  raw %.2f, counted as 0", sr.RawScore)))
			b.WriteString("\n")
		}
	}
	return components.Card(b.String(), cw)
}

func (s *ResultScreen) renderReview(cw int) string {
	switch {
	case !s.deps.Reviewer.Enabled():
		return theme.Hint.Render("Configure an LLM provider to get a personalised study plan.")
	case s.reviewing:
		return theme.Hint.Render("Preparing your study plan...")
	case s.reviewErr != nil:
		return theme.ErrorText.Render("Study plan unavailable: " + s.reviewErr.Error())
	case s.review == nil:
		return ""
	}

	rv := s.review
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Study plan"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw - 4).Render(rv.Summary))
	b.WriteString("\n\n")
	for _, rec := range rv.Recommendations {
		b.WriteString(priorityStyle(rec.Priority).Render(fmt.Sprintf("[%s] %s", rec.Priority, rec.Subject)))
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(cw - 6).PaddingLeft(2).Render(rec.Advice))
		b.WriteString("\n")
	}
	if rv.Pacing != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(cw - 4).Render("Pacing: " + rv.Pacing))
	}
	return components.Card(b.String(), cw)
}

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "high":
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	case "medium":
		return lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	}
}
