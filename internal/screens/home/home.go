// Package home is the exam picker shown at launch.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screen"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	examscreen "github.com/pathfinderai/pathfinder/internal/screens/exam"
	"github.com/pathfinderai/pathfinder/internal/screens/history"
	"github.com/pathfinderai/pathfinder/internal/store"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

const titleArt = "P · A · T · H · F · I · N · D · E · R"

type lastResultMsg struct {
	Summary *store.ResultSummary
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps   deps.Deps
	menu   components.Menu
	last   *store.ResultSummary
	errMsg string
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
)

// New creates a HomeScreen listing every exam in the catalog.
func New(d deps.Deps) *HomeScreen {
	h := &HomeScreen{deps: d}

	var items []components.MenuItem
	if d.Catalog != nil {
		for _, bp := range d.Catalog.Exams() {
			items = append(items, components.MenuItem{
				Label:  bp.Name,
				Detail: Describe(bp),
				Action: func() tea.Cmd { return h.open(bp.ID) },
			})
		}
	}
	items = append(items,
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(d)} }
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	h.menu = components.NewMenu(items)
	return h
}

// Describe summarises a blueprint in one line.
func Describe(bp exam.Blueprint) string {
	return fmt.Sprintf("%d questions · %s marks · %s · %s",
		bp.TotalQuestions(), trimFloat(bp.TotalMaxMarks()),
		layout.FormatCountdown(bp.Duration), strings.Join(bp.Subjects(), ", "))
}

func (h *HomeScreen) open(examID string) tea.Cmd {
	paper, err := h.deps.Catalog.Paper(examID)
	if err != nil {
		h.errMsg = err.Error()
		h.deps.Log.Error().Err(err).Str("exam", examID).Msg("resolve paper")
		return nil
	}
	h.errMsg = ""
	next := examscreen.New(h.deps, paper)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.deps.Results
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rows, err := repo.ListResults(context.Background(), store.ResultQuery{Limit: 1})
		if err != nil || len(rows) == 0 {
			return lastResultMsg{}
		}
		return lastResultMsg{Summary: &rows[0]}
	}
}

func (h *HomeScreen) Title() string {
	return "Mock exams"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(lastResultMsg); ok {
		h.last = m.Summary
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(titleArt))
	sections = append(sections, theme.Subtitle.Render("Timed mock exams for CLAT, CUET, NEET and JEE"))

	if h.last != nil {
		band := exam.BandFor(h.last.Percentage)
		sections = append(sections, theme.Hint.Render("Last attempt: ")+
			theme.Body.Render(h.last.ExamName+" ")+
			theme.BandStyle(band).Render(fmt.Sprintf("%.1f%%", h.last.Percentage))+
			theme.Hint.Render(" · "+humanize.RelTime(h.last.CompletedAt, h.deps.Clock()(), "ago", "from now")))
	}
	if h.errMsg != "" {
		sections = append(sections, theme.ErrorText.Render(h.errMsg))
	}
	sections = append(sections, components.Card(h.menu.View(), cw))

	spaced := make([]string, 0, 2*len(sections))
	for i, sec := range sections {
		if i > 0 {
			spaced = append(spaced, "")
		}
		spaced = append(spaced, sec)
	}
	return components.Centered(lipgloss.JoinVertical(lipgloss.Center, spaced...), width, height)
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
