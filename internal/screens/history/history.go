// Package history lists stored exam results.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screen"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	"github.com/pathfinderai/pathfinder/internal/screens/result"
	"github.com/pathfinderai/pathfinder/internal/store"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// listLimit caps how many results the screen loads.
const listLimit = 100

type historyLoadedMsg struct {
	Results []store.ResultSummary
	Err     error
}

type resultLoadedMsg struct {
	Result *engine.Result
	Err    error
}

type resultDeletedMsg struct {
	SessionID string
	Err       error
}

// HistoryScreen displays past results, newest first.
type HistoryScreen struct {
	deps       deps.Deps
	log        zerolog.Logger
	results    []store.ResultSummary
	filters    []string // "" then exam IDs
	filter     int
	selected   int
	loaded     bool
	confirmDel bool
	errMsg     string
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
	_ screen.EscapeHandler   = (*HistoryScreen)(nil)
)

// New creates a new HistoryScreen.
func New(d deps.Deps) *HistoryScreen {
	filters := []string{""}
	if d.Catalog != nil {
		for _, bp := range d.Catalog.Exams() {
			filters = append(filters, bp.ID)
		}
	}
	return &HistoryScreen{
		deps:    d,
		log:     d.Log.With().Str("component", "history").Logger(),
		filters: filters,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo, examID := s.deps.Results, s.filters[s.filter]
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		rows, err := repo.ListResults(context.Background(), store.ResultQuery{ExamID: examID, Limit: listLimit})
		return historyLoadedMsg{Results: rows, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// HandlesEscape lets Esc cancel a pending delete instead of leaving.
func (s *HistoryScreen) HandlesEscape() bool { return s.confirmDel }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirmDel {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N/Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "F", Description: "Filter exam"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.log.Error().Err(msg.Err).Msg("load history")
			return s, nil
		}
		s.errMsg = ""
		s.results = msg.Results
		if s.selected >= len(s.results) {
			s.selected = max(len(s.results)-1, 0)
		}
		return s, nil

	case resultLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Result == nil {
			s.errMsg = "result no longer exists"
			return s, s.load()
		}
		next := result.New(s.deps, msg.Result, result.Options{})
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case resultDeletedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.log.Error().Err(msg.Err).Str("session", msg.SessionID).Msg("delete result")
			return s, nil
		}
		s.log.Info().Str("session", msg.SessionID).Msg("result deleted")
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmDel {
		switch key {
		case "y", "Y":
			s.confirmDel = false
			return s, s.deleteSelected()
		case "n", "N", "esc":
			s.confirmDel = false
		}
		return s, nil
	}

	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.results)-1 {
			s.selected++
		}
	case "f":
		s.filter = (s.filter + 1) % len(s.filters)
		s.selected = 0
		return s, s.load()
	case "d":
		if len(s.results) > 0 {
			s.confirmDel = true
		}
	case "enter":
		if len(s.results) == 0 || s.deps.Results == nil {
			return s, nil
		}
		repo, id := s.deps.Results, s.results[s.selected].SessionID
		return s, func() tea.Msg {
			res, err := repo.GetResult(context.Background(), id)
			return resultLoadedMsg{Result: res, Err: err}
		}
	}
	return s, nil
}

func (s *HistoryScreen) deleteSelected() tea.Cmd {
	if len(s.results) == 0 || s.deps.Results == nil {
		return nil
	}
	repo, id := s.deps.Results, s.results[s.selected].SessionID
	return func() tea.Msg {
		return resultDeletedMsg{SessionID: id, Err: repo.DeleteResult(context.Background(), id)}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	label := "All exams"
	if f := s.filters[s.filter]; f != "" {
		label = f
	}
	b.WriteString(center.Foreground(theme.TextDim).Render("Showing: " + label))
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(center.Foreground(theme.Error).Render("Error: " + s.errMsg))
		b.WriteString("\n\n")
	}
	if !s.loaded {
		b.WriteString(center.Foreground(theme.TextDim).Render("Loading history..."))
		return b.String()
	}
	if len(s.results) == 0 {
		b.WriteString(center.Foreground(theme.TextDim).Italic(true).Render("No results yet. Take a mock exam!"))
		return b.String()
	}

	now := s.deps.Clock()()
	// Window the list so the selection stays visible.
	rows := max(height-6, 1)
	first := 0
	if s.selected >= rows {
		first = s.selected - rows + 1
	}
	last := min(first+rows, len(s.results))

	for i := first; i < last; i++ {
		r := s.results[i]
		band := engine.BandFor(r.Percentage)
		reason := ""
		if r.Reason == engine.ReasonTimeout {
			reason = " ⏱"
		}
		line := fmt.Sprintf("%-16s %7.2f / %-7.2f %s %-14s%s",
			truncate(r.ExamName, 16), r.Score, r.MaxScore,
			theme.BandStyle(band).Render(fmt.Sprintf("%5.1f%%", r.Percentage)),
			humanize.RelTime(r.CompletedAt, now, "ago", "from now"),
			reason)

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix)+line))
		b.WriteString("\n")
	}

	if s.confirmDel {
		r := s.results[s.selected]
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Warning).Bold(true).Render(
			fmt.Sprintf("Delete %s result from %s? (y/n)", r.ExamName, r.CompletedAt.Local().Format("2 Jan 15:04"))))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
