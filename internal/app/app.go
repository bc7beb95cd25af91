// Package app is the root Bubble Tea model: the router, the frame around
// the active screen, and global keys.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screen"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	examscreen "github.com/pathfinderai/pathfinder/internal/screens/exam"
	"github.com/pathfinderai/pathfinder/internal/screens/home"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
)

// Options configures the program.
type Options struct {
	Deps deps.Deps

	// StartExam opens the exam with this ID on top of the home screen.
	StartExam string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// NewModel creates the root model with the home screen, plus the start
// exam when one is requested.
func NewModel(opts Options) (AppModel, error) {
	m := AppModel{router: router.New(home.New(opts.Deps))}
	if opts.StartExam != "" {
		if opts.Deps.Catalog == nil {
			return m, fmt.Errorf("no catalog loaded")
		}
		paper, err := opts.Deps.Catalog.Paper(opts.StartExam)
		if err != nil {
			return m, err
		}
		m.router.Push(examscreen.New(opts.Deps, paper))
	}
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	opts.Deps.Log.Info().Str("start_exam", opts.StartExam).Msg("starting terminal UI")

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		opts.Deps.Log.Error().Err(err).Msg("program exited")
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
