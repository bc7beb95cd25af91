// Package exam is the live exam screen: instructions, the timed question
// view with its navigation palette, and the submit dialog.
package exam

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screen"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	"github.com/pathfinderai/pathfinder/internal/screens/result"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
)

type phase int

const (
	phaseInstructions phase = iota
	phaseRunning
	phaseConfirm
	phaseFinishing
)

// ExamScreen hosts one session of a resolved paper.
type ExamScreen struct {
	deps    deps.Deps
	log     zerolog.Logger
	paper   *engine.Paper
	session *engine.Session
	rec     *recorder

	phase    phase
	tickGen  int
	warned   bool
	options  components.OptionList
	jump     components.OrdinalInput
	jumping  bool
	confirm  components.ButtonRow
	showGrid bool
	notice   string
	errMsg   string
}

var (
	_ screen.Screen          = (*ExamScreen)(nil)
	_ screen.KeyHintProvider = (*ExamScreen)(nil)
	_ screen.StatusProvider  = (*ExamScreen)(nil)
	_ screen.EscapeHandler   = (*ExamScreen)(nil)
)

// New creates an exam screen in the instructions phase.
func New(d deps.Deps, paper *engine.Paper) *ExamScreen {
	log := d.Log.With().Str("component", "exam").Str("exam", paper.Blueprint.ID).Logger()
	s := &ExamScreen{
		deps:     d,
		log:      log,
		paper:    paper,
		showGrid: true,
	}
	s.rec = &recorder{repo: d.Events, examID: paper.Blueprint.ID, log: log}
	s.session = engine.NewSession(paper,
		engine.WithClock(d.Clock()),
		engine.WithObserver(s.rec),
	)
	s.jump = components.NewOrdinalInput(paper.TotalQuestions)
	s.syncOptions()
	return s
}

// Session exposes the underlying session.
func (s *ExamScreen) Session() *engine.Session { return s.session }

func (s *ExamScreen) Init() tea.Cmd { return nil }

func (s *ExamScreen) Title() string { return s.paper.Blueprint.Name }

// HandlesEscape keeps Esc from popping the screen once the exam has begun.
func (s *ExamScreen) HandlesEscape() bool { return s.phase != phaseInstructions }

// Status is the countdown shown in the header.
func (s *ExamScreen) Status() string {
	snap := s.session.Current()
	return renderCountdown(snap)
}

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseInstructions:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start exam"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit"},
			{Key: "N/Esc", Description: "Keep going"},
			{Key: "R", Description: "Restart"},
		}
	case phaseFinishing:
		return nil
	}
	if s.jumping {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓/1-9", Description: "Choose"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "M", Description: "Mark"},
		{Key: "G", Description: "Go to"},
		{Key: "U", Description: "Unanswered"},
		{Key: "S", Description: "Submit"},
	}
}

// Update handles msg and attaches the write of any session events it
// caused to the returned command.
func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	next, cmd := s.update(msg)
	return next, tea.Batch(cmd, s.rec.persist())
}

func (s *ExamScreen) update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick(msg)
	case resultSavedMsg:
		return s.handleSaved(msg)
	case submitMsg:
		return s.submit()
	case resumeMsg:
		s.phase = phaseRunning
		return s, nil
	case restartMsg:
		return s.restart()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.jumping {
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExamScreen) start() (screen.Screen, tea.Cmd) {
	if err := s.session.Start(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.phase = phaseRunning
	s.warned = false
	s.notice = ""
	s.tickGen++
	s.syncOptions()
	return s, tickCmd(s.tickGen)
}

func (s *ExamScreen) handleTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != s.tickGen || s.session.State() != engine.StateRunning {
		return s, nil
	}
	if s.session.Tick() {
		s.notice = "Time is up. Your answers have been submitted."
		return s.finish()
	}
	if !s.warned && s.session.Current().LowTime() {
		s.warned = true
		s.notice = "Less than " + layout.FormatCountdown(engine.LowTime) + " left."
		s.log.Info().Str("session", s.session.ID()).Msg("low time warning")
	}
	return s, tickCmd(s.tickGen)
}

func (s *ExamScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	s.errMsg = ""

	switch s.phase {
	case phaseInstructions:
		switch key {
		case "enter", "s":
			return s.start()
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case phaseConfirm:
		switch key {
		case "y", "Y":
			return s.submit()
		case "n", "N", "esc":
			s.phase = phaseRunning
			return s, nil
		case "r", "R":
			return s.restart()
		}
		var cmd tea.Cmd
		s.confirm, cmd = s.confirm.Update(msg)
		return s, cmd

	case phaseFinishing:
		return s, nil
	}

	if s.jumping {
		return s.handleJumpKey(msg)
	}

	cur := s.session.Current().CurrentOrdinal
	switch key {
	case "esc", "s":
		s.openConfirm()
		return s, nil
	case "right", "n":
		return s.move(s.session.Next(), "This is the last question.")
	case "left", "p":
		return s.move(s.session.Prev(), "This is the first question.")
	case "home":
		return s.move(s.session.Navigate(1), "")
	case "end":
		return s.move(s.session.Navigate(s.paper.TotalQuestions), "")
	case "u":
		ord, ok := s.nextUnanswered(cur)
		if !ok {
			s.notice = "No other question is unanswered."
			return s, nil
		}
		return s.move(s.session.Navigate(ord), "")
	case "m":
		if err := s.session.ToggleReview(cur); err != nil {
			s.errMsg = err.Error()
		}
		return s, nil
	case "g", "/":
		s.jumping = true
		return s, s.jump.Focus()
	case "tab":
		s.showGrid = !s.showGrid
		return s, nil
	}

	var picked int
	s.options, picked = s.options.Update(msg)
	if picked >= 0 {
		if err := s.session.Answer(cur, picked); err != nil {
			s.errMsg = err.Error()
		}
	}
	return s, nil
}

// move applies the result of a navigation call. An out-of-range move is
// reported with hint instead of an error.
func (s *ExamScreen) move(err error, hint string) (screen.Screen, tea.Cmd) {
	switch {
	case err == nil:
		s.notice = ""
		s.syncOptions()
	case errors.Is(err, engine.ErrInvalidAnswer) && hint != "":
		s.notice = hint
	default:
		s.errMsg = err.Error()
	}
	return s, nil
}

// nextUnanswered finds the first unanswered ordinal after cur, wrapping to
// the start of the paper. cur itself never counts.
func (s *ExamScreen) nextUnanswered(cur int) (int, bool) {
	first := 0
	for ord := range s.session.Unanswered() {
		if ord == cur {
			continue
		}
		if ord > cur {
			return ord, true
		}
		if first == 0 {
			first = ord
		}
	}
	return first, first != 0
}

func (s *ExamScreen) handleJumpKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.jumping = false
		s.jump.Clear()
		return s, nil
	case "enter":
		n, ok := s.jump.Ordinal()
		if !ok || s.session.Navigate(n) != nil {
			s.jump.Reject()
			return s, nil
		}
		s.jumping = false
		s.jump.Clear()
		s.notice = ""
		s.syncOptions()
		return s, nil
	}
	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

func (s *ExamScreen) openConfirm() {
	s.phase = phaseConfirm
	s.jumping = false
	s.confirm = components.NewButtonRow(1,
		components.NewButton("Submit", false, func() tea.Cmd {
			return func() tea.Msg { return submitMsg{} }
		}),
		components.NewButton("Keep going", false, func() tea.Cmd {
			return func() tea.Msg { return resumeMsg{} }
		}),
		components.NewButton("Restart", false, func() tea.Cmd {
			return func() tea.Msg { return restartMsg{} }
		}),
	)
}

func (s *ExamScreen) submit() (screen.Screen, tea.Cmd) {
	done, err := s.session.Submit()
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if !done {
		// A timeout tick got there first and already finished the exam.
		return s, nil
	}
	return s.finish()
}

func (s *ExamScreen) restart() (screen.Screen, tea.Cmd) {
	s.session.Restart()
	s.phase = phaseInstructions
	s.jumping = false
	s.tickGen++
	s.notice = "Exam reset. A fresh attempt starts when you press Enter."
	s.syncOptions()
	return s, nil
}

// finish persists the completed result. The result screen replaces this
// one once the save returns.
func (s *ExamScreen) finish() (screen.Screen, tea.Cmd) {
	res := s.session.Result()
	if res == nil {
		return s, nil
	}
	s.phase = phaseFinishing
	s.jumping = false

	results := s.deps.Results
	return s, func() tea.Msg {
		var err error
		if results != nil {
			err = results.SaveResult(context.Background(), res)
		}
		return resultSavedMsg{result: res, err: err}
	}
}

func (s *ExamScreen) handleSaved(msg resultSavedMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		s.log.Error().Err(msg.err).Str("session", msg.result.SessionID).Msg("save result")
	} else {
		s.log.Info().Str("session", msg.result.SessionID).Msg("result saved")
	}
	next := result.New(s.deps, msg.result, result.Options{
		Duration: s.paper.Blueprint.Duration,
		SaveErr:  msg.err,
	})
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// syncOptions rebuilds the option list for the current question.
func (s *ExamScreen) syncOptions() {
	cur := s.session.Current().CurrentOrdinal
	q, ok := s.paper.Question(cur)
	if !ok {
		s.options = components.NewOptionList(nil, -1)
		return
	}
	chosen, ok := s.session.Selected(cur)
	if !ok {
		chosen = -1
	}
	s.options = components.NewOptionList(q.Options, chosen)
}
