package exam

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/router"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
	"github.com/pathfinderai/pathfinder/internal/screens/result"
	"github.com/pathfinderai/pathfinder/internal/store"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
)

// --- Mocks ---

type mockResultRepo struct {
	store.ResultRepo
	mu    sync.Mutex
	saved []*engine.Result
	err   error
}

func (m *mockResultRepo) SaveResult(_ context.Context, res *engine.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, res)
	return m.err
}

type mockEventRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.SessionEventData
}

func (m *mockEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return nil
}

func (m *mockEventRepo) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind
	}
	return out
}

// --- Helpers ---

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testPaper(t *testing.T, duration time.Duration) *engine.Paper {
	t.Helper()
	bp := engine.Blueprint{
		ID:       "mini",
		Name:     "Mini Mock",
		Bank:     "mini",
		Duration: duration,
		Sections: []engine.Section{
			{Subject: "Physics", Quota: 2, MarksCorrect: 4, MarksWrong: 1},
			{Subject: "Chemistry", Quota: 2, MarksCorrect: 4, MarksWrong: 1},
		},
	}
	bank := engine.BankFunc(func(subject string) []engine.Item {
		return []engine.Item{
			{Prompt: subject + " one", Options: []string{"a", "b", "c", "d"}, Answer: 1},
			{Prompt: subject + " two", Options: []string{"a", "b", "c", "d"}, Answer: 2},
		}
	})
	paper, err := engine.Resolve(bp, bank)
	require.NoError(t, err)
	return paper
}

func testScreen(t *testing.T, duration time.Duration) (*ExamScreen, *mockResultRepo, *mockEventRepo) {
	t.Helper()
	results := &mockResultRepo{}
	events := &mockEventRepo{}
	d := deps.Deps{
		Results: results,
		Events:  events,
		Log:     zerolog.Nop(),
		Now:     func() time.Time { return time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC) },
	}
	return New(d, testPaper(t, duration)), results, events
}

func started(t *testing.T, duration time.Duration) (*ExamScreen, *mockResultRepo, *mockEventRepo) {
	t.Helper()
	s, results, events := testScreen(t, duration)
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd, "start should schedule the first tick")
	require.Equal(t, engine.StateRunning, s.Session().State())
	// The start command also carries the one-second tick, so write the
	// "started" event directly instead of running it.
	s.rec.flush(context.Background())
	return s, results, events
}

// drain runs cmd, expanding batches, and returns every message produced.
// It must not be given a tick command.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func savedMsg(t *testing.T, cmd tea.Cmd) resultSavedMsg {
	t.Helper()
	for _, msg := range drain(cmd) {
		if saved, ok := msg.(resultSavedMsg); ok {
			return saved
		}
	}
	require.FailNow(t, "no resultSavedMsg")
	return resultSavedMsg{}
}

func tick(s *ExamScreen) tea.Cmd {
	_, cmd := s.Update(timerTickMsg{gen: s.tickGen, at: time.Now()})
	return cmd
}

// --- Tests ---

func TestExamScreen_Instructions(t *testing.T) {
	s, _, _ := testScreen(t, time.Hour)

	assert.Equal(t, engine.StateNotStarted, s.Session().State())
	assert.False(t, s.HandlesEscape())
	assert.Contains(t, s.View(100, 30), "Physics")
	assert.Contains(t, s.View(100, 30), "Start exam")

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok, "esc on instructions goes back")
	assert.Equal(t, engine.StateNotStarted, s.Session().State())
}

func TestExamScreen_StartSetsRunning(t *testing.T) {
	s, _, events := started(t, time.Hour)

	assert.True(t, s.HandlesEscape())
	assert.Equal(t, []string{"started"}, events.kinds())
	assert.Equal(t, "mini", events.events[0].ExamID)
	assert.Contains(t, s.View(100, 30), "Q1 of 4")
}

func TestExamScreen_AnswerAndNavigate(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('2'))
	sel, ok := s.Session().Selected(1)
	require.True(t, ok)
	assert.Equal(t, 1, sel)

	s.Update(keyPress('n'))
	assert.Equal(t, 2, s.Session().Current().CurrentOrdinal)
	assert.Equal(t, -1, s.options.Chosen, "option list follows the new question")

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))
	sel, _ = s.Session().Selected(2)
	assert.Equal(t, 1, sel)

	s.Update(keyPress('p'))
	assert.Equal(t, 1, s.Session().Current().CurrentOrdinal)
	assert.Equal(t, 1, s.options.Chosen, "recorded selection is restored")

	// Changing an answer replaces it.
	s.Update(keyPress('c'))
	sel, _ = s.Session().Selected(1)
	assert.Equal(t, 2, sel)
	assert.Equal(t, 2, s.Session().Current().AttemptedCount)
}

func TestExamScreen_NavigationBounds(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('p'))
	assert.Equal(t, 1, s.Session().Current().CurrentOrdinal)
	assert.Equal(t, "This is the first question.", s.notice)
	assert.Empty(t, s.errMsg)

	s.Update(specialKey(tea.KeyEnd))
	assert.Equal(t, 4, s.Session().Current().CurrentOrdinal)
	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, "This is the last question.", s.notice)
}

func TestExamScreen_MarkForReview(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('m'))
	assert.True(t, s.Session().IsMarked(1))
	assert.Equal(t, components.CellMarked, s.cellState(1))
	assert.Contains(t, s.View(100, 30), "Marked for review")

	s.Update(keyPress('2'))
	assert.Equal(t, components.CellAnsweredMarked, s.cellState(1))
	assert.Equal(t, components.CellUnanswered, s.cellState(2))

	s.Update(keyPress('m'))
	assert.False(t, s.Session().IsMarked(1))
	assert.Equal(t, components.CellAnswered, s.cellState(1))
}

func TestExamScreen_JumpTo(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('g'))
	require.True(t, s.jumping)
	s.Update(keyPress('3'))
	s.Update(specialKey(tea.KeyEnter))
	assert.False(t, s.jumping)
	assert.Equal(t, 3, s.Session().Current().CurrentOrdinal)

	s.Update(keyPress('g'))
	s.Update(keyPress('9'))
	s.Update(specialKey(tea.KeyEnter))
	assert.True(t, s.jumping, "out-of-range ordinal keeps the prompt open")
	assert.Equal(t, 3, s.Session().Current().CurrentOrdinal)

	s.Update(specialKey(tea.KeyEscape))
	assert.False(t, s.jumping)
}

func TestExamScreen_NextUnanswered(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('1')) // Q1
	s.Update(keyPress('n'))
	s.Update(keyPress('1')) // Q2
	s.Update(keyPress('u'))
	assert.Equal(t, 3, s.Session().Current().CurrentOrdinal)

	s.Update(specialKey(tea.KeyEnd))
	s.Update(keyPress('1')) // Q4
	s.Update(keyPress('u'))
	assert.Equal(t, 3, s.Session().Current().CurrentOrdinal, "wraps to the earliest gap")

	s.Update(keyPress('1')) // Q3
	s.Update(keyPress('u'))
	assert.Equal(t, "No other question is unanswered.", s.notice)
}

func TestExamScreen_SubmitFlow(t *testing.T) {
	s, results, events := started(t, time.Hour)
	s.Update(keyPress('2')) // correct on Q1

	s.Update(keyPress('s'))
	require.Equal(t, phaseConfirm, s.phase)
	assert.Contains(t, s.View(100, 30), "Answered 1 of 4")

	// Keep going returns to the paper.
	s.Update(keyPress('n'))
	assert.Equal(t, phaseRunning, s.phase)

	s.Update(specialKey(tea.KeyEscape))
	require.Equal(t, phaseConfirm, s.phase)
	_, cmd := s.Update(keyPress('y'))
	require.NotNil(t, cmd)
	assert.Equal(t, engine.StateCompleted, s.Session().State())

	saved := savedMsg(t, cmd)
	require.NoError(t, saved.err)
	require.Len(t, results.saved, 1)
	assert.Equal(t, engine.ReasonSubmitted, results.saved[0].Reason)
	assert.Equal(t, 4.0, results.saved[0].Score)

	_, cmd = s.Update(saved)
	require.NotNil(t, cmd)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	_, ok = replace.Screen.(*result.ResultScreen)
	assert.True(t, ok)

	assert.Equal(t, []string{"started", "submitted"}, events.kinds())
}

func TestExamScreen_ConfirmButtons(t *testing.T) {
	s, _, _ := started(t, time.Hour)

	s.Update(keyPress('s'))
	// Focus starts on "Keep going"; move left to "Submit" and press it.
	s.Update(specialKey(tea.KeyLeft))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(submitMsg)
	require.True(t, ok)

	_, cmd = s.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, engine.StateCompleted, s.Session().State())
}

func TestExamScreen_ConfirmRestartButton(t *testing.T) {
	s, _, events := started(t, time.Hour)
	firstID := s.Session().ID()
	s.Update(keyPress('2'))

	s.Update(keyPress('s'))
	require.Len(t, s.confirm.Buttons, 3)
	s.Update(specialKey(tea.KeyRight))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(restartMsg)
	require.True(t, ok, "the third button restarts")
	assert.Equal(t, phaseConfirm, s.phase, "pressing the button only emits the message")

	_, cmd = s.Update(msg)
	drain(cmd)
	assert.Equal(t, phaseInstructions, s.phase)
	assert.NotEqual(t, firstID, s.Session().ID())
	assert.Equal(t, 0, s.Session().Current().AttemptedCount)
	assert.Equal(t, []string{"started", "restarted"}, events.kinds())
}

type failingEventRepo struct {
	store.EventRepo
	calls int
}

func (f *failingEventRepo) AppendSessionEvent(context.Context, store.SessionEventData) error {
	f.calls++
	return fmt.Errorf("database is locked")
}

func TestRecorder_WritesThroughCommand(t *testing.T) {
	events := &mockEventRepo{}
	rec := &recorder{repo: events, examID: "mini", log: zerolog.Nop()}
	assert.Nil(t, rec.persist(), "nothing queued")

	at := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	rec.OnSessionEvent(engine.Event{SessionID: "a", Kind: engine.EventStarted, From: engine.StateNotStarted, To: engine.StateRunning, At: at})
	rec.OnSessionEvent(engine.Event{SessionID: "a", Kind: engine.EventSubmitted, From: engine.StateRunning, To: engine.StateCompleted, At: at})
	assert.Empty(t, events.kinds())

	first, second := rec.persist(), rec.persist()
	require.NotNil(t, first)
	assert.Nil(t, first())
	assert.Nil(t, second(), "a later command finds nothing left to write")
	assert.Equal(t, []string{"started", "submitted"}, events.kinds())
	assert.Equal(t, "mini", events.events[1].ExamID)
	assert.Nil(t, rec.persist())

	failing := &failingEventRepo{}
	rec = &recorder{repo: failing, log: zerolog.Nop()}
	rec.OnSessionEvent(engine.Event{SessionID: "b", Kind: engine.EventRestarted})
	rec.persist()()
	assert.Equal(t, 1, failing.calls)
	assert.Nil(t, rec.persist(), "failed events are not retried")

	rec = &recorder{log: zerolog.Nop()}
	rec.OnSessionEvent(engine.Event{SessionID: "c", Kind: engine.EventStarted})
	assert.Nil(t, rec.persist(), "no repository, nothing to write")
}

func TestExamScreen_TimeoutAutoSubmits(t *testing.T) {
	s, results, events := started(t, 3*time.Second)
	s.Update(keyPress('1')) // wrong on Q1

	require.NotNil(t, tick(s))
	require.NotNil(t, tick(s))
	cmd := tick(s)
	require.NotNil(t, cmd)
	assert.Equal(t, engine.StateCompleted, s.Session().State())

	saved := savedMsg(t, cmd)
	assert.Equal(t, engine.ReasonTimeout, saved.result.Reason)
	assert.Equal(t, 0.0, saved.result.Score, "negative raw score clamps at zero")
	assert.Equal(t, 3*time.Second, saved.result.Elapsed)
	require.Len(t, results.saved, 1)

	assert.Nil(t, tick(s), "ticks after completion are ignored")
	assert.Equal(t, []string{"started", "timeout"}, events.kinds())
}

func TestExamScreen_SaveErrorStillShowsResult(t *testing.T) {
	s, results, _ := started(t, time.Hour)
	results.err = fmt.Errorf("disk full")

	s.Update(keyPress('s'))
	_, cmd := s.Update(keyPress('y'))
	saved := savedMsg(t, cmd)
	require.Error(t, saved.err)

	_, cmd = s.Update(saved)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Contains(t, replace.Screen.View(100, 40), "Result was not saved")
}

func TestExamScreen_RestartDiscardsAttempt(t *testing.T) {
	s, _, events := started(t, time.Hour)
	firstID := s.Session().ID()
	s.Update(keyPress('2'))
	staleGen := s.tickGen

	s.Update(keyPress('s'))
	_, cmd := s.Update(keyPress('r'))
	assert.Equal(t, []string{"started"}, events.kinds(), "nothing is written inside Update")
	assert.Empty(t, drain(cmd))
	assert.Equal(t, []string{"started", "restarted"}, events.kinds())
	assert.Equal(t, phaseInstructions, s.phase)
	assert.Equal(t, engine.StateNotStarted, s.Session().State())
	assert.NotEqual(t, firstID, s.Session().ID())
	assert.Equal(t, 0, s.Session().Current().AttemptedCount)

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	s.rec.flush(context.Background())

	// A tick from the first attempt must not advance the new clock.
	_, cmd = s.Update(timerTickMsg{gen: staleGen})
	assert.Nil(t, cmd)
	assert.Equal(t, time.Duration(0), s.Session().Current().Elapsed)

	assert.Equal(t, []string{"started", "restarted", "started"}, events.kinds())
}

func TestExamScreen_LowTimeNotice(t *testing.T) {
	s, _, _ := started(t, engine.LowTime+2*time.Second)

	tick(s)
	assert.Empty(t, s.notice)
	tick(s)
	tick(s)
	assert.Contains(t, s.notice, "left")
	assert.True(t, s.Session().Current().LowTime())
}

func TestRenderCountdown(t *testing.T) {
	assert.Contains(t, renderCountdown(engine.Snapshot{State: engine.StateRunning, TimeRemaining: 90 * time.Minute}), "1:30:00")
	assert.Contains(t, renderCountdown(engine.Snapshot{State: engine.StateRunning, TimeRemaining: 42 * time.Second}), "00:42")
}
