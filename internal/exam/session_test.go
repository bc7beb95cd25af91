package exam

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnSessionEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func newTestSession(t *testing.T, duration time.Duration, rec *recorder) *Session {
	t.Helper()
	paper := scoringPaper(t)
	paper.Blueprint.Duration = duration
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}
	if rec != nil {
		opts = append(opts, WithObserver(rec))
	}
	return NewSession(paper, opts...)
}

func TestSession_InitialState(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)
	snap := s.Current()

	assert.Equal(t, StateNotStarted, snap.State)
	assert.Equal(t, time.Minute, snap.TimeRemaining)
	assert.Equal(t, 1, snap.CurrentOrdinal)
	assert.Equal(t, 0, snap.AttemptedCount)
	assert.Equal(t, 4, snap.TotalQuestions)
	assert.Equal(t, "session-1", snap.ID)
	assert.Nil(t, s.Result())
}

func TestSession_IntentsRejectedBeforeStart(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)

	assert.ErrorIs(t, s.Navigate(2), ErrIllegalState)
	assert.ErrorIs(t, s.Answer(1, 0), ErrIllegalState)
	assert.ErrorIs(t, s.ToggleReview(1), ErrIllegalState)
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrIllegalState)

	assert.False(t, s.Tick(), "ticks are ignored while not started")
	snap := s.Current()
	assert.Equal(t, time.Minute, snap.TimeRemaining)
	assert.Equal(t, 1, snap.CurrentOrdinal)
	assert.Equal(t, 0, snap.AttemptedCount)
	assert.Equal(t, StateNotStarted, snap.State)
}

func TestSession_StartTwiceFails(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)
	require.NoError(t, s.Start())

	var stateErr *IllegalStateError
	require.ErrorAs(t, s.Start(), &stateErr)
	assert.Equal(t, StateRunning, stateErr.State)
	assert.Equal(t, fixedNow, s.StartedAt())
}

func TestSession_NavigateAndAnswer(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)
	require.NoError(t, s.Start())

	require.NoError(t, s.Navigate(4))
	assert.Equal(t, 4, s.Current().CurrentOrdinal)

	assert.ErrorIs(t, s.Next(), ErrInvalidAnswer, "Next past last question")
	assert.Equal(t, 4, s.Current().CurrentOrdinal)

	require.NoError(t, s.Prev())
	assert.Equal(t, 3, s.Current().CurrentOrdinal)

	assert.ErrorIs(t, s.Navigate(0), ErrInvalidAnswer)
	assert.ErrorIs(t, s.Navigate(5), ErrInvalidAnswer)
	assert.Equal(t, 3, s.Current().CurrentOrdinal)

	require.NoError(t, s.Answer(3, 1))
	require.NoError(t, s.Answer(3, 0))
	assert.ErrorIs(t, s.Answer(3, 2), ErrInvalidAnswer)

	sel, ok := s.Selected(3)
	require.True(t, ok)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 1, s.Current().AttemptedCount)
	assert.Equal(t, []int{1, 2, 4}, slices.Collect(s.Unanswered()))
}

func TestSession_ReviewMarks(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)
	require.NoError(t, s.Start())

	require.NoError(t, s.ToggleReview(2))
	require.NoError(t, s.ToggleReview(4))
	assert.True(t, s.IsMarked(2))
	assert.Equal(t, []int{2, 4}, s.Marked())
	assert.Equal(t, 2, s.Current().MarkedCount)

	require.NoError(t, s.ToggleReview(2))
	assert.False(t, s.IsMarked(2))
	assert.ErrorIs(t, s.ToggleReview(9), ErrInvalidAnswer)

	_, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Result().Score, "marks do not score")
}

func TestSession_SubmitScoresOnce(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, time.Minute, rec)
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(1, 0))
	s.Tick()
	s.Tick()

	done, err := s.Submit()
	require.NoError(t, err)
	assert.True(t, done)

	res := s.Result()
	require.NotNil(t, res)
	assert.Equal(t, ReasonSubmitted, res.Reason)
	assert.Equal(t, 4.0, res.Score)
	assert.Equal(t, 2*time.Second, res.Elapsed)
	assert.Equal(t, "session-1", res.SessionID)
	assert.Equal(t, "score", res.ExamID)
	assert.Equal(t, fixedNow, res.CompletedAt)

	done, err = s.Submit()
	require.NoError(t, err)
	assert.False(t, done, "second submit is a no-op")
	assert.Equal(t, res, s.Result())

	assert.Equal(t, []EventKind{EventStarted, EventSubmitted}, rec.kinds())
}

func TestSession_ResultIsACopy(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, time.Minute, rec)
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(1, 0))
	_, err := s.Submit()
	require.NoError(t, err)

	got := s.Result()
	got.Answers[2] = 1
	got.Subjects[0].Score = 99
	got.Score = 99

	rec.mu.Lock()
	ev := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	require.NotNil(t, ev.Result)
	ev.Result.Answers[3] = 0
	ev.Result.Subjects[1].Correct = 7

	again := s.Result()
	assert.NotSame(t, got, again)
	assert.Equal(t, map[int]int{1: 0}, again.Answers)
	assert.Equal(t, 4.0, again.Subjects[0].Score)
	assert.Equal(t, 0, again.Subjects[1].Correct)
	assert.Equal(t, 4.0, again.Score)
}

func TestSession_ResultKeepsEmptySections(t *testing.T) {
	one := []Item{{Prompt: "q", Options: []string{"right", "wrong"}, Answer: 0}}
	bp := Blueprint{
		ID:       "empty-section",
		Duration: time.Minute,
		Sections: []Section{
			{Subject: "A", Quota: 1, MarksCorrect: 4, MarksWrong: 1},
			{Subject: "B", Quota: 0, MarksCorrect: 4, MarksWrong: 1},
		},
	}
	paper, err := Resolve(bp, mapBank(map[string][]Item{"A": one}))
	require.NoError(t, err)

	s := NewSession(paper, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(1, 0))
	_, err = s.Submit()
	require.NoError(t, err)

	res := s.Result()
	require.Len(t, res.Subjects, 2)
	b, ok := res.Subject("B")
	require.True(t, ok)
	assert.Equal(t, SubjectResult{Subject: "B"}, b)
	assert.Equal(t, 100.0, res.Percentage)
}

func TestSession_CompletedRejectsMutation(t *testing.T) {
	s := newTestSession(t, time.Minute, nil)
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(2, 1))
	_, err := s.Submit()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Answer(1, 0), ErrIllegalState)
	assert.ErrorIs(t, s.Navigate(1), ErrIllegalState)
	assert.False(t, s.Tick())

	snap := s.Current()
	assert.Equal(t, 1, snap.AttemptedCount)
	assert.Equal(t, 1, snap.CurrentOrdinal)
	assert.Equal(t, time.Minute, snap.TimeRemaining)
	assert.Equal(t, map[int]int{2: 1}, s.Result().Answers)
}

func TestSession_TimeoutAutoSubmits(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, 3*time.Second, rec)
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(1, 1))

	assert.False(t, s.Tick())
	assert.False(t, s.Tick())
	assert.True(t, s.Tick())

	res := s.Result()
	require.NotNil(t, res)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 3*time.Second, res.Elapsed)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, -1.0, res.RawScore)

	assert.False(t, s.Tick(), "no second timeout")
	done, err := s.Submit()
	require.NoError(t, err)
	assert.False(t, done, "submit after timeout is a no-op")
	assert.Same(t, res, s.Result())

	assert.Equal(t, []EventKind{EventStarted, EventTimedOut}, rec.kinds())
}

func TestSession_SubmitThenSameTickTimeout(t *testing.T) {
	s := newTestSession(t, time.Second, nil)
	require.NoError(t, s.Start())

	done, err := s.Submit()
	require.NoError(t, err)
	require.True(t, done)

	assert.False(t, s.Tick())
	assert.Equal(t, ReasonSubmitted, s.Result().Reason)
}

func TestSession_ConcurrentSubmitAndTimeout(t *testing.T) {
	for i := 0; i < 50; i++ {
		rec := &recorder{}
		s := newTestSession(t, time.Second, rec)
		require.NoError(t, s.Start())

		var wg sync.WaitGroup
		var submitWon, tickWon bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			submitWon, _ = s.Submit()
		}()
		go func() {
			defer wg.Done()
			tickWon = s.Tick()
		}()
		wg.Wait()

		assert.NotEqual(t, submitWon, tickWon, "exactly one completion path wins")
		kinds := rec.kinds()
		require.Len(t, kinds, 2)
		assert.Equal(t, EventStarted, kinds[0])
	}
}

func TestSession_RestartResetsEverything(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, 5*time.Second, rec)
	require.NoError(t, s.Start())
	require.NoError(t, s.Answer(1, 0))
	require.NoError(t, s.ToggleReview(1))
	require.NoError(t, s.Navigate(3))
	s.Tick()
	_, err := s.Submit()
	require.NoError(t, err)

	s.Restart()

	snap := s.Current()
	assert.Equal(t, StateNotStarted, snap.State)
	assert.Equal(t, 5*time.Second, snap.TimeRemaining)
	assert.Equal(t, 1, snap.CurrentOrdinal)
	assert.Equal(t, 0, snap.AttemptedCount)
	assert.Equal(t, 0, snap.MarkedCount)
	assert.Equal(t, "session-2", snap.ID)
	assert.Nil(t, s.Result())
	assert.True(t, s.StartedAt().IsZero())

	require.NoError(t, s.Start())
	_, ok := s.Selected(1)
	assert.False(t, ok, "no answers leak between sessions")

	assert.Equal(t, EventRestarted, rec.kinds()[2])
}

func TestSession_LowTime(t *testing.T) {
	s := newTestSession(t, LowTime+time.Second, nil)
	assert.False(t, s.Current().LowTime(), "not running")

	require.NoError(t, s.Start())
	assert.False(t, s.Current().LowTime())
	s.Tick()
	assert.False(t, s.Current().LowTime(), "exactly at threshold")
	s.Tick()
	assert.True(t, s.Current().LowTime())
}

func TestRunClock_TimesOut(t *testing.T) {
	s := newTestSession(t, 2*time.Second, nil)
	require.NoError(t, s.Start())

	ticks := make(chan time.Time, 5)
	for i := 0; i < 5; i++ {
		ticks <- fixedNow
	}
	assert.True(t, RunClock(context.Background(), s, ticks))
	assert.Equal(t, ReasonTimeout, s.Result().Reason)
	assert.Len(t, ticks, 3, "loop stops consuming once completed")
}

func TestRunClock_StopsOnSubmit(t *testing.T) {
	s := newTestSession(t, time.Hour, nil)
	require.NoError(t, s.Start())
	_, err := s.Submit()
	require.NoError(t, err)

	assert.False(t, RunClock(context.Background(), s, make(chan time.Time)))
}

func TestRunClock_ContextCancel(t *testing.T) {
	s := newTestSession(t, time.Hour, nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, RunClock(ctx, s, make(chan time.Time)))
	assert.Equal(t, StateRunning, s.State())
}

func TestRunClock_ClosedChannel(t *testing.T) {
	s := newTestSession(t, time.Hour, nil)
	require.NoError(t, s.Start())

	ticks := make(chan time.Time)
	close(ticks)
	assert.False(t, RunClock(context.Background(), s, ticks))
}

func TestRunWallClock_HonoursContext(t *testing.T) {
	s := newTestSession(t, time.Hour, nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, RunWallClock(ctx, s))
	assert.Equal(t, StateRunning, s.State())
}
