package exam

import (
	"iter"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session drives one sitting of a paper from NotStarted to Completed.
// All intents are serialized by an internal lock; the first of an explicit
// submit and a timeout tick completes the session, the other is a no-op.
type Session struct {
	mu sync.Mutex

	id        string
	paper     *Paper
	state     State
	clock     *Clock
	ledger    *Ledger
	marked    map[int]bool
	current   int
	startedAt time.Time
	result    *Result

	now      func() time.Time
	newID    func() string
	observer Observer
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the wall-clock source used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// NewSession creates a NotStarted session over a resolved paper.
func NewSession(paper *Paper, opts ...Option) *Session {
	s := &Session{
		paper:  paper,
		now:    time.Now,
		newID:  uuid.NewString,
		marked: make(map[int]bool),
	}
	for _, o := range opts {
		o(s)
	}
	s.clock = NewClock(paper.Blueprint.Duration)
	s.ledger = NewLedger(paper.Questions)
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = s.newID()
	s.state = StateNotStarted
	s.clock.Reset()
	s.ledger.Clear()
	clear(s.marked)
	s.current = 0
	if len(s.paper.Questions) > 0 {
		s.current = 1
	}
	s.startedAt = time.Time{}
	s.result = nil
}

// ID returns the current session identifier. Restart assigns a new one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Paper returns the resolved paper.
func (s *Session) Paper() *Paper { return s.paper }

// Start moves a NotStarted session to Running with a full clock.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		st := s.state
		s.mu.Unlock()
		return &IllegalStateError{Op: "start", State: st}
	}
	s.clock.Reset()
	s.state = StateRunning
	s.startedAt = s.now()
	ev := Event{SessionID: s.id, Kind: EventStarted, From: StateNotStarted, To: StateRunning, At: s.startedAt}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Navigate moves the current-question pointer to any ordinal in the paper.
func (s *Session) Navigate(ordinal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked("navigate", ordinal)
}

// Next moves to the following question.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked("next", s.current+1)
}

// Prev moves to the preceding question.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked("prev", s.current-1)
}

func (s *Session) navigateLocked(op string, ordinal int) error {
	if s.state != StateRunning {
		return &IllegalStateError{Op: op, State: s.state}
	}
	if ordinal < 1 || ordinal > len(s.paper.Questions) {
		return &InvalidAnswerError{Op: op, Ordinal: ordinal, Option: -1, Reason: "no such question"}
	}
	s.current = ordinal
	return nil
}

// Answer records a selection for ordinal, replacing any earlier one.
func (s *Session) Answer(ordinal, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return &IllegalStateError{Op: "answer", State: s.state}
	}
	return s.ledger.Set(ordinal, option)
}

// ToggleReview flips the mark-for-review flag on ordinal. Marks are purely
// a navigation aid and never affect scoring.
func (s *Session) ToggleReview(ordinal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return &IllegalStateError{Op: "mark", State: s.state}
	}
	if ordinal < 1 || ordinal > len(s.paper.Questions) {
		return &InvalidAnswerError{Op: "mark", Ordinal: ordinal, Option: -1, Reason: "no such question"}
	}
	if s.marked[ordinal] {
		delete(s.marked, ordinal)
	} else {
		s.marked[ordinal] = true
	}
	return nil
}

// Submit completes a running session. It reports whether this call
// performed the transition; submitting a completed session is a no-op.
func (s *Session) Submit() (bool, error) {
	s.mu.Lock()
	switch s.state {
	case StateNotStarted:
		s.mu.Unlock()
		return false, &IllegalStateError{Op: "submit", State: s.state}
	case StateCompleted:
		s.mu.Unlock()
		return false, nil
	}
	ev := s.completeLocked(ReasonSubmitted)
	s.mu.Unlock()

	s.notify(ev)
	return true, nil
}

// Tick forwards one second to the clock while running. It reports whether
// this tick timed the session out. Ticks outside Running are ignored.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	if !s.clock.Tick() {
		s.mu.Unlock()
		return false
	}
	ev := s.completeLocked(ReasonTimeout)
	s.mu.Unlock()

	s.notify(ev)
	return true
}

// completeLocked transitions Running to Completed and scores once.
func (s *Session) completeLocked(reason CompletionReason) Event {
	s.state = StateCompleted
	res := ScorePaper(s.paper, s.ledger.Snapshot(), s.clock.Elapsed())
	res.SessionID = s.id
	res.ExamID = s.paper.Blueprint.ID
	res.ExamName = s.paper.Blueprint.Name
	res.Reason = reason
	res.CompletedAt = s.now()
	s.result = res

	kind := EventSubmitted
	if reason == ReasonTimeout {
		kind = EventTimedOut
	}
	return Event{SessionID: s.id, Kind: kind, From: StateRunning, To: StateCompleted, At: res.CompletedAt, Result: res.clone()}
}

// Restart discards everything and returns the session to NotStarted under a
// fresh ID. It is allowed from any state.
func (s *Session) Restart() {
	s.mu.Lock()
	from := s.state
	s.reset()
	ev := Event{SessionID: s.id, Kind: EventRestarted, From: from, To: StateNotStarted, At: s.now()}
	s.mu.Unlock()

	s.notify(ev)
}

// Current returns a snapshot of the live session.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:             s.id,
		State:          s.state,
		TimeRemaining:  s.clock.Remaining(),
		Elapsed:        s.clock.Elapsed(),
		CurrentOrdinal: s.current,
		AttemptedCount: s.ledger.AttemptedCount(),
		TotalQuestions: len(s.paper.Questions),
		MarkedCount:    len(s.marked),
	}
}

// State returns the lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns a copy of the cached result, or nil before completion.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.clone()
}

// StartedAt is the wall-clock time of Start, zero before it.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Selected returns the recorded selection for ordinal.
func (s *Session) Selected(ordinal int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(ordinal)
}

// IsMarked reports whether ordinal is flagged for review.
func (s *Session) IsMarked(ordinal int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[ordinal]
}

// Marked returns review-flagged ordinals in ascending order.
func (s *Session) Marked() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.marked))
}

// Unanswered yields unanswered ordinals as of the call.
func (s *Session) Unanswered() iter.Seq[int] {
	s.mu.Lock()
	answers := s.ledger.Snapshot()
	n := len(s.paper.Questions)
	s.mu.Unlock()

	return func(yield func(int) bool) {
		for ord := 1; ord <= n; ord++ {
			if _, ok := answers[ord]; ok {
				continue
			}
			if !yield(ord) {
				return
			}
		}
	}
}

func (s *Session) notify(ev Event) {
	if s.observer != nil {
		s.observer.OnSessionEvent(ev)
	}
}
