package exam

import "time"

// State is the lifecycle phase of a session.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// LowTime is the remaining-time threshold under which hosts should warn.
const LowTime = 10 * time.Minute

// Snapshot is a read-only view of a session for renderers.
type Snapshot struct {
	ID             string
	State          State
	TimeRemaining  time.Duration
	Elapsed        time.Duration
	CurrentOrdinal int
	AttemptedCount int
	TotalQuestions int
	MarkedCount    int
}

// LowTime reports whether a running session is under the warning threshold.
func (s Snapshot) LowTime() bool {
	return s.State == StateRunning && s.TimeRemaining < LowTime
}

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSubmitted EventKind = "submitted"
	EventTimedOut  EventKind = "timeout"
	EventRestarted EventKind = "restarted"
)

// Event is delivered to an Observer after a lifecycle transition.
type Event struct {
	SessionID string
	Kind      EventKind
	From      State
	To        State
	At        time.Time
	Result    *Result // set on completion events
}

// Observer receives lifecycle events. It is called after the session lock
// is released, so it may query the session.
type Observer interface {
	OnSessionEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnSessionEvent(e Event) { f(e) }
