package exam

import (
	"iter"
	"maps"
)

// Ledger records the learner's selection per question ordinal. At most one
// selection exists per question; a later selection replaces an earlier one.
type Ledger struct {
	questions []Question
	answers   map[int]int
}

// NewLedger creates an empty ledger over the given questions.
func NewLedger(questions []Question) *Ledger {
	return &Ledger{questions: questions, answers: make(map[int]int)}
}

// Set records option as the selection for ordinal. Out-of-range ordinals or
// options are rejected and the ledger is left unchanged.
func (l *Ledger) Set(ordinal, option int) error {
	if ordinal < 1 || ordinal > len(l.questions) {
		return &InvalidAnswerError{Op: "answer", Ordinal: ordinal, Option: option, Reason: "no such question"}
	}
	q := l.questions[ordinal-1]
	if option < 0 || option >= len(q.Options) {
		return &InvalidAnswerError{Op: "answer", Ordinal: ordinal, Option: option, Reason: "option out of range"}
	}
	l.answers[ordinal] = option
	return nil
}

// Get returns the selection for ordinal, if any.
func (l *Ledger) Get(ordinal int) (int, bool) {
	opt, ok := l.answers[ordinal]
	return opt, ok
}

// AttemptedCount is the number of questions with a selection.
func (l *Ledger) AttemptedCount() int { return len(l.answers) }

// Unanswered yields ordinals without a selection in ascending order.
func (l *Ledger) Unanswered() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range l.questions {
			ord := i + 1
			if _, ok := l.answers[ord]; ok {
				continue
			}
			if !yield(ord) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the ordinal to option mapping.
func (l *Ledger) Snapshot() map[int]int {
	return maps.Clone(l.answers)
}

// Clear removes every selection.
func (l *Ledger) Clear() {
	clear(l.answers)
}
