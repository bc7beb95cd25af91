package exam

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching against the typed engine errors.
var (
	ErrConfiguration = errors.New("exam configuration error")
	ErrIllegalState  = errors.New("illegal session state")
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ConfigurationError is raised at resolution time when a blueprint cannot be
// turned into a paper against the given bank.
type ConfigurationError struct {
	Exam    string
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("exam %q: subject %q: %s", e.Exam, e.Subject, e.Reason)
	}
	return fmt.Sprintf("exam %q: %s", e.Exam, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// IllegalStateError indicates an intent that is not valid in the session's
// current state. The session is left untouched.
type IllegalStateError struct {
	Op    string
	State State
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("%s: not allowed while session is %s", e.Op, e.State)
}

func (e *IllegalStateError) Is(target error) bool { return target == ErrIllegalState }

// InvalidAnswerError reports an ordinal or option index outside the paper.
type InvalidAnswerError struct {
	Op      string
	Ordinal int
	Option  int
	Reason  string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("%s: question %d: %s", e.Op, e.Ordinal, e.Reason)
}

func (e *InvalidAnswerError) Is(target error) bool { return target == ErrInvalidAnswer }
