// Package deps carries the collaborators every screen may need, so screens
// can construct each other without reaching into the app package.
package deps

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pathfinderai/pathfinder/internal/bank"
	"github.com/pathfinderai/pathfinder/internal/review"
	"github.com/pathfinderai/pathfinder/internal/store"
)

// Deps is shared by value; all fields except Catalog are optional.
type Deps struct {
	Catalog  *bank.Catalog
	Results  store.ResultRepo
	Events   store.EventRepo
	Reviewer *review.Service
	Log      zerolog.Logger
	Now      func() time.Time
}

// Clock returns Now, falling back to time.Now.
func (d Deps) Clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

// ExamDuration looks up the allotted time for an exam, or zero.
func (d Deps) ExamDuration(examID string) time.Duration {
	if d.Catalog == nil {
		return 0
	}
	bp, ok := d.Catalog.Exam(examID)
	if !ok {
		return 0
	}
	return bp.Duration
}
