package exam

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/store"
)

// recorder logs session transitions and queues them for the audit trail.
// The session notifies it from inside Update, so nothing is written there;
// persist hands the queued events to a command instead.
type recorder struct {
	repo   store.EventRepo
	examID string
	log    zerolog.Logger

	mu      sync.Mutex
	pending []store.SessionEventData

	// held while writing so queued events reach the store in order
	writeMu sync.Mutex
}

var _ engine.Observer = (*recorder)(nil)

func (r *recorder) OnSessionEvent(ev engine.Event) {
	l := r.log.Info().
		Str("session", ev.SessionID).
		Str("event", string(ev.Kind)).
		Str("from", ev.From.String()).
		Str("to", ev.To.String())
	if ev.Result != nil {
		l = l.Float64("score", ev.Result.Score).
			Float64("max", ev.Result.MaxScore).
			Int("attempted", ev.Result.Attempted()).
			Dur("elapsed", ev.Result.Elapsed)
	}
	l.Msg("session transition")

	if r.repo == nil {
		return
	}
	r.mu.Lock()
	r.pending = append(r.pending, store.SessionEventData{
		SessionID: ev.SessionID,
		ExamID:    r.examID,
		Kind:      string(ev.Kind),
		From:      ev.From.String(),
		To:        ev.To.String(),
		At:        ev.At,
	})
	r.mu.Unlock()
}

// persist returns a command that writes the queued events, or nil when
// there are none.
func (r *recorder) persist() tea.Cmd {
	r.mu.Lock()
	n := len(r.pending)
	r.mu.Unlock()
	if n == 0 {
		return nil
	}
	return func() tea.Msg {
		r.flush(context.Background())
		return nil
	}
}

// flush appends everything queued so far. A failed append is logged and
// dropped; the exam carries on without its audit row.
func (r *recorder) flush(ctx context.Context) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, data := range batch {
		if err := r.repo.AppendSessionEvent(ctx, data); err != nil {
			r.log.Error().Err(err).Str("session", data.SessionID).Str("event", data.Kind).Msg("record session event")
		}
	}
}
