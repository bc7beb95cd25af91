package exam

import (
	"context"
	"time"
)

// RunClock forwards ticks to s until the session leaves Running, the tick
// channel closes, or ctx is done. It reports whether the session timed out
// while driven by this loop. The session must already be started.
func RunClock(ctx context.Context, s *Session, ticks <-chan time.Time) bool {
	for {
		if s.State() != StateRunning {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-ticks:
			if !ok {
				return false
			}
			if s.Tick() {
				return true
			}
		}
	}
}

// RunWallClock drives s with a one-second ticker.
func RunWallClock(ctx context.Context, s *Session) bool {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	return RunClock(ctx, s, t.C)
}
