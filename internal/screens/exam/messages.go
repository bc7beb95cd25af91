package exam

import (
	"time"

	tea "charm.land/bubbletea/v2"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
)

// timerTickMsg is sent every second while the exam runs. gen ties the tick
// to one start so a restart never leaves two tick loops alive.
type timerTickMsg struct {
	gen int
	at  time.Time
}

// resultSavedMsg reports the outcome of persisting a completed result.
type resultSavedMsg struct {
	result *engine.Result
	err    error
}

// confirm dialog button presses.
type (
	submitMsg  struct{}
	resumeMsg  struct{}
	restartMsg struct{}
)

// tickCmd returns a 1-second tick command.
func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{gen: gen, at: t}
	})
}
