package components

import (
	"fmt"
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// OrdinalInput is the "go to question" prompt: digits only, accepted when
// the number falls in [1, Max].
type OrdinalInput struct {
	Max      int
	input    textinput.Model
	rejected bool
}

// NewOrdinalInput creates a prompt for question numbers up to last.
func NewOrdinalInput(last int) OrdinalInput {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = fmt.Sprintf("1-%d", last)
	ti.CharLimit = len(strconv.Itoa(last))
	ti.Focus()
	return OrdinalInput{Max: last, input: ti}
}

// Focus clears the prompt and returns the cursor blink command.
func (o *OrdinalInput) Focus() tea.Cmd {
	o.Clear()
	return o.input.Focus()
}

// Clear empties the prompt and drops the rejection mark.
func (o *OrdinalInput) Clear() {
	o.input.SetValue("")
	o.rejected = false
}

func (o OrdinalInput) Update(msg tea.Msg) (OrdinalInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if s := k.String(); len(s) == 1 && (s[0] < '0' || s[0] > '9') {
			return o, nil
		}
	}
	o.rejected = false
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd
}

// Ordinal returns the typed number when it is in range.
func (o OrdinalInput) Ordinal() (int, bool) {
	n, err := strconv.Atoi(o.input.Value())
	if err != nil || n < 1 || n > o.Max {
		return 0, false
	}
	return n, true
}

// Reject flags the current value as unusable until the next keystroke.
func (o *OrdinalInput) Reject() { o.rejected = true }

func (o OrdinalInput) Value() string { return o.input.Value() }

func (o OrdinalInput) View() string {
	v := o.input.View()
	if o.rejected {
		v += " " + lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("✗ enter 1-%d", o.Max))
	}
	return v
}
