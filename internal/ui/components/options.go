package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// OptionList renders the choices of one question. Cursor is the row under
// the pointer; Chosen is the recorded selection, or -1.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
}

// NewOptionList creates a list with the cursor on the recorded selection
// when there is one.
func NewOptionList(options []string, chosen int) OptionList {
	cursor := 0
	if chosen >= 0 && chosen < len(options) {
		cursor = chosen
	} else {
		chosen = -1
	}
	return OptionList{Options: options, Cursor: cursor, Chosen: chosen}
}

// Update moves the cursor. It returns the option index the learner picked
// with enter or a letter/number key, or -1.
func (o OptionList) Update(msg tea.Msg) (OptionList, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, -1
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
		return o, -1
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
		return o, -1
	case "enter", "space":
		if len(o.Options) == 0 {
			return o, -1
		}
		o.Chosen = o.Cursor
		return o, o.Cursor
	}

	if idx := OptionIndex(key); idx >= 0 && idx < len(o.Options) {
		o.Cursor = idx
		o.Chosen = idx
		return o, idx
	}
	return o, -1
}

// OptionIndex maps "1".."9" and "a".."z" to a zero-based option index.
func OptionIndex(key string) int {
	if len(key) != 1 {
		return -1
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '9':
		return int(c - '1')
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	}
	return -1
}

// OptionLabel returns the letter shown next to option i.
func OptionLabel(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// View renders the options, one per line.
func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == o.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabel(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == o.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		case i == o.Cursor:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		if width > 0 {
			style = style.Width(width)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
