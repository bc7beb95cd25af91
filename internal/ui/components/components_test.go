package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestOptionList_Navigation(t *testing.T) {
	o := NewOptionList([]string{"a", "b", "c"}, -1)
	assert.Equal(t, 0, o.Cursor)
	assert.Equal(t, -1, o.Chosen)

	o, picked := o.Update(specialKey(tea.KeyDown))
	assert.Equal(t, -1, picked)
	o, _ = o.Update(specialKey(tea.KeyDown))
	o, _ = o.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 2, o.Cursor, "cursor stops at the last option")

	o, picked = o.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, 2, picked)
	assert.Equal(t, 2, o.Chosen)
}

func TestOptionList_DirectKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'1', 0},
		{'3', 2},
		{'b', 1},
		{'4', -1},
		{'z', -1},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			o := NewOptionList([]string{"a", "b", "c"}, -1)
			_, picked := o.Update(keyPress(tt.key))
			assert.Equal(t, tt.want, picked)
		})
	}
}

func TestNewOptionList_StartsOnChosen(t *testing.T) {
	o := NewOptionList([]string{"a", "b"}, 1)
	assert.Equal(t, 1, o.Cursor)
	assert.Equal(t, 1, o.Chosen)

	o = NewOptionList([]string{"a", "b"}, 7)
	assert.Equal(t, -1, o.Chosen)
}

func TestOptionList_View(t *testing.T) {
	o := NewOptionList([]string{"Paris", "Rome"}, 1)
	v := o.View(0)
	assert.Contains(t, v, "A)  Paris")
	assert.Contains(t, v, "● B)  Rome")
}

func TestGrid_WindowsAroundCurrent(t *testing.T) {
	g := Grid{Total: 100, Current: 95, Columns: 10}
	require.Equal(t, 10, g.Rows())

	lines := strings.Split(strings.TrimRight(g.View(3), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "71")
	assert.Contains(t, lines[2], "100")
}

func TestGrid_PartialLastRow(t *testing.T) {
	g := Grid{Total: 12, Current: 1, Columns: 5}
	assert.Equal(t, 3, g.Rows())
	lines := strings.Split(strings.TrimRight(g.View(0), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "12")
}

func TestButtonRow(t *testing.T) {
	pressed := ""
	row := NewButtonRow(1,
		NewButton("Submit", false, func() tea.Cmd { pressed = "submit"; return nil }),
		NewButton("Cancel", false, func() tea.Cmd { pressed = "cancel"; return nil }),
	)
	assert.Equal(t, 1, row.Focus())

	row, _ = row.Update(specialKey(tea.KeyLeft))
	assert.Equal(t, 0, row.Focus())
	assert.True(t, row.Buttons[0].Active)
	assert.False(t, row.Buttons[1].Active)

	row, _ = row.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, "submit", pressed)

	row, _ = row.Update(specialKey(tea.KeyRight))
	row, _ = row.Update(specialKey(tea.KeyRight))
	assert.Equal(t, 0, row.Focus(), "focus wraps")
}

func TestOrdinalInput(t *testing.T) {
	in := NewOrdinalInput(180)
	in.Focus()
	in, _ = in.Update(keyPress('4'))
	in, _ = in.Update(keyPress('x'))
	in, _ = in.Update(keyPress('2'))
	assert.Equal(t, "42", in.Value())

	n, ok := in.Ordinal()
	require.True(t, ok)
	assert.Equal(t, 42, n)

	in, _ = in.Update(keyPress('9'))
	_, ok = in.Ordinal()
	assert.False(t, ok, "429 is past the last question")
	in.Reject()
	assert.Contains(t, in.View(), "enter 1-180")

	in, _ = in.Update(keyPress('1'))
	assert.Equal(t, "429", in.Value(), "input is capped at three digits")
	assert.NotContains(t, in.View(), "enter 1-180")

	in.Clear()
	assert.Empty(t, in.Value())
	_, ok = in.Ordinal()
	assert.False(t, ok)
}

func TestProgressBar_Clamps(t *testing.T) {
	p := NewProgressBar("", 1.5, true, 20)
	assert.Contains(t, p.View(), "150%")
	assert.NotPanics(t, func() { NewProgressBar("x", -1, false, 2).View() })
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	pick := func(s string) func() tea.Cmd {
		return func() tea.Cmd { picked = s; return nil }
	}
	m := NewMenu([]MenuItem{
		{Label: "Locked", Disabled: true},
		{Label: "CLAT", Action: pick("clat")},
		{Label: "Soon", Disabled: true},
		{Label: "NEET", Action: pick("neet"), Detail: "180 questions"},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 3, m.Selected)
	m, _ = m.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 3, m.Selected, "stays on the last enabled item")
	m, _ = m.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, "neet", picked)

	m, _ = m.Update(keyPress('k'))
	assert.Equal(t, 1, m.Selected)
	m, _ = m.Update(keyPress('k'))
	assert.Equal(t, 1, m.Selected)

	v := m.View()
	assert.Contains(t, v, "▸ CLAT")
	assert.Contains(t, v, "180 questions")
}
