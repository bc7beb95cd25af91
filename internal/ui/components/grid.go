package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// CellState is how one ordinal is drawn in the navigation grid.
type CellState int

const (
	CellUnanswered CellState = iota
	CellAnswered
	CellMarked
	CellAnsweredMarked
)

// Grid is the question palette: one cell per ordinal, wrapped to a fixed
// number of columns and windowed around the current question.
type Grid struct {
	Total   int
	Current int
	Columns int
	State   func(ordinal int) CellState
}

// Rows returns the number of rows needed for the whole paper.
func (g Grid) Rows() int {
	cols := g.columns()
	return (g.Total + cols - 1) / cols
}

func (g Grid) columns() int {
	if g.Columns <= 0 {
		return 10
	}
	return g.Columns
}

// View renders at most maxRows rows, keeping the current ordinal visible.
func (g Grid) View(maxRows int) string {
	if g.Total <= 0 {
		return ""
	}
	cols := g.columns()
	rows := g.Rows()
	first := 0
	if maxRows > 0 && rows > maxRows {
		curRow := (g.Current - 1) / cols
		first = curRow - maxRows/2
		if first < 0 {
			first = 0
		}
		if first+maxRows > rows {
			first = rows - maxRows
		}
		rows = first + maxRows
	}

	width := len(fmt.Sprint(g.Total))
	var b strings.Builder
	for r := first; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ord := r*cols + c + 1
			if ord > g.Total {
				break
			}
			if c > 0 {
				b.WriteString(" ")
			}
			b.WriteString(g.cell(ord, width))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g Grid) cell(ord, width int) string {
	st := CellUnanswered
	if g.State != nil {
		st = g.State(ord)
	}
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch st {
	case CellAnswered:
		style = lipgloss.NewStyle().Foreground(theme.Success)
	case CellMarked:
		style = lipgloss.NewStyle().Foreground(theme.Accent)
	case CellAnsweredMarked:
		style = lipgloss.NewStyle().Foreground(theme.Accent).Underline(true)
	}
	if ord == g.Current {
		style = style.Reverse(true).Bold(true)
	}
	return style.Render(fmt.Sprintf("%*d", width, ord))
}

// GridLegend is the one-line key printed under the grid.
func GridLegend() string {
	return lipgloss.NewStyle().Foreground(theme.Success).Render("answered") + "  " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render("marked") + "  " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("unanswered")
}
