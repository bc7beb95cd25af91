package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// ProgressBar is a one-line horizontal bar. Percent is a fraction; values
// outside [0, 1] are drawn clamped but the label shows the real number.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int         // total width including label and percent
	Fill        color.Color // defaults to theme.Secondary
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label))
		b.WriteString("  ")
	}

	suffix := ""
	if p.ShowPercent {
		suffix = fmt.Sprintf("  %d%%", int(p.Percent*100+0.5))
	}

	cells := max(p.Width-lipgloss.Width(b.String())-len([]rune(suffix)), 4)
	filled := min(max(int(float64(cells)*p.Percent), 0), cells)

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	b.WriteString(lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", cells-filled)))
	if suffix != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	}
	return b.String()
}
