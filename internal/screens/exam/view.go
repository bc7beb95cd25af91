package exam

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	engine "github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
	"github.com/pathfinderai/pathfinder/internal/ui/theme"
)

// renderCountdown colors the remaining time: amber under the low-time
// threshold, rose in the final minute.
func renderCountdown(snap engine.Snapshot) string {
	style := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	switch {
	case snap.State == engine.StateRunning && snap.TimeRemaining < time.Minute:
		style = style.Foreground(theme.Error)
	case snap.LowTime():
		style = style.Foreground(theme.Warning)
	case snap.State != engine.StateRunning:
		style = style.Foreground(theme.TextDim)
	}
	return style.Render("⏱ " + layout.FormatCountdown(snap.TimeRemaining))
}

func (s *ExamScreen) View(width, height int) string {
	var body string
	switch s.phase {
	case phaseInstructions:
		body = s.renderInstructions(width)
	case phaseConfirm:
		body = components.Centered(s.renderConfirm(width), width, height-2)
	case phaseFinishing:
		body = components.Centered(theme.Subtitle.Render("Scoring your paper..."), width, height-2)
	default:
		body = s.renderQuestion(width, height)
	}

	if s.errMsg != "" {
		body = theme.ErrorText.Render("  "+s.errMsg) + "\n" + body
	}
	return body
}

func (s *ExamScreen) renderInstructions(width int) string {
	bp := s.paper.Blueprint
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(bp.Name))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw).Render(fmt.Sprintf("%d questions · %s marks · %s",
		s.paper.TotalQuestions, formatMarks(s.paper.TotalMaxMarks), layout.FormatCountdown(bp.Duration))))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-26s %9s %8s %8s", "Subject", "Questions", "Correct", "Wrong")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(header))
	b.WriteString("\n")
	for _, sec := range bp.Sections {
		wrong := "0"
		if sec.MarksWrong > 0 {
			wrong = "−" + formatMarks(sec.MarksWrong)
		}
		b.WriteString(theme.Body.Render(fmt.Sprintf("%-26s %9d %8s %8s",
			truncate(sec.Subject, 26), sec.Quota, "+"+formatMarks(sec.MarksCorrect), wrong)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	notes := []string{
		"The timer starts when you press Enter and cannot be paused.",
		"You can move between questions and change answers until you submit.",
		"Unanswered questions score zero.",
		"When time runs out the paper is submitted automatically.",
	}
	for _, n := range notes {
		b.WriteString(theme.Hint.Render("• " + n))
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(s.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.ButtonActive.Render("▸ Start exam"))

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(b.String(), cw))
}

func (s *ExamScreen) renderQuestion(width, height int) string {
	snap := s.session.Current()
	q, ok := s.paper.Question(snap.CurrentOrdinal)
	if !ok {
		return theme.Subtitle.Width(width).Render("This paper has no questions.")
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Q%d of %d · %s", q.Ordinal, snap.TotalQuestions, q.Subject))
	marking := "+" + formatMarks(q.MarksCorrect)
	if q.MarksWrong > 0 {
		marking += " / −" + formatMarks(q.MarksWrong)
	}
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s   answered %d · marked %d", marking, snap.AttemptedCount, snap.MarkedCount))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 2; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-2, 0))))
	b.WriteString("\n\n")

	textWidth := max(width-6, 20)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(textWidth).PaddingLeft(2).Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(indent(s.options.View(textWidth), "  "))

	if s.session.IsMarked(q.Ordinal) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("  ★ Marked for review"))
		b.WriteString("\n")
	}

	if s.jumping {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Go to question (1-%d): %s\n", snap.TotalQuestions, s.jump.View()))
	}

	if s.notice != "" {
		style := lipgloss.NewStyle().Foreground(theme.Secondary)
		if snap.LowTime() {
			style = lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
		}
		b.WriteString("\n")
		b.WriteString(style.Render("  " + s.notice))
		b.WriteString("\n")
	}

	if s.showGrid {
		used := lipgloss.Height(b.String())
		if rows := height - used - 3; rows > 0 {
			digits := len(fmt.Sprint(snap.TotalQuestions))
			cols := min(max((width-4)/(digits+1), 1), 15)
			grid := components.Grid{
				Total:   snap.TotalQuestions,
				Current: snap.CurrentOrdinal,
				Columns: cols,
				State:   s.cellState,
			}
			b.WriteString("\n")
			b.WriteString(indent(grid.View(rows), "  "))
			b.WriteString("  " + components.GridLegend())
		}
	}

	return b.String()
}

func (s *ExamScreen) cellState(ord int) components.CellState {
	_, answered := s.session.Selected(ord)
	marked := s.session.IsMarked(ord)
	switch {
	case answered && marked:
		return components.CellAnsweredMarked
	case marked:
		return components.CellMarked
	case answered:
		return components.CellAnswered
	default:
		return components.CellUnanswered
	}
}

func (s *ExamScreen) renderConfirm(width int) string {
	snap := s.session.Current()
	unanswered := snap.TotalQuestions - snap.AttemptedCount

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render("Submit exam?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d of %d", snap.AttemptedCount, snap.TotalQuestions)))
	b.WriteString("\n")
	if unanswered > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d unanswered", unanswered)))
		b.WriteString("\n")
	}
	if snap.MarkedCount > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("%d marked for review", snap.MarkedCount)))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render(layout.FormatCountdown(snap.TimeRemaining) + " remaining"))
	b.WriteString("\n\n")
	b.WriteString(s.confirm.View())
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press R to discard this attempt and restart."))

	return components.Dialog(b.String(), min(components.ContentWidth(width), 50))
}

// formatMarks prints whole marks without decimals.
func formatMarks(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
