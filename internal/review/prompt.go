package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/pathfinderai/pathfinder/internal/exam"
)

const systemPrompt = `You are a study coach for students preparing for Indian competitive entrance exams. You review a mock test result and give short, specific, encouraging study advice.`

func buildUserMessage(res *exam.Result, duration string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Exam: %s\n", res.ExamName)
	fmt.Fprintf(&b, "Score: %.2f / %.2f (%.1f%%)\n", res.Score, res.MaxScore, res.Percentage)
	fmt.Fprintf(&b, "Questions: %d correct, %d wrong, %d unattempted of %d\n",
		res.Correct, res.Wrong, res.Unattempted, res.TotalQuestions)
	fmt.Fprintf(&b, "Time used: %s of %s", res.Elapsed.Round(time.Second), duration)
	if res.Reason == exam.ReasonTimeout {
		b.WriteString(" (time ran out)")
	}
	b.WriteString("\n\nSubjects:\n")
	for _, s := range res.Subjects {
		fmt.Fprintf(&b, "- %s: %.2f / %.2f (%.1f%%, %s), %d correct, %d wrong, %d unattempted\n",
			s.Subject, s.Score, s.MaxScore, s.Percentage, exam.BandFor(s.Percentage),
			s.Correct, s.Wrong, s.Unattempted)
	}

	b.WriteString(`
Instructions:
1. Summarize the performance in 2-3 sentences.
2. Give one recommendation per subject, weakest first. Use priority "high" for weak subjects, "medium" for fair and "low" for strong.
3. Wrong answers cost marks. If the wrong count is high relative to correct, advise on when to skip.
4. Comment on pacing in one sentence, using the time used and the unattempted count.
5. Plain text only. No markdown.`)

	return b.String()
}
