package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/ui/components"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <exam-id>",
	Short: "Answer a few untimed bank questions on the command line (no database)",
	Long: `Walk through questions from one subject of an exam's bank, answering each
on stdin. Nothing is timed or stored; this is for drilling a subject or
checking a custom bank before using it in an exam.`,
	Args: cobra.ExactArgs(1),
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().String("subject", "", "Subject to practise (default: the exam's first section)")
	practiceCmd.Flags().Int("count", 5, "Number of questions")
	practiceCmd.Flags().Int("skip", 0, "Skip this many questions from the start of the bank")
}

func runPractice(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	count, _ := cmd.Flags().GetInt("count")
	skip, _ := cmd.Flags().GetInt("skip")

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	cat, err := e.catalog()
	if err != nil {
		return err
	}
	bp, ok := cat.Exam(args[0])
	if !ok {
		return fmt.Errorf("unknown exam %q (run 'pathfinder exams' to list them)", args[0])
	}
	if subject == "" && len(bp.Sections) > 0 {
		subject = bp.Sections[0].Subject
	}
	b, ok := cat.Bank(bp.ID)
	if !ok {
		return fmt.Errorf("exam %s has no bank", bp.ID)
	}
	items := b.Questions(subject)
	if len(items) == 0 {
		return fmt.Errorf("no questions for subject %q in exam %s (subjects: %s)",
			subject, bp.ID, strings.Join(b.Subjects(), ", "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s · %s\n\n", bp.Name, subject)
	correct, asked := practice(cmd.InOrStdin(), out, items, skip, count)
	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, asked)
	return nil
}

// practice asks count items starting at skip, wrapping around the bank,
// and returns how many were answered correctly and how many were shown.
// Input ends early when in is closed.
func practice(in io.Reader, out io.Writer, items []exam.Item, skip, count int) (correct, asked int) {
	scanner := bufio.NewScanner(in)
	for i := range count {
		it := items[(skip+i)%len(items)]
		asked++

		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, count)
		fmt.Fprintln(out, it.Prompt)
		for j, opt := range it.Options {
			fmt.Fprintf(out, "  %s) %s\n", components.OptionLabel(j), opt)
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprint(out, "(skipped)\n\n")
			continue
		}

		picked := components.OptionIndex(strings.ToLower(answer))
		switch {
		case picked < 0 || picked >= len(it.Options):
			fmt.Fprintf(out, "Not an option. Answer: %s\n", components.OptionLabel(it.Answer))
		case picked == it.Answer:
			correct++
			fmt.Fprintln(out, "✓ Correct!")
		default:
			fmt.Fprintf(out, "✗ Wrong. Answer: %s) %s\n", components.OptionLabel(it.Answer), it.Options[it.Answer])
		}
		if it.Topic != "" {
			fmt.Fprintf(out, "Topic: %s\n", it.Topic)
		}
		fmt.Fprintln(out)
	}
	return correct, asked
}
