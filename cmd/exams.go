package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/bank"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List the available exams and their marking schemes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cat, err := e.catalog()
		if err != nil {
			return err
		}
		sections, _ := cmd.Flags().GetBool("sections")
		printExams(cmd.OutOrStdout(), cat, sections)
		return nil
	},
}

func init() {
	examsCmd.Flags().BoolP("sections", "s", false, "Show each exam's sections")
}

func printExams(w io.Writer, cat *bank.Catalog, sections bool) {
	fmt.Fprintf(w, "%-14s  %-28s  %9s  %7s  %8s\n", "ID", "Name", "Questions", "Marks", "Duration")
	fmt.Fprintln(w, strings.Repeat("─", 74))

	exams := cat.Exams()
	for _, bp := range exams {
		fmt.Fprintf(w, "%-14s  %-28s  %9d  %7s  %8s\n",
			bp.ID, truncate(bp.Name, 28), bp.TotalQuestions(),
			formatMarks(bp.TotalMaxMarks()), layout.FormatCountdown(bp.Duration))
		if !sections {
			continue
		}
		for _, s := range bp.Sections {
			fmt.Fprintf(w, "    %-34s  %4d × +%s / −%s\n",
				truncate(s.Subject, 34), s.Quota, formatMarks(s.MarksCorrect), formatMarks(s.MarksWrong))
		}
	}

	fmt.Fprintf(w, "\n%d exams\n", len(exams))
}

// formatMarks prints whole marks without decimals.
func formatMarks(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
