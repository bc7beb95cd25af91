package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attempts, best and average score per exam",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		st, err := e.openStore()
		if err != nil {
			return err
		}

		rows, err := st.ResultRepo().ListResults(cmd.Context(), store.ResultQuery{})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		printStats(cmd.OutOrStdout(), summarize(rows), time.Now())
		return nil
	},
}

// examStats aggregates every stored attempt at one exam.
type examStats struct {
	ExamID   string
	ExamName string
	Attempts int
	Timeouts int
	Best     float64 // percentage
	Average  float64 // percentage
	Latest   float64 // percentage of the most recent attempt
	LastAt   time.Time
}

// summarize groups result summaries by exam, ordered by most recent attempt.
func summarize(rows []store.ResultSummary) []examStats {
	byExam := map[string]*examStats{}
	var order []string
	for _, r := range rows {
		s, ok := byExam[r.ExamID]
		if !ok {
			s = &examStats{ExamID: r.ExamID, ExamName: r.ExamName, Best: r.Percentage}
			byExam[r.ExamID] = s
			order = append(order, r.ExamID)
		}
		s.Attempts++
		s.Average += r.Percentage
		s.Best = max(s.Best, r.Percentage)
		if r.Reason == exam.ReasonTimeout {
			s.Timeouts++
		}
		if r.CompletedAt.After(s.LastAt) {
			s.LastAt = r.CompletedAt
			s.Latest = r.Percentage
		}
	}

	out := make([]examStats, 0, len(order))
	for _, id := range order {
		s := byExam[id]
		s.Average /= float64(s.Attempts)
		out = append(out, *s)
	}
	slices.SortStableFunc(out, func(a, b examStats) int {
		return b.LastAt.Compare(a.LastAt)
	})
	return out
}

func printStats(w io.Writer, stats []examStats, now time.Time) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No results yet. Run 'pathfinder' to take a mock exam.")
		return
	}

	fmt.Fprintf(w, "%-24s  %8s  %8s  %7s  %7s  %7s  %s\n",
		"Exam", "Attempts", "Timeouts", "Best", "Average", "Latest", "Last attempt")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	var total int
	for _, s := range stats {
		fmt.Fprintf(w, "%-24s  %8d  %8d  %6.1f%%  %6.1f%%  %6.1f%%  %s\n",
			truncate(s.ExamName, 24), s.Attempts, s.Timeouts, s.Best, s.Average, s.Latest,
			humanize.RelTime(s.LastAt, now, "ago", "from now"))
		total += s.Attempts
	}
	fmt.Fprintln(w, strings.Repeat("─", 90))
	fmt.Fprintf(w, "%s across %s\n",
		humanize.Comma(int64(total))+" attempts",
		humanize.Comma(int64(len(stats)))+" exams")
}
