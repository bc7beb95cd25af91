package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/exam"
	"github.com/pathfinderai/pathfinder/internal/export"
	"github.com/pathfinderai/pathfinder/internal/store"
	"github.com/pathfinderai/pathfinder/internal/ui/layout"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and export stored exam results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		examID, _ := cmd.Flags().GetString("exam")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		st, err := e.openStore()
		if err != nil {
			return err
		}

		rows, err := st.ResultRepo().ListResults(cmd.Context(), store.ResultQuery{ExamID: examID, Limit: limit})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		printResultList(cmd.OutOrStdout(), rows, time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one result with its subject breakdown and event trail",
	Args:  cobra.ExactArgs(1),
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

		ctx := cmd.Context()
		res, err := st.ResultRepo().GetResult(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get result: %w", err)
		}
		if res == nil {
			return fmt.Errorf("result %s not found", args[0])
		}
		events, err := st.EventRepo().QuerySessionEvents(ctx, res.SessionID)
		if err != nil {
			return fmt.Errorf("query session events: %w", err)
		}
		printResult(cmd.OutOrStdout(), res, events)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export results as CSV, JSON or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		examID, _ := cmd.Flags().GetString("exam")
		limit, _ := cmd.Flags().GetInt("limit")
		formatVal, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		format, err := export.ParseFormat(formatVal)
		if err != nil {
			return err
		}
		if format == export.XLSX && outPath == "" {
			return fmt.Errorf("xlsx export needs --output")
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		st, err := e.openStore()
		if err != nil {
			return err
		}

		results, err := loadResults(cmd.Context(), st.ResultRepo(), store.ResultQuery{ExamID: examID, Limit: limit})
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}
		if err := export.Write(w, format, results); err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}

		e.log.Info().Str("format", string(format)).Int("results", len(results)).Str("output", outPath).Msg("results exported")
		if outPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d results to %s\n", len(results), outPath)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete one stored result",
	Args:  cobra.ExactArgs(1),
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

		repo := st.ResultRepo()
		res, err := repo.GetResult(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get result: %w", err)
		}
		if res == nil {
			return fmt.Errorf("result %s not found", args[0])
		}
		if err := repo.DeleteResult(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete result: %w", err)
		}
		e.log.Info().Str("session", args[0]).Msg("result deleted")
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s result %s\n", res.ExamName, args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().StringP("exam", "e", "", "Only results for this exam ID")
	}
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	historyExportCmd.Flags().IntP("limit", "n", 0, "Number of results to export (0 = all)")
	historyExportCmd.Flags().StringP("format", "f", "csv", "Output format: csv, json or xlsx")
	historyExportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

// loadResults expands summaries into full results, newest first.
func loadResults(ctx context.Context, repo store.ResultRepo, q store.ResultQuery) ([]*exam.Result, error) {
	rows, err := repo.ListResults(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]*exam.Result, 0, len(rows))
	for _, r := range rows {
		res, err := repo.GetResult(ctx, r.SessionID)
		if err != nil {
			return nil, fmt.Errorf("get result %s: %w", r.SessionID, err)
		}
		if res != nil {
			out = append(out, res)
		}
	}
	return out, nil
}

func printResultList(w io.Writer, rows []store.ResultSummary, now time.Time) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-14s  %15s  %7s  %8s  %-9s  %s\n",
		"Session", "Exam", "Score", "%", "Time", "Ended", "When")
	fmt.Fprintln(w, strings.Repeat("─", 112))
	for _, r := range rows {
		ended := "submitted"
		if r.Reason == exam.ReasonTimeout {
			ended = "timeout"
		}
		fmt.Fprintf(w, "%-36s  %-14s  %15s  %6.1f%%  %8s  %-9s  %s\n",
			r.SessionID, truncate(r.ExamID, 14),
			fmt.Sprintf("%.2f/%.2f", r.Score, r.MaxScore), r.Percentage,
			layout.FormatCountdown(r.Elapsed), ended,
			humanize.RelTime(r.CompletedAt, now, "ago", "from now"))
	}
}

func printResult(w io.Writer, res *exam.Result, events []store.SessionEventRecord) {
	sep := strings.Repeat("─", 72)

	fmt.Fprintf(w, "Session:   %s\n", res.SessionID)
	fmt.Fprintf(w, "Exam:      %s (%s)\n", res.ExamName, res.ExamID)
	fmt.Fprintf(w, "Completed: %s (%s)\n", res.CompletedAt.Local().Format("2006-01-02 15:04:05"), res.Reason)
	fmt.Fprintf(w, "Elapsed:   %s\n", layout.FormatCountdown(res.Elapsed))
	fmt.Fprintf(w, "Score:     %.2f / %.2f  (%.1f%%, %s)\n", res.Score, res.MaxScore, res.Percentage, exam.BandFor(res.Percentage))
	if res.RawScore != res.Score {
		fmt.Fprintf(w, "Raw score: %.2f\n", res.RawScore)
	}
	fmt.Fprintf(w, "Answers:   %d correct, %d wrong, %d unattempted of %d\n",
		res.Correct, res.Wrong, res.Unattempted, res.TotalQuestions)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-28s  %5s  %5s  %5s  %5s  %15s  %7s\n",
		"Subject", "Quota", "Att", "OK", "Wrong", "Score", "%")
	fmt.Fprintln(w, sep)
	for _, s := range res.Subjects {
		score := fmt.Sprintf("%.2f/%.2f", s.Score, s.MaxScore)
		if s.RawScore < 0 {
			score = fmt.Sprintf("(%.2f) ", s.RawScore) + score
		}
		fmt.Fprintf(w, "%-28s  %5d  %5d  %5d  %5d  %15s  %6.1f%%\n",
			truncate(s.Subject, 28), s.Quota, s.Attempted, s.Correct, s.Wrong, score, s.Percentage)
	}

	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Events")
	fmt.Fprintln(w, sep)
	for _, ev := range events {
		fmt.Fprintf(w, "%6d  %s  %-10s  %s → %s\n",
			ev.Sequence, ev.At.Local().Format("15:04:05"), ev.Kind, ev.From, ev.To)
	}
}
