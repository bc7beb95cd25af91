package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored results",
	Long: `Delete every stored result, or only those for one exam with --exam.
Session events and LLM request logs are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		examID, _ := cmd.Flags().GetString("exam")
		yes, _ := cmd.Flags().GetBool("yes")

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
		rows, err := repo.ListResults(cmd.Context(), store.ResultQuery{ExamID: examID})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete.")
			return nil
		}
		if !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "This would delete %d results. Re-run with --yes to confirm.\n", len(rows))
			return nil
		}

		for _, r := range rows {
			if err := repo.DeleteResult(cmd.Context(), r.SessionID); err != nil {
				return fmt.Errorf("delete result %s: %w", r.SessionID, err)
			}
		}
		e.log.Info().Str("exam", examID).Int("deleted", len(rows)).Msg("results reset")
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d results.\n", len(rows))
		return nil
	},
}

func init() {
	resetCmd.Flags().StringP("exam", "e", "", "Only delete results for this exam ID")
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
