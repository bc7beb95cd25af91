package cmd

import (
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take <exam-id>",
	Short: "Start a mock exam straight away",
	Long: `Open the instructions screen for one exam, skipping the home menu.
Run 'pathfinder exams' to see the available exam IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}
