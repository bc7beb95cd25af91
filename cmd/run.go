package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/app"
	"github.com/pathfinderai/pathfinder/internal/llm"
	"github.com/pathfinderai/pathfinder/internal/review"
	"github.com/pathfinderai/pathfinder/internal/screens/deps"
)

// runApp opens the store, builds dependencies, and launches the TUI. A
// non-empty examID opens that exam straight away.
func runApp(cmd *cobra.Command, examID string) error {
	ctx := cmd.Context()

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	cat, err := e.catalog()
	if err != nil {
		return err
	}
	if examID != "" {
		if _, ok := cat.Exam(examID); !ok {
			return fmt.Errorf("unknown exam %q (run 'pathfinder exams' to list them)", examID)
		}
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}

	events := st.EventRepo()
	d := deps.Deps{
		Catalog: cat,
		Results: st.ResultRepo(),
		Events:  events,
		Log:     e.log,
	}

	provider, err := llm.NewProvider(ctx, e.cfg.LLM, events, e.log.With().Str("component", "llm").Logger())
	switch {
	case errors.Is(err, llm.ErrDisabled):
		e.log.Info().Msg("no LLM provider configured, study plans disabled")
	case err != nil:
		cmd.PrintErrln("LLM provider unavailable:", err)
		cmd.PrintErrln("Study plans will be unavailable.")
		e.log.Warn().Err(err).Msg("llm provider")
	default:
		d.Reviewer = review.NewService(provider, review.DefaultConfig())
		e.log.Info().Str("provider", e.cfg.LLM.Provider).Str("model", provider.ModelID()).Msg("llm provider ready")
	}

	return app.Run(ctx, app.Options{Deps: d, StartExam: examID})
}
