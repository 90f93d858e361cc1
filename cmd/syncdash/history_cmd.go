package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/history"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/ui/static"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent runs",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `Show the most recent runs, newest first.

Every git action run from the command line or the dashboard is recorded in
~/.syncdash/history.json.`,
		Example: `  syncdash history          # Last 10 runs
  syncdash history -n 0     # Every recorded run
  syncdash history --json   # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runHistory(ctx context.Context, limit int, jsonOutput bool) error {
	out := output.FromContext(ctx)

	path, err := history.Path()
	if err != nil {
		return err
	}
	h, err := history.Load(path)
	if err != nil {
		return err
	}
	runs := h.Last(limit)

	if jsonOutput {
		if runs == nil {
			runs = []history.Run{}
		}
		return out.JSON(runs)
	}

	if len(runs) == 0 {
		out.Println("No runs recorded yet.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		result := styles.SuccessStyle.Render("ok")
		if !run.OK() {
			result = styles.ErrorStyle.Render("failed")
		}
		rows = append(rows, []string{
			run.Ago(now),
			run.Summary(),
			run.Duration().Round(time.Millisecond).String(),
			result,
		})
	}
	out.Print(static.RenderTable([]string{"STARTED", "RUN", "DURATION", "RESULT"}, rows))
	return nil
}
