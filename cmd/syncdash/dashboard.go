package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/ui/dashboard"
)

// runRoot opens the dashboard on a terminal and prints the status table
// otherwise.
func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !output.FromContext(ctx).IsTerminal() {
		return printStatusTable(ctx, statusOptions{short: true})
	}
	return runDashboard(ctx)
}

func runDashboard(ctx context.Context) error {
	cfg := configFrom(ctx)

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	wd, err := configuredWorkdir(ctx)
	if err != nil {
		return err
	}
	strategy, err := runner.ParseStrategy(cfg.Strategy)
	if err != nil {
		strategy = runner.StrategyRemote
	}

	// log lines on stderr would tear the screen
	ctx = log.WithLogger(ctx, log.New(io.Discard, false, true))

	runLog := openRunLog(ctx)
	defer runLog.Close()

	return dashboard.Run(ctx, dashboard.Options{
		Repos:        reg.Sorted(),
		Workdir:      wd,
		CurrentDir:   config.WorkDirFromContext(ctx),
		UseCurrent:   useCurrent,
		Strategy:     strategy,
		Action:       runner.ActionSync,
		MaxVisible:   cfg.Dashboard.MaxVisible,
		StatusJobs:   cfg.StatusJobs,
		FetchOnStart: cfg.Dashboard.FetchOnStart,
		Watch:        cfg.Dashboard.Watch,
		NewRunner: func(workdir string) *runner.Runner {
			configureSafeDirectories(ctx, workdir)
			return newRunner(ctx, workdir, runLog)
		},
	})
}
