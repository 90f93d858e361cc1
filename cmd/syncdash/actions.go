package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

var errStrategyConflict = errors.New("strategy given both as argument and with --strategy")

// actionOptions selects what runAction does.
type actionOptions struct {
	action   runner.Action
	names    []string
	labels   []string
	strategy string // empty defers to per-repository and global config
}

// splitStrategyArg separates a leading "local" or "remote" from the
// repository names of `sync`.
func splitStrategyArg(args []string) (names []string, strategy string) {
	if len(args) > 0 && (args[0] == "local" || args[0] == "remote") {
		return args[1:], args[0]
	}
	return args, ""
}

// actionTitle is the line printed before an action starts.
func actionTitle(a runner.Action, s runner.Strategy, explicit bool) string {
	switch a {
	case runner.ActionSync:
		if explicit {
			return fmt.Sprintf("Starting Bidirectional Sync (Strategy: %s)", s.GitOption())
		}
		return "Starting Bidirectional Sync"
	case runner.ActionFetch:
		return "Fetching"
	case runner.ActionPull:
		return "Starting Pull"
	case runner.ActionPush:
		return "Starting Push"
	case runner.ActionStatus:
		return "Checking Status"
	case runner.ActionUntracked:
		return "Listing Untracked Files"
	case runner.ActionIgnored:
		return "Listing Ignored Files"
	}
	return a.String()
}

// buildRequest turns the options into a runner request. The configured
// strategy is the fallback; a strategy given on the command line wins over
// every .syncdash.toml.
func buildRequest(ctx context.Context, opts actionOptions) (runner.Request, error) {
	req := runner.Request{Action: opts.action, Strategy: runner.StrategyRemote}
	if s, err := runner.ParseStrategy(configFrom(ctx).Strategy); err == nil {
		req.Strategy = s
	}
	if opts.strategy != "" {
		s, err := runner.ParseStrategy(opts.strategy)
		if err != nil {
			return req, err
		}
		req.Strategy = s
		req.StrategySet = true
	}
	return req, nil
}

// runAction applies an action to the selected repositories, printing each
// repository's events as one block.
func runAction(ctx context.Context, opts actionOptions) error {
	out := output.FromContext(ctx)

	req, err := buildRequest(ctx, opts)
	if err != nil {
		return err
	}
	wd, err := requireWorkdir(ctx)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if req.Repos, err = reg.Select(opts.names, opts.labels); err != nil {
		return err
	}
	if len(req.Repos) == 0 {
		out.Println("No repositories selected. Nothing to do.")
		return nil
	}

	configureSafeDirectories(ctx, wd)
	runLog := openRunLog(ctx)
	defer runLog.Close()

	out.Println(styles.AccentStyle.Render(actionTitle(req.Action, req.Strategy, req.StrategySet)))
	out.Println(styles.MutedStyle.Render("Working directory: " + wd))

	res, err := newRunner(ctx, wd, runLog).Run(ctx, req, func(ev runner.Event) {
		if ev.Level == runner.LevelHeader {
			out.Println()
		}
		out.Println(styles.FormatEvent(ev))
	})
	out.Println()
	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}

	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d repositories failed: %s", len(failed), len(req.Repos), strings.Join(failed, ", "))
	}
	out.Println(styles.SuccessStyle.Render("All tasks complete!"))
	return nil
}
