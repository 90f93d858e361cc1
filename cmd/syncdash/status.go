package main

import (
	"context"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/history"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/registry"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/ui/progress"
	"github.com/syncdash/syncdash/internal/ui/static"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

type statusOptions struct {
	names  []string
	labels []string
	remote bool
	short  bool
}

func runStatus(ctx context.Context, opts statusOptions) error {
	if !opts.short {
		err := runAction(ctx, actionOptions{action: runner.ActionStatus, names: opts.names, labels: opts.labels})
		if err != nil {
			return err
		}
	}
	return printStatusTable(ctx, opts)
}

// withProgress runs scan with a progress bar on stderr when it is a
// terminal.
func withProgress[T any](ctx context.Context, label string, total int, scan func(runner.ProgressFunc) T) T {
	if log.FromContext(ctx).IsQuiet() || !isatty.IsTerminal(os.Stderr.Fd()) {
		return scan(nil)
	}
	bar := progress.NewBar(label, total)
	bar.Start()
	defer bar.Stop()
	return scan(bar.Set)
}

// withSpinner shows message on stderr while fn runs, when stderr is a
// terminal.
func withSpinner(ctx context.Context, message string, fn func() error) error {
	if log.FromContext(ctx).IsQuiet() || !isatty.IsTerminal(os.Stderr.Fd()) {
		return fn()
	}
	return progress.Run(message, fn)
}

// printStatusTable prints one row per selected repository.
func printStatusTable(ctx context.Context, opts statusOptions) error {
	out := output.FromContext(ctx)

	wd, err := requireWorkdir(ctx)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	repos, err := reg.Select(opts.names, opts.labels)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		out.Println("No repositories registered. Add one with 'syncdash repos add <url>'.")
		return nil
	}

	jobs := configFrom(ctx).StatusJobs
	local := withProgress(ctx, "Refreshing local status...", len(repos), func(p runner.ProgressFunc) []runner.LocalResult {
		return runner.ScanLocal(ctx, wd, repos, jobs, p)
	})
	var remote []runner.RemoteResult
	if opts.remote {
		remote = withProgress(ctx, "Fetching remote status...", len(repos), func(p runner.ProgressFunc) []runner.RemoteResult {
			return runner.ScanRemote(ctx, wd, repos, jobs, true, p)
		})
		markFetched(ctx, remote)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out.Print(static.RenderTable(statusHeaders(opts.remote), statusRows(ctx, repos, local, remote)))
	return nil
}

func statusHeaders(remote bool) []string {
	headers := []string{"REPOSITORY", "LOCAL STATUS"}
	if remote {
		headers = append(headers, "REMOTE STATUS")
	}
	return append(headers, "LAST FETCH")
}

func statusRows(ctx context.Context, repos []registry.Repo, local []runner.LocalResult, remote []runner.RemoteResult) [][]string {
	h := &history.History{}
	if path, err := history.Path(); err == nil {
		if loaded, err := history.Load(path); err == nil {
			h = loaded
		} else {
			log.FromContext(ctx).Debug("reading history failed", "error", err)
		}
	}

	now := time.Now()
	rows := make([][]string, len(repos))
	for i, repo := range repos {
		row := []string{repo.Name, statusCell(local[i].Err, styles.FormatLocalStatus(local[i].Status))}
		if remote != nil {
			row = append(row, statusCell(remote[i].Err, styles.FormatRemoteStatus(remote[i].Status)))
		}
		rows[i] = append(row, h.FetchedAgo(repo.Name, now))
	}
	return rows
}

func statusCell(err error, formatted string) string {
	if err != nil {
		return styles.ErrorStyle.Render("Error: " + err.Error())
	}
	return formatted
}

// markFetched records the fetch time of every repository whose fetch
// succeeded.
func markFetched(ctx context.Context, results []runner.RemoteResult) {
	var fetched []string
	for _, res := range results {
		if res.Err == nil && (res.Status.State == git.RemoteUpToDate || res.Status.State == git.RemoteToPull) {
			fetched = append(fetched, res.Repo)
		}
	}
	path, err := history.Path()
	if err != nil {
		return
	}
	if err := history.MarkFetched(path, fetched, time.Now()); err != nil {
		log.FromContext(ctx).Debug("recording fetch time failed", "error", err)
	}
}
