package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/history"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/registry"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/storage"
)

// runLogName is the journal of executed actions in ~/.syncdash.
const runLogName = "runs.log"

// configFrom returns the config stored in ctx, or the defaults.
func configFrom(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg := config.Default()
	return &cfg
}

// configuredWorkdir is --workdir when given, the configured workdir
// otherwise.
func configuredWorkdir(ctx context.Context) (string, error) {
	if workdirFlag == "" {
		return configFrom(ctx).Workdir, nil
	}
	path, err := config.ExpandPath(workdirFlag)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// resolveWorkdir picks the working directory: --current, then --workdir,
// then the configured workdir.
func resolveWorkdir(ctx context.Context) (string, error) {
	if useCurrent {
		return config.WorkDirFromContext(ctx), nil
	}
	return configuredWorkdir(ctx)
}

// requireWorkdir resolves the working directory and checks it exists.
func requireWorkdir(ctx context.Context) (string, error) {
	wd, err := resolveWorkdir(ctx)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(wd); err != nil || !info.IsDir() {
		return "", fmt.Errorf("invalid working directory: %s", wd)
	}
	return wd, nil
}

func loadRegistry() (*registry.Registry, error) {
	reg, err := registry.Load()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

// configureSafeDirectories registers wd with git's safe.directory when
// enabled. Failures only matter in verbose mode.
func configureSafeDirectories(ctx context.Context, wd string) {
	if !configFrom(ctx).SafeDirectory {
		return
	}
	l := log.FromContext(ctx)
	added, err := git.ConfigureSafeDirectories(ctx, wd)
	if err != nil {
		l.Debug("configuring safe.directory failed", "workdir", wd, "error", err)
		return
	}
	for _, entry := range added {
		l.Debug("added safe.directory", "entry", entry)
	}
}

// openRunLog opens the run journal. It returns nil when the journal is not
// writable; RunLog methods accept a nil receiver.
func openRunLog(ctx context.Context) *log.RunLog {
	path, err := storage.Path(runLogName)
	if err != nil {
		log.FromContext(ctx).Debug("run log unavailable", "error", err)
		return nil
	}
	rl, err := log.OpenRunLog(path)
	if err != nil {
		log.FromContext(ctx).Debug("run log unavailable", "error", err)
		return nil
	}
	return rl
}

// newRunner builds an action runner for wd from the global flags and the
// config in ctx.
func newRunner(ctx context.Context, wd string, runLog *log.RunLog) *runner.Runner {
	cfg := configFrom(ctx)
	resolver := config.ResolverFromContext(ctx)
	if resolver == nil {
		resolver = config.NewResolver(cfg)
	}
	r := &runner.Runner{
		Workdir:  wd,
		Jobs:     cfg.Jobs,
		Resolver: resolver,
		NoHook:   noHook,
		RunLog:   runLog,
	}
	if path, err := history.Path(); err == nil {
		r.HistoryPath = path
	}
	return r
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
