package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/hooks"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
)

func newHookCmd() *cobra.Command {
	var (
		env    []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:               "hook <name> [repo]",
		Short:             "Run a configured hook",
		GroupID:           GroupUtility,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeHookNames,
		Long: `Run a configured hook by name, regardless of its "on" triggers.

Hooks are defined in config.toml and .syncdash.toml and can use
placeholders such as {path}, {repo} and {remote}. With a repository the hook
runs in its clone; otherwise in the current directory.`,
		Example: `  syncdash hook notify               # Run in the current directory
  syncdash hook notify notes         # Run in the notes clone
  syncdash hook notify -a msg=hello  # Set {msg}
  syncdash hook notify -d            # Print the command without running it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hookEnv, err := hooks.ParseEnvWithStdin(env)
			if err != nil {
				return err
			}
			repo := ""
			if len(args) > 1 {
				repo = args[1]
			}
			return runHook(cmd.Context(), args[0], repo, hookEnv, dryRun)
		},
	}

	cmd.Flags().StringSliceVarP(&env, "arg", "a", nil, "Set hook variable KEY=VALUE")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Print command without executing")
	cmd.RegisterFlagCompletionFunc("arg", cobra.NoFileCompletions)

	return cmd
}

func runHook(ctx context.Context, name, repoName string, env map[string]string, dryRun bool) error {
	l := log.FromContext(ctx)

	hctx := hooks.Context{Path: config.WorkDirFromContext(ctx), Trigger: hooks.TriggerManual, Env: env}
	if repoName != "" {
		wd, err := resolveWorkdir(ctx)
		if err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		repo, err := reg.FindByName(repoName)
		if err != nil {
			return err
		}
		path := repo.Dir(wd)
		if !git.IsRepo(path) {
			return fmt.Errorf("%s is not cloned yet: %s", repo.Name, path)
		}
		hctx = hooks.ForRepo(path, repo.Name, "", "", repo.URL, hooks.TriggerManual, env)
	} else {
		hctx = hooks.ForRepo(hctx.Path, "", "", "", "", hooks.TriggerManual, env)
	}
	hctx.DryRun = dryRun

	cfg := configFrom(ctx)
	if resolver := config.ResolverFromContext(ctx); resolver != nil && git.IsRepo(hctx.Path) {
		effective, err := resolver.ForRepo(hctx.Path)
		if err != nil {
			l.Printf("Warning: failed to load %s: %v\n", config.LocalConfigFileName, err)
		} else {
			cfg = effective
		}
	}

	hook, ok := cfg.Hooks.Hooks[name]
	if !ok {
		available := slices.Sorted(maps.Keys(cfg.Hooks.Hooks))
		if len(available) == 0 {
			return fmt.Errorf("unknown hook %q (no hooks configured)", name)
		}
		return fmt.Errorf("unknown hook %q (available: %s)", name, strings.Join(available, ", "))
	}

	l.Debug("running hook", "hook", name, "path", hctx.Path, "dryRun", dryRun)
	return hooks.RunSingle(ctx, name, &hook, hctx, output.FromContext(ctx).Writer())
}
