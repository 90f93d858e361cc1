package main

import (
	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/runner"
)

// newActionCmds returns one command per repository action except status,
// which has its own table output.
func newActionCmds() []*cobra.Command {
	return []*cobra.Command{
		newSyncCmd(),
		newActionCmd(runner.ActionFetch, "Fetch from the remote", `Fetch every selected repository from its remote.

Missing repositories are cloned first.`, `  syncdash fetch                 # Fetch all repositories
  syncdash fetch notes website   # Fetch two repositories
  syncdash fetch -l work         # Fetch repositories labelled work`),
		newActionCmd(runner.ActionPull, "Pull with the merge strategy", `Pull every selected repository.

Uncommitted changes are committed first. Conflicts are resolved with the
merge strategy: local keeps your side (ours), remote takes theirs.`, `  syncdash pull                  # Pull all repositories
  syncdash pull --strategy local # Keep local changes on conflict`),
		newActionCmd(runner.ActionPush, "Commit and push local work", `Stage everything, commit when something is staged, and push.`, `  syncdash push                  # Push all repositories
  syncdash push notes            # Push one repository`),
		newActionCmd(runner.ActionUntracked, "List untracked files", `List untracked files, excluding ignored ones.`, `  syncdash untracked`),
		newActionCmd(runner.ActionIgnored, "List ignored files", `List files ignored by .gitignore.`, `  syncdash ignored`),
	}
}

func newSyncCmd() *cobra.Command {
	var (
		labels   []string
		strategy string
	)

	cmd := &cobra.Command{
		Use:     "sync [local|remote] [repo...]",
		Short:   "Commit, pull and push every repository",
		Aliases: []string{"s"},
		GroupID: GroupGit,
		Long: `Synchronize repositories in both directions.

For each repository: commit uncommitted work, fetch, pull with the merge
strategy and push. Missing repositories are cloned. The strategy may be
given as first argument or with --strategy; without either, each
repository uses its .syncdash.toml or the configured default.`,
		Example: `  syncdash sync                  # Sync all repositories
  syncdash sync local            # Keep local changes on conflict
  syncdash sync remote notes     # Sync one repository, remote wins
  syncdash sync -l work          # Sync repositories labelled work`,
		Annotations:       requiresGit(),
		ValidArgsFunction: completeSyncArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, positional := splitStrategyArg(args)
			if positional != "" {
				if cmd.Flags().Changed("strategy") && positional != strategy {
					return errStrategyConflict
				}
				strategy = positional
			}
			return runAction(cmd.Context(), actionOptions{
				action:   runner.ActionSync,
				names:    names,
				labels:   labels,
				strategy: strategy,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Select repositories by label")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Merge strategy on conflict: local or remote")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)
	cmd.RegisterFlagCompletionFunc("strategy", completeStrategies)

	return cmd
}

func newActionCmd(action runner.Action, short, long, example string) *cobra.Command {
	var (
		labels   []string
		strategy string
	)

	cmd := &cobra.Command{
		Use:               action.String() + " [repo...]",
		Short:             short,
		GroupID:           GroupGit,
		Long:              long,
		Example:           example,
		Annotations:       requiresGit(),
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd.Context(), actionOptions{
				action:   action,
				names:    args,
				labels:   labels,
				strategy: strategy,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Select repositories by label")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)
	if action == runner.ActionPull {
		cmd.Flags().StringVar(&strategy, "strategy", "", "Merge strategy on conflict: local or remote")
		cmd.RegisterFlagCompletionFunc("strategy", completeStrategies)
	}

	return cmd
}

func completeSyncArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names, directive := completeRepoNames(cmd, args, toComplete)
	if len(args) == 0 {
		names = append(matchNames([]string{"local", "remote"}, toComplete, nil), names...)
	}
	return names, directive
}
