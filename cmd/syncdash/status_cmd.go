package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:     "status [repo...]",
		Short:   "Show repository status",
		Aliases: []string{"st"},
		GroupID: GroupGit,
		Long: `Show the working tree and upstream state of every repository.

Prints a per-repository report followed by a status table. With --remote
each repository is fetched first and the table gains a REMOTE column.
Missing repositories are reported, never cloned.`,
		Example: `  syncdash status                # Report and table
  syncdash status --short        # Table only
  syncdash status -r             # Fetch and show remote status
  syncdash -c status             # Repositories below the current directory`,
		Annotations:       requiresGit(),
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.names = args
			return runStatus(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.labels, "label", "l", nil, "Select repositories by label")
	cmd.Flags().BoolVarP(&opts.remote, "remote", "r", false, "Fetch and show remote status")
	cmd.Flags().BoolVarP(&opts.short, "short", "s", false, "Print the status table only")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}
