package main

import (
	"github.com/spf13/cobra"
)

func newReposCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repos",
		Short:   "Manage the repository registry",
		Aliases: []string{"r"},
		GroupID: GroupRegistry,
		Long: `Manage the registered repositories.

The registry lives in ~/.syncdash/repos.json. Each repository is cloned
into <workdir>/<name> the first time an action reaches it.
Without a subcommand the registered repositories are listed.`,
		Example: `  syncdash repos                            # List repositories
  syncdash repos add git@github.com:me/notes.git -l private
  syncdash repos label add notes work
  syncdash repos import                     # Register clones in the workdir`,
		Args: cobra.NoArgs,
	}

	list := newReposListCmd()
	cmd.Flags().AddFlagSet(list.Flags())
	cmd.RunE = list.RunE

	cmd.AddCommand(list)
	cmd.AddCommand(newReposAddCmd())
	cmd.AddCommand(newReposRemoveCmd())
	cmd.AddCommand(newReposLabelCmd())
	cmd.AddCommand(newReposInitCmd())
	cmd.AddCommand(newReposImportCmd())

	return cmd
}

func newReposListCmd() *cobra.Command {
	var (
		labels     []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered repositories",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Example: `  syncdash repos list              # All repositories
  syncdash repos list -l private   # Filter by label
  syncdash repos list --json       # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposList(cmd.Context(), labels, jsonOutput)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Filter by label")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}

func newReposAddCmd() *cobra.Command {
	var labels []string

	cmd := &cobra.Command{
		Use:   "add <url> [name]",
		Short: "Register a repository",
		Args:  cobra.RangeArgs(1, 2),
		Long: `Register a repository by clone URL.

The name defaults to the last path element of the URL without .git.
Nothing is cloned until the next action reaches the repository.`,
		Example: `  syncdash repos add https://github.com/me/dotfiles.git
  syncdash repos add git@github.com:me/notes.git journal -l private`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			return runReposAdd(cmd.Context(), args[0], name, labels)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Labels for the repository")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}

func newReposRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Short:   "Unregister repositories",
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		Long: `Unregister repositories.

The clone under the working directory is left in place.`,
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposRemove(cmd.Context(), args)
		},
	}
}

func newReposLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage repository labels",
		Long: `Manage labels on repositories.

Labels select repositories with -l on git commands and in the dashboard.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "add <name> <label>",
		Short:             "Add a label to a repository",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRepoThenLabel,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposLabel(cmd.Context(), args[0], args[1], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "remove <name> <label>",
		Short:             "Remove a label from a repository",
		Aliases:           []string{"rm"},
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRepoThenLabel,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposLabel(cmd.Context(), args[0], args[1], false)
		},
	})

	return cmd
}

func newReposInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Register the example repositories",
		Args:  cobra.NoArgs,
		Long: `Register a small set of example repositories labelled public and
private. Repositories that are already registered are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposInit(cmd.Context())
		},
	}
}

func newReposImportCmd() *cobra.Command {
	var labels []string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Register clones found in the working directory",
		Args:  cobra.NoArgs,
		Long: `Register every git repository directly below the working directory
that has an origin remote and is not registered yet.`,
		Example: `  syncdash repos import
  syncdash -w ~/src repos import -l work`,
		Annotations: requiresGit(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposImport(cmd.Context(), labels)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Labels for imported repositories")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}
