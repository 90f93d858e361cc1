package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
)

func newPathCmd() *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:     "path <repo>",
		Short:   "Print a repository's path for shell scripting",
		GroupID: GroupUtility,
		Args:    cobra.ExactArgs(1),
		Long: `Print the local path of a registered repository.

Use with shell command substitution: cd $(syncdash path notes)`,
		Example: `  cd $(syncdash path notes)     # cd into the notes clone
  syncdash path --copy notes    # copy the path to the clipboard`,
		ValidArgsFunction: completeFirstRepoName,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			wd, err := resolveWorkdir(ctx)
			if err != nil {
				return err
			}
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			repo, err := reg.FindByName(args[0])
			if err != nil {
				return err
			}

			path := repo.Dir(wd)
			output.FromContext(ctx).Println(path)

			if copyToClipboard {
				if err := clipboard.WriteAll(path); err != nil {
					log.FromContext(ctx).Printf("Warning: failed to copy to clipboard: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the path to the clipboard")

	return cmd
}
