package main

import (
	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/rclone"
)

func newRcloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rclone",
		Short:   "Mount and sync rclone remotes",
		Aliases: []string{"drive"},
		GroupID: GroupDrive,
		Args:    cobra.NoArgs,
		Long: `Mount, unmount and bisync rclone remotes.

Without a subcommand an interactive menu opens. Mount settings (cache
mode, rate limit, log directory) come from the [rclone] section of the
config file.`,
		Example: `  syncdash rclone                                  # Interactive menu
  syncdash rclone mount Gdrive                     # Mount on the default path
  syncdash rclone umount --force
  syncdash rclone bisync Gdrive ~/Syncs Notes -n   # Dry-run bisync`,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneMenu(cmd.Context())
		},
	}

	cmd.AddCommand(newRcloneMountCmd())
	cmd.AddCommand(newRcloneUmountCmd())
	cmd.AddCommand(newRcloneResetCmd())
	cmd.AddCommand(newRcloneStatusCmd())
	cmd.AddCommand(newRcloneMountsCmd())
	cmd.AddCommand(newRcloneRemotesCmd())
	cmd.AddCommand(newRcloneFoldersCmd())
	cmd.AddCommand(newRcloneCheckCmd())
	cmd.AddCommand(newRcloneBisyncCmd())
	cmd.AddCommand(newRcloneConfigCmd())
	cmd.AddCommand(newRcloneLogCmd())

	return cmd
}

func addModeFlag(cmd *cobra.Command, mode *string) {
	cmd.Flags().StringVarP(mode, "mode", "m", "", "Mount mode: daemon, background or foreground (default from config)")
	cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(rclone.MountModes))
		for i, m := range rclone.MountModes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

func newRcloneMountCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "mount <remote> [local]",
		Short: "Mount a remote",
		Args:  cobra.RangeArgs(1, 2),
		Long: `Mount a remote on a local directory, the configured mount path by
default. Daemon and background mounts are verified against the mount
table and remembered for 'syncdash doctor'.`,
		Example: `  syncdash rclone mount Gdrive
  syncdash rclone mount Gdrive:Photos ~/Photos -m foreground`,
		Annotations:       requiresRclone(),
		ValidArgsFunction: completeFirstRemote,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneMount(cmd.Context(), args[0], optionalArg(args, 1), mode, false)
		},
	}
	addModeFlag(cmd, &mode)
	return cmd
}

func newRcloneUmountCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "umount [local]",
		Short:   "Unmount a mounted remote",
		Aliases: []string{"unmount"},
		Args:    cobra.MaximumNArgs(1),
		Long: `Unmount a remote, the configured mount path by default.

--force detaches lazily even while files are open.`,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneUmount(cmd.Context(), optionalArg(args, 0), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force a lazy unmount")
	return cmd
}

func newRcloneResetCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:               "reset <remote> [local]",
		Short:             "Force-unmount and mount again",
		Args:              cobra.RangeArgs(1, 2),
		Annotations:       requiresRclone(),
		ValidArgsFunction: completeFirstRemote,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneMount(cmd.Context(), args[0], optionalArg(args, 1), mode, true)
		},
	}
	addModeFlag(cmd, &mode)
	return cmd
}

func newRcloneStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [mountpoint]",
		Short: "Check whether a path is mounted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneStatus(cmd.Context(), optionalArg(args, 0))
		},
	}
}

func newRcloneMountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mounts",
		Short: "List mounted remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneMounts(cmd.Context())
		},
	}
}

func newRcloneRemotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "remotes",
		Short:       "List configured remotes",
		Args:        cobra.NoArgs,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneRemotes(cmd.Context())
		},
	}
}

func newRcloneFoldersCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:               "folders <remote>",
		Short:             "List the folders of a remote",
		Args:              cobra.ExactArgs(1),
		Annotations:       requiresRclone(),
		ValidArgsFunction: completeFirstRemote,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneFolders(cmd.Context(), args[0], depth)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "Directory levels to list")
	return cmd
}

func newRcloneCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <local> <remote> <folder>...",
		Short: "Compare local folders with a remote",
		Args:  cobra.MinimumNArgs(3),
		Long: `Compare each folder below <local> with the same folder on <remote>
using 'rclone check'. Missing local folders are skipped.`,
		Example:     `  syncdash rclone check ~/Syncs Gdrive Notes Photos`,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneCheck(cmd.Context(), args[0], args[1], args[2:])
		},
	}
}

func newRcloneBisyncCmd() *cobra.Command {
	var opts bisyncFlags

	cmd := &cobra.Command{
		Use:   "bisync <remote> <local> <folder>...",
		Short: "Bidirectionally sync folders with a remote",
		Args:  cobra.MinimumNArgs(3),
		Long: `Run 'rclone bisync' between each folder on <remote> and the same folder
below <local>. The first bisync of a machine runs with --resync, copying
the remote side over the local one.`,
		Example: `  syncdash rclone bisync Gdrive ~/Syncs Notes --dry-run
  syncdash rclone bisync Gdrive ~/Syncs Notes Photos --create`,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneBisync(cmd.Context(), args[0], args[1], args[2:], opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would change")
	cmd.Flags().BoolVar(&opts.resync, "resync", false, "Force --resync")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create missing local folders")
	return cmd
}

func newRcloneConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Run the interactive rclone configuration",
		Args:        cobra.NoArgs,
		Annotations: requiresRclone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newDriveManager(cmd.Context())
			if err != nil {
				return err
			}
			return m.Configure(cmd.Context())
		},
	}
}

func newRcloneLogCmd() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the end of the rclone log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRcloneLog(cmd.Context(), lines)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", rclone.DefaultTailLines, "Number of lines")
	return cmd
}

func completeFirstRemote(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return completeRemotes(cmd, args, toComplete)
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
