package main

import (
	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/doctor"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/registry"
)

func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose and repair issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose and repair configuration, repository and mount issues.

Checks:
- git and rclone are installed, and an unmount tool for this platform
- The config file parses and the working directory exists
- Registered repositories are cloned, point at the registered URL and
  track an upstream branch
- Recorded rclone mounts are still mounted

With --fix, missing repositories are cloned and stale mount records are
forgotten.`,
		Example: `  syncdash doctor          # Check for issues
  syncdash doctor --fix    # Repair what can be repaired`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			cfg := *configFrom(ctx)
			if wd, err := resolveWorkdir(ctx); err == nil {
				cfg.Workdir = wd
			}

			reg, err := registry.Load()
			if err != nil {
				l.Printf("Warning: %v\n", err)
				reg = nil
			}

			mounts, err := rclone.NewManager(cfg.Rclone)
			if err != nil {
				l.Debug("mount checks disabled", "error", err)
				mounts = nil
			}

			return doctor.Run(ctx, doctor.Options{
				Config:    &cfg,
				ConfigErr: configErr,
				Registry:  reg,
				Mounts:    mounts,
				Fix:       fix,
				Out:       output.FromContext(ctx).Writer(),
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair issues where possible")

	return cmd
}
