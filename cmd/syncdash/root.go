package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

var (
	// Global flags
	verbose     bool
	quiet       bool
	workdirFlag string
	useCurrent  bool
	noHook      bool

	// configErr is the error of loading the config file, reported by doctor
	configErr error
)

// Command group IDs for organizing help output
const (
	GroupGit      = "git"
	GroupRegistry = "registry"
	GroupDrive    = "drive"
	GroupUtility  = "utility"
	GroupConfig   = "config"
)

// requiresKey marks commands that need an external tool on PATH.
const requiresKey = "requires"

func requiresGit() map[string]string    { return map[string]string{requiresKey: "git"} }
func requiresRclone() map[string]string { return map[string]string{requiresKey: "rclone"} }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "syncdash",
	Short: "Dashboard for syncing git repositories and rclone drives",
	Long: `syncdash keeps a fleet of git repositories and rclone mounts in sync.

Without a command it opens the repository dashboard when run in a terminal,
and prints the local status table otherwise.`,
	Example: `  syncdash                        # Open the dashboard
  syncdash -c                     # Dashboard on the current directory
  syncdash status                 # Status report of all repositories
  syncdash sync local notes       # Sync one repository, keeping local changes
  syncdash rclone                 # Open the rclone menu`,
	Args:                       cobra.NoArgs,
	Annotations:                requiresGit(),
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip checks for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		if useCurrent && workdirFlag != "" {
			return fmt.Errorf("--workdir and --current are mutually exclusive")
		}

		// flags are parsed now, so the logger can honour them
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet)))

		switch cmd.Annotations[requiresKey] {
		case "git":
			return git.CheckGit()
		case "rclone":
			return rclone.CheckInstalled()
		}
		return nil
	},
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		configErr = err
	}
	cfg := &loadedCfg
	styles.Init(cfg.Theme)

	// Get working directory
	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "syncdash: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithConfig(ctx, cfg)
	ctx = config.WithWorkDir(ctx, workDir)
	ctx = config.WithResolver(ctx, config.NewResolver(cfg))
	ctx = git.WithCommandTimeout(ctx, cfg.GitTimeout)
	ctx = log.WithLogger(ctx, log.New(os.Stderr, false, false))

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'syncdash -h' for help")
		cancel()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&workdirFlag, "workdir", "w", "", "Working directory holding the repositories (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&useCurrent, "current", "c", false, "Use the current directory as working directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&noHook, "no-hook", false, "Skip configured hooks")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("workdir", "current")
	rootCmd.MarkPersistentFlagDirname("workdir")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGit, Title: "Git Commands:"},
		&cobra.Group{ID: GroupRegistry, Title: "Registry Commands:"},
		&cobra.Group{ID: GroupDrive, Title: "Drive Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Git commands
	for _, cmd := range newActionCmds() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newStatusCmd())

	// Registry commands
	rootCmd.AddCommand(newReposCmd())
	rootCmd.AddCommand(newPathCmd())

	// Drive commands
	rootCmd.AddCommand(newRcloneCmd())

	// Utility commands
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newHistoryCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newDoctorCmd())
}
