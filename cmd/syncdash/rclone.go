package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/hooks"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/ui/drive"
	"github.com/syncdash/syncdash/internal/ui/static"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

type bisyncFlags struct {
	dryRun bool
	resync bool
	create bool
}

func newDriveManager(ctx context.Context) (*rclone.Manager, error) {
	m, err := rclone.NewManager(configFrom(ctx).Rclone)
	if err != nil {
		return nil, fmt.Errorf("rclone: %w", err)
	}
	return m, nil
}

// runMountHooks runs the hooks configured for trigger in the mounted
// directory. Hook failures are printed, never returned.
func runMountHooks(ctx context.Context, trigger hooks.Trigger, local, remote string) {
	matches, err := hooks.SelectHooks(configFrom(ctx).Hooks, "", noHook, trigger)
	if err != nil || len(matches) == 0 {
		return
	}
	out := output.FromContext(ctx)
	errs := hooks.RunAllNonFatal(ctx, matches, hooks.ForMount(local, remote, trigger), local, func(line string) {
		out.Println("  " + line)
	})
	for _, err := range errs {
		log.FromContext(ctx).Debug("hook failed", "trigger", trigger, "error", err)
	}
}

func runRcloneMenu(ctx context.Context) error {
	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	s := &drive.Session{
		Manager: m,
		Prompt:  drive.TerminalPrompter{},
		Out:     output.FromContext(ctx).Writer(),
		AfterOp: runMountHooks,
	}
	err = s.Run(ctx)
	if errors.Is(err, drive.ErrCancelled) {
		return nil
	}
	return err
}

func linePrinter(ctx context.Context) func(string) {
	out := output.FromContext(ctx)
	return func(line string) { out.Println("  " + line) }
}

func mountPathOr(m *rclone.Manager, local string) (string, error) {
	if local == "" {
		return m.Config.MountPath, nil
	}
	expanded, err := config.ExpandPath(local)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

func runRcloneMount(ctx context.Context, remote, local, modeName string, reset bool) error {
	out := output.FromContext(ctx)
	sym := styles.CurrentSymbols()

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	if modeName == "" {
		modeName = m.Config.MountMode
	}
	mode, err := rclone.ParseMountMode(modeName)
	if err != nil {
		return err
	}
	local, err = mountPathOr(m, local)
	if err != nil {
		return err
	}

	out.Println(styles.InfoStyle.Render(fmt.Sprintf("Mounting %s to %s...", rclone.NormalizeRemote(remote), local)))
	out.Println(styles.AccentStyle.Render("Mode: " + mode.Description()))

	var res rclone.MountResult
	mount := func() error {
		if reset {
			res, err = m.Reset(ctx, remote, local, mode, linePrinter(ctx))
		} else {
			res, err = m.Mount(ctx, remote, local, mode, linePrinter(ctx))
		}
		return err
	}
	if mode == rclone.ModeForeground {
		err = mount()
	} else {
		err = withSpinner(ctx, "Waiting for the mount...", mount)
	}
	if err != nil {
		return fmt.Errorf("%w\ncheck log file: %s", err, res.LogFile)
	}

	switch {
	case mode == rclone.ModeForeground:
		out.Println(styles.WarningStyle.Render("Mount stopped."))
		return nil
	case res.Verified:
		out.Println(styles.SuccessStyle.Render(sym.Success + " Successfully mounted!"))
	default:
		out.Println(styles.WarningStyle.Render("Mount process started but not visible yet."))
		out.Println(styles.WarningStyle.Render("Check log file if issues occur: " + res.LogFile))
	}
	runMountHooks(ctx, hooks.TriggerMount, res.Local, res.Remote)
	return nil
}

func runRcloneUmount(ctx context.Context, local string, force bool) error {
	out := output.FromContext(ctx)

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	local, err = mountPathOr(m, local)
	if err != nil {
		return err
	}

	var remote string
	if m.Store != nil {
		if recorded, err := m.Store.Load(); err == nil {
			remote = recorded[local]
		}
	}

	out.Println(styles.InfoStyle.Render("Unmounting " + local + "..."))
	if err := m.Unmount(ctx, local, force); err != nil {
		if errors.Is(err, rclone.ErrUnmountFailed) && !force {
			return fmt.Errorf("%w\nfiles may be open below %s; retry with --force", err, local)
		}
		return err
	}
	out.Println(styles.SuccessStyle.Render(styles.CurrentSymbols().Success + " Unmounted " + local))
	runMountHooks(ctx, hooks.TriggerUmount, local, remote)
	return nil
}

func runRcloneStatus(ctx context.Context, mountpoint string) error {
	out := output.FromContext(ctx)
	sym := styles.CurrentSymbols()

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	mountpoint, err = mountPathOr(m, mountpoint)
	if err != nil {
		return err
	}
	mounted, info, err := m.MountStatus(ctx, mountpoint)
	if err != nil {
		return err
	}
	if !mounted {
		out.Println(styles.WarningStyle.Render(sym.Failure + " Not mounted: " + mountpoint))
		return nil
	}
	out.Println(styles.SuccessStyle.Render(sym.Success + " Mounted: " + mountpoint))
	out.Println(styles.InfoStyle.Render(info))
	return nil
}

func runRcloneMounts(ctx context.Context) error {
	out := output.FromContext(ctx)

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	mounts, err := m.ListMounts(ctx)
	if err != nil {
		return err
	}
	if len(mounts) == 0 {
		out.Println("No rclone mounts.")
		return nil
	}

	recorded := map[string]string{}
	if m.Store != nil {
		if loaded, err := m.Store.Load(); err == nil {
			recorded = loaded
		}
	}

	rows := make([][]string, 0, len(mounts))
	for _, e := range mounts {
		by := "-"
		if _, ok := recorded[e.Mountpoint]; ok {
			by = "syncdash"
		}
		rows = append(rows, []string{e.Source, e.Mountpoint, by})
	}
	out.Print(static.RenderTable([]string{"REMOTE", "MOUNTPOINT", "MOUNTED BY"}, rows))
	return nil
}

func runRcloneRemotes(ctx context.Context) error {
	out := output.FromContext(ctx)

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	remotes, err := m.ListRemotes(ctx)
	if err != nil {
		return err
	}
	if len(remotes) == 0 {
		out.Println("No remotes configured. Run 'syncdash rclone config' to add one.")
		return nil
	}
	for _, r := range remotes {
		out.Println(r)
	}
	return nil
}

func runRcloneFolders(ctx context.Context, remote string, depth int) error {
	out := output.FromContext(ctx)

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	var folders []string
	err = withSpinner(ctx, "Listing folders of "+remote+"...", func() error {
		folders, err = m.ListFolders(ctx, remote, depth)
		return err
	})
	if err != nil {
		return err
	}
	for _, f := range folders {
		out.Println(f)
	}
	return nil
}

func runRcloneCheck(ctx context.Context, local, remote string, folders []string) error {
	out := output.FromContext(ctx)
	sym := styles.CurrentSymbols()

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	if local, err = config.ExpandPath(local); err != nil {
		return err
	}

	var differ int
	for _, res := range m.Check(ctx, local, remote, folders, linePrinter(ctx)) {
		out.Println(styles.HeaderStyle.Render("Checking: " + res.Folder))
		switch {
		case res.Skipped:
			out.Println(styles.WarningStyle.Render("Local folder does not exist: " + res.LocalPath))
		case res.Err != nil:
			differ++
			out.Println(styles.ErrorStyle.Render(fmt.Sprintf("%s Error: %v", sym.Failure, res.Err)))
		case res.OK():
			out.Println(styles.SuccessStyle.Render(sym.Success + " No differences"))
		default:
			differ++
			out.Println(styles.WarningStyle.Render(fmt.Sprintf("%s Differences found (exit %d)", sym.Warning, res.ExitCode)))
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if differ > 0 {
		return fmt.Errorf("%d of %d folders differ", differ, len(folders))
	}
	return nil
}

func runRcloneBisync(ctx context.Context, remote, local string, folders []string, flags bisyncFlags) error {
	out := output.FromContext(ctx)
	sym := styles.CurrentSymbols()

	m, err := newDriveManager(ctx)
	if err != nil {
		return err
	}
	if local, err = config.ExpandPath(local); err != nil {
		return err
	}

	var failed int
	for _, folder := range folders {
		opts := rclone.BisyncOptions{
			Remote:        remote,
			LocalBase:     local,
			Folder:        folder,
			DryRun:        flags.dryRun,
			Resync:        flags.resync,
			CreateMissing: flags.create,
		}
		out.Println(styles.HeaderStyle.Render("Syncing: " + folder))
		res, err := m.Bisync(ctx, opts, linePrinter(ctx))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if res.Created {
			out.Println(styles.InfoStyle.Render("Created " + res.LocalPath))
		}
		if res.Resync {
			out.Println(styles.WarningStyle.Render("Ran with --resync: " + res.RemotePath + " is authoritative"))
		}
		switch {
		case errors.Is(err, rclone.ErrLocalMissing):
			failed++
			out.Println(styles.ErrorStyle.Render(fmt.Sprintf("%s %v (use --create)", sym.Failure, err)))
		case err != nil:
			failed++
			out.Println(styles.ErrorStyle.Render(fmt.Sprintf("%s %v", sym.Failure, err)))
		case !res.OK():
			failed++
			out.Println(styles.ErrorStyle.Render(fmt.Sprintf("%s bisync failed (exit %d)", sym.Failure, res.ExitCode)))
		default:
			out.Println(styles.SuccessStyle.Render(sym.Success + " Done"))
			if !flags.dryRun {
				runMountHooks(ctx, hooks.TriggerBisync, res.LocalPath, res.RemotePath)
			}
		}
	}

	if flags.dryRun {
		out.Println(styles.WarningStyle.Render("Dry run completed. Run again without --dry-run to apply changes."))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d folders failed", failed, len(folders))
	}
	return nil
}

func runRcloneLog(ctx context.Context, n int) error {
	out := output.FromContext(ctx)
	path := configFrom(ctx).Rclone.LogFile()

	lines, err := rclone.TailLog(path, n)
	if errors.Is(err, os.ErrNotExist) {
		out.Printf("No log file at %s\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	for _, line := range lines {
		out.Println(line)
	}
	return nil
}
