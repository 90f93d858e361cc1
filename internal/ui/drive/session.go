package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/hooks"
	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

var errNoRemotes = errors.New("no remotes configured, run 'syncdash rclone config' first")

// Session runs the drive menu.
type Session struct {
	Manager *rclone.Manager
	Prompt  Prompter
	Out     io.Writer

	// AfterOp runs after a successful mount, unmount or non-dry bisync.
	AfterOp func(ctx context.Context, trigger hooks.Trigger, local, remote string)
	// Menu picks the next item; nil shows the menu on the terminal.
	Menu func(h Header, message string) (Item, error)
}

func (s *Session) cfg() *config.RcloneConfig {
	return &s.Manager.Config
}

func (s *Session) printf(style func(...string) string, format string, args ...any) {
	fmt.Fprintln(s.Out, style(fmt.Sprintf(format, args...)))
}

func (s *Session) line(text string) {
	fmt.Fprintln(s.Out, "  "+text)
}

func (s *Session) afterOp(ctx context.Context, trigger hooks.Trigger, local, remote string) {
	if s.AfterOp != nil {
		s.AfterOp(ctx, trigger, local, remote)
	}
}

// Header reads the mount state of the default mountpoint.
func (s *Session) Header(ctx context.Context) Header {
	h := Header{Mountpoint: s.cfg().MountPath}
	h.Mounted, h.Info, h.Err = s.Manager.MountStatus(ctx, h.Mountpoint)
	return h
}

// Run shows the menu until the user exits.
func (s *Session) Run(ctx context.Context) error {
	menu := s.Menu
	if menu == nil {
		menu = Menu
	}

	var message string
	for {
		item, err := menu(s.Header(ctx), message)
		if err != nil {
			return err
		}
		message = ""
		if item == ItemExit {
			s.printf(styles.SuccessStyle.Render, "Goodbye!")
			return nil
		}

		err = s.Do(ctx, item)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrCancelled) {
			message = item.String() + " cancelled."
			continue
		}
		if err != nil {
			s.printf(styles.ErrorStyle.Render, "Error: %v", err)
		}
		if err := s.Prompt.Pause(); err != nil && !errors.Is(err, ErrCancelled) {
			return err
		}
	}
}

// Do runs the flow of one menu item.
func (s *Session) Do(ctx context.Context, item Item) error {
	switch item {
	case ItemConfigure:
		s.printf(styles.HeaderStyle.Render, "Opening rclone configuration...")
		return s.Manager.Configure(ctx)
	case ItemStatus:
		return s.status(ctx)
	case ItemMount:
		return s.mount(ctx)
	case ItemUnmount:
		return s.unmount(ctx)
	case ItemReset:
		return s.reset(ctx)
	case ItemCheck:
		return s.check(ctx)
	case ItemBisync:
		return s.bisync(ctx)
	case ItemEditMountPath:
		return s.editMountPath()
	case ItemViewLog:
		return s.viewLog()
	case ItemExit:
		return nil
	}
	return fmt.Errorf("invalid option %d", int(item))
}

func (s *Session) status(ctx context.Context) error {
	mountpoint, err := s.Prompt.Text("Enter mountpoint path", s.cfg().MountPath)
	if err != nil {
		return err
	}
	mounted, info, err := s.Manager.MountStatus(ctx, mountpoint)
	if err != nil {
		return err
	}
	if !mounted {
		s.printf(styles.WarningStyle.Render, "%s Not mounted", styles.CurrentSymbols().Failure)
		return nil
	}
	s.printf(styles.SuccessStyle.Render, "%s Mounted!", styles.CurrentSymbols().Success)
	s.printf(styles.InfoStyle.Render, "%s", info)
	return nil
}

// chooseRemote asks for one of the configured remotes. The configured
// default remote is preselected when it exists, the first one otherwise.
func (s *Session) chooseRemote(ctx context.Context) (string, error) {
	remotes, err := s.Manager.ListRemotes(ctx)
	if err != nil {
		return "", err
	}
	if len(remotes) == 0 {
		return "", errNoRemotes
	}
	def := max(slices.Index(remotes, strings.TrimSuffix(s.cfg().Remote, ":")), 0)
	i, err := s.Prompt.Select("Select remote", remotes, def)
	if err != nil {
		return "", err
	}
	return remotes[i], nil
}

// chooseRemotePath asks which folder of remote to mount.
func (s *Session) chooseRemotePath(ctx context.Context, remote string) (string, error) {
	root, err := s.Prompt.Confirm("Mount root folder?", true)
	if err != nil || root {
		return "", err
	}

	s.printf(styles.AccentStyle.Render, "Listing folders in %s...", remote)
	folders, err := s.Manager.ListFolders(ctx, remote, 1)
	if err != nil {
		s.printf(styles.WarningStyle.Render, "Could not list folders: %v", err)
	}
	if len(folders) == 0 {
		return s.Prompt.Text("Enter remote path (leave empty for root)", "")
	}

	options := append(slices.Clone(folders), "Enter custom path")
	i, err := s.Prompt.Select("Select folder", options, len(folders))
	if err != nil {
		return "", err
	}
	if i < len(folders) {
		return folders[i], nil
	}
	return s.Prompt.Text("Enter remote path", "")
}

func (s *Session) chooseMode() (rclone.MountMode, error) {
	def, err := rclone.ParseMountMode(s.cfg().MountMode)
	if err != nil {
		def = rclone.ModeDaemon
	}
	options := make([]string, len(rclone.MountModes))
	for i, mode := range rclone.MountModes {
		options[i] = mode.Description()
	}
	i, err := s.Prompt.Select("Mount mode", options, slices.Index(rclone.MountModes, def))
	if err != nil {
		return "", err
	}
	return rclone.MountModes[i], nil
}

func (s *Session) mount(ctx context.Context) error {
	name, err := s.chooseRemote(ctx)
	if err != nil {
		return err
	}
	path, err := s.chooseRemotePath(ctx, name)
	if err != nil {
		return err
	}
	local, err := s.Prompt.Text("Local mountpoint", s.cfg().MountPath)
	if err != nil {
		return err
	}
	mode, err := s.chooseMode()
	if err != nil {
		return err
	}
	return s.doMount(ctx, rclone.RemoteFolder(name, path), local, mode, false)
}

func (s *Session) doMount(ctx context.Context, remote, local string, mode rclone.MountMode, reset bool) error {
	local, err := config.ExpandPath(local)
	if err != nil {
		return err
	}
	s.printf(styles.InfoStyle.Render, "Mounting %s to %s...", remote, local)
	s.printf(styles.AccentStyle.Render, "Log file: %s", s.cfg().LogFile())
	s.printf(styles.AccentStyle.Render, "Mode: %s", mode.Description())

	if mode == rclone.ModeForeground {
		s.printf(styles.WarningStyle.Render, "Live rclone output follows. Press Ctrl+C to unmount and return.")
		ok, err := s.Prompt.Confirm("Start mount in foreground?", true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}

	var res rclone.MountResult
	if reset {
		res, err = s.Manager.Reset(ctx, remote, local, mode, s.line)
	} else {
		res, err = s.Manager.Mount(ctx, remote, local, mode, s.line)
	}
	if err != nil {
		s.printf(styles.WarningStyle.Render, "Check log file: %s", res.LogFile)
		return err
	}

	switch {
	case mode == rclone.ModeForeground:
		s.printf(styles.WarningStyle.Render, "Mount stopped.")
		return nil
	case res.Verified:
		s.printf(styles.SuccessStyle.Render, "%s Successfully mounted!", styles.CurrentSymbols().Success)
	default:
		s.printf(styles.WarningStyle.Render, "Mount process started but not visible yet.")
		s.printf(styles.WarningStyle.Render, "Check log file if issues occur: %s", res.LogFile)
	}
	s.afterOp(ctx, hooks.TriggerMount, res.Local, res.Remote)
	return nil
}

func (s *Session) unmount(ctx context.Context) error {
	mounts, err := s.Manager.ListMounts(ctx)
	if err != nil {
		return err
	}

	var local, remote string
	if len(mounts) == 0 {
		s.printf(styles.WarningStyle.Render, "No rclone mounts found")
	} else {
		options := make([]string, 0, len(mounts)+1)
		for _, m := range mounts {
			options = append(options, m.Mountpoint+" <- "+m.Source)
		}
		options = append(options, "Enter custom path")
		i, err := s.Prompt.Select("Select mount to unmount", options, 0)
		if err != nil {
			return err
		}
		if i < len(mounts) {
			local, remote = mounts[i].Mountpoint, mounts[i].Source
		}
	}
	if local == "" {
		if local, err = s.Prompt.Text("Enter mountpoint to unmount", s.cfg().MountPath); err != nil {
			return err
		}
		if local, err = config.ExpandPath(local); err != nil {
			return err
		}
	}

	force, err := s.Prompt.Confirm("Force unmount?", false)
	if err != nil {
		return err
	}
	if force {
		s.printf(styles.WarningStyle.Render, "Force unmounting %s...", local)
	} else {
		s.printf(styles.InfoStyle.Render, "Unmounting %s...", local)
	}

	if err := s.Manager.Unmount(ctx, local, force); err != nil {
		if errors.Is(err, rclone.ErrUnmountFailed) && !force {
			s.printf(styles.WarningStyle.Render, "Try a forced unmount (may require sudo).")
		}
		return err
	}
	s.printf(styles.SuccessStyle.Render, "%s Successfully unmounted!", styles.CurrentSymbols().Success)
	s.afterOp(ctx, hooks.TriggerUmount, local, remote)
	return nil
}

func (s *Session) reset(ctx context.Context) error {
	name, err := s.chooseRemote(ctx)
	if err != nil {
		return err
	}
	path, err := s.Prompt.Text("Enter remote path (leave empty for root)", "")
	if err != nil {
		return err
	}
	local, err := s.Prompt.Text("Local mountpoint", s.cfg().MountPath)
	if err != nil {
		return err
	}
	mode, err := rclone.ParseMountMode(s.cfg().MountMode)
	if err != nil {
		mode = rclone.ModeDaemon
	}
	s.printf(styles.HeaderStyle.Render, "Resetting mount...")
	return s.doMount(ctx, rclone.RemoteFolder(name, path), local, mode, true)
}

// askFolders reads a comma-separated folder list.
func (s *Session) askFolders() ([]string, error) {
	answer, err := s.Prompt.Text("Enter folders (comma-separated)", "")
	if err != nil {
		return nil, err
	}
	var folders []string
	for _, f := range strings.Split(answer, ",") {
		if f = strings.TrimSpace(f); f != "" {
			folders = append(folders, f)
		}
	}
	if len(folders) == 0 {
		return nil, errors.New("no folders specified")
	}
	return folders, nil
}

// askLocation reads the remote and local base path of a check or bisync.
func (s *Session) askLocation() (remote, local string, err error) {
	if remote, err = s.Prompt.Text("Enter remote:path", rclone.NormalizeRemote(s.cfg().Remote)); err != nil {
		return "", "", err
	}
	if local, err = s.Prompt.Text("Enter local base path", s.cfg().BisyncBase); err != nil {
		return "", "", err
	}
	local, err = config.ExpandPath(local)
	return remote, local, err
}

func (s *Session) check(ctx context.Context) error {
	remote, local, err := s.askLocation()
	if err != nil {
		return err
	}
	folders, err := s.askFolders()
	if err != nil {
		return err
	}

	for _, folder := range folders {
		s.printf(styles.HeaderStyle.Render, "\nChecking: %s", folder)
		res := s.Manager.Check(ctx, local, remote, []string{folder}, s.line)[0]
		switch {
		case res.Skipped:
			s.printf(styles.WarningStyle.Render, "Local folder does not exist: %s", res.LocalPath)
		case res.Err != nil:
			s.printf(styles.ErrorStyle.Render, "%s Error: %v", styles.CurrentSymbols().Failure, res.Err)
		case res.OK():
			s.printf(styles.SuccessStyle.Render, "%s No differences", styles.CurrentSymbols().Success)
		default:
			s.printf(styles.WarningStyle.Render, "%s Differences found (exit %d)", styles.CurrentSymbols().Warning, res.ExitCode)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (s *Session) bisync(ctx context.Context) error {
	remote, local, err := s.askLocation()
	if err != nil {
		return err
	}
	folders, err := s.askFolders()
	if err != nil {
		return err
	}

	dryRun, err := s.Prompt.Confirm("Dry run first?", true)
	if err != nil {
		return err
	}
	resync := false
	if !dryRun {
		if resync, err = s.Prompt.Confirm("Force resync (--resync)?", false); err != nil {
			return err
		}
	}

	var failed int
	for _, folder := range folders {
		opts := rclone.BisyncOptions{Remote: remote, LocalBase: local, Folder: folder, DryRun: dryRun, Resync: resync}
		ok, err := s.bisyncFolder(ctx, opts)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}

	if dryRun {
		s.printf(styles.WarningStyle.Render, "\nDry run completed. Run again without dry-run to apply changes.")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d folders failed", failed, len(folders))
	}
	return nil
}

// bisyncFolder syncs one folder and reports whether it succeeded. Only
// prompt errors and cancellation are returned.
func (s *Session) bisyncFolder(ctx context.Context, opts rclone.BisyncOptions) (bool, error) {
	localPath := filepath.Join(opts.LocalBase, opts.Folder)
	if _, err := os.Stat(localPath); errors.Is(err, fs.ErrNotExist) {
		s.printf(styles.WarningStyle.Render, "Local folder does not exist: %s", localPath)
		create, err := s.Prompt.Confirm("Create it?", true)
		if err != nil {
			return false, err
		}
		if !create {
			s.printf(styles.ErrorStyle.Render, "Skipping %s - local folder missing", opts.Folder)
			return false, nil
		}
		opts.CreateMissing = true
	}

	if s.Manager.NeedsResync(opts.Resync) {
		s.printf(styles.WarningStyle.Render, "Note: using --resync (first run or forced), the remote side is authoritative")
	}
	s.printf(styles.HeaderStyle.Render, "\nBisync: %s", opts.Folder)
	s.printf(styles.AccentStyle.Render, "Remote: %s", rclone.RemoteFolder(opts.Remote, opts.Folder))
	s.printf(styles.AccentStyle.Render, "Local:  %s", localPath)
	if opts.DryRun {
		s.printf(styles.WarningStyle.Render, "DRY RUN MODE - No changes will be made")
	}

	res, err := s.Manager.Bisync(ctx, opts, s.line)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	switch {
	case err != nil:
		s.printf(styles.ErrorStyle.Render, "%s Error during bisync: %v", styles.CurrentSymbols().Failure, err)
		return false, nil
	case !res.OK():
		s.printf(styles.ErrorStyle.Render, "%s Bisync failed with code %d", styles.CurrentSymbols().Failure, res.ExitCode)
		return false, nil
	}
	if res.Created {
		s.printf(styles.SuccessStyle.Render, "Created: %s", res.LocalPath)
	}
	s.printf(styles.SuccessStyle.Render, "%s Bisync completed successfully", styles.CurrentSymbols().Success)
	if !opts.DryRun {
		s.afterOp(ctx, hooks.TriggerBisync, res.LocalPath, res.RemotePath)
	}
	return true, nil
}

func (s *Session) editMountPath() error {
	s.printf(styles.AccentStyle.Render, "Current default mount: %s", s.cfg().MountPath)
	answer, err := s.Prompt.Text("Enter new default mount path", "")
	if err != nil || answer == "" {
		return err
	}
	if err := config.ValidatePath(answer, "mount path"); err != nil {
		return err
	}
	path, err := config.ExpandPath(answer)
	if err != nil {
		return err
	}
	s.cfg().SetMountPath(path)
	s.printf(styles.SuccessStyle.Render, "Default mount path updated for this session.")
	s.printf(styles.AccentStyle.Render, "Log directory: %s", s.cfg().LogDir)
	return nil
}

func (s *Session) viewLog() error {
	path := s.cfg().LogFile()
	lines, err := rclone.TailLog(path, rclone.DefaultTailLines)
	if errors.Is(err, fs.ErrNotExist) {
		s.printf(styles.WarningStyle.Render, "Log file not found: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}
	s.printf(styles.HeaderStyle.Render, "\nLast %d lines of log:", rclone.DefaultTailLines)
	for _, line := range lines {
		fmt.Fprintln(s.Out, line)
	}
	return nil
}
