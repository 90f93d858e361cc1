package rclone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MountMode selects how the rclone mount process runs.
type MountMode string

const (
	// ModeDaemon lets rclone daemonize itself with --daemon.
	ModeDaemon MountMode = "daemon"
	// ModeBackground starts rclone detached from the terminal.
	ModeBackground MountMode = "background"
	// ModeForeground keeps rclone attached until it is interrupted.
	ModeForeground MountMode = "foreground"
)

// MountModes lists the modes in menu order.
var MountModes = []MountMode{ModeDaemon, ModeBackground, ModeForeground}

// ParseMountMode accepts a mode name. "silent" and "verbose" are accepted
// as aliases of background and foreground.
func ParseMountMode(s string) (MountMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daemon", "":
		return ModeDaemon, nil
	case "background", "silent":
		return ModeBackground, nil
	case "foreground", "verbose":
		return ModeForeground, nil
	}
	return "", fmt.Errorf("invalid mount mode %q (expected daemon, background or foreground)", s)
}

// Description is the menu label of the mode.
func (m MountMode) Description() string {
	switch m {
	case ModeBackground:
		return "Background (detached, logs to file)"
	case ModeForeground:
		return "Foreground (attached, Ctrl+C to unmount)"
	default:
		return "Daemon (rclone --daemon)"
	}
}

// MountArgs returns the rclone arguments that mount remote on local.
func (m *Manager) MountArgs(remote, local string, mode MountMode) []string {
	c := m.Config
	args := []string{"mount", NormalizeRemote(remote), local}
	flag := func(name, value string) {
		if value != "" {
			args = append(args, name, value)
		}
	}
	flag("--vfs-cache-mode", c.VFSCacheMode)
	if c.TPSLimit > 0 {
		flag("--tpslimit", strconv.Itoa(c.TPSLimit))
	}
	flag("--vfs-cache-max-age", c.VFSCacheMaxAge)
	flag("--vfs-cache-max-size", c.VFSCacheMaxSize)
	flag("--vfs-read-chunk-size", c.VFSReadChunkSize)
	flag("--vfs-read-chunk-size-limit", "off")
	flag("--dir-cache-time", c.DirCacheTime)
	if c.SkipGdocs {
		args = append(args, "--drive-skip-gdocs")
	}
	args = append(args, "--log-level", "INFO", "--log-file", c.LogFile())
	args = append(args, c.ExtraFlags...)
	if mode == ModeDaemon {
		args = append(args, "--daemon")
	}
	return args
}

// MountResult describes a started mount.
type MountResult struct {
	Remote   string
	Local    string
	Mode     MountMode
	LogFile  string
	Verified bool // the mountpoint showed up in the mount table
}

// Mount mounts remote on local. In daemon and background mode it waits
// MountSettle, checks the mount table and records the mount whether or not
// it could be verified. In foreground mode it blocks until rclone exits and
// records nothing.
func (m *Manager) Mount(ctx context.Context, remote, local string, mode MountMode, onLine func(string)) (MountResult, error) {
	local = mountpoint(local)
	res := MountResult{Remote: NormalizeRemote(remote), Local: local, Mode: mode, LogFile: m.Config.LogFile()}

	for _, dir := range []string{m.Config.LogDir, local} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	args := m.MountArgs(remote, local, mode)
	switch mode {
	case ModeForeground:
		return res, m.runner().Attach(ctx, "rclone", args...)
	case ModeBackground:
		if err := m.runner().Start("rclone", args...); err != nil {
			return res, fmt.Errorf("starting rclone mount: %w", err)
		}
	default:
		out, err := m.runner().Run(ctx, onLine, "rclone", args...)
		if err != nil {
			return res, fmt.Errorf("rclone mount: %w", err)
		}
		if !out.OK() {
			return res, fmt.Errorf("rclone mount failed (exit %d): %s", out.ExitCode, strings.TrimSpace(out.Output))
		}
	}

	m.sleep(ctx, m.Config.MountSettle)
	mounted, _, err := m.MountStatus(ctx, local)
	if err != nil {
		return res, err
	}
	res.Verified = mounted

	if m.Store != nil {
		if err := m.Store.Record(local, res.Remote); err != nil {
			return res, fmt.Errorf("recording mount: %w", err)
		}
	}
	return res, nil
}

// UnmountCommand returns the command that unmounts a FUSE mount on goos.
func UnmountCommand(goos, local string, force bool) (string, []string) {
	if goos == "darwin" {
		if force {
			return "umount", []string{"-f", local}
		}
		return "umount", []string{local}
	}
	if force {
		return "fusermount", []string{"-uz", local}
	}
	return "fusermount", []string{"-u", local}
}

// ErrUnmountFailed is returned when the unmount command exits non-zero.
var ErrUnmountFailed = errors.New("unmount failed")

// Unmount unmounts local and forgets it in the store. A forced unmount
// detaches lazily even while files are open.
func (m *Manager) Unmount(ctx context.Context, local string, force bool) error {
	local = mountpoint(local)
	name, args := UnmountCommand(m.goos(), local, force)
	res, err := m.runner().Run(ctx, nil, name, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !res.OK() {
		return fmt.Errorf("%w: %s", ErrUnmountFailed, strings.TrimSpace(res.Output))
	}
	if m.Store != nil {
		return m.Store.Forget(local)
	}
	return nil
}

// Reset force-unmounts local, ignoring errors, and mounts remote again.
func (m *Manager) Reset(ctx context.Context, remote, local string, mode MountMode, onLine func(string)) (MountResult, error) {
	_ = m.Unmount(ctx, local, true)
	return m.Mount(ctx, remote, local, mode, onLine)
}

// mountpoint makes local absolute, the form the mount table and the store
// use.
func mountpoint(local string) string {
	abs, err := filepath.Abs(local)
	if err != nil {
		return filepath.Clean(local)
	}
	return abs
}

// MountEntry is one line of the system mount table.
type MountEntry struct {
	Source     string // e.g. "Gdrive:"
	Mountpoint string
	Line       string
}

// MountStatus reports whether point is mounted, with the mount table
// line describing it.
func (m *Manager) MountStatus(ctx context.Context, point string) (bool, string, error) {
	entries, err := m.mountTable(ctx)
	if err != nil {
		return false, "", err
	}
	point = mountpoint(point)
	for _, e := range entries {
		if e.Mountpoint == point {
			return true, e.Line, nil
		}
	}
	return false, "", nil
}

// ListMounts returns the mounted rclone remotes.
func (m *Manager) ListMounts(ctx context.Context) ([]MountEntry, error) {
	entries, err := m.mountTable(ctx)
	if err != nil {
		return nil, err
	}
	var mounts []MountEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Line), "rclone") || strings.Contains(e.Source, ":") {
			mounts = append(mounts, e)
		}
	}
	return mounts, nil
}

func (m *Manager) mountTable(ctx context.Context) ([]MountEntry, error) {
	out, err := m.runner().Output(ctx, "mount")
	if err != nil {
		return nil, fmt.Errorf("reading mount table: %w", err)
	}
	return ParseMountTable(string(out)), nil
}

// ParseMountTable parses the output of mount(8), whose lines look like
// "Gdrive: on /home/me/Gdrive type fuse.rclone (rw,...)" on Linux and
// "Gdrive: on /Users/me/Gdrive (macfuse, ...)" on macOS.
func ParseMountTable(out string) []MountEntry {
	var entries []MountEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		source, rest, ok := strings.Cut(line, " on ")
		if !ok {
			continue
		}
		point := rest
		if i := strings.Index(rest, " type "); i >= 0 {
			point = rest[:i]
		} else if i := strings.Index(rest, " ("); i >= 0 {
			point = rest[:i]
		}
		entries = append(entries, MountEntry{Source: source, Mountpoint: filepath.Clean(point), Line: line})
	}
	return entries
}
