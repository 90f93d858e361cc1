package rclone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/syncdash/syncdash/internal/cmd"
)

// ErrLocalMissing is returned when a local folder does not exist and may
// not be created.
var ErrLocalMissing = errors.New("local folder does not exist")

// CheckResult is the outcome of comparing one folder.
type CheckResult struct {
	Folder     string
	LocalPath  string
	RemotePath string
	Skipped    bool // local folder missing, rclone check not run
	cmd.Result
	Err error
}

// Check runs "rclone check --combined -" for each folder of localBase
// against the same folder on remote. onLine receives rclone's output.
func (m *Manager) Check(ctx context.Context, localBase, remote string, folders []string, onLine func(string)) []CheckResult {
	results := make([]CheckResult, 0, len(folders))
	for _, folder := range folders {
		r := CheckResult{
			Folder:     folder,
			LocalPath:  filepath.Join(localBase, folder),
			RemotePath: RemoteFolder(remote, folder),
		}
		if _, err := os.Stat(r.LocalPath); err != nil {
			r.Skipped = true
			r.Err = fmt.Errorf("%w: %s", ErrLocalMissing, r.LocalPath)
			results = append(results, r)
			continue
		}
		r.Result, r.Err = m.runner().Run(ctx, onLine, "rclone", "check", r.LocalPath, r.RemotePath, "--combined", "-")
		results = append(results, r)
		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// BisyncOptions configures one bisync run.
type BisyncOptions struct {
	Remote        string
	LocalBase     string
	Folder        string
	DryRun        bool
	Resync        bool // force --resync
	CreateMissing bool // create the local folder when it does not exist
}

// BisyncResult describes a finished bisync.
type BisyncResult struct {
	RemotePath string
	LocalPath  string
	Created    bool // the local folder was created
	Resync     bool // --resync was passed
	cmd.Result
}

// NeedsResync reports whether bisync must run with --resync: when forced,
// or when rclone has no bisync state yet.
func (m *Manager) NeedsResync(force bool) bool {
	if force || m.BisyncStateDir == "" {
		return force
	}
	_, err := os.Stat(m.BisyncStateDir)
	return os.IsNotExist(err)
}

// BisyncArgs returns the rclone arguments of a bisync between the two paths.
func (m *Manager) BisyncArgs(remotePath, localPath string, resync, dryRun bool) []string {
	args := []string{"bisync", remotePath, localPath}
	if m.Config.TPSLimit > 0 {
		args = append(args, "--tpslimit", strconv.Itoa(m.Config.TPSLimit))
	}
	if m.Config.SkipGdocs {
		args = append(args, "--drive-skip-gdocs")
	}
	if resync {
		args = append(args, "--resync")
	}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return append(args, "--verbose")
}

// Bisync runs rclone bisync between the remote folder (Path1, authoritative
// on resync) and the local folder.
func (m *Manager) Bisync(ctx context.Context, opts BisyncOptions, onLine func(string)) (BisyncResult, error) {
	res := BisyncResult{
		RemotePath: RemoteFolder(opts.Remote, opts.Folder),
		LocalPath:  filepath.Join(opts.LocalBase, opts.Folder),
	}

	if _, err := os.Stat(res.LocalPath); os.IsNotExist(err) {
		if !opts.CreateMissing {
			return res, fmt.Errorf("%w: %s", ErrLocalMissing, res.LocalPath)
		}
		if err := os.MkdirAll(res.LocalPath, 0o755); err != nil {
			return res, fmt.Errorf("creating %s: %w", res.LocalPath, err)
		}
		res.Created = true
	}

	res.Resync = m.NeedsResync(opts.Resync)
	out, err := m.runner().Run(ctx, onLine, "rclone", m.BisyncArgs(res.RemotePath, res.LocalPath, res.Resync, opts.DryRun)...)
	res.Result = out
	if err != nil {
		return res, fmt.Errorf("rclone bisync: %w", err)
	}
	return res, nil
}
