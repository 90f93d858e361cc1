package config

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultConfig = `# syncdash configuration

# Directory holding the managed repositories (one folder per repository).
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# The dashboard can switch to the current directory at runtime.
# workdir = "~/Documents/Git"

# Conflict strategy for pull and sync: "local" keeps our side (-X ours),
# "remote" keeps the upstream side (-X theirs).
# strategy = "remote"

# Repositories processed in parallel by an action (output stays ordered).
# jobs = 1

# Parallel status probes when refreshing the dashboard.
# status_jobs = 8

# Timeout for a single git invocation.
# git_timeout = "5m"

# Add the workdir to git's global safe.directory list before running git.
# safe_directory = true

# Automatic commit messages
# [commit]
# message = "fixes"
# before_sync = "Auto-commit before sync"
# before_pull = "Auto-commit before pull"

# [dashboard]
# watch = true            # refresh local status when files change
# max_visible = 14        # repository rows shown before scrolling
# fetch_on_start = false  # fetch all repositories when the dashboard opens

# rclone mounts and bisync
# [rclone]
# remote = "Gdrive"
# mount_path = "~/Documents/Gdrive"
# log_dir = "~/Documents/Gdrive/system/.rclone"   # defaults to <mount_path>/system/.rclone
# bisync_base = "~/Documents/Gdrive_Syncs"
# mount_mode = "daemon"          # daemon, background or foreground
# tpslimit = 10
# vfs_cache_mode = "full"
# vfs_cache_max_age = "1h"
# vfs_cache_max_size = "50G"
# vfs_read_chunk_size = "32M"
# dir_cache_time = "10000h"
# skip_gdocs = true
# extra_flags = "--buffer-size 64M"
# mount_settle = "2s"            # wait before verifying a background mount

# [theme]
# name = "default"   # none, default, dracula, nord, gruvbox, catppuccin
# mode = "auto"      # auto, light, dark
# nerdfont = false

# Hooks run after actions. Hooks with "on" run automatically for matching
# triggers; hooks without "on" only run via "syncdash hook NAME".
# Use --no-hook to skip them.
#
# [hooks.notify]
# command = "notify-send 'syncdash' '{action} {repo}'"
# description = "Desktop notification"
# on = ["sync", "push"]
#
# [hooks.index]
# command = "cd {path} && make index"
# description = "Rebuild index after a bisync"
# on = ["bisync"]
#
# Available "on" values: clone, sync, fetch, pull, push, mount, umount, bisync, all
#
# Available placeholders:
#   {path}      - repository path or local mount/bisync folder
#   {repo}      - repository name
#   {action}    - action that ran
#   {strategy}  - local or remote
#   {remote}    - rclone remote
#   {trigger}   - trigger that fired the hook
#   {key}       - custom variable passed via --arg key=value
#   {key:-def}  - custom variable with default value if not provided
#   {key:raw}   - custom variable without shell quoting
#
# A repository may override strategy, commit messages and hooks in a
# .syncdash.toml at its root.
`

// DefaultConfig returns the default configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at ~/.config/syncdash/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, initAt(path, force)
}

func initAt(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
