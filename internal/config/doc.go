// Package config handles loading and validation of syncdash configuration.
//
// Configuration is read from ~/.config/syncdash/config.toml with environment
// variable overrides for directory settings. A missing file is not an error:
// [Default] is used instead.
//
// # Configuration Sources (highest priority first)
//
//   - Command line flags (-w/--workdir, --strategy, --mode)
//   - SYNCDASH_WORKDIR / SYNCDASH_MOUNT_PATH env vars
//   - .syncdash.toml in a repository (strategy, commit messages, hooks)
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - workdir: directory holding one folder per managed repository
//   - strategy: "local" (-X ours) or "remote" (-X theirs) for pull and sync
//   - jobs / status_jobs: parallelism for actions and status probes
//   - [commit]: messages for automatic commits
//   - [rclone]: default remote, mount path, vfs cache flags, bisync base
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.notify]
//	command = "notify-send syncdash '{action} {repo}'"
//	on = ["sync", "push"]
//
// A per-repository .syncdash.toml may add hooks or disable a global one
// with enabled = false.
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
