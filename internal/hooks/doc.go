// Package hooks runs user commands after git actions and rclone operations.
//
// Hooks are shell commands defined in config:
//
//	[hooks.notify]
//	command = "notify-send 'synced {repo}'"
//	on = ["sync", "push"]
//
//	[hooks.backup]
//	command = "tar czf /tmp/{repo}.tgz -C {path} ."
//	# no "on": only runs via `syncdash hook backup`
//
// A repository's .syncdash.toml may add hooks or disable global ones with
// enabled = false.
//
// # Placeholders
//
//   - {path}: repository path or local mountpoint
//   - {repo}: repository name
//   - {action}: action that ran
//   - {strategy}: merge strategy (local or remote)
//   - {remote}: origin URL or rclone remote
//   - {trigger}: clone, sync, fetch, pull, push, mount, umount, bisync
//
// Custom variables come from --arg key=value and expand as {key},
// {key:raw} (unquoted) or {key:-default}. Values are shell-quoted.
//
// Hook failures never fail the action that triggered them.
//
// # Stdin Support
//
// Use --arg key=- to read piped stdin into a variable:
//
//	git log -1 | syncdash hook notify notes --arg msg=-
package hooks
