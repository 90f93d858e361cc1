// Package cmd provides helpers for executing external commands with proper
// error handling.
//
// All helpers take a [context.Context] so long-running git and rclone
// invocations can be cancelled, and every invocation is reported through the
// context logger (see [log.Logger.Command]) together with its duration.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, repoPath, "git", "fetch"); err != nil {
//	    // err carries the trimmed stderr of the failed command
//	}
//
//	res, err := cmd.CombinedContext(ctx, repoPath, "git", "diff-index", "--quiet", "HEAD", "--")
//	if err == nil && res.ExitCode != 0 {
//	    // non-zero exit is data, not an error
//	}
//
// # Design Notes
//
// syncdash shells out to git and rclone rather than linking libraries so that
// user configuration (SSH keys, credential helpers, rclone remotes) is
// honoured exactly as on the command line. Several status probes are defined
// by exit codes, which is why [CombinedContext] and [StreamContext] report a
// non-zero exit as a result instead of an error.
package cmd
