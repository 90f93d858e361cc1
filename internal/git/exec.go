package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syncdash/syncdash/internal/cmd"
)

// Output is the exit code and combined output of a git command whose exit
// status is meaningful to the caller.
type Output = cmd.Result

// LineFunc receives git output line by line while a command runs.
type LineFunc func(line string)

type timeoutKey struct{}

// WithCommandTimeout bounds every git invocation made with the returned
// context to d. A zero duration disables the bound.
func WithCommandTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, timeoutKey{}, d)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d, ok := ctx.Value(timeoutKey{}).(time.Duration); ok && d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// timeoutErr turns a deadline hit by the per-command bound into a readable error.
func timeoutErr(ctx context.Context, err error, args []string) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("git %s timed out", strings.Join(args, " "))
	}
	return err
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	tctx, cancel := withTimeout(ctx)
	defer cancel()
	return timeoutErr(ctx, cmd.RunContext(tctx, "", "git", gitArgs(dir, args)...), args)
}

// outputGit executes a git command, returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	tctx, cancel := withTimeout(ctx)
	defer cancel()
	out, err := cmd.OutputContext(tctx, "", "git", gitArgs(dir, args)...)
	return out, timeoutErr(ctx, err, args)
}

// probeGit executes a git command whose exit code carries the answer.
// A non-zero exit is returned in Output, not as an error.
func probeGit(ctx context.Context, dir string, args ...string) (Output, error) {
	tctx, cancel := withTimeout(ctx)
	defer cancel()
	res, err := cmd.CombinedContext(tctx, "", "git", gitArgs(dir, args)...)
	return res, timeoutErr(ctx, err, args)
}

// streamGit is probeGit with output delivered to onLine as it arrives.
// A nil onLine behaves like probeGit.
func streamGit(ctx context.Context, dir string, onLine LineFunc, args ...string) (Output, error) {
	if onLine == nil {
		return probeGit(ctx, dir, args...)
	}
	tctx, cancel := withTimeout(ctx)
	defer cancel()
	res, err := cmd.StreamContext(tctx, "", onLine, "git", gitArgs(dir, args)...)
	return res, timeoutErr(ctx, err, args)
}

// RunGitCommand executes a git command with context support and verbose logging.
// This is the exported version of runGit for use by commands.
func RunGitCommand(ctx context.Context, dir string, args ...string) error {
	return runGit(ctx, dir, args...)
}

// RunGitOutput executes a git command and returns its trimmed stdout.
func RunGitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := outputGit(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
