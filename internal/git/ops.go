package git

import (
	"context"
	"fmt"
	"strings"
)

// Clone clones url into workdir/name.
func Clone(ctx context.Context, workdir, url, name string, onLine LineFunc) (Output, error) {
	return streamGit(ctx, workdir, onLine, "clone", url, name)
}

// Fetch fetches the default remote.
func Fetch(ctx context.Context, path string, onLine LineFunc) (Output, error) {
	return streamGit(ctx, path, onLine, "fetch")
}

// Pull merges the upstream into the current branch. strategyOption is
// passed as -X (ours or theirs) and decides conflicting hunks.
func Pull(ctx context.Context, path, strategyOption string, onLine LineFunc) (Output, error) {
	return streamGit(ctx, path, onLine, "pull", "--no-rebase", "--strategy-option="+strategyOption)
}

// Push pushes the current branch to its upstream.
func Push(ctx context.Context, path string, onLine LineFunc) (Output, error) {
	return streamGit(ctx, path, onLine, "push")
}

// AddAll stages every change in the working tree.
func AddAll(ctx context.Context, path string) (Output, error) {
	return probeGit(ctx, path, "add", ".")
}

// Commit records staged changes with message.
func Commit(ctx context.Context, path, message string, onLine LineFunc) (Output, error) {
	return streamGit(ctx, path, onLine, "commit", "-m", message)
}

// HasUncommitted reports whether tracked files differ from HEAD.
// Untracked files are not considered.
func HasUncommitted(ctx context.Context, path string) (bool, error) {
	// refresh stat info so touched-but-unchanged files don't count
	if _, err := probeGit(ctx, path, "update-index", "-q", "--refresh"); err != nil {
		return false, err
	}
	res, err := probeGit(ctx, path, "diff-index", "--quiet", "HEAD", "--")
	if err != nil {
		return false, err
	}
	return !res.OK(), nil
}

// HasStaged reports whether the index differs from HEAD.
func HasStaged(ctx context.Context, path string) (bool, error) {
	res, err := probeGit(ctx, path, "diff-index", "--quiet", "--cached", "HEAD", "--")
	if err != nil {
		return false, err
	}
	return !res.OK(), nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
func HasUpstream(ctx context.Context, path string) bool {
	res, err := probeGit(ctx, path, "rev-parse", "--abbrev-ref", "@{u}")
	return err == nil && res.OK()
}

// CountUnpushed counts commits on HEAD that are not on the upstream.
func CountUnpushed(ctx context.Context, path string) (int, error) {
	return countCommits(ctx, path, "@{u}..")
}

// CountUnpulled counts commits on the upstream that are not on HEAD.
func CountUnpulled(ctx context.Context, path string) (int, error) {
	return countCommits(ctx, path, "HEAD..@{u}")
}

func countCommits(ctx context.Context, path, rangeSpec string) (int, error) {
	out, err := outputGit(ctx, path, "log", rangeSpec, "--oneline")
	if err != nil {
		return 0, fmt.Errorf("git log %s: %w", rangeSpec, err)
	}
	return CountLines(string(out)), nil
}

// ShortStatus returns the lines of "git status --short".
func ShortStatus(ctx context.Context, path string) ([]string, error) {
	return lines(outputGit(ctx, path, "status", "--short"))
}

// StatusText returns the full "git status" text.
func StatusText(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "status")
	return string(out), err
}

// Untracked lists untracked files, honouring ignore rules.
func Untracked(ctx context.Context, path string) ([]string, error) {
	return lines(outputGit(ctx, path, "ls-files", "--others", "--exclude-standard"))
}

// Ignored lists untracked files excluded by ignore rules.
func Ignored(ctx context.Context, path string) ([]string, error) {
	return lines(outputGit(ctx, path, "ls-files", "--others", "--ignored", "--exclude-standard"))
}

// OriginURL returns the URL of the origin remote.
func OriginURL(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked out branch name ("HEAD" when detached).
func CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func lines(out []byte, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	var result []string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result, nil
}
