package git

import (
	"context"
	"fmt"
	"strings"
)

// LocalState is the outcome of the local status probe.
type LocalState int

const (
	LocalNotChecked LocalState = iota
	LocalNotCloned
	LocalNotRepo
	LocalUncommitted
	LocalNoRemote
	LocalUnpushed
	LocalOK
)

// LocalStatus describes a working tree relative to its upstream.
type LocalStatus struct {
	State LocalState
	Ahead int // commits not pushed, set for LocalUnpushed
}

func (s LocalStatus) String() string {
	switch s.State {
	case LocalNotCloned:
		return "Not Cloned"
	case LocalNotRepo:
		return "Not a Repo"
	case LocalUncommitted:
		return "Uncommitted"
	case LocalNoRemote:
		return "No Remote"
	case LocalUnpushed:
		return fmt.Sprintf("%d Unpushed", s.Ahead)
	case LocalOK:
		return "OK"
	default:
		return "Not Checked"
	}
}

// NeedsAttention reports whether anything other than a clean, pushed tree
// was found.
func (s LocalStatus) NeedsAttention() bool {
	return s.State != LocalOK
}

// RemoteState is the outcome of the remote status probe.
type RemoteState int

const (
	RemoteNotChecked RemoteState = iota
	RemoteNotCloned
	RemoteNoRemote
	RemoteFetchFailed
	RemoteToPull
	RemoteUpToDate
)

// RemoteStatus describes the upstream relative to the working tree.
type RemoteStatus struct {
	State  RemoteState
	Behind int // commits to pull, set for RemoteToPull
}

func (s RemoteStatus) String() string {
	switch s.State {
	case RemoteNotCloned:
		return "Not Cloned"
	case RemoteNoRemote:
		return "No Remote"
	case RemoteFetchFailed:
		return "Fetch Failed"
	case RemoteToPull:
		return fmt.Sprintf("%d To Pull", s.Behind)
	case RemoteUpToDate:
		return "Up to Date"
	default:
		return "Not Checked"
	}
}

// HasUpdates reports whether the remote side needs attention. An unchecked
// remote does not.
func (s RemoteStatus) HasUpdates() bool {
	return s.State != RemoteUpToDate && s.State != RemoteNotChecked
}

// CountLines counts the non-empty lines of git output.
func CountLines(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// GetLocalStatus derives the local status of the repository at path.
// Checks run in order and the first match wins: missing directory,
// uncommitted changes to tracked files, no upstream, unpushed commits.
func GetLocalStatus(ctx context.Context, path string) (LocalStatus, error) {
	if !Exists(path) {
		return LocalStatus{State: LocalNotCloned}, nil
	}
	if !IsRepo(path) {
		return LocalStatus{State: LocalNotRepo}, nil
	}

	dirty, err := HasUncommitted(ctx, path)
	if err != nil {
		return LocalStatus{}, err
	}
	if dirty {
		return LocalStatus{State: LocalUncommitted}, nil
	}

	if !HasUpstream(ctx, path) {
		return LocalStatus{State: LocalNoRemote}, nil
	}

	ahead, err := CountUnpushed(ctx, path)
	if err != nil {
		return LocalStatus{}, err
	}
	if ahead > 0 {
		return LocalStatus{State: LocalUnpushed, Ahead: ahead}, nil
	}
	return LocalStatus{State: LocalOK}, nil
}

// GetRemoteStatus derives the remote status of the repository at path.
// When fetch is set the upstream is fetched first; otherwise the last
// fetched state is compared.
func GetRemoteStatus(ctx context.Context, path string, fetch bool) (RemoteStatus, error) {
	if !Exists(path) || !IsRepo(path) {
		return RemoteStatus{State: RemoteNotCloned}, nil
	}
	if !HasUpstream(ctx, path) {
		return RemoteStatus{State: RemoteNoRemote}, nil
	}

	if fetch {
		res, err := probeGit(ctx, path, "fetch", "--quiet")
		if err != nil {
			return RemoteStatus{}, err
		}
		if !res.OK() {
			return RemoteStatus{State: RemoteFetchFailed}, nil
		}
	}

	behind, err := CountUnpulled(ctx, path)
	if err != nil {
		return RemoteStatus{}, err
	}
	if behind > 0 {
		return RemoteStatus{State: RemoteToPull, Behind: behind}, nil
	}
	return RemoteStatus{State: RemoteUpToDate}, nil
}

// Summary is the compact one-cell status shown in listings.
type Summary struct {
	Local  LocalStatus
	Ahead  int
	Behind int
}

func (s Summary) String() string {
	switch s.Local.State {
	case LocalNotCloned:
		return "? Not Cloned"
	case LocalNotRepo:
		return "? Not a Repo"
	case LocalUncommitted:
		return "Δ Uncommitted"
	case LocalNoRemote:
		return "! No Remote"
	case LocalNotChecked:
		return "… Not Checked"
	}
	switch {
	case s.Ahead > 0 && s.Behind > 0:
		return fmt.Sprintf("↕ %d↑ %d↓", s.Ahead, s.Behind)
	case s.Ahead > 0:
		return fmt.Sprintf("↑ %d", s.Ahead)
	case s.Behind > 0:
		return fmt.Sprintf("↓ %d", s.Behind)
	default:
		return "✓ OK"
	}
}

// Clean reports whether the repository is fully in sync.
func (s Summary) Clean() bool {
	return s.Local.State == LocalOK && s.Ahead == 0 && s.Behind == 0
}

// GetSummary combines the local probe with ahead/behind counts. When fetch
// is set a failed fetch is ignored and the last fetched state is used.
func GetSummary(ctx context.Context, path string, fetch bool) (Summary, error) {
	local, err := GetLocalStatus(ctx, path)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Local: local, Ahead: local.Ahead}
	if local.State != LocalOK && local.State != LocalUnpushed {
		return sum, nil
	}

	if fetch {
		if _, err := probeGit(ctx, path, "fetch", "--quiet"); err != nil {
			return Summary{}, err
		}
	}
	if sum.Behind, err = CountUnpulled(ctx, path); err != nil {
		return Summary{}, err
	}
	return sum, nil
}
