package runner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
)

// ProgressFunc is called after each repository of a scan completes. It may
// be called from several goroutines at once.
type ProgressFunc func(done, total int)

// LocalResult is the local status of one repository.
type LocalResult struct {
	Repo   string
	Status git.LocalStatus
	Err    error
}

// RemoteResult is the remote status of one repository.
type RemoteResult struct {
	Repo   string
	Status git.RemoteStatus
	Err    error
}

// scan runs probe for every repo with up to jobs in parallel and returns
// the results in repos order.
func scan[T any](ctx context.Context, repos []registry.Repo, jobs int, progress ProgressFunc, probe func(context.Context, registry.Repo) T) []T {
	results := make([]T, len(repos))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, repo := range repos {
		g.Go(func() error {
			results[i] = probe(ctx, repo)
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(repos))
			}
			return nil // failures are carried in the result
		})
	}
	_ = g.Wait()
	return results
}

// ScanLocal probes the local status of every repository under workdir.
func ScanLocal(ctx context.Context, workdir string, repos []registry.Repo, jobs int, progress ProgressFunc) []LocalResult {
	return scan(ctx, repos, jobs, progress, func(ctx context.Context, repo registry.Repo) LocalResult {
		st, err := git.GetLocalStatus(ctx, repo.Dir(workdir))
		return LocalResult{Repo: repo.Name, Status: st, Err: err}
	})
}

// ScanRemote probes the remote status of every repository under workdir,
// fetching first when fetch is set.
func ScanRemote(ctx context.Context, workdir string, repos []registry.Repo, jobs int, fetch bool, progress ProgressFunc) []RemoteResult {
	return scan(ctx, repos, jobs, progress, func(ctx context.Context, repo registry.Repo) RemoteResult {
		st, err := git.GetRemoteStatus(ctx, repo.Dir(workdir), fetch)
		return RemoteResult{Repo: repo.Name, Status: st, Err: err}
	})
}

// SmartSelect picks the repositories that need attention: local status
// other than OK, or a remote status that reports updates. The suggested
// action is sync when any picked repository has remote updates, push
// otherwise. Repositories without a local status count as not OK.
func SmartSelect(repos []string, local map[string]git.LocalStatus, remote map[string]git.RemoteStatus) ([]string, Action) {
	var selected []string
	action := ActionPush
	for _, name := range repos {
		needsLocal := local[name].NeedsAttention()
		hasUpdates := remote[name].HasUpdates()
		if !needsLocal && !hasUpdates {
			continue
		}
		selected = append(selected, name)
		if hasUpdates {
			action = ActionSync
		}
	}
	return selected, action
}
