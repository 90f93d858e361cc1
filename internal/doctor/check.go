package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
)

// tool is an external program doctor looks for.
type tool struct {
	name     string
	alts     []string // accepted instead of name
	required bool
	purpose  string
}

func tools(goos string) []tool {
	list := []tool{
		{name: "git", required: true, purpose: "needed for all repository commands"},
		{name: "rclone", purpose: "needed for mounts and bisync"},
	}
	if goos == "darwin" {
		return append(list, tool{name: "umount", purpose: "needed to unmount rclone mounts"})
	}
	return append(list, tool{name: "fusermount", alts: []string{"fusermount3"}, purpose: "needed to unmount rclone mounts"})
}

// checkTools looks up each tool on PATH.
func checkTools(opts Options) ([]Issue, int) {
	var issues []Issue
	found := 0
	for _, t := range tools(opts.goos()) {
		ok := false
		for _, name := range append([]string{t.name}, t.alts...) {
			if _, err := opts.lookPath(name); err == nil {
				ok = true
				break
			}
		}
		if ok {
			found++
			continue
		}
		issues = append(issues, Issue{
			Key:         t.name,
			Description: fmt.Sprintf("not found on PATH (%s)", t.purpose),
			Category:    CategoryTools,
			Warning:     !t.required,
		})
	}
	return issues, found
}

// checkConfig reports a config load error and a missing workdir.
func checkConfig(opts Options) []Issue {
	var issues []Issue
	if opts.ConfigErr != nil {
		issues = append(issues, Issue{
			Key:         "config",
			Description: opts.ConfigErr.Error(),
			Category:    CategoryConfig,
		})
	}
	if opts.Config != nil && !git.Exists(opts.Config.Workdir) {
		issues = append(issues, Issue{
			Key:         "workdir",
			Description: fmt.Sprintf("workdir does not exist: %s", opts.Config.Workdir),
			FixAction:   FixCreateWorkdir,
			Category:    CategoryConfig,
		})
	}
	return issues
}

// checkRepo inspects one registered repository.
func checkRepo(ctx context.Context, workdir string, repo registry.Repo) []Issue {
	path := repo.Dir(workdir)
	issue := func(desc string, warning bool) Issue {
		return Issue{Key: repo.Name, Description: desc, Category: CategoryRepos, Warning: warning}
	}

	if !git.Exists(path) {
		if repo.URL == "" {
			return []Issue{issue("not cloned and no URL registered", false)}
		}
		i := issue(fmt.Sprintf("not cloned: %s", path), true)
		i.FixAction = FixClone
		i.URL = repo.URL
		return []Issue{i}
	}
	if !git.IsRepo(path) {
		return []Issue{issue(fmt.Sprintf("not a git repository: %s", path), false)}
	}

	var issues []Issue
	origin, err := git.OriginURL(ctx, path)
	switch {
	case err != nil:
		issues = append(issues, issue("no origin remote", true))
	case repo.URL != "" && !sameURL(origin, repo.URL):
		issues = append(issues, issue(fmt.Sprintf("origin %s differs from registered URL %s", origin, repo.URL), true))
	}
	if !git.HasUpstream(ctx, path) {
		issues = append(issues, issue("current branch does not track a remote branch", true))
	}
	return issues
}

// sameURL compares clone URLs ignoring a trailing slash or ".git".
func sameURL(a, b string) bool {
	norm := func(u string) string {
		u = strings.TrimSuffix(strings.TrimSpace(u), "/")
		return strings.TrimSuffix(u, ".git")
	}
	return norm(a) == norm(b)
}

// checkMounts verifies every recorded mount is still mounted.
func checkMounts(ctx context.Context, opts Options) ([]Issue, int) {
	if opts.Mounts == nil || opts.Mounts.Store == nil {
		return nil, 0
	}
	recorded, err := opts.Mounts.Store.Load()
	if err != nil {
		return []Issue{{
			Key:         opts.Mounts.Store.Path(),
			Description: fmt.Sprintf("cannot read mount records: %v", err),
			Category:    CategoryMounts,
		}}, 0
	}

	var issues []Issue
	active := 0
	for _, local := range sortedKeys(recorded) {
		mounted, _, err := opts.Mounts.MountStatus(ctx, local)
		if err != nil {
			issues = append(issues, Issue{
				Key:         local,
				Description: fmt.Sprintf("cannot read mount table: %v", err),
				Category:    CategoryMounts,
				Warning:     true,
			})
			continue
		}
		if mounted {
			active++
			continue
		}
		issues = append(issues, Issue{
			Key:         local,
			Description: fmt.Sprintf("%s is no longer mounted", recorded[local]),
			FixAction:   FixForgetMount,
			Category:    CategoryMounts,
			Warning:     true,
		})
	}
	return issues, active
}
