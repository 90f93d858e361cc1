package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Discovered is a git repository found directly below a directory.
type Discovered struct {
	Name string
	Path string
	URL  string // origin URL, empty when there is no origin
}

// DiscoverRepos lists the git repositories that are direct children of dir,
// ordered by name.
func DiscoverRepos(ctx context.Context, dir string) ([]Discovered, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var repos []Discovered
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !IsRepo(path) {
			continue
		}
		url, _ := OriginURL(ctx, path)
		repos = append(repos, Discovered{Name: entry.Name(), Path: path, URL: url})
	}
	return repos, nil
}
