package git

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
)

// ConfigureSafeDirectories adds workdir and every repository below it to
// git's global safe.directory list so repositories owned by another user
// (e.g. on a shared mount) can be operated on. Entries already present are
// left alone. Returns the entries that were added.
func ConfigureSafeDirectories(ctx context.Context, workdir string) ([]string, error) {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return nil, err
	}

	// exit status 1 just means the key is unset
	res, err := probeGit(ctx, "", "config", "--global", "--get-all", "safe.directory")
	if err != nil {
		return nil, err
	}
	existing := strings.Split(strings.TrimSpace(res.Output), "\n")

	var added []string
	for _, entry := range []string{abs, abs + "/*"} {
		if slices.Contains(existing, entry) {
			continue
		}
		if err := runGit(ctx, "", "config", "--global", "--add", "safe.directory", entry); err != nil {
			return added, err
		}
		added = append(added, entry)
	}
	return added, nil
}
