package rclone

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ListFoldersTimeout bounds the remote directory listing.
const ListFoldersTimeout = 10 * time.Second

// NormalizeRemote appends the ":" rclone needs to address a remote root.
func NormalizeRemote(remote string) string {
	if strings.Contains(remote, ":") {
		return remote
	}
	return remote + ":"
}

// RemoteFolder joins folder onto remote. "Gdrive" and "Gdrive:" give
// "Gdrive:folder"; "Gdrive:Backups" gives "Gdrive:Backups/folder".
func RemoteFolder(remote, folder string) string {
	name, path, found := strings.Cut(remote, ":")
	path = strings.Trim(path, "/")
	folder = strings.Trim(folder, "/")
	if !found || path == "" {
		return name + ":" + folder
	}
	if folder == "" {
		return name + ":" + path
	}
	return name + ":" + path + "/" + folder
}

// ListRemotes returns the configured remote names without the trailing ":".
func (m *Manager) ListRemotes(ctx context.Context) ([]string, error) {
	out, err := m.runner().Output(ctx, "rclone", "listremotes")
	if err != nil {
		return nil, fmt.Errorf("rclone listremotes: %w", err)
	}
	var remotes []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ":")
		if line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// ListFolders lists the directories of remote up to depth levels deep.
func (m *Manager) ListFolders(ctx context.Context, remote string, depth int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ListFoldersTimeout)
	defer cancel()

	out, err := m.runner().Output(ctx, "rclone", "lsf", NormalizeRemote(remote),
		"--dirs-only", "--max-depth="+strconv.Itoa(max(depth, 1)))
	if err != nil {
		return nil, fmt.Errorf("listing folders of %s: %w", remote, err)
	}
	var folders []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), "/")
		if line != "" {
			folders = append(folders, line)
		}
	}
	return folders, nil
}
