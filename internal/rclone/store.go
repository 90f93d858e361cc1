package rclone

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/syncdash/syncdash/internal/storage"
)

// Store persists the mounts syncdash started, keyed by mountpoint.
type Store struct {
	path string
}

// NewStore returns a Store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the Store in the syncdash data directory.
func DefaultStore() (*Store, error) {
	path, err := storage.Path("mounts.json")
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Load returns mountpoint -> remote. A missing file is an empty store.
func (s *Store) Load() (map[string]string, error) {
	mounts := map[string]string{}
	if err := storage.LoadJSON(s.path, &mounts); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return mounts, nil
}

// Record stores that remote is mounted on local.
func (s *Store) Record(local, remote string) error {
	var mounts map[string]string
	return storage.Update(s.path, &mounts, func() error {
		if mounts == nil {
			mounts = map[string]string{}
		}
		mounts[filepath.Clean(local)] = remote
		return nil
	})
}

// Forget removes local from the store.
func (s *Store) Forget(local string) error {
	var mounts map[string]string
	return storage.Update(s.path, &mounts, func() error {
		if mounts == nil {
			mounts = map[string]string{}
		}
		delete(mounts, filepath.Clean(local))
		return nil
	})
}

// Prune forgets every mountpoint for which keep returns false and returns
// the forgotten ones.
func (s *Store) Prune(keep func(local string) bool) ([]string, error) {
	var (
		mounts    map[string]string
		forgotten []string
	)
	err := storage.Update(s.path, &mounts, func() error {
		for _, local := range slices.Sorted(maps.Keys(mounts)) {
			if !keep(local) {
				delete(mounts, local)
				forgotten = append(forgotten, local)
			}
		}
		if mounts == nil {
			mounts = map[string]string{}
		}
		return nil
	})
	return forgotten, err
}
