// Package storage provides atomic, lock-protected JSON state files in ~/.syncdash/
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DirName is the name of the state directory under the user's home.
const DirName = ".syncdash"

// Dir returns the path to ~/.syncdash/, creating it if needed
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, DirName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// Path returns the path of a named file inside the state directory.
func Path(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SaveJSON atomically writes data as JSON to the specified path.
// It ensures the parent directory exists, writes to a temp file,
// then renames to the final path.
func SaveJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0o600); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// LoadJSON reads JSON from the specified path into dest.
// Returns os.ErrNotExist if file doesn't exist (caller should handle).
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Update loads the JSON file at path into dest (leaving dest untouched when
// the file does not exist), applies mutate and saves the result, all while
// holding an exclusive lock on path + ".lock".
func Update(path string, dest any, mutate func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	if err := LoadJSON(path, dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return SaveJSON(path, dest)
}
