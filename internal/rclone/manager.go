package rclone

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/syncdash/syncdash/internal/config"
)

// Manager runs rclone operations with the configured settings.
type Manager struct {
	Config config.RcloneConfig
	Runner Runner // nil uses ExecRunner
	Store  *Store // mounts started by syncdash; nil disables recording
	GOOS   string // empty uses runtime.GOOS
	// BisyncStateDir is rclone's bisync working directory. When it does not
	// exist, the first bisync needs --resync.
	BisyncStateDir string
	Sleep          func(time.Duration) // nil uses time.Sleep
}

// NewManager returns a Manager using real processes, the default mounts
// store and rclone's default bisync state directory.
func NewManager(cfg config.RcloneConfig) (*Manager, error) {
	store, err := DefaultStore()
	if err != nil {
		return nil, err
	}
	return &Manager{
		Config:         cfg,
		Runner:         ExecRunner{},
		Store:          store,
		BisyncStateDir: DefaultBisyncStateDir(),
	}, nil
}

// DefaultBisyncStateDir returns ~/.cache/rclone/bisync, honouring
// XDG_CACHE_HOME.
func DefaultBisyncStateDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "rclone", "bisync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "rclone", "bisync")
}

func (m *Manager) runner() Runner {
	if m.Runner == nil {
		return ExecRunner{}
	}
	return m.Runner
}

func (m *Manager) goos() string {
	if m.GOOS == "" {
		return runtime.GOOS
	}
	return m.GOOS
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if m.Sleep != nil {
		m.Sleep(d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Configure runs the interactive "rclone config" on the terminal.
func (m *Manager) Configure(ctx context.Context) error {
	return m.runner().Attach(ctx, "rclone", "config")
}
