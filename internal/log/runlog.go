package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// RunLog is an append-only logfmt journal of executed actions. Output of runs
// started from the dashboard is otherwise lost once the TUI exits.
type RunLog struct {
	mu     sync.Mutex
	closer io.Closer
	logger *charmlog.Logger
}

// OpenRunLog opens (creating if needed) the journal at path.
func OpenRunLog(path string) (*RunLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	rl := NewRunLog(f)
	rl.closer = f
	return rl, nil
}

// NewRunLog writes the journal to w.
func NewRunLog(w io.Writer) *RunLog {
	return &RunLog{
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.DebugLevel,
			Formatter:       charmlog.LogfmtFormatter,
			ReportTimestamp: true,
		}),
	}
}

// Info records a normal event.
func (r *RunLog) Info(msg string, keyvals ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Info(msg, keyvals...)
}

// Warn records a warning.
func (r *RunLog) Warn(msg string, keyvals ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Warn(msg, keyvals...)
}

// Error records a failure.
func (r *RunLog) Error(msg string, keyvals ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Error(msg, keyvals...)
}

// Close closes the underlying file, if any.
func (r *RunLog) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
