// Package watch reports repositories whose files changed.
//
// A [Watcher] follows the working tree and the .git directory of each added
// repository. Bursts of filesystem events are debounced per repository and
// delivered as the repository name on [Watcher.Events].
package watch

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syncdash/syncdash/internal/log"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("watcher closed")

// Watcher watches repository directories.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger
	events   chan string

	mu     sync.Mutex
	roots  map[string]string // repository root -> name
	timers map[string]*time.Timer
	closed bool
	done   chan struct{}
}

// New starts a watcher. A non-positive debounce uses DefaultDebounce; a nil
// logger discards diagnostics.
func New(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard, false, true)
	}
	w := &Watcher{
		fs:       fw,
		debounce: debounce,
		logger:   logger,
		events:   make(chan string, 64),
		roots:    map[string]string{},
		timers:   map[string]*time.Timer{},
		done:     make(chan struct{}),
	}
	go w.observe()
	return w, nil
}

// Events delivers the names of changed repositories. It is closed by Close.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Add watches the repository name at root: every directory of the working
// tree and the top of its .git directory.
func (w *Watcher) Add(name, root string) error {
	root = filepath.Clean(root)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.roots[root] = name
	w.mu.Unlock()

	if err := w.addTree(root); err != nil {
		return err
	}
	gitDir := filepath.Join(root, ".git")
	if err := w.fs.Add(gitDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("watch .git failed", "repo", name, "error", err)
	}
	return nil
}

// addTree watches dir and its subdirectories, skipping .git.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Debug("watch failed", "path", path, "error", err)
		}
		return nil
	})
}

// Close stops the watcher and closes Events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	close(w.events)
	return err
}

func (w *Watcher) observe() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if Ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) && !inGitDir(ev.Name) {
				// new directories in the working tree need their own watch
				_ = w.addTree(ev.Name)
			}
			if name, ok := w.repoFor(ev.Name); ok {
				w.schedule(name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", "error", err)
		}
	}
}

// repoFor returns the repository containing path, preferring the deepest
// root for nested repositories.
func (w *Watcher) repoFor(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var best, name string
	for root, n := range w.roots {
		if (path == root || strings.HasPrefix(path, root+string(filepath.Separator))) && len(root) > len(best) {
			best, name = root, n
		}
	}
	return name, best != ""
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[name]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed || w.timers[name] != t {
			return
		}
		delete(w.timers, name)
		select {
		case w.events <- name:
		default:
			// a reader that is behind will refresh anyway
		}
	})
	w.timers[name] = t
}

// Ignored reports whether a change to path says nothing about the
// repository status: object database writes and lock files.
func Ignored(path string) bool {
	sep := string(filepath.Separator)
	if strings.Contains(path, sep+".git"+sep+"objects") {
		return true
	}
	return strings.HasSuffix(path, ".lock")
}

func inGitDir(path string) bool {
	sep := string(filepath.Separator)
	return strings.Contains(path, sep+".git"+sep) || strings.HasSuffix(path, sep+".git")
}
