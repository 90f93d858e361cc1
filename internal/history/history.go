// Package history records past action runs and when each repository was
// last fetched. It backs `syncdash history` and the "fetched 3 minutes ago"
// hints in the dashboard.
package history

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/syncdash/syncdash/internal/storage"
)

// MaxRuns is the number of runs kept in the history file.
const MaxRuns = 50

// Run is one execution of an action over a set of repositories.
type Run struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Strategy   string    `json:"strategy,omitempty"`
	Repos      []string  `json:"repos"`
	Failed     []string  `json:"failed,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// OK reports whether every repository in the run succeeded.
func (r Run) OK() bool {
	return len(r.Failed) == 0
}

// Ago renders the start time relative to now ("3 minutes ago").
func (r Run) Ago(now time.Time) string {
	return humanize.RelTime(r.StartedAt, now, "ago", "from now")
}

// Summary is a one-line description used by `syncdash history`.
func (r Run) Summary() string {
	var b strings.Builder
	b.WriteString(r.Action)
	if r.Strategy != "" {
		fmt.Fprintf(&b, " (%s)", r.Strategy)
	}
	fmt.Fprintf(&b, ": %d %s", len(r.Repos), plural(len(r.Repos), "repo", "repos"))
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", len(r.Failed), strings.Join(r.Failed, ", "))
	}
	return b.String()
}

// History is the on-disk record.
type History struct {
	Runs        []Run                `json:"runs"`
	LastFetched map[string]time.Time `json:"last_fetched,omitempty"`
}

// Path returns the default history file (~/.syncdash/history.json).
func Path() (string, error) {
	return storage.Path("history.json")
}

// Load reads the history at path. A missing file yields an empty history.
func Load(path string) (*History, error) {
	var h History
	if err := storage.LoadJSON(path, &h); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &History{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	return &h, nil
}

// Record appends run to the history file, assigning an ID when empty and
// dropping the oldest runs beyond MaxRuns.
func Record(path string, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	var h History
	return storage.Update(path, &h, func() error {
		h.Runs = append(h.Runs, run)
		if len(h.Runs) > MaxRuns {
			h.Runs = h.Runs[len(h.Runs)-MaxRuns:]
		}
		return nil
	})
}

// MarkFetched stores at as the last fetch time of each repository.
func MarkFetched(path string, repos []string, at time.Time) error {
	if len(repos) == 0 {
		return nil
	}
	var h History
	return storage.Update(path, &h, func() error {
		if h.LastFetched == nil {
			h.LastFetched = make(map[string]time.Time, len(repos))
		}
		for _, name := range repos {
			h.LastFetched[name] = at
		}
		return nil
	})
}

// Last returns up to n runs, newest first. n <= 0 returns all of them.
func (h *History) Last(n int) []Run {
	runs := make([]Run, len(h.Runs))
	copy(runs, h.Runs)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if n > 0 && len(runs) > n {
		runs = runs[:n]
	}
	return runs
}

// FetchedAgo describes when repo was last fetched, or "never".
func (h *History) FetchedAgo(repo string, now time.Time) string {
	at, ok := h.LastFetched[repo]
	if !ok {
		return "never"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
