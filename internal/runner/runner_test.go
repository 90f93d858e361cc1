package runner

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/history"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/registry"
)

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var repos []registry.Repo
	for _, name := range []string{"alpha", "beta", "gamma"} {
		repo, _ := f.cloned(t, name)
		repos = append(repos, repo)
	}
	repos = append(repos, f.origin(t, "delta")) // not cloned yet

	marker := filepath.Join(f.root, "hooks.txt")
	cfg := config.Default()
	cfg.Hooks = config.HooksConfig{Hooks: map[string]config.Hook{
		"record": {Command: "echo {repo}:{trigger} >> " + marker, On: []string{"fetch", "clone"}},
	}}

	historyPath := filepath.Join(f.root, "history.json")
	var runLog strings.Builder
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := &Runner{
		Workdir:     f.workdir,
		Jobs:        3,
		Resolver:    config.NewResolver(&cfg),
		HistoryPath: historyPath,
		RunLog:      log.NewRunLog(&runLog),
		Now:         func() time.Time { return now },
	}

	var mu sync.Mutex
	var events []Event
	res, err := r.Run(context.Background(), Request{Repos: repos, Action: ActionFetch}, func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// every repository's events form one block, in request order
	var order []string
	for i, ev := range events {
		if i == 0 || events[i-1].Repo != ev.Repo {
			order = append(order, ev.Repo)
		}
	}
	if want := []string{"alpha", "beta", "gamma", "delta"}; !slices.Equal(order, want) {
		t.Errorf("event blocks = %v, want %v", order, want)
	}

	if failed := res.Failed(); len(failed) != 0 {
		t.Errorf("Failed() = %v, want none", failed)
	}
	if !res.Reports[3].Cloned {
		t.Error("delta should have been cloned")
	}
	if !git.IsRepo(repos[3].Dir(f.workdir)) {
		t.Error("delta clone missing")
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("hooks did not run: %v", err)
	}
	lines := strings.Fields(string(data))
	slices.Sort(lines)
	if want := []string{"alpha:fetch", "beta:fetch", "delta:clone", "gamma:fetch"}; !slices.Equal(lines, want) {
		t.Errorf("hook runs = %v, want %v", lines, want)
	}

	h, err := history.Load(historyPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Runs) != 1 || h.Runs[0].Action != "fetch" || len(h.Runs[0].Repos) != 4 {
		t.Fatalf("history runs = %+v", h.Runs)
	}
	if h.Runs[0].Strategy != "remote" {
		t.Errorf("recorded strategy = %q, want %q", h.Runs[0].Strategy, "remote")
	}
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if !h.LastFetched[name].Equal(now) {
			t.Errorf("LastFetched[%s] = %v, want %v", name, h.LastFetched[name], now)
		}
	}
	if _, ok := h.LastFetched["delta"]; ok {
		t.Error("a fresh clone should not count as fetched")
	}

	if !strings.Contains(runLog.String(), "run finished") {
		t.Errorf("run log missing summary:\n%s", runLog.String())
	}
}

func TestRunner_NoHook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, _ := f.cloned(t, "alpha")

	marker := filepath.Join(f.root, "hooks.txt")
	cfg := config.Default()
	cfg.Hooks = config.HooksConfig{Hooks: map[string]config.Hook{
		"record": {Command: "touch " + marker, On: []string{"all"}},
	}}

	r := &Runner{Workdir: f.workdir, Resolver: config.NewResolver(&cfg), NoHook: true}
	if _, err := r.Run(context.Background(), Request{Repos: []registry.Repo{repo}, Action: ActionFetch}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("hook ran despite NoHook")
	}
}

func TestRunner_LocalConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")
	writeFile(t, path, config.LocalConfigFileName, "strategy = \"local\"\n\n[commit]\nmessage = \"notes update\"\n")
	writeFile(t, path, "new.txt", "x\n")

	cfg := config.Default()
	r := &Runner{Workdir: f.workdir, Resolver: config.NewResolver(&cfg)}

	res, err := r.Run(context.Background(), Request{Repos: []registry.Repo{repo}, Action: ActionPush, Strategy: StrategyRemote}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reports[0].Failed {
		t.Fatalf("push failed:\n%s", strings.Join(texts(res.Reports[0].Events), "\n"))
	}
	if got := gitOutput(t, repo.URL, "log", "-1", "--format=%s", "main"); got != "notes update" {
		t.Errorf("commit message = %q, want the per-repository message", got)
	}
}

func TestRunner_StrategyFromLocalConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"local config wins when not explicit", Request{Action: ActionPull, Strategy: StrategyRemote}, "ours"},
		{"explicit choice wins", Request{Action: ActionPull, Strategy: StrategyRemote, StrategySet: true}, "theirs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			repo, path := f.cloned(t, "notes")
			commit(t, path, config.LocalConfigFileName, "strategy = \"local\"\n", "add local config")
			gitRun(t, path, "push")

			cfg := config.Default()
			r := &Runner{Workdir: f.workdir, Resolver: config.NewResolver(&cfg)}
			tt.req.Repos = []registry.Repo{repo}
			res, err := r.Run(context.Background(), tt.req, nil)
			if err != nil {
				t.Fatal(err)
			}
			want := "  Pulling with strategy: " + tt.want
			if !slices.Contains(steps(res.Reports[0].Events), want) {
				t.Errorf("missing %q in:\n%s", want, strings.Join(steps(res.Reports[0].Events), "\n"))
			}
		})
	}
}

func TestOrderedEmitter(t *testing.T) {
	t.Parallel()

	var got []string
	o := newOrderedEmitter(3, func(ev Event) { got = append(got, ev.Repo+":"+ev.Text) })
	send := func(i int, text string) {
		o.forRepo(i)(Event{Repo: strconv.Itoa(i), Text: text})
	}

	send(2, "a")
	send(0, "a")
	send(1, "a")
	o.finish(2)
	send(0, "b")
	o.finish(0)
	send(1, "b")
	o.finish(1)

	want := []string{"0:a", "0:b", "1:a", "1:b", "2:a"}
	if !slices.Equal(got, want) {
		t.Errorf("emitted %v, want %v", got, want)
	}
}
