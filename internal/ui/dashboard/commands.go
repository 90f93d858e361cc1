package dashboard

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/watch"
)

// streamMsg wraps a message produced by a background goroutine together
// with its channel so Update can keep listening until the channel closes.
type streamMsg struct {
	ch  <-chan tea.Msg
	msg tea.Msg
}

type scanProgressMsg struct {
	gen         int
	kind        scanKind
	done, total int
}

type localScanMsg struct {
	gen     int
	results []runner.LocalResult
}

type remoteScanMsg struct {
	gen     int
	results []runner.RemoteResult
}

type watchMsg struct {
	gen    int
	repo   string
	events <-chan string
}

type repoStatusMsg struct {
	gen    int
	repo   string
	status git.LocalStatus
	err    error
}

type runEventMsg struct {
	ev runner.Event
}

type runDoneMsg struct {
	result runner.Result
	err    error
}

func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return streamMsg{ch: ch, msg: msg}
	}
}

func send(ctx context.Context, ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}

// scan starts a status scan of every repository unless one of the same
// kind is already running.
func (m *Model) scan(kind scanKind) tea.Cmd {
	repos := m.opts.Repos
	if len(repos) == 0 || m.scans[kind].active {
		return nil
	}
	m.scans[kind] = scanState{active: true, total: len(repos)}

	ctx, gen, wd, jobs := m.ctx, m.gen, m.Workdir(), m.opts.StatusJobs
	ch := make(chan tea.Msg, 16)
	go func() {
		defer close(ch)
		progress := func(done, total int) {
			send(ctx, ch, scanProgressMsg{gen: gen, kind: kind, done: done, total: total})
		}
		if kind == scanLocal {
			send(ctx, ch, localScanMsg{gen: gen, results: runner.ScanLocal(ctx, wd, repos, jobs, progress)})
			return
		}
		send(ctx, ch, remoteScanMsg{gen: gen, results: runner.ScanRemote(ctx, wd, repos, jobs, true, progress)})
	}()
	return listen(ch)
}

func (m *Model) probeLocal(name string) tea.Cmd {
	idx := m.repoIndex(name)
	if idx < 0 {
		return nil
	}
	ctx, gen, dir := m.ctx, m.gen, m.opts.Repos[idx].Dir(m.Workdir())
	return func() tea.Msg {
		st, err := git.GetLocalStatus(ctx, dir)
		return repoStatusMsg{gen: gen, repo: name, status: st, err: err}
	}
}

func listenWatch(gen int, events <-chan string) tea.Cmd {
	return func() tea.Msg {
		name, ok := <-events
		if !ok {
			return nil
		}
		return watchMsg{gen: gen, repo: name, events: events}
	}
}

// startWatch replaces the filesystem watcher with one over the cloned
// repositories of the active working directory.
func (m *Model) startWatch() tea.Cmd {
	if !m.opts.Watch {
		return nil
	}
	m.stopWatch()

	w, err := watch.New(watch.DefaultDebounce, m.opts.Logger)
	if err != nil {
		m.opts.Logger.Debug("watcher unavailable", "error", err)
		return nil
	}
	wd := m.Workdir()
	for _, repo := range m.opts.Repos {
		dir := repo.Dir(wd)
		if !git.IsRepo(dir) {
			continue
		}
		if err := w.Add(repo.Name, dir); err != nil {
			m.opts.Logger.Debug("watch failed", "repo", repo.Name, "error", err)
		}
	}
	m.watcher = w
	return listenWatch(m.gen, w.Events())
}

func (m *Model) stopWatch() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		m.opts.Logger.Debug("closing watcher failed", "error", err)
	}
	m.watcher = nil
}

func (m *Model) newRunner(wd string) *runner.Runner {
	if m.opts.NewRunner != nil {
		return m.opts.NewRunner(wd)
	}
	return &runner.Runner{Workdir: wd}
}

// run applies the action to the selected repositories. Events stream into
// the log pane while the runner works.
func (m *Model) run() tea.Cmd {
	if m.running {
		return nil
	}
	wd := m.Workdir()
	if info, err := os.Stat(wd); err != nil || !info.IsDir() {
		m.setError("Invalid working directory: " + wd)
		return nil
	}
	repos := m.Selected()
	if len(repos) == 0 {
		m.setMessage("No repositories selected. Nothing to do.")
		return nil
	}

	req := runner.Request{
		Repos:       repos,
		Action:      m.action,
		Strategy:    m.strategy,
		StrategySet: m.strategySet,
	}
	r := m.newRunner(wd)

	m.running = true
	m.log = nil
	m.logScroll = 0
	m.runHeader = fmt.Sprintf("Executing %s on %s…", m.action, pluralize(len(repos), "repository", "repositories"))
	m.setMessage("")

	ctx := m.ctx
	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		res, err := r.Run(ctx, req, func(ev runner.Event) {
			send(ctx, ch, runEventMsg{ev: ev})
		})
		send(ctx, ch, runDoneMsg{result: res, err: err})
	}()
	return listen(ch)
}

func (m *Model) runFinished(msg runDoneMsg) tea.Cmd {
	m.running = false
	switch failed := msg.result.Failed(); {
	case msg.err != nil:
		m.runHeader = "Run interrupted: " + msg.err.Error()
	case len(failed) > 0:
		m.runHeader = fmt.Sprintf("All tasks complete! %s failed.", pluralize(len(failed), "repository", "repositories"))
	default:
		m.runHeader = "All tasks complete!"
	}
	// clones and merges change what there is to watch
	return tea.Batch(m.scan(scanLocal), m.startWatch())
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
