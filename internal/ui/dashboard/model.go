package dashboard

import (
	"context"
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/registry"
	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/watch"
)

type field int

const (
	fieldWorkdir field = iota
	fieldStrategy
	fieldAction
	fieldRepos
	fieldRun
	fieldCount
)

// DefaultMaxVisible is the height of the repository list when none is
// configured.
const DefaultMaxVisible = 14

const (
	logLines   = 12  // run output lines on screen
	logHistory = 500 // run output lines kept
)

// Options configures a dashboard.
type Options struct {
	Repos      []registry.Repo
	Workdir    string // configured working directory
	CurrentDir string // directory the program was started in
	UseCurrent bool   // start on CurrentDir instead of Workdir

	Strategy runner.Strategy
	Action   runner.Action

	MaxVisible   int
	StatusJobs   int
	FetchOnStart bool
	Watch        bool

	// NewRunner builds the runner for a working directory. Nil runs with
	// defaults and no hooks or history.
	NewRunner func(workdir string) *runner.Runner
	// Copy puts text on the clipboard. Nil uses the system clipboard.
	Copy   func(string) error
	Logger *log.Logger
}

type scanKind int

const (
	scanLocal scanKind = iota
	scanRemote
)

type scanState struct {
	active      bool
	done, total int
}

// Model is the dashboard state.
type Model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	useCurrent  bool
	strategy    runner.Strategy
	strategySet bool
	action      runner.Action
	selected    map[string]bool
	local       map[string]git.LocalStatus
	remote      map[string]git.RemoteStatus

	focus     field
	cursor    int   // position in visible
	offset    int   // first row of the scroll window
	visible   []int // indexes into opts.Repos
	filter    string
	filtering bool

	gen     int // bumped when the working directory changes
	scans   [2]scanState
	message string
	isError bool

	running   bool
	runHeader string
	log       []runner.Event
	logScroll int // lines hidden below the log window

	watcher  *watch.Watcher
	quitting bool
}

// New creates a dashboard. Background work stops when ctx is cancelled or
// the dashboard quits.
func New(ctx context.Context, opts Options) *Model {
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = DefaultMaxVisible
	}
	if opts.StatusJobs <= 0 {
		opts.StatusJobs = 1
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, false, true)
	}
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		useCurrent: opts.UseCurrent,
		strategy:   opts.Strategy,
		action:     opts.Action,
		selected:   make(map[string]bool, len(opts.Repos)),
		local:      map[string]git.LocalStatus{},
		remote:     map[string]git.RemoteStatus{},
		focus:      fieldWorkdir,
	}
	for _, repo := range opts.Repos {
		m.selected[repo.Name] = true
	}
	m.applyFilter()
	return m
}

// Workdir returns the active working directory.
func (m *Model) Workdir() string {
	if m.useCurrent {
		return m.opts.CurrentDir
	}
	return m.opts.Workdir
}

// Selected returns the selected repositories in registry order.
func (m *Model) Selected() []registry.Repo {
	var repos []registry.Repo
	for _, repo := range m.opts.Repos {
		if m.selected[repo.Name] {
			repos = append(repos, repo)
		}
	}
	return repos
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.scan(scanLocal)}
	if m.opts.FetchOnStart {
		cmds = append(cmds, m.scan(scanRemote))
	}
	cmds = append(cmds, m.startWatch())
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if s, ok := msg.(streamMsg); ok {
		return m, tea.Batch(m.handle(s.msg), listen(s.ch))
	}
	return m, m.handle(msg)
}

func (m *Model) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case scanProgressMsg:
		if msg.gen == m.gen && m.scans[msg.kind].active {
			st := &m.scans[msg.kind]
			st.done = max(st.done, msg.done)
			st.total = msg.total
		}

	case localScanMsg:
		if msg.gen != m.gen {
			return nil
		}
		m.scans[scanLocal] = scanState{}
		failed := 0
		for _, res := range msg.results {
			if res.Err != nil {
				failed++
				m.opts.Logger.Debug("local status failed", "repo", res.Repo, "error", res.Err)
			}
			m.local[res.Repo] = res.Status
		}
		m.scanFinished("Local status", failed)

	case remoteScanMsg:
		if msg.gen != m.gen {
			return nil
		}
		m.scans[scanRemote] = scanState{}
		failed := 0
		for _, res := range msg.results {
			if res.Err != nil {
				failed++
				m.opts.Logger.Debug("remote status failed", "repo", res.Repo, "error", res.Err)
			}
			m.remote[res.Repo] = res.Status
		}
		m.scanFinished("Remote status", failed)

	case watchMsg:
		next := listenWatch(msg.gen, msg.events)
		if msg.gen != m.gen || m.running {
			return next
		}
		return tea.Batch(next, m.probeLocal(msg.repo))

	case repoStatusMsg:
		if msg.gen == m.gen && msg.err == nil {
			m.local[msg.repo] = msg.status
		}

	case runEventMsg:
		m.log = append(m.log, msg.ev)
		if len(m.log) > logHistory {
			m.log = m.log[len(m.log)-logHistory:]
		}
		if m.logScroll > 0 {
			// keep a scrolled back window on the same lines
			m.scrollLog(1)
		}

	case runDoneMsg:
		return m.runFinished(msg)
	}
	return nil
}

func (m *Model) scanFinished(what string, failed int) {
	if failed > 0 {
		m.setError(fmt.Sprintf("%s refreshed, %s failed.", what, pluralize(failed, "repository", "repositories")))
		return
	}
	m.setMessage(what + " refreshed.")
}

func (m *Model) setMessage(text string) {
	m.message = text
	m.isError = false
}

func (m *Model) setError(text string) {
	m.message = text
	m.isError = true
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	m.stopWatch()
	return tea.Quit
}
