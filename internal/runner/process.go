package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
)

const (
	statusPreviewLines = 5
	filePreviewLines   = 10
)

// Options configure a single ProcessRepo call.
type Options struct {
	Workdir  string
	Action   Action
	Strategy Strategy
	Commit   config.CommitConfig
}

// Report is the outcome of processing one repository.
type Report struct {
	Repo   string
	Action Action
	Events []Event
	Failed bool
	Cloned bool  // the repository was missing and a clone was attempted
	Err    error // error that prevented git from running (timeout, cancellation)
}

// step wraps the event stream of one repository.
type step struct {
	ctx    context.Context
	path   string
	emit   EmitFunc
	report *Report
}

func (s *step) add(level Level, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	ev := Event{Repo: s.report.Repo, Level: level, Text: text}
	s.report.Events = append(s.report.Events, ev)
	if s.emit != nil {
		s.emit(ev)
	}
}

func (s *step) detail(line string) {
	s.add(LevelDetail, "%s", line)
}

// ok reports whether a git command ran and exited zero. Run errors are
// recorded on the report and shown as detail lines.
func (s *step) ok(res git.Output, err error) bool {
	if err != nil {
		if s.report.Err == nil {
			s.report.Err = err
		}
		s.detail(err.Error())
		return false
	}
	return res.OK()
}

// outcome emits the success or failure line of a step and marks the
// report failed on failure.
func (s *step) outcome(succeeded bool, success, failure string) bool {
	if succeeded {
		s.add(LevelSuccess, "%s", success)
		return true
	}
	s.report.Failed = true
	s.add(LevelError, "%s", failure)
	return false
}

// ProcessRepo applies opts.Action to repo and reports every step through
// emit. A repository whose directory does not exist is cloned instead
// (read-only actions only warn).
func ProcessRepo(ctx context.Context, opts Options, repo registry.Repo, emit EmitFunc) Report {
	report := Report{Repo: repo.Name, Action: opts.Action}
	s := &step{ctx: ctx, path: repo.Dir(opts.Workdir), emit: emit, report: &report}

	s.add(LevelHeader, "Processing '%s'", repo.Name)

	if !git.Exists(s.path) {
		if opts.Action.ReadOnly() {
			s.add(LevelWarn, "Repository not cloned yet")
			return report
		}
		s.clone(opts.Workdir, repo)
		return report
	}
	if !git.IsRepo(s.path) {
		s.report.Failed = true
		s.add(LevelError, "Not a git repository: %s", s.path)
		return report
	}

	switch opts.Action {
	case ActionSync:
		s.sync(opts)
	case ActionPush:
		s.push(opts)
	case ActionPull:
		s.pull(opts)
	case ActionStatus:
		s.status(repo.Name)
	case ActionFetch:
		s.fetch(repo.Name)
	case ActionUntracked:
		s.listFiles(repo.Name, "untracked", git.Untracked)
	case ActionIgnored:
		s.listFiles(repo.Name, "ignored", git.Ignored)
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		report.Err = ctx.Err()
		report.Failed = true
	}
	return report
}

func (s *step) clone(workdir string, repo registry.Repo) {
	s.report.Cloned = true
	if repo.URL == "" {
		s.outcome(false, "", "No URL registered, cannot clone.")
		return
	}
	s.add(LevelInfo, "Cloning '%s'...", repo.Name)
	res, err := git.Clone(s.ctx, workdir, repo.URL, repo.Name, s.detail)
	s.outcome(s.ok(res, err), "Clone complete.", "Clone failed.")
}

// commitDirty commits tracked changes with message when the tree is dirty.
// It returns false when a commit was needed and failed.
func (s *step) commitDirty(message, announce string) bool {
	dirty, err := git.HasUncommitted(s.ctx, s.path)
	if err != nil {
		s.ok(git.Output{}, err)
		s.report.Failed = true
		return false
	}
	if !dirty {
		return true
	}
	s.add(LevelInfo, "%s", announce)
	_, _ = git.AddAll(s.ctx, s.path)
	res, err := git.Commit(s.ctx, s.path, message, s.detail)
	return s.outcome(s.ok(res, err), "Changes committed.", "Commit failed.")
}

// commitStaged stages everything and commits with message if anything is staged.
func (s *step) commitStaged(message string) {
	if _, err := git.AddAll(s.ctx, s.path); err != nil {
		s.ok(git.Output{}, err)
		return
	}
	staged, err := git.HasStaged(s.ctx, s.path)
	if err != nil {
		s.ok(git.Output{}, err)
		return
	}
	if !staged {
		return
	}
	s.add(LevelInfo, "Found changes, committing with default message '%s'...", message)
	res, err := git.Commit(s.ctx, s.path, message, s.detail)
	if s.ok(res, err) {
		s.add(LevelSuccess, "Commit complete.")
	}
}

func (s *step) pushChanges() {
	s.add(LevelInfo, "Pushing changes...")
	res, err := git.Push(s.ctx, s.path, s.detail)
	s.outcome(s.ok(res, err), "Push complete.", "Push failed.")
}

func (s *step) pullWith(strategy Strategy) bool {
	s.add(LevelInfo, "Pulling with strategy: %s", strategy.GitOption())
	res, err := git.Pull(s.ctx, s.path, strategy.GitOption(), s.detail)
	return s.outcome(s.ok(res, err), "Pull complete.", "Pull failed.")
}

func (s *step) sync(opts Options) {
	if !s.commitDirty(opts.Commit.BeforeSync, "Found uncommitted changes, committing before sync...") {
		return
	}

	s.add(LevelInfo, "Fetching latest changes from remote...")
	res, err := git.Fetch(s.ctx, s.path, s.detail)
	if !s.outcome(s.ok(res, err), "Fetch complete.", "Fetch failed.") {
		return
	}

	if !s.pullWith(opts.Strategy) {
		return
	}
	s.commitStaged(opts.Commit.Message)
	s.pushChanges()
}

func (s *step) push(opts Options) {
	s.commitStaged(opts.Commit.Message)
	s.pushChanges()
}

func (s *step) pull(opts Options) {
	dirty, err := git.HasUncommitted(s.ctx, s.path)
	if err != nil {
		s.ok(git.Output{}, err)
	} else if dirty {
		s.add(LevelInfo, "Found uncommitted changes, committing before pull...")
		_, _ = git.AddAll(s.ctx, s.path)
		res, err := git.Commit(s.ctx, s.path, opts.Commit.BeforePull, s.detail)
		if s.ok(res, err) {
			s.add(LevelSuccess, "Changes committed.")
		}
	}
	s.pullWith(opts.Strategy)
}

func (s *step) status(name string) {
	s.add(LevelInfo, "Checking '%s'", name)

	dirty, err := git.HasUncommitted(s.ctx, s.path)
	switch {
	case err != nil:
		s.ok(git.Output{}, err)
		s.outcome(false, "", "Status check failed.")
		return
	case dirty:
		s.add(LevelWarn, "Has uncommitted changes")
		lines, _ := git.ShortStatus(s.ctx, s.path)
		for _, line := range head(lines, statusPreviewLines) {
			s.detail(line)
		}
	default:
		s.add(LevelSuccess, "Working tree clean")
	}

	unpushed, err := git.CountUnpushed(s.ctx, s.path)
	switch {
	case err == nil && unpushed > 0:
		s.add(LevelWarn, "Has %d unpushed commit(s)", unpushed)
	case git.HasUpstream(s.ctx, s.path):
		s.add(LevelSuccess, "All commits pushed")
	default:
		s.add(LevelWarn, "Branch does not track a remote")
	}
}

func (s *step) fetch(name string) {
	s.add(LevelInfo, "Fetching in '%s'...", name)
	res, err := git.Fetch(s.ctx, s.path, s.detail)
	s.outcome(s.ok(res, err), "Fetch complete.", "Fetch failed.")
}

func (s *step) listFiles(name, kind string, list func(context.Context, string) ([]string, error)) {
	s.add(LevelInfo, "Checking '%s'", name)
	files, err := list(s.ctx, s.path)
	if err != nil {
		s.ok(git.Output{}, err)
		s.report.Failed = true
		return
	}
	if len(files) == 0 {
		s.add(LevelSuccess, "No %s files", kind)
		return
	}
	s.add(LevelWarn, "Has %d %s file(s)", len(files), kind)
	for _, f := range head(files, filePreviewLines) {
		s.detail(f)
	}
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
