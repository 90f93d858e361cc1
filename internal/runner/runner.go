package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/history"
	"github.com/syncdash/syncdash/internal/hooks"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/registry"
)

// Runner applies an action to many repositories.
type Runner struct {
	Workdir     string
	Jobs        int              // repositories processed in parallel, at least 1
	Resolver    *config.Resolver // per-repository config; nil uses the defaults
	NoHook      bool
	HookEnv     map[string]string
	HistoryPath string      // empty disables history
	RunLog      *log.RunLog // may be nil
	Now         func() time.Time
}

// Request describes one run.
type Request struct {
	Repos    []registry.Repo
	Action   Action
	Strategy Strategy
	// StrategySet marks Strategy as an explicit choice. Otherwise each
	// repository uses its configured strategy (.syncdash.toml, then the
	// global config) and Strategy is the fallback.
	StrategySet bool
}

// Result is the outcome of a run.
type Result struct {
	Run     history.Run
	Reports []Report
}

// Failed returns the names of repositories that failed.
func (r Result) Failed() []string {
	var names []string
	for _, rep := range r.Reports {
		if rep.Failed {
			names = append(names, rep.Repo)
		}
	}
	return names
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) global() *config.Config {
	if r.Resolver != nil {
		return r.Resolver.Global()
	}
	cfg := config.Default()
	return &cfg
}

// Run processes req.Repos with up to Jobs in parallel. Events of each
// repository reach emit as one contiguous block, in request order; calls to
// emit are serialized. Individual repository failures are reported in the
// Result, not as an error.
func (r *Runner) Run(ctx context.Context, req Request, emit EmitFunc) (Result, error) {
	started := r.now()
	res := Result{Reports: make([]Report, len(req.Repos))}

	r.RunLog.Info("run started", "action", req.Action, "strategy", req.Strategy, "repos", len(req.Repos))

	jobs := max(r.Jobs, 1)
	ordered := newOrderedEmitter(len(req.Repos), emit)

	g := &errgroup.Group{}
	g.SetLimit(jobs)
	for i, repo := range req.Repos {
		g.Go(func() error {
			defer ordered.finish(i)
			res.Reports[i] = r.processOne(ctx, req, repo, ordered.forRepo(i))
			return nil
		})
	}
	_ = g.Wait()

	names := make([]string, len(req.Repos))
	for i, repo := range req.Repos {
		names[i] = repo.Name
	}
	strategy := req.Strategy.String()
	if !req.StrategySet && r.global().Strategy != "" {
		strategy = r.global().Strategy
	}
	res.Run = history.Run{
		Action:     req.Action.String(),
		Strategy:   strategy,
		Repos:      names,
		Failed:     res.Failed(),
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if req.Action.ReadOnly() {
		res.Run.Strategy = ""
	}

	r.RunLog.Info("run finished", "action", req.Action, "failed", len(res.Run.Failed), "duration", res.Run.Duration().Round(time.Millisecond))

	if err := r.record(res); err != nil {
		log.FromContext(ctx).Debug("recording history failed", "error", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) processOne(ctx context.Context, req Request, repo registry.Repo, emit EmitFunc) Report {
	path := repo.Dir(r.Workdir)
	cfg, cfgErr := r.repoConfig(path)

	strategy := req.Strategy
	if !req.StrategySet && cfg.Strategy != "" {
		if s, err := ParseStrategy(cfg.Strategy); err == nil {
			strategy = s
		}
	}

	opts := Options{
		Workdir:  r.Workdir,
		Action:   req.Action,
		Strategy: strategy,
		Commit:   cfg.Commit,
	}
	report := ProcessRepo(ctx, opts, repo, emit)
	if cfgErr != nil {
		ev := Event{Repo: repo.Name, Level: LevelWarn, Text: fmt.Sprintf("ignored %s: %v", config.LocalConfigFileName, cfgErr)}
		report.Events = append(report.Events, ev)
		emit(ev)
	}

	if req.Action == ActionPull || req.Action == ActionSync || report.Cloned {
		// a merge may have changed .syncdash.toml
		if r.Resolver != nil {
			r.Resolver.Invalidate(path)
		}
	}

	if report.Failed {
		r.RunLog.Error("repository failed", "repo", repo.Name, "action", req.Action, "error", report.Err)
	} else {
		r.RunLog.Info("repository done", "repo", repo.Name, "action", req.Action)
	}

	r.runHooks(ctx, cfg, repo, path, strategy, &report, emit)
	return report
}

func (r *Runner) repoConfig(path string) (*config.Config, error) {
	if r.Resolver == nil || !git.IsRepo(path) {
		return r.global(), nil
	}
	cfg, err := r.Resolver.ForRepo(path)
	if err != nil {
		return r.global(), err
	}
	return cfg, nil
}

// hookTrigger maps a finished report to the hook trigger it fires, if any.
func hookTrigger(report Report) (hooks.Trigger, bool) {
	if report.Failed {
		return "", false
	}
	if report.Cloned {
		return hooks.TriggerClone, true
	}
	switch report.Action {
	case ActionSync:
		return hooks.TriggerSync, true
	case ActionFetch:
		return hooks.TriggerFetch, true
	case ActionPull:
		return hooks.TriggerPull, true
	case ActionPush:
		return hooks.TriggerPush, true
	}
	return "", false
}

func (r *Runner) runHooks(ctx context.Context, cfg *config.Config, repo registry.Repo, path string, strategy Strategy, report *Report, emit EmitFunc) {
	trigger, ok := hookTrigger(*report)
	if !ok {
		return
	}
	matches, err := hooks.SelectHooks(cfg.Hooks, "", r.NoHook, trigger)
	if err != nil || len(matches) == 0 {
		return
	}

	hctx := hooks.ForRepo(path, repo.Name, report.Action.String(), strategy.String(), repo.URL, trigger, r.HookEnv)
	errs := hooks.RunAllNonFatal(ctx, matches, hctx, path, func(line string) {
		ev := Event{Repo: repo.Name, Level: LevelDetail, Text: line}
		report.Events = append(report.Events, ev)
		emit(ev)
	})
	for _, err := range errs {
		r.RunLog.Warn("hook failed", "repo", repo.Name, "error", err)
	}
}

func (r *Runner) record(res Result) error {
	if r.HistoryPath == "" {
		return nil
	}
	if err := history.Record(r.HistoryPath, res.Run); err != nil {
		return err
	}

	var fetched []string
	for _, rep := range res.Reports {
		if !rep.Failed && !rep.Cloned && (rep.Action == ActionFetch || rep.Action == ActionSync) {
			fetched = append(fetched, rep.Repo)
		}
	}
	return history.MarkFetched(r.HistoryPath, fetched, res.Run.FinishedAt)
}

// orderedEmitter forwards the events of repository i live while every
// repository before it has finished, and buffers them otherwise.
type orderedEmitter struct {
	mu      sync.Mutex
	emit    EmitFunc
	head    int
	pending [][]Event
	done    []bool
}

func newOrderedEmitter(n int, emit EmitFunc) *orderedEmitter {
	return &orderedEmitter{
		emit:    emit,
		pending: make([][]Event, n),
		done:    make([]bool, n),
	}
}

func (o *orderedEmitter) forRepo(i int) EmitFunc {
	return func(ev Event) {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.emit == nil {
			return
		}
		if i == o.head {
			o.emit(ev)
			return
		}
		o.pending[i] = append(o.pending[i], ev)
	}
}

func (o *orderedEmitter) finish(i int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done[i] = true
	for o.head < len(o.done) && o.done[o.head] {
		o.head++
		if o.head < len(o.pending) {
			if o.emit != nil {
				for _, ev := range o.pending[o.head] {
					o.emit(ev)
				}
			}
			o.pending[o.head] = nil
		}
	}
}
