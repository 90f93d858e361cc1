package drive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/syncdash/syncdash/internal/cmd"
	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/hooks"
	"github.com/syncdash/syncdash/internal/rclone"
)

// fakeRunner answers rclone, mount and fusermount calls from tables keyed
// by the command name plus its first argument.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	results map[string]cmd.Result
	outputs map[string]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]cmd.Result{}, outputs: map[string]string{}}
}

func (f *fakeRunner) record(name string, args []string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	if len(args) == 0 {
		return name
	}
	return name + " " + args[0]
}

func (f *fakeRunner) Run(_ context.Context, onLine func(string), name string, args ...string) (cmd.Result, error) {
	res := f.results[f.record(name, args)]
	if onLine != nil {
		for _, line := range res.Lines() {
			onLine(line)
		}
	}
	return res, nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return []byte(f.outputs[f.record(name, args)]), nil
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.record(name, args)
	return nil
}

func (f *fakeRunner) Attach(_ context.Context, name string, args ...string) error {
	f.record(name, args)
	return nil
}

func (f *fakeRunner) called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// useDefault answers a question with its default.
type useDefault struct{}

// scripted answers questions in order. An answer may be a value of the
// question's type, useDefault{} or an error.
type scripted struct {
	t         *testing.T
	answers   []any
	questions []string
	defaults  map[string]any
	pauses    int
}

func newScripted(t *testing.T, answers ...any) *scripted {
	return &scripted{t: t, answers: answers, defaults: map[string]any{}}
}

func (s *scripted) next(question string, def any) (any, error) {
	s.t.Helper()
	s.questions = append(s.questions, question)
	s.defaults[question] = def
	if len(s.answers) == 0 {
		s.t.Fatalf("unexpected question %q", question)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	switch a := a.(type) {
	case useDefault:
		return def, nil
	case error:
		return nil, a
	}
	return a, nil
}

func (s *scripted) Confirm(question string, def bool) (bool, error) {
	a, err := s.next(question, def)
	if err != nil {
		return false, err
	}
	return a.(bool), nil
}

func (s *scripted) Text(question, def string) (string, error) {
	a, err := s.next(question, def)
	if err != nil {
		return "", err
	}
	return a.(string), nil
}

func (s *scripted) Select(question string, options []string, def int) (int, error) {
	a, err := s.next(question, def)
	if err != nil {
		return 0, err
	}
	i := a.(int)
	if i < 0 || i >= len(options) {
		s.t.Fatalf("%q: answer %d out of range %v", question, i, options)
	}
	return i, nil
}

func (s *scripted) Pause() error {
	s.pauses++
	return nil
}

type hookCall struct {
	trigger       hooks.Trigger
	local, remote string
}

type fixture struct {
	runner  *fakeRunner
	prompt  *scripted
	out     *strings.Builder
	hooks   []hookCall
	session *Session
}

func newFixture(t *testing.T, answers ...any) *fixture {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default().Rclone
	cfg.Remote = "Gdrive"
	cfg.MountPath = filepath.Join(root, "Gdrive")
	cfg.LogDir = filepath.Join(root, "Gdrive", "system", ".rclone")
	cfg.BisyncBase = filepath.Join(root, "Syncs")
	cfg.MountSettle = time.Second

	f := &fixture{
		runner: newFakeRunner(),
		prompt: newScripted(t, answers...),
		out:    &strings.Builder{},
	}
	f.session = &Session{
		Manager: &rclone.Manager{
			Config:         cfg,
			Runner:         f.runner,
			GOOS:           "linux",
			BisyncStateDir: filepath.Join(root, "bisync"),
			Sleep:          func(time.Duration) {},
		},
		Prompt: f.prompt,
		Out:    f.out,
		AfterOp: func(_ context.Context, trigger hooks.Trigger, local, remote string) {
			f.hooks = append(f.hooks, hookCall{trigger, local, remote})
		},
	}
	return f
}

func (f *fixture) cfg() *config.RcloneConfig {
	return &f.session.Manager.Config
}

func (f *fixture) mountTable(lines ...string) {
	f.runner.outputs["mount"] = strings.Join(lines, "\n") + "\n"
}

func (f *fixture) assertOutput(t *testing.T, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(f.out.String(), w) {
			t.Errorf("output missing %q:\n%s", w, f.out.String())
		}
	}
}

func rcloneLine(source, mountpoint string) string {
	return fmt.Sprintf("%s on %s type fuse.rclone (rw,nosuid,nodev)", source, mountpoint)
}
