package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
)

// fixture is a workdir with repositories cloned from bare origins.
type fixture struct {
	root    string
	workdir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	workdir := filepath.Join(root, "work")
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &fixture{root: root, workdir: workdir}
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := git.RunGitCommand(context.Background(), dir, args...); err != nil {
		t.Fatalf("git %v in %s: %v", args, dir, err)
	}
}

func configure(t *testing.T, dir string) {
	t.Helper()
	gitRun(t, dir, "config", "user.email", "test@test.com")
	gitRun(t, dir, "config", "user.name", "Test User")
	gitRun(t, dir, "config", "commit.gpgsign", "false")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func commit(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	writeFile(t, dir, name, content)
	gitRun(t, dir, "add", name)
	gitRun(t, dir, "commit", "-m", msg)
}

// origin creates a bare origin with one commit and returns the registry
// entry for it. The repository is not cloned into the workdir.
func (f *fixture) origin(t *testing.T, name string) registry.Repo {
	t.Helper()
	originPath := filepath.Join(f.root, "origins", name+".git")
	gitRun(t, "", "init", "--bare", "-b", "main", originPath)

	seed := filepath.Join(f.root, "seed", name)
	gitRun(t, "", "clone", originPath, seed)
	configure(t, seed)
	commit(t, seed, "README.md", "# "+name+"\n", "Initial commit")
	gitRun(t, seed, "push", "-u", "origin", "HEAD")

	return registry.Repo{Name: name, URL: originPath}
}

// cloned creates an origin and clones it into the workdir.
func (f *fixture) cloned(t *testing.T, name string) (registry.Repo, string) {
	t.Helper()
	repo := f.origin(t, name)
	path := repo.Dir(f.workdir)
	gitRun(t, "", "clone", repo.URL, path)
	configure(t, path)
	return repo, path
}

// pushRemote commits a file through a separate clone of repo's origin.
func (f *fixture) pushRemote(t *testing.T, repo registry.Repo, file, content string) {
	t.Helper()
	other, err := os.MkdirTemp(f.root, "other-")
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(other, repo.Name)
	gitRun(t, "", "clone", repo.URL, dir)
	configure(t, dir)
	commit(t, dir, file, content, "remote change")
	gitRun(t, dir, "push")
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	res, err := git.RunGitOutput(context.Background(), dir, args...)
	if err != nil {
		t.Fatalf("git %v in %s: %v", args, dir, err)
	}
	return res
}

func texts(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Format()
	}
	return out
}

func collect() (*[]Event, EmitFunc) {
	var events []Event
	return &events, func(ev Event) { events = append(events, ev) }
}
