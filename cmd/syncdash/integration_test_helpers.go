//go:build integration

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/registry"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// testEnv is an isolated HOME with a working directory for clones.
type testEnv struct {
	home    string
	workdir string
	cfg     *config.Config
	out     *bytes.Buffer
}

// setupEnv points HOME at a temp dir and gives git an identity.
// Tests using it must not run in parallel.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	home := resolvePath(t, t.TempDir())
	t.Setenv("HOME", home)
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")

	workdir := filepath.Join(home, "Git")
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Workdir = workdir
	cfg.SafeDirectory = false
	cfg.Rclone.MountPath = filepath.Join(home, "Gdrive")
	cfg.Rclone.LogDir = filepath.Join(home, "Gdrive", "system", ".rclone")

	return &testEnv{home: home, workdir: workdir, cfg: &cfg, out: &bytes.Buffer{}}
}

// context carries the env's config and captures primary output.
func (e *testEnv) context() context.Context {
	ctx := context.Background()
	ctx = config.WithConfig(ctx, e.cfg)
	ctx = config.WithWorkDir(ctx, e.workdir)
	ctx = config.WithResolver(ctx, config.NewResolver(e.cfg))
	ctx = log.WithLogger(ctx, log.New(io.Discard, false, true))
	return output.WithPrinter(ctx, e.out)
}

// execute runs cmd with args and returns its output.
func (e *testEnv) execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	e.out.Reset()
	cmd.SetContext(e.context())
	cmd.SetArgs(args)
	err := cmd.Execute()
	return e.out.String(), err
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v in %s: %v\n%s", args, dir, err, out)
	}
	return string(bytes.TrimSpace(out))
}

// setupOrigin creates a bare repository with one commit below the env's
// home and returns its URL.
func (e *testEnv) setupOrigin(t *testing.T, name string) string {
	t.Helper()

	origin := filepath.Join(e.home, "origins", name+".git")
	runGit(t, e.home, "init", "--bare", "-b", "main", origin)

	seed := filepath.Join(e.home, "seed", name)
	runGit(t, e.home, "clone", origin, seed)
	if err := os.WriteFile(filepath.Join(seed, "README.md"), []byte("# "+name+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, seed, "add", "README.md")
	runGit(t, seed, "-c", "commit.gpgsign=false", "commit", "-m", "Initial commit")
	runGit(t, seed, "push", "-u", "origin", "HEAD")
	return origin
}

// register saves repos to the registry in the env's HOME.
func (e *testEnv) register(t *testing.T, repos ...registry.Repo) {
	t.Helper()
	reg, err := registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, repo := range repos {
		if err := reg.Add(repo); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.Save(); err != nil {
		t.Fatal(err)
	}
}
