//go:build integration

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/syncdash/syncdash/internal/registry"
)

// TestRepos_AddListRemove tests the registry round trip.
//
// Scenario: User adds a repo with labels, lists it, then removes it
// Expected: The list shows the repo and its labels; remove empties the registry
func TestRepos_AddListRemove(t *testing.T) {
	// Not parallel - modifies HOME
	env := setupEnv(t)

	out, err := env.execute(t, newReposCmd(), "add", "git@github.com:me/notes.git", "-l", "private,work")
	if err != nil {
		t.Fatalf("repos add failed: %v", err)
	}
	if !strings.Contains(out, "Registered notes") {
		t.Errorf("unexpected add output: %q", out)
	}

	out, err = env.execute(t, newReposCmd())
	if err != nil {
		t.Fatalf("repos failed: %v", err)
	}
	for _, want := range []string{"notes", "git@github.com:me/notes.git", "private, work"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	if _, err := env.execute(t, newReposCmd(), "remove", "notes"); err != nil {
		t.Fatalf("repos remove failed: %v", err)
	}
	reg, err := registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Repos) != 0 {
		t.Errorf("expected empty registry, got %v", reg.Repos)
	}
}

// TestRepos_AddDuplicate tests that a name can only be registered once.
func TestRepos_AddDuplicate(t *testing.T) {
	env := setupEnv(t)
	env.register(t, registry.Repo{Name: "notes", URL: "git@github.com:me/notes.git"})

	_, err := env.execute(t, newReposCmd(), "add", "git@github.com:other/notes.git")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected duplicate name error, got %v", err)
	}
}

// TestRepos_ListJSON tests machine-readable output filtered by label.
func TestRepos_ListJSON(t *testing.T) {
	env := setupEnv(t)
	env.register(t,
		registry.Repo{Name: "notes", URL: "u1", Labels: []string{"private"}},
		registry.Repo{Name: "dotfiles", URL: "u2", Labels: []string{"public"}},
	)

	out, err := env.execute(t, newReposCmd(), "list", "--json", "-l", "public")
	if err != nil {
		t.Fatal(err)
	}
	var repos []registry.Repo
	if err := json.Unmarshal([]byte(out), &repos); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(repos) != 1 || repos[0].Name != "dotfiles" {
		t.Errorf("got %+v, want only dotfiles", repos)
	}

	out, err = env.execute(t, newReposCmd(), "list", "--json", "-l", "missing")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty selection = %q, want []", out)
	}
}

// TestRepos_Label tests adding and removing labels.
func TestRepos_Label(t *testing.T) {
	env := setupEnv(t)
	env.register(t, registry.Repo{Name: "notes", URL: "u1"})

	if _, err := env.execute(t, newReposCmd(), "label", "add", "notes", "work"); err != nil {
		t.Fatal(err)
	}
	reg, _ := registry.Load()
	repo, _ := reg.FindByName("notes")
	if !repo.HasLabel("work") {
		t.Fatalf("label not added: %v", repo.Labels)
	}

	if _, err := env.execute(t, newReposCmd(), "label", "remove", "notes", "work"); err != nil {
		t.Fatal(err)
	}
	reg, _ = registry.Load()
	repo, _ = reg.FindByName("notes")
	if repo.HasLabel("work") {
		t.Errorf("label not removed: %v", repo.Labels)
	}

	if _, err := env.execute(t, newReposCmd(), "label", "add", "missing", "work"); err == nil {
		t.Error("expected an error for an unknown repository")
	}
}

// TestRepos_Init tests seeding the example registry twice.
func TestRepos_Init(t *testing.T) {
	env := setupEnv(t)

	out, err := env.execute(t, newReposCmd(), "init")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Registered 4 repositories") {
		t.Errorf("unexpected init output: %q", out)
	}
	reg, _ := registry.Load()
	if !slices.Equal(reg.AllLabels(), []string{"private", "public"}) {
		t.Errorf("labels = %v", reg.AllLabels())
	}

	out, err = env.execute(t, newReposCmd(), "init")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already registered") {
		t.Errorf("second init output: %q", out)
	}
}

// TestRepos_Import tests registering existing clones.
//
// Scenario: The workdir holds a clone with origin, one without, and a plain dir
// Expected: Only the clone with an origin is registered
func TestRepos_Import(t *testing.T) {
	env := setupEnv(t)

	url := env.setupOrigin(t, "notes")
	runGit(t, env.workdir, "clone", url, "notes")
	runGit(t, env.workdir, "init", "-b", "main", "scratch")
	if err := os.MkdirAll(filepath.Join(env.workdir, "plain"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := env.execute(t, newReposCmd(), "import", "-l", "work")
	if err != nil {
		t.Fatalf("repos import failed: %v", err)
	}
	if !strings.Contains(out, "Registered 1 repository: notes") {
		t.Errorf("unexpected import output: %q", out)
	}

	reg, _ := registry.Load()
	if !slices.Equal(reg.Names(), []string{"notes"}) {
		t.Fatalf("registered %v, want [notes]", reg.Names())
	}
	repo, _ := reg.FindByName("notes")
	if repo.URL != url || !repo.HasLabel("work") {
		t.Errorf("imported %+v", repo)
	}
}

// TestPath tests printing a repository path.
func TestPath(t *testing.T) {
	env := setupEnv(t)
	env.register(t, registry.Repo{Name: "notes", URL: "u1"})

	out, err := env.execute(t, newPathCmd(), "notes")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(env.workdir, "notes"); strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", out, want)
	}

	if _, err := env.execute(t, newPathCmd(), "missing"); err == nil {
		t.Error("expected an error for an unknown repository")
	}
}
