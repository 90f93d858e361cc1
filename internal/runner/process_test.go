package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
)

// steps returns the formatted events without subprocess output.
func steps(events []Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Level != LevelDetail {
			out = append(out, ev.Format())
		}
	}
	return out
}

func details(events []Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Level == LevelDetail {
			out = append(out, ev.Text)
		}
	}
	return out
}

func opts(workdir string, action Action, strategy Strategy) Options {
	return Options{
		Workdir:  workdir,
		Action:   action,
		Strategy: strategy,
		Commit:   config.Default().Commit,
	}
}

func assertSteps(t *testing.T, report Report, want []string) {
	t.Helper()
	got := steps(report.Events)
	if !slices.Equal(got, want) {
		t.Errorf("steps mismatch\ngot:\n%s\nwant:\n%s\ndetails:\n%s",
			strings.Join(got, "\n"), strings.Join(want, "\n"), strings.Join(details(report.Events), "\n"))
	}
}

func TestProcessRepo_Missing(t *testing.T) {
	t.Parallel()

	t.Run("clones for write actions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		repo := f.origin(t, "notes")

		events, emit := collect()
		report := ProcessRepo(context.Background(), opts(f.workdir, ActionSync, StrategyRemote), repo, emit)

		assertSteps(t, report, []string{
			"==> Processing 'notes'",
			"  Cloning 'notes'...",
			"  ✓ Clone complete.",
		})
		if !report.Cloned || report.Failed {
			t.Errorf("Cloned = %v, Failed = %v, want true, false", report.Cloned, report.Failed)
		}
		if !git.IsRepo(repo.Dir(f.workdir)) {
			t.Error("repository was not cloned")
		}
		if len(*events) != len(report.Events) {
			t.Errorf("emitted %d events, report has %d", len(*events), len(report.Events))
		}
	})

	t.Run("read-only actions only warn", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		repo := registry.Repo{Name: "notes", URL: "/nonexistent"}

		for _, action := range []Action{ActionStatus, ActionUntracked, ActionIgnored} {
			report := ProcessRepo(context.Background(), opts(f.workdir, action, StrategyRemote), repo, nil)
			assertSteps(t, report, []string{
				"==> Processing 'notes'",
				"  ⚠ Repository not cloned yet",
			})
			if report.Failed || report.Cloned {
				t.Errorf("%s: Failed = %v, Cloned = %v", action, report.Failed, report.Cloned)
			}
		}
		if git.Exists(repo.Dir(f.workdir)) {
			t.Error("read-only action created the repository directory")
		}
	})

	t.Run("clone failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		repo := registry.Repo{Name: "ghost", URL: filepath.Join(f.root, "missing.git")}

		report := ProcessRepo(context.Background(), opts(f.workdir, ActionPull, StrategyRemote), repo, nil)
		assertSteps(t, report, []string{
			"==> Processing 'ghost'",
			"  Cloning 'ghost'...",
			"  ✗ Clone failed.",
		})
		if !report.Failed {
			t.Error("Failed = false, want true")
		}
		if len(details(report.Events)) == 0 {
			t.Error("clone error output was not echoed")
		}
	})

	t.Run("no URL", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		report := ProcessRepo(context.Background(), opts(f.workdir, ActionPush, StrategyRemote), registry.Repo{Name: "local-only"}, nil)
		assertSteps(t, report, []string{
			"==> Processing 'local-only'",
			"  ✗ No URL registered, cannot clone.",
		})
	})
}

func TestProcessRepo_StatusError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, _ := f.cloned(t, "notes")

	ctx := git.WithCommandTimeout(context.Background(), time.Nanosecond)
	report := ProcessRepo(ctx, opts(f.workdir, ActionStatus, StrategyRemote), repo, nil)
	if !report.Failed || report.Err == nil {
		t.Fatalf("Failed = %v, Err = %v, want failed with error", report.Failed, report.Err)
	}
	got := steps(report.Events)
	if !slices.Contains(got, "  ✗ Status check failed.") {
		t.Errorf("missing failure line in:\n%s", strings.Join(got, "\n"))
	}
	if slices.Contains(got, "  ⚠ Branch does not track a remote") {
		t.Error("a failed check should not go on to report the upstream")
	}
}

func TestProcessRepo_NotARepo(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	dir := filepath.Join(f.workdir, "plain")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	report := ProcessRepo(context.Background(), opts(f.workdir, ActionSync, StrategyRemote), registry.Repo{Name: "plain"}, nil)
	assertSteps(t, report, []string{
		"==> Processing 'plain'",
		"  ✗ Not a git repository: " + dir,
	})
	if !report.Failed {
		t.Error("Failed = false, want true")
	}
}

func TestProcessRepo_Sync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")
	f.pushRemote(t, repo, "remote.txt", "from elsewhere\n")
	writeFile(t, path, "README.md", "local edit\n")

	report := ProcessRepo(ctx, opts(f.workdir, ActionSync, StrategyRemote), repo, nil)
	assertSteps(t, report, []string{
		"==> Processing 'notes'",
		"  Found uncommitted changes, committing before sync...",
		"  ✓ Changes committed.",
		"  Fetching latest changes from remote...",
		"  ✓ Fetch complete.",
		"  Pulling with strategy: theirs",
		"  ✓ Pull complete.",
		"  Pushing changes...",
		"  ✓ Push complete.",
	})
	if report.Failed {
		t.Fatalf("sync failed: %v", report.Err)
	}

	if got := gitOutput(t, repo.URL, "show", "main:README.md"); got != "local edit" {
		t.Errorf("origin README.md = %q, want %q", got, "local edit")
	}
	if _, err := os.Stat(filepath.Join(path, "remote.txt")); err != nil {
		t.Errorf("remote change not pulled: %v", err)
	}
	if got := gitOutput(t, path, "log", "-1", "--format=%s", "HEAD^1"); got != config.DefaultBeforeSync {
		t.Errorf("auto-commit message = %q, want %q", got, config.DefaultBeforeSync)
	}
}

func TestProcessRepo_SyncFetchFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")
	gitRun(t, path, "remote", "set-url", "origin", filepath.Join(f.root, "gone.git"))

	report := ProcessRepo(context.Background(), opts(f.workdir, ActionSync, StrategyRemote), repo, nil)
	assertSteps(t, report, []string{
		"==> Processing 'notes'",
		"  Fetching latest changes from remote...",
		"  ✗ Fetch failed.",
	})
	if !report.Failed {
		t.Error("Failed = false, want true")
	}
}

func TestProcessRepo_Push(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")
	writeFile(t, path, "todo.txt", "write tests\n")

	o := opts(f.workdir, ActionPush, StrategyRemote)
	o.Commit.Message = "wip"
	report := ProcessRepo(context.Background(), o, repo, nil)
	assertSteps(t, report, []string{
		"==> Processing 'notes'",
		"  Found changes, committing with default message 'wip'...",
		"  ✓ Commit complete.",
		"  Pushing changes...",
		"  ✓ Push complete.",
	})
	if got := gitOutput(t, repo.URL, "log", "-1", "--format=%s", "main"); got != "wip" {
		t.Errorf("origin head subject = %q, want %q", got, "wip")
	}
}

func TestProcessRepo_PushNothingStaged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, _ := f.cloned(t, "notes")

	report := ProcessRepo(context.Background(), opts(f.workdir, ActionPush, StrategyRemote), repo, nil)
	assertSteps(t, report, []string{
		"==> Processing 'notes'",
		"  Pushing changes...",
		"  ✓ Push complete.",
	})
}

func TestProcessRepo_PullStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyLocal, "local\n"},
		{StrategyRemote, "remote\n"},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			repo, path := f.cloned(t, "notes")
			f.pushRemote(t, repo, "README.md", "remote\n")
			writeFile(t, path, "README.md", "local\n")

			report := ProcessRepo(context.Background(), opts(f.workdir, ActionPull, tt.strategy), repo, nil)
			assertSteps(t, report, []string{
				"==> Processing 'notes'",
				"  Found uncommitted changes, committing before pull...",
				"  ✓ Changes committed.",
				"  Pulling with strategy: " + tt.strategy.GitOption(),
				"  ✓ Pull complete.",
			})

			data, err := os.ReadFile(filepath.Join(path, "README.md"))
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("README.md = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestProcessRepo_Status(t *testing.T) {
	t.Parallel()

	t.Run("clean and pushed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		repo, _ := f.cloned(t, "notes")

		report := ProcessRepo(context.Background(), opts(f.workdir, ActionStatus, StrategyRemote), repo, nil)
		assertSteps(t, report, []string{
			"==> Processing 'notes'",
			"  Checking 'notes'",
			"  ✓ Working tree clean",
			"  ✓ All commits pushed",
		})
	})

	t.Run("dirty and unpushed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		repo, path := f.cloned(t, "notes")
		commit(t, path, "a.txt", "a\n", "local only")
		writeFile(t, path, "README.md", "changed\n")

		report := ProcessRepo(context.Background(), opts(f.workdir, ActionStatus, StrategyRemote), repo, nil)
		assertSteps(t, report, []string{
			"==> Processing 'notes'",
			"  Checking 'notes'",
			"  ⚠ Has uncommitted changes",
			"  ⚠ Has 1 unpushed commit(s)",
		})
		d := details(report.Events)
		if len(d) != 1 || !strings.Contains(d[0], "README.md") {
			t.Errorf("status preview = %q, want one README.md line", d)
		}
		if report.Failed {
			t.Error("status should never fail the report")
		}
	})

	t.Run("no upstream", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		path := filepath.Join(f.workdir, "scratch")
		gitRun(t, "", "init", "-b", "main", path)
		configure(t, path)
		commit(t, path, "README.md", "x\n", "init")

		report := ProcessRepo(context.Background(), opts(f.workdir, ActionStatus, StrategyRemote), registry.Repo{Name: "scratch"}, nil)
		assertSteps(t, report, []string{
			"==> Processing 'scratch'",
			"  Checking 'scratch'",
			"  ✓ Working tree clean",
			"  ⚠ Branch does not track a remote",
		})
	})
}

func TestProcessRepo_Fetch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")
	f.pushRemote(t, repo, "remote.txt", "x\n")

	report := ProcessRepo(context.Background(), opts(f.workdir, ActionFetch, StrategyRemote), repo, nil)
	assertSteps(t, report, []string{
		"==> Processing 'notes'",
		"  Fetching in 'notes'...",
		"  ✓ Fetch complete.",
	})
	st, err := git.GetRemoteStatus(context.Background(), path, false)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != git.RemoteToPull || st.Behind != 1 {
		t.Errorf("remote status after fetch = %v, want 1 To Pull", st)
	}
}

func TestProcessRepo_ListFiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, path := f.cloned(t, "notes")

	clean := ProcessRepo(context.Background(), opts(f.workdir, ActionUntracked, StrategyRemote), repo, nil)
	assertSteps(t, clean, []string{
		"==> Processing 'notes'",
		"  Checking 'notes'",
		"  ✓ No untracked files",
	})

	commit(t, path, ".gitignore", "*.log\n", "ignore logs")
	for i := range 12 {
		writeFile(t, path, fmt.Sprintf("new-%02d.txt", i), "x\n")
	}
	writeFile(t, path, "debug.log", "x\n")

	untracked := ProcessRepo(context.Background(), opts(f.workdir, ActionUntracked, StrategyRemote), repo, nil)
	assertSteps(t, untracked, []string{
		"==> Processing 'notes'",
		"  Checking 'notes'",
		"  ⚠ Has 12 untracked file(s)",
	})
	if d := details(untracked.Events); len(d) != 10 || d[0] != "new-00.txt" {
		t.Errorf("untracked preview = %q, want the first 10 files", d)
	}

	ignored := ProcessRepo(context.Background(), opts(f.workdir, ActionIgnored, StrategyRemote), repo, nil)
	assertSteps(t, ignored, []string{
		"==> Processing 'notes'",
		"  Checking 'notes'",
		"  ⚠ Has 1 ignored file(s)",
	})
	if d := details(ignored.Events); !slices.Equal(d, []string{"debug.log"}) {
		t.Errorf("ignored preview = %q", d)
	}
}

func TestProcessRepo_Cancelled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repo, _ := f.cloned(t, "notes")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := ProcessRepo(ctx, opts(f.workdir, ActionFetch, StrategyRemote), repo, nil)
	if !report.Failed || report.Err == nil {
		t.Errorf("Failed = %v, Err = %v, want failed with error", report.Failed, report.Err)
	}
}
