package drive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/syncdash/syncdash/internal/cmd"
	"github.com/syncdash/syncdash/internal/hooks"
)

func TestSession_Mount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t,
		useDefault{}, // remote
		false,        // mount root folder?
		1,            // folder
		useDefault{}, // local mountpoint
		useDefault{}, // mode
	)
	f.cfg().Remote = "Work"
	f.runner.outputs["rclone listremotes"] = "Gdrive:\nWork:\n"
	f.runner.outputs["rclone lsf"] = "Docs/\nPhotos/\n"
	f.mountTable(rcloneLine("Work:Photos", f.cfg().MountPath))

	if err := f.session.Do(ctx, ItemMount); err != nil {
		t.Fatalf("mount: %v", err)
	}

	if def := f.prompt.defaults["Select remote"]; def != 1 {
		t.Errorf("remote default = %v, want the configured remote at 1", def)
	}
	if def := f.prompt.defaults["Select folder"]; def != 2 {
		t.Errorf("folder default = %v, want custom path at 2", def)
	}
	if !f.runner.called("rclone mount Work:Photos " + f.cfg().MountPath) {
		t.Errorf("rclone mount not called: %v", f.runner.calls)
	}
	f.assertOutput(t, "Successfully mounted!")

	want := []hookCall{{hooks.TriggerMount, f.cfg().MountPath, "Work:Photos"}}
	if !slices.Equal(f.hooks, want) {
		t.Errorf("hooks = %v, want %v", f.hooks, want)
	}
}

func TestSession_MountUnverified(t *testing.T) {
	t.Parallel()

	f := newFixture(t, useDefault{}, true, useDefault{}, useDefault{})
	f.runner.outputs["rclone listremotes"] = "Gdrive:\n"

	if err := f.session.Do(context.Background(), ItemMount); err != nil {
		t.Fatalf("mount: %v", err)
	}
	f.assertOutput(t, "Mounting Gdrive: to", "not visible yet")
	if len(f.hooks) != 1 {
		t.Errorf("hooks = %v, want one mount hook", f.hooks)
	}
}

func TestSession_MountNoRemotes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	err := f.session.Do(context.Background(), ItemMount)
	if !errors.Is(err, errNoRemotes) {
		t.Errorf("mount error = %v, want errNoRemotes", err)
	}
}

func TestSession_Unmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		exitCode  int
		wantErr   bool
		wantHint  bool
		wantHooks int
	}{
		{name: "success", exitCode: 0, wantHooks: 1},
		{name: "failure suggests force", exitCode: 1, wantErr: true, wantHint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t,
				0,     // mount
				false, // force?
			)
			mountpoint := f.cfg().MountPath
			f.mountTable(
				"/dev/sda1 on / type ext4 (rw)",
				rcloneLine("Gdrive:", mountpoint),
			)
			f.runner.results["fusermount -u"] = cmd.Result{ExitCode: tt.exitCode, Output: "device busy"}

			err := f.session.Do(context.Background(), ItemUnmount)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unmount error = %v, wantErr %v", err, tt.wantErr)
			}
			if !f.runner.called("fusermount -u " + mountpoint) {
				t.Errorf("fusermount not called: %v", f.runner.calls)
			}
			if got := strings.Contains(f.out.String(), "Try a forced unmount"); got != tt.wantHint {
				t.Errorf("hint shown = %v, want %v", got, tt.wantHint)
			}
			if len(f.hooks) != tt.wantHooks {
				t.Fatalf("hooks = %v, want %d", f.hooks, tt.wantHooks)
			}
			if tt.wantHooks > 0 && (f.hooks[0].trigger != hooks.TriggerUmount || f.hooks[0].remote != "Gdrive:") {
				t.Errorf("hook = %+v", f.hooks[0])
			}
		})
	}
}

func TestSession_UnmountCustomPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "/mnt/elsewhere", true)
	if err := f.session.Do(context.Background(), ItemUnmount); err != nil {
		t.Fatal(err)
	}
	f.assertOutput(t, "No rclone mounts found", "Force unmounting /mnt/elsewhere")
	if !f.runner.called("fusermount -uz /mnt/elsewhere") {
		t.Errorf("forced unmount not called: %v", f.runner.calls)
	}
}

func TestSession_Check(t *testing.T) {
	t.Parallel()

	f := newFixture(t, useDefault{}, useDefault{}, "Docs, Missing")
	if err := os.MkdirAll(filepath.Join(f.cfg().BisyncBase, "Docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	f.runner.results["rclone check"] = cmd.Result{ExitCode: 1, Output: "* file.txt\n"}

	if err := f.session.Do(context.Background(), ItemCheck); err != nil {
		t.Fatal(err)
	}
	if def := f.prompt.defaults["Enter remote:path"]; def != "Gdrive:" {
		t.Errorf("remote default = %v, want Gdrive:", def)
	}
	f.assertOutput(t, "Checking: Docs", "* file.txt", "Differences found (exit 1)", "Local folder does not exist")
	if !f.runner.called("rclone check " + filepath.Join(f.cfg().BisyncBase, "Docs") + " Gdrive:Docs") {
		t.Errorf("rclone check not called: %v", f.runner.calls)
	}
}

func TestSession_Bisync(t *testing.T) {
	t.Parallel()

	t.Run("dry run skips missing folder", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t,
			useDefault{}, useDefault{}, "Missing",
			useDefault{}, // dry run
			false,        // create it?
		)
		err := f.session.Do(context.Background(), ItemBisync)
		if err == nil || err.Error() != "1 of 1 folders failed" {
			t.Errorf("bisync error = %v", err)
		}
		f.assertOutput(t, "Skipping Missing - local folder missing", "Dry run completed")
		if f.runner.called("rclone bisync") {
			t.Error("bisync ran for a missing folder")
		}
		if len(f.hooks) != 0 {
			t.Errorf("hooks = %v, want none", f.hooks)
		}
	})

	t.Run("real run creates folder and fires hook", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t,
			useDefault{}, useDefault{}, "Notes",
			false,        // dry run
			useDefault{}, // force resync
			useDefault{}, // create it?
		)
		if err := f.session.Do(context.Background(), ItemBisync); err != nil {
			t.Fatal(err)
		}
		local := filepath.Join(f.cfg().BisyncBase, "Notes")
		if _, err := os.Stat(local); err != nil {
			t.Errorf("local folder not created: %v", err)
		}
		f.assertOutput(t, "Created: "+local, "Note: using --resync", "Bisync completed successfully")
		if !f.runner.called("rclone bisync Gdrive:Notes " + local) {
			t.Errorf("bisync not called: %v", f.runner.calls)
		}
		want := []hookCall{{hooks.TriggerBisync, local, "Gdrive:Notes"}}
		if !slices.Equal(f.hooks, want) {
			t.Errorf("hooks = %v, want %v", f.hooks, want)
		}
	})

	t.Run("failure is counted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, useDefault{}, useDefault{}, "Notes", useDefault{})
		if err := os.MkdirAll(filepath.Join(f.cfg().BisyncBase, "Notes"), 0o755); err != nil {
			t.Fatal(err)
		}
		f.runner.results["rclone bisync"] = cmd.Result{ExitCode: 2}

		err := f.session.Do(context.Background(), ItemBisync)
		if err == nil {
			t.Fatal("expected an error")
		}
		f.assertOutput(t, "DRY RUN MODE", "Bisync failed with code 2")
	})
}

func TestSession_BisyncNoFolders(t *testing.T) {
	t.Parallel()

	f := newFixture(t, useDefault{}, useDefault{}, " , ")
	err := f.session.Do(context.Background(), ItemBisync)
	if err == nil || !strings.Contains(err.Error(), "no folders") {
		t.Errorf("error = %v, want no folders specified", err)
	}
}

func TestSession_EditMountPath(t *testing.T) {
	t.Parallel()

	t.Run("absolute path", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		target := filepath.Join(t.TempDir(), "Drive")
		f.prompt.answers = []any{target}

		if err := f.session.Do(context.Background(), ItemEditMountPath); err != nil {
			t.Fatal(err)
		}
		if f.cfg().MountPath != target {
			t.Errorf("MountPath = %q, want %q", f.cfg().MountPath, target)
		}
		if want := filepath.Join(target, "system", ".rclone"); f.cfg().LogDir != want {
			t.Errorf("LogDir = %q, want %q", f.cfg().LogDir, want)
		}
	})

	t.Run("relative path rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "relative/dir")
		before := f.cfg().MountPath
		if err := f.session.Do(context.Background(), ItemEditMountPath); err == nil {
			t.Error("expected an error for a relative path")
		}
		if f.cfg().MountPath != before {
			t.Error("mount path changed")
		}
	})

	t.Run("empty keeps current", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "")
		before := f.cfg().MountPath
		if err := f.session.Do(context.Background(), ItemEditMountPath); err != nil {
			t.Fatal(err)
		}
		if f.cfg().MountPath != before {
			t.Error("mount path changed")
		}
	})
}

func TestSession_ViewLog(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.session.Do(context.Background(), ItemViewLog); err != nil {
		t.Fatal(err)
	}
	f.assertOutput(t, "Log file not found")

	f.out.Reset()
	var lines []string
	for i := 1; i <= 60; i++ {
		lines = append(lines, fmt.Sprintf("entry %02d", i))
	}
	if err := os.MkdirAll(f.cfg().LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.cfg().LogFile(), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.session.Do(context.Background(), ItemViewLog); err != nil {
		t.Fatal(err)
	}
	f.assertOutput(t, "Last 50 lines of log:", "entry 11", "entry 60")
	if strings.Contains(f.out.String(), "entry 10") {
		t.Error("output should start at entry 11")
	}
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	f := newFixture(t,
		ErrCancelled, // "Enter mountpoint path" of the status item
		useDefault{}, // status again
	)
	f.mountTable(rcloneLine("Gdrive:", f.cfg().MountPath))

	items := []Item{ItemStatus, ItemStatus, ItemExit}
	var messages []string
	var headers []Header
	f.session.Menu = func(h Header, message string) (Item, error) {
		headers = append(headers, h)
		messages = append(messages, message)
		item := items[0]
		items = items[1:]
		return item, nil
	}

	if err := f.session.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if want := []string{"", "Check Mount Status cancelled.", ""}; !slices.Equal(messages, want) {
		t.Errorf("menu messages = %q, want %q", messages, want)
	}
	if !headers[0].Mounted || headers[0].Mountpoint != f.cfg().MountPath {
		t.Errorf("header = %+v, want the default mountpoint mounted", headers[0])
	}
	if f.prompt.pauses != 1 {
		t.Errorf("pauses = %d, want 1 (none after a cancel)", f.prompt.pauses)
	}
	f.assertOutput(t, "Mounted!", "Goodbye!")
}

func TestSession_RunReportsErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	items := []Item{ItemMount, ItemExit}
	f.session.Menu = func(Header, string) (Item, error) {
		item := items[0]
		items = items[1:]
		return item, nil
	}

	if err := f.session.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.assertOutput(t, "Error: "+errNoRemotes.Error())
	if f.prompt.pauses != 1 {
		t.Errorf("pauses = %d, want 1", f.prompt.pauses)
	}
}
