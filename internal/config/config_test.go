package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Strategy != "remote" {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, "remote")
	}
	if cfg.Commit.Message != "fixes" {
		t.Errorf("Commit.Message = %q, want %q", cfg.Commit.Message, "fixes")
	}
	if cfg.Dashboard.MaxVisible != 14 {
		t.Errorf("Dashboard.MaxVisible = %d, want 14", cfg.Dashboard.MaxVisible)
	}
	if !strings.HasSuffix(cfg.Rclone.LogDir, filepath.Join("Gdrive", "system", ".rclone")) {
		t.Errorf("Rclone.LogDir = %q, want <mount>/system/.rclone", cfg.Rclone.LogDir)
	}
	if cfg.Rclone.LogFile() != filepath.Join(cfg.Rclone.LogDir, "rclone.log") {
		t.Errorf("LogFile() = %q", cfg.Rclone.LogFile())
	}
	if strings.HasPrefix(cfg.Workdir, "~") {
		t.Errorf("Workdir = %q, want ~ expanded", cfg.Workdir)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v, want nil for missing file", err)
	}
	if cfg.Strategy != DefaultStrategy || cfg.Path != "" {
		t.Errorf("LoadFile() = %+v, want defaults", cfg)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`strategy = "sideways"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() = nil error, want invalid strategy error")
	}
	if !strings.Contains(err.Error(), `"local" or "remote"`) {
		t.Errorf("error = %q, want to list allowed strategies", err)
	}
	if cfg.Strategy != DefaultStrategy {
		t.Errorf("Strategy = %q, want default on error", cfg.Strategy)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Parse(`
workdir = "~/src"
strategy = "local"
jobs = 4
git_timeout = "30s"
safe_directory = false

[commit]
message = "wip"

[dashboard]
watch = false
max_visible = 20

[rclone]
remote = "Dropbox"
mount_path = "/mnt/dropbox"
mount_mode = "foreground"
vfs_cache_max_size = "10G"
extra_flags = "--buffer-size 64M --exclude '*.tmp'"
mount_settle = "500ms"
skip_gdocs = false
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"workdir", cfg.Workdir, filepath.Join(home, "src")},
		{"strategy", cfg.Strategy, "local"},
		{"jobs", cfg.Jobs, 4},
		{"status_jobs default", cfg.StatusJobs, DefaultStatusJobs},
		{"git_timeout", cfg.GitTimeout, 30 * time.Second},
		{"safe_directory", cfg.SafeDirectory, false},
		{"commit.message", cfg.Commit.Message, "wip"},
		{"commit.before_sync default", cfg.Commit.BeforeSync, DefaultBeforeSync},
		{"dashboard.watch", cfg.Dashboard.Watch, false},
		{"dashboard.max_visible", cfg.Dashboard.MaxVisible, 20},
		{"rclone.remote", cfg.Rclone.Remote, "Dropbox"},
		{"rclone.log_dir follows mount", cfg.Rclone.LogDir, "/mnt/dropbox/system/.rclone"},
		{"rclone.mount_mode", cfg.Rclone.MountMode, "foreground"},
		{"rclone.vfs_cache_max_size", cfg.Rclone.VFSCacheMaxSize, "10G"},
		{"rclone.mount_settle", cfg.Rclone.MountSettle, 500 * time.Millisecond},
		{"rclone.skip_gdocs", cfg.Rclone.SkipGdocs, false},
		{"rclone.tpslimit default", cfg.Rclone.TPSLimit, 10},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	wantFlags := []string{"--buffer-size", "64M", "--exclude", "*.tmp"}
	if strings.Join(cfg.Rclone.ExtraFlags, "|") != strings.Join(wantFlags, "|") {
		t.Errorf("ExtraFlags = %q, want %q", cfg.Rclone.ExtraFlags, wantFlags)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		toml string
		want string
	}{
		{"relative workdir", `workdir = "src"`, "workdir must be absolute"},
		{"bad strategy", `strategy = "both"`, "invalid strategy"},
		{"negative jobs", `jobs = -1`, "must not be negative"},
		{"bad timeout", `git_timeout = "soon"`, "invalid git_timeout"},
		{"bad mount mode", "[rclone]\nmount_mode = \"lazy\"", "invalid mount mode"},
		{"bad cache size", "[rclone]\nvfs_cache_max_size = \"huge\"", "invalid rclone.vfs_cache_max_size"},
		{"bad cache age", "[rclone]\nvfs_cache_max_age = \"forever\"", "invalid rclone.vfs_cache_max_age"},
		{"bad cache mode", "[rclone]\nvfs_cache_mode = \"all\"", "invalid rclone.vfs_cache_mode"},
		{"unterminated quote", "[rclone]\nextra_flags = \"--exclude '*.tmp\"", "invalid rclone.extra_flags"},
		{"bad theme", "[theme]\nname = \"solarized\"", "invalid theme.name"},
		{"bad hook trigger", "[hooks.x]\ncommand = \"true\"\non = [\"commit\"]", "invalid hooks.x.on"},
		{"invalid toml", `strategy = `, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.toml)
			if err == nil {
				t.Fatalf("Parse(%q) = nil error, want %q", tt.toml, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse(%q) error = %q, want to contain %q", tt.toml, err, tt.want)
			}
		})
	}
}

func TestValidateRcloneDuration(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "off", "1h", "10000h", "1d", "2w", "1.5y"} {
		if err := validateRcloneDuration(v, "f"); err != nil {
			t.Errorf("validateRcloneDuration(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range []string{"d", "xd", "1x"} {
		if err := validateRcloneDuration(v, "f"); err == nil {
			t.Errorf("validateRcloneDuration(%q) = nil, want error", v)
		}
	}
}

func TestParseHooksConfig(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"notify": map[string]any{
			"command":     "notify-send {repo}",
			"description": "Notify",
			"on":          []any{"sync", "push"},
		},
		"disabled": map[string]any{
			"command": "echo off",
			"enabled": false,
		},
		"not-a-table": "ignored",
	}

	hc := parseHooksConfig(raw)
	if len(hc.Hooks) != 2 {
		t.Fatalf("len(Hooks) = %d, want 2", len(hc.Hooks))
	}

	notify := hc.Hooks["notify"]
	if notify.Command != "notify-send {repo}" || notify.Description != "Notify" {
		t.Errorf("notify = %+v", notify)
	}
	if len(notify.On) != 2 || notify.On[0] != "sync" || notify.On[1] != "push" {
		t.Errorf("notify.On = %v, want [sync push]", notify.On)
	}
	if !notify.IsEnabled() {
		t.Error("notify.IsEnabled() = false, want true")
	}
	if hc.Hooks["disabled"].IsEnabled() {
		t.Error("disabled.IsEnabled() = true, want false")
	}

	if got := parseHooksConfig(nil); got.Hooks == nil || len(got.Hooks) != 0 {
		t.Errorf("parseHooksConfig(nil) = %+v, want empty map", got)
	}
}

func TestDefaultConfigIsValidTOML(t *testing.T) {
	t.Parallel()

	var raw rawConfig
	if _, err := toml.Decode(DefaultConfig(), &raw); err != nil {
		t.Errorf("DefaultConfig() produces invalid TOML: %v", err)
	}
	if _, err := Parse(DefaultConfig()); err != nil {
		t.Errorf("Parse(DefaultConfig()) = %v", err)
	}
}

func TestInitAt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "syncdash", "config.toml")

	if err := initAt(path, false); err != nil {
		t.Fatalf("initAt() error = %v", err)
	}
	if err := initAt(path, false); err == nil {
		t.Error("initAt() on existing file = nil, want error")
	}
	if err := initAt(path, true); err != nil {
		t.Errorf("initAt(force) error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != DefaultConfig() {
		t.Error("written config does not match DefaultConfig()")
	}
}

func TestSetMountPath(t *testing.T) {
	t.Parallel()

	t.Run("log dir follows default", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.SetMountPath("/mnt/drive")
		if cfg.Rclone.MountPath != "/mnt/drive" {
			t.Errorf("MountPath = %q", cfg.Rclone.MountPath)
		}
		if cfg.Rclone.LogDir != "/mnt/drive/system/.rclone" {
			t.Errorf("LogDir = %q, want /mnt/drive/system/.rclone", cfg.Rclone.LogDir)
		}
	})

	t.Run("explicit log dir is kept", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Rclone.LogDir = "/var/log/rclone"
		cfg.SetMountPath("/mnt/drive")
		if cfg.Rclone.LogDir != "/var/log/rclone" {
			t.Errorf("LogDir = %q, want /var/log/rclone", cfg.Rclone.LogDir)
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	// Cannot use t.Parallel() - t.Setenv mutates process env
	t.Run("workdir and mount path", func(t *testing.T) {
		t.Setenv("SYNCDASH_WORKDIR", "/srv/git")
		t.Setenv("SYNCDASH_MOUNT_PATH", "/mnt/gd")
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err != nil {
			t.Fatalf("applyEnvOverrides error: %v", err)
		}
		if cfg.Workdir != "/srv/git" {
			t.Errorf("Workdir = %q, want /srv/git", cfg.Workdir)
		}
		if cfg.Rclone.LogDir != "/mnt/gd/system/.rclone" {
			t.Errorf("LogDir = %q, want /mnt/gd/system/.rclone", cfg.Rclone.LogDir)
		}
	})

	t.Run("relative workdir rejected", func(t *testing.T) {
		t.Setenv("SYNCDASH_WORKDIR", "git")
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err == nil {
			t.Error("applyEnvOverrides() = nil, want error for relative path")
		}
	})

	t.Run("theme", func(t *testing.T) {
		t.Setenv("SYNCDASH_THEME", "nord")
		t.Setenv("SYNCDASH_THEME_MODE", "dark")
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err != nil {
			t.Fatalf("applyEnvOverrides error: %v", err)
		}
		if cfg.Theme.Name != "nord" || cfg.Theme.Mode != "dark" {
			t.Errorf("Theme = %+v, want nord/dark", cfg.Theme)
		}
	})
}

func TestValidateEnum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"local", false},
		{"remote", false},
		{"Local", true},
		{"ours", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := ValidateStrategy(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []string
		want string
	}{
		{"single option", []string{"a"}, `"a"`},
		{"two options", []string{"a", "b"}, `"a" or "b"`},
		{"three options", []string{"a", "b", "c"}, `"a", "b", or "c"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatOptions(tt.opts); got != tt.want {
				t.Errorf("formatOptions(%v) = %q, want %q", tt.opts, got, tt.want)
			}
		})
	}
}

func TestWithConfig_FromContext(t *testing.T) {
	t.Parallel()

	cfg := &Config{Strategy: "local"}
	if got := FromContext(WithConfig(context.Background(), cfg)); got != cfg {
		t.Error("FromContext did not return the stored config")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext on empty context = %v, want nil", got)
	}
}

func TestWithWorkDir_FromContext(t *testing.T) {
	t.Parallel()

	if got := WorkDirFromContext(WithWorkDir(context.Background(), "/custom/path")); got != "/custom/path" {
		t.Errorf("WorkDirFromContext = %q, want %q", got, "/custom/path")
	}

	wd, _ := os.Getwd()
	if got := WorkDirFromContext(WithWorkDir(context.Background(), "")); got != wd {
		t.Errorf("WorkDirFromContext = %q, want %q (os.Getwd)", got, wd)
	}
}
