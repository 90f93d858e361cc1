package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Hook defines a user command run after an action
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // triggers this hook runs on (empty = only via "syncdash hook")
	Enabled     *bool    `toml:"enabled"` // only meaningful in .syncdash.toml: false disables a global hook
}

// IsEnabled reports whether the hook is enabled (nil counts as enabled).
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// CommitConfig holds the messages used for automatic commits
type CommitConfig struct {
	Message    string `toml:"message"`     // commit after staging local work on push/sync
	BeforeSync string `toml:"before_sync"` // commit of a dirty tree before sync
	BeforePull string `toml:"before_pull"` // commit of a dirty tree before pull
}

// DashboardConfig holds git dashboard settings
type DashboardConfig struct {
	Watch        bool `toml:"watch"`
	MaxVisible   int  `toml:"max_visible"`
	FetchOnStart bool `toml:"fetch_on_start"`
}

// RcloneConfig holds mount and bisync settings
type RcloneConfig struct {
	Remote           string        `toml:"remote"`
	MountPath        string        `toml:"mount_path"`
	LogDir           string        `toml:"log_dir"`
	BisyncBase       string        `toml:"bisync_base"`
	MountMode        string        `toml:"mount_mode"`
	TPSLimit         int           `toml:"tpslimit"`
	VFSCacheMode     string        `toml:"vfs_cache_mode"`
	VFSCacheMaxAge   string        `toml:"vfs_cache_max_age"`
	VFSCacheMaxSize  string        `toml:"vfs_cache_max_size"`
	VFSReadChunkSize string        `toml:"vfs_read_chunk_size"`
	DirCacheTime     string        `toml:"dir_cache_time"`
	SkipGdocs        bool          `toml:"skip_gdocs"`
	ExtraFlags       []string      `toml:"-"` // split from the extra_flags string
	MountSettle      time.Duration `toml:"-"`
}

// LogFile returns the rclone log file inside LogDir.
func (r RcloneConfig) LogFile() string {
	return filepath.Join(r.LogDir, "rclone.log")
}

// ThemeConfig holds UI theme/color configuration
type ThemeConfig struct {
	Name     string `toml:"name"`     // preset family: "none", "default", "dracula", "nord", "gruvbox", "catppuccin"
	Mode     string `toml:"mode"`     // "auto", "light", or "dark"
	Primary  string `toml:"primary"`  // main accent color (borders, titles)
	Accent   string `toml:"accent"`   // highlight color (selected items)
	Success  string `toml:"success"`  // clean / up to date
	Error    string `toml:"error"`    // dirty, unpushed, failed
	Muted    string `toml:"muted"`    // disabled/inactive text
	Normal   string `toml:"normal"`   // standard text
	Info     string `toml:"info"`     // informational text
	Warning  string `toml:"warning"`  // not checked yet
	Nerdfont bool   `toml:"nerdfont"` // use nerd font symbols
}

// Config holds the syncdash configuration
type Config struct {
	Workdir       string
	Strategy      string
	Jobs          int
	StatusJobs    int
	GitTimeout    time.Duration
	SafeDirectory bool
	Commit        CommitConfig
	Dashboard     DashboardConfig
	Rclone        RcloneConfig
	Theme         ThemeConfig
	Hooks         HooksConfig
	Path          string // file the config was loaded from, empty for defaults
}

// Defaults for settings that are left empty in the config file.
const (
	DefaultWorkdir        = "~/Documents/Git"
	DefaultStrategy       = "remote"
	DefaultCommitMessage  = "fixes"
	DefaultBeforeSync     = "Auto-commit before sync"
	DefaultBeforePull     = "Auto-commit before pull"
	DefaultRemote         = "Gdrive"
	DefaultMountPath      = "~/Documents/Gdrive"
	DefaultBisyncBase     = "~/Documents/Gdrive_Syncs"
	DefaultMountMode      = "daemon"
	DefaultStatusJobs     = 8
	DefaultMaxVisibleRows = 14
	DefaultGitTimeout     = 5 * time.Minute
	DefaultMountSettle    = 2 * time.Second
)

// Default returns the default configuration with paths expanded.
func Default() Config {
	workdir, _ := expandPath(DefaultWorkdir)
	mount, _ := expandPath(DefaultMountPath)
	bisync, _ := expandPath(DefaultBisyncBase)
	return Config{
		Workdir:       workdir,
		Strategy:      DefaultStrategy,
		Jobs:          1,
		StatusJobs:    DefaultStatusJobs,
		GitTimeout:    DefaultGitTimeout,
		SafeDirectory: true,
		Commit: CommitConfig{
			Message:    DefaultCommitMessage,
			BeforeSync: DefaultBeforeSync,
			BeforePull: DefaultBeforePull,
		},
		Dashboard: DashboardConfig{
			Watch:      true,
			MaxVisible: DefaultMaxVisibleRows,
		},
		Rclone: RcloneConfig{
			Remote:           DefaultRemote,
			MountPath:        mount,
			LogDir:           defaultLogDir(mount),
			BisyncBase:       bisync,
			MountMode:        DefaultMountMode,
			TPSLimit:         10,
			VFSCacheMode:     "full",
			VFSCacheMaxAge:   "1h",
			VFSCacheMaxSize:  "50G",
			VFSReadChunkSize: "32M",
			DirCacheTime:     "10000h",
			SkipGdocs:        true,
			MountSettle:      DefaultMountSettle,
		},
		Hooks: HooksConfig{Hooks: map[string]Hook{}},
	}
}

// defaultLogDir is where rclone logs go when log_dir is not configured.
func defaultLogDir(mountPath string) string {
	return filepath.Join(mountPath, "system", ".rclone")
}

// SetMountPath changes the default mount path. The log directory follows
// the mount path unless it was configured explicitly.
func (c *Config) SetMountPath(path string) {
	c.Rclone.SetMountPath(path)
}

// SetMountPath changes the default mount path; see [Config.SetMountPath].
func (r *RcloneConfig) SetMountPath(path string) {
	if r.LogDir == defaultLogDir(r.MountPath) {
		r.LogDir = defaultLogDir(path)
	}
	r.MountPath = path
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file (~/.config/syncdash/config.toml)
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "syncdash", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks,
// durations and optional booleans
type rawConfig struct {
	Workdir       string         `toml:"workdir"`
	Strategy      string         `toml:"strategy"`
	Jobs          int            `toml:"jobs"`
	StatusJobs    int            `toml:"status_jobs"`
	GitTimeout    string         `toml:"git_timeout"`
	SafeDirectory *bool          `toml:"safe_directory"`
	Commit        CommitConfig   `toml:"commit"`
	Dashboard     rawDashboard   `toml:"dashboard"`
	Rclone        rawRclone      `toml:"rclone"`
	Theme         ThemeConfig    `toml:"theme"`
	Hooks         map[string]any `toml:"hooks"`
}

type rawDashboard struct {
	Watch        *bool `toml:"watch"`
	MaxVisible   int   `toml:"max_visible"`
	FetchOnStart bool  `toml:"fetch_on_start"`
}

type rawRclone struct {
	Remote           string `toml:"remote"`
	MountPath        string `toml:"mount_path"`
	LogDir           string `toml:"log_dir"`
	BisyncBase       string `toml:"bisync_base"`
	MountMode        string `toml:"mount_mode"`
	TPSLimit         int    `toml:"tpslimit"`
	VFSCacheMode     string `toml:"vfs_cache_mode"`
	VFSCacheMaxAge   string `toml:"vfs_cache_max_age"`
	VFSCacheMaxSize  string `toml:"vfs_cache_max_size"`
	VFSReadChunkSize string `toml:"vfs_read_chunk_size"`
	DirCacheTime     string `toml:"dir_cache_time"`
	SkipGdocs        *bool  `toml:"skip_gdocs"`
	ExtraFlags       string `toml:"extra_flags"`
	MountSettle      string `toml:"mount_settle"`
}

// Load reads config from ~/.config/syncdash/config.toml and applies
// environment overrides.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	cfg := Default()
	if path, err := Path(); err == nil {
		if cfg, err = LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// LoadFile reads config from path. A missing file yields Default().
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse parses TOML config content, filling unset values with defaults.
func Parse(data string) (Config, error) {
	var raw rawConfig
	if _, err := toml.Decode(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := raw.validate(); err != nil {
		return Default(), err
	}

	cfg := Default()
	if raw.Workdir != "" {
		cfg.Workdir = raw.Workdir
	}
	if raw.Strategy != "" {
		cfg.Strategy = raw.Strategy
	}
	if raw.Jobs > 0 {
		cfg.Jobs = raw.Jobs
	}
	if raw.StatusJobs > 0 {
		cfg.StatusJobs = raw.StatusJobs
	}
	if raw.GitTimeout != "" {
		cfg.GitTimeout, _ = time.ParseDuration(raw.GitTimeout)
	}
	if raw.SafeDirectory != nil {
		cfg.SafeDirectory = *raw.SafeDirectory
	}

	if raw.Commit.Message != "" {
		cfg.Commit.Message = raw.Commit.Message
	}
	if raw.Commit.BeforeSync != "" {
		cfg.Commit.BeforeSync = raw.Commit.BeforeSync
	}
	if raw.Commit.BeforePull != "" {
		cfg.Commit.BeforePull = raw.Commit.BeforePull
	}

	if raw.Dashboard.Watch != nil {
		cfg.Dashboard.Watch = *raw.Dashboard.Watch
	}
	if raw.Dashboard.MaxVisible > 0 {
		cfg.Dashboard.MaxVisible = raw.Dashboard.MaxVisible
	}
	cfg.Dashboard.FetchOnStart = raw.Dashboard.FetchOnStart

	if err := raw.Rclone.apply(&cfg.Rclone); err != nil {
		return Default(), err
	}

	cfg.Theme = raw.Theme
	cfg.Hooks = parseHooksConfig(raw.Hooks)

	// Expand ~ (shell doesn't expand in config files)
	for _, p := range []*string{&cfg.Workdir, &cfg.Rclone.MountPath, &cfg.Rclone.LogDir, &cfg.Rclone.BisyncBase} {
		expanded, err := expandPath(*p)
		if err != nil {
			return Default(), err
		}
		*p = expanded
	}

	return cfg, nil
}

func (raw rawRclone) apply(rc *RcloneConfig) error {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&rc.Remote, raw.Remote)
	if raw.MountPath != "" {
		rc.MountPath = raw.MountPath
		rc.LogDir = defaultLogDir(raw.MountPath)
	}
	setString(&rc.LogDir, raw.LogDir)
	setString(&rc.BisyncBase, raw.BisyncBase)
	setString(&rc.MountMode, raw.MountMode)
	setString(&rc.VFSCacheMode, raw.VFSCacheMode)
	setString(&rc.VFSCacheMaxAge, raw.VFSCacheMaxAge)
	setString(&rc.VFSCacheMaxSize, raw.VFSCacheMaxSize)
	setString(&rc.VFSReadChunkSize, raw.VFSReadChunkSize)
	setString(&rc.DirCacheTime, raw.DirCacheTime)
	if raw.TPSLimit > 0 {
		rc.TPSLimit = raw.TPSLimit
	}
	if raw.SkipGdocs != nil {
		rc.SkipGdocs = *raw.SkipGdocs
	}
	if raw.MountSettle != "" {
		rc.MountSettle, _ = time.ParseDuration(raw.MountSettle)
	}
	flags, err := splitFlags(raw.ExtraFlags)
	if err != nil {
		return err
	}
	rc.ExtraFlags = flags
	return nil
}

// applyEnvOverrides applies SYNCDASH_* environment overrides.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SYNCDASH_WORKDIR"); v != "" {
		if err := ValidatePath(v, "SYNCDASH_WORKDIR"); err != nil {
			return err
		}
		cfg.Workdir, _ = expandPath(v)
	}
	if v := os.Getenv("SYNCDASH_MOUNT_PATH"); v != "" {
		if err := ValidatePath(v, "SYNCDASH_MOUNT_PATH"); err != nil {
			return err
		}
		expanded, _ := expandPath(v)
		cfg.SetMountPath(expanded)
	}
	if v := os.Getenv("SYNCDASH_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("SYNCDASH_THEME_MODE"); v != "" {
		cfg.Theme.Mode = v
	}
	return nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		hc.Hooks[key] = hook
	}

	return hc
}
