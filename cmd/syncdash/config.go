package main

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/syncdash/syncdash/internal/output"
)

type hookView struct {
	Command     string   `toml:"command" json:"command"`
	Description string   `toml:"description,omitempty" json:"description,omitempty"`
	On          []string `toml:"on,omitempty" json:"on,omitempty"`
}

type rcloneView struct {
	Remote           string `toml:"remote" json:"remote"`
	MountPath        string `toml:"mount_path" json:"mount_path"`
	LogDir           string `toml:"log_dir" json:"log_dir"`
	BisyncBase       string `toml:"bisync_base" json:"bisync_base"`
	MountMode        string `toml:"mount_mode" json:"mount_mode"`
	TPSLimit         int    `toml:"tpslimit" json:"tpslimit"`
	VFSCacheMode     string `toml:"vfs_cache_mode" json:"vfs_cache_mode"`
	VFSCacheMaxAge   string `toml:"vfs_cache_max_age" json:"vfs_cache_max_age"`
	VFSCacheMaxSize  string `toml:"vfs_cache_max_size" json:"vfs_cache_max_size"`
	VFSReadChunkSize string `toml:"vfs_read_chunk_size" json:"vfs_read_chunk_size"`
	DirCacheTime     string `toml:"dir_cache_time" json:"dir_cache_time"`
	SkipGdocs        bool   `toml:"skip_gdocs" json:"skip_gdocs"`
	ExtraFlags       string `toml:"extra_flags,omitempty" json:"extra_flags,omitempty"`
	MountSettle      string `toml:"mount_settle" json:"mount_settle"`
}

type dashboardView struct {
	Watch        bool `toml:"watch" json:"watch"`
	MaxVisible   int  `toml:"max_visible" json:"max_visible"`
	FetchOnStart bool `toml:"fetch_on_start" json:"fetch_on_start"`
}

type commitView struct {
	Message    string `toml:"message" json:"message"`
	BeforeSync string `toml:"before_sync" json:"before_sync"`
	BeforePull string `toml:"before_pull" json:"before_pull"`
}

type themeView struct {
	Name     string `toml:"name,omitempty" json:"name,omitempty"`
	Mode     string `toml:"mode,omitempty" json:"mode,omitempty"`
	Nerdfont bool   `toml:"nerdfont" json:"nerdfont"`
}

// configView is the effective configuration as written in config.toml.
type configView struct {
	File          string              `toml:"-" json:"file,omitempty"`
	Workdir       string              `toml:"workdir" json:"workdir"`
	Strategy      string              `toml:"strategy" json:"strategy"`
	Jobs          int                 `toml:"jobs" json:"jobs"`
	StatusJobs    int                 `toml:"status_jobs" json:"status_jobs"`
	GitTimeout    string              `toml:"git_timeout" json:"git_timeout"`
	SafeDirectory bool                `toml:"safe_directory" json:"safe_directory"`
	Commit        commitView          `toml:"commit" json:"commit"`
	Dashboard     dashboardView       `toml:"dashboard" json:"dashboard"`
	Rclone        rcloneView          `toml:"rclone" json:"rclone"`
	Theme         themeView           `toml:"theme" json:"theme"`
	Hooks         map[string]hookView `toml:"hooks,omitempty" json:"hooks,omitempty"`
}

func effectiveConfig(ctx context.Context) configView {
	cfg := configFrom(ctx)
	rc := cfg.Rclone

	view := configView{
		File:          cfg.Path,
		Workdir:       cfg.Workdir,
		Strategy:      cfg.Strategy,
		Jobs:          cfg.Jobs,
		StatusJobs:    cfg.StatusJobs,
		GitTimeout:    cfg.GitTimeout.String(),
		SafeDirectory: cfg.SafeDirectory,
		Commit:        commitView(cfg.Commit),
		Dashboard:     dashboardView(cfg.Dashboard),
		Rclone: rcloneView{
			Remote:           rc.Remote,
			MountPath:        rc.MountPath,
			LogDir:           rc.LogDir,
			BisyncBase:       rc.BisyncBase,
			MountMode:        rc.MountMode,
			TPSLimit:         rc.TPSLimit,
			VFSCacheMode:     rc.VFSCacheMode,
			VFSCacheMaxAge:   rc.VFSCacheMaxAge,
			VFSCacheMaxSize:  rc.VFSCacheMaxSize,
			VFSReadChunkSize: rc.VFSReadChunkSize,
			DirCacheTime:     rc.DirCacheTime,
			SkipGdocs:        rc.SkipGdocs,
			ExtraFlags:       strings.Join(rc.ExtraFlags, " "),
			MountSettle:      rc.MountSettle.String(),
		},
		Theme: themeView{Name: cfg.Theme.Name, Mode: cfg.Theme.Mode, Nerdfont: cfg.Theme.Nerdfont},
	}

	if len(cfg.Hooks.Hooks) > 0 {
		view.Hooks = make(map[string]hookView, len(cfg.Hooks.Hooks))
		for _, name := range slices.Sorted(maps.Keys(cfg.Hooks.Hooks)) {
			h := cfg.Hooks.Hooks[name]
			view.Hooks[name] = hookView{Command: h.Command, Description: h.Description, On: h.On}
		}
	}
	return view
}

func runConfigShow(ctx context.Context, jsonOutput bool) error {
	out := output.FromContext(ctx)
	view := effectiveConfig(ctx)

	if jsonOutput {
		return out.JSON(view)
	}

	if view.File != "" {
		out.Printf("# %s\n\n", view.File)
	} else {
		out.Println("# no config file, showing defaults")
		out.Println()
	}
	return toml.NewEncoder(out.Writer()).Encode(view)
}
