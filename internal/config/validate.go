package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"mvdan.cc/sh/v3/shell"
)

// Valid enum values for configuration fields.
var (
	ValidStrategies  = []string{"local", "remote"}
	ValidMountModes  = []string{"daemon", "background", "foreground"}
	ValidCacheModes  = []string{"off", "minimal", "writes", "full"}
	ValidThemeNames  = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}
	ValidThemeModes  = []string{"auto", "light", "dark"}
	ValidHookTrigger = []string{"clone", "sync", "fetch", "pull", "push", "mount", "umount", "bisync", "all"}
)

func (raw rawConfig) validate() error {
	if err := ValidatePath(raw.Workdir, "workdir"); err != nil {
		return err
	}
	if err := ValidateStrategy(raw.Strategy); err != nil {
		return err
	}
	if raw.Jobs < 0 || raw.StatusJobs < 0 {
		return fmt.Errorf("jobs and status_jobs must not be negative")
	}
	if err := validateDuration(raw.GitTimeout, "git_timeout"); err != nil {
		return err
	}
	if raw.Dashboard.MaxVisible < 0 {
		return fmt.Errorf("dashboard.max_visible must not be negative")
	}
	if err := raw.Rclone.validate(); err != nil {
		return err
	}
	if raw.Theme.Name != "" && !isValidThemeName(raw.Theme.Name) {
		return fmt.Errorf("invalid theme.name %q: must be %s", raw.Theme.Name, formatOptions(ValidThemeNames))
	}
	if err := validateEnum(raw.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	for name, v := range raw.Hooks {
		hook, ok := v.(map[string]any)
		if !ok {
			continue
		}
		on, _ := hook["on"].([]any)
		for _, t := range on {
			s, _ := t.(string)
			if err := validateEnum(s, "hooks."+name+".on", ValidHookTrigger); err != nil {
				return err
			}
		}
	}
	return nil
}

func (raw rawRclone) validate() error {
	for _, p := range []struct{ value, field string }{
		{raw.MountPath, "rclone.mount_path"},
		{raw.LogDir, "rclone.log_dir"},
		{raw.BisyncBase, "rclone.bisync_base"},
	} {
		if err := ValidatePath(p.value, p.field); err != nil {
			return err
		}
	}
	if err := ValidateMountMode(raw.MountMode); err != nil {
		return err
	}
	if err := validateEnum(raw.VFSCacheMode, "rclone.vfs_cache_mode", ValidCacheModes); err != nil {
		return err
	}
	if raw.TPSLimit < 0 {
		return fmt.Errorf("rclone.tpslimit must not be negative")
	}
	for _, s := range []struct{ value, field string }{
		{raw.VFSCacheMaxSize, "rclone.vfs_cache_max_size"},
		{raw.VFSReadChunkSize, "rclone.vfs_read_chunk_size"},
	} {
		if err := validateSize(s.value, s.field); err != nil {
			return err
		}
	}
	for _, d := range []struct{ value, field string }{
		{raw.VFSCacheMaxAge, "rclone.vfs_cache_max_age"},
		{raw.DirCacheTime, "rclone.dir_cache_time"},
	} {
		if err := validateRcloneDuration(d.value, d.field); err != nil {
			return err
		}
	}
	if err := validateDuration(raw.MountSettle, "rclone.mount_settle"); err != nil {
		return err
	}
	if _, err := splitFlags(raw.ExtraFlags); err != nil {
		return err
	}
	return nil
}

// ValidateStrategy validates a merge strategy name ("local" or "remote").
// Exported for use in CLI flag validation.
func ValidateStrategy(s string) error {
	return validateEnum(s, "strategy", ValidStrategies)
}

// ValidateMountMode validates an rclone mount mode.
func ValidateMountMode(mode string) error {
	return validateEnum(mode, "mount mode", ValidMountModes)
}

func isValidThemeName(name string) bool {
	return slices.Contains(ValidThemeNames, name)
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

func validateDuration(value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return nil
}

// validateRcloneDuration accepts Go durations plus rclone's d/w/M/y suffixes.
func validateRcloneDuration(value, field string) error {
	if value == "" || value == "off" {
		return nil
	}
	if _, err := time.ParseDuration(value); err == nil {
		return nil
	}
	if n := len(value); n > 1 && strings.ContainsRune("dwMy", rune(value[n-1])) {
		if _, err := strconv.ParseFloat(value[:n-1], 64); err == nil {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: not a duration", field, value)
}

func validateSize(value, field string) error {
	if value == "" || value == "off" {
		return nil
	}
	if _, err := humanize.ParseBytes(value); err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return nil
}

// splitFlags splits a shell-quoted flag string into words.
func splitFlags(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("invalid rclone.extra_flags %q: %w", s, err)
	}
	return fields, nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
