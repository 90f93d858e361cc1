package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repository override file.
const LocalConfigFileName = ".syncdash.toml"

// LocalConfig holds per-repo configuration overrides from .syncdash.toml.
// Zero values indicate "not set" (inherit from global).
type LocalConfig struct {
	Strategy string       `toml:"strategy"`
	Commit   CommitConfig `toml:"commit"`
	Hooks    HooksConfig  `toml:"-"` // merged by name into global
}

type rawLocalConfig struct {
	Strategy string         `toml:"strategy"`
	Commit   CommitConfig   `toml:"commit"`
	Hooks    map[string]any `toml:"hooks"`
}

// LoadLocal reads a per-repo .syncdash.toml from the given repo path.
// Returns nil (no error) if the file doesn't exist.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	if err := ValidateStrategy(raw.Strategy); err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}

	return &LocalConfig{
		Strategy: raw.Strategy,
		Commit:   raw.Commit,
		Hooks:    parseHooksConfig(raw.Hooks),
	}, nil
}

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)

	if local.Strategy != "" {
		merged.Strategy = local.Strategy
	}
	if local.Commit.Message != "" {
		merged.Commit.Message = local.Commit.Message
	}
	if local.Commit.BeforeSync != "" {
		merged.Commit.BeforeSync = local.Commit.BeforeSync
	}
	if local.Commit.BeforePull != "" {
		merged.Commit.BeforePull = local.Commit.BeforePull
	}

	return &merged
}

// mergeHooks merges local hooks into global hooks.
// Local hooks with the same name override global hooks;
// enabled = false removes the global hook.
func mergeHooks(global, local HooksConfig) HooksConfig {
	merged := HooksConfig{Hooks: make(map[string]Hook, len(global.Hooks))}
	for name, hook := range global.Hooks {
		merged.Hooks[name] = hook
	}
	for name, hook := range local.Hooks {
		if !hook.IsEnabled() {
			delete(merged.Hooks, name)
			continue
		}
		merged.Hooks[name] = hook
	}
	return merged
}
