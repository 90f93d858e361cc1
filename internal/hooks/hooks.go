package hooks

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"mvdan.cc/sh/v3/syntax"

	"github.com/syncdash/syncdash/internal/cmd"
	"github.com/syncdash/syncdash/internal/config"
)

// shellQuote escapes a string for safe use in sh -c commands.
func shellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// unprintable input bash cannot express; fall back to plain single quotes
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return quoted
}

// Trigger identifies the operation a hook runs after
type Trigger string

const (
	TriggerClone  Trigger = "clone"
	TriggerSync   Trigger = "sync"
	TriggerFetch  Trigger = "fetch"
	TriggerPull   Trigger = "pull"
	TriggerPush   Trigger = "push"
	TriggerMount  Trigger = "mount"
	TriggerUmount Trigger = "umount"
	TriggerBisync Trigger = "bisync"
	TriggerManual Trigger = "manual"
)

// Context holds the values for placeholder substitution
type Context struct {
	Path     string            // repository or mount path
	Repo     string            // repository name (empty for rclone triggers)
	Action   string            // action that ran (sync, push, ...)
	Strategy string            // merge strategy (local or remote)
	Remote   string            // origin URL or rclone remote
	Trigger  Trigger           // what triggered the hook
	Env      map[string]string // custom variables from --arg key=value flags
	DryRun   bool              // print the command instead of executing
}

// HookMatch represents a hook that matched the current trigger
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookName is specified only that hook runs, regardless of its "on" list.
// Otherwise every enabled hook whose "on" list names trigger runs.
func SelectHooks(cfg config.HooksConfig, hookName string, noHook bool, trigger Trigger) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	if hookName != "" {
		hook, exists := cfg.Hooks[hookName]
		if !exists {
			return nil, fmt.Errorf("unknown hook %q", hookName)
		}
		return []HookMatch{{Hook: &hook, Name: hookName}}, nil
	}

	var matches []HookMatch
	for _, name := range sortedNames(cfg) {
		hook := cfg.Hooks[name]
		if hook.IsEnabled() && hookMatches(hook, trigger) {
			matches = append(matches, HookMatch{Hook: &hook, Name: name})
		}
	}
	return matches, nil
}

// hookMatches returns true if trigger is in the hook's "on" list.
// "all" matches every trigger.
func hookMatches(hook config.Hook, trigger Trigger) bool {
	for _, on := range hook.On {
		if on == "all" || on == string(trigger) {
			return true
		}
	}
	return false
}

// RunAllNonFatal runs every match in workDir, sending hook output line by
// line to print. Failures are reported through print and returned so the
// caller can count them; they never stop the remaining hooks.
func RunAllNonFatal(ctx context.Context, matches []HookMatch, hctx Context, workDir string, print func(string)) []error {
	var errs []error
	for _, match := range matches {
		if err := runCaptured(ctx, match, hctx, workDir, print); err != nil {
			print(fmt.Sprintf("Warning: hook %q failed: %v", match.Name, err))
			errs = append(errs, fmt.Errorf("hook %q: %w", match.Name, err))
		}
	}
	return errs
}

func runCaptured(ctx context.Context, match HookMatch, hctx Context, workDir string, print func(string)) error {
	command := SubstitutePlaceholders(match.Hook.Command, hctx)
	if hctx.DryRun {
		print(fmt.Sprintf("[dry-run] %s: %s", match.Name, command))
		return nil
	}

	print(fmt.Sprintf("Running hook '%s'...", match.Name))
	res, err := cmd.StreamContext(ctx, workDir, print, "sh", "-c", command)
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("exit status %d", res.ExitCode)
	}
	if match.Hook.Description != "" {
		print("✓ " + match.Hook.Description)
	}
	return nil
}

// RunSingle runs one hook attached to the terminal. Used by `syncdash hook`.
func RunSingle(ctx context.Context, name string, hook *config.Hook, hctx Context, out io.Writer) error {
	command := SubstitutePlaceholders(hook.Command, hctx)
	if hctx.DryRun {
		fmt.Fprintf(out, "[dry-run] %s: %s\n", name, command)
		return nil
	}

	fmt.Fprintf(out, "Running hook '%s'...\n", name)

	shellCmd := exec.CommandContext(ctx, "sh", "-c", command)
	shellCmd.Dir = hctx.Path
	shellCmd.Stdout = out
	shellCmd.Stderr = os.Stderr
	shellCmd.Stdin = os.Stdin
	if err := shellCmd.Run(); err != nil {
		return fmt.Errorf("hook %q failed: %w", name, err)
	}

	if hook.Description != "" {
		fmt.Fprintf(out, "  ✓ %s\n", hook.Description)
	}
	return nil
}

// readStdinIfPiped reads all content from stdin if it's piped (not a TTY).
// Returns empty string and nil if stdin is a TTY (interactive).
func readStdinIfPiped() (string, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// ParseEnv parses "key=value" strings into a map.
func ParseEnv(envSlice []string) (map[string]string, error) {
	return parseEnv(envSlice, func() (string, error) {
		return "", fmt.Errorf("stdin not supported here")
	})
}

// ParseEnvWithStdin is ParseEnv where a value of "-" reads piped stdin.
// Every "-" key receives the same content.
func ParseEnvWithStdin(envSlice []string) (map[string]string, error) {
	return parseEnv(envSlice, readStdinIfPiped)
}

func parseEnv(envSlice []string, readStdin func() (string, error)) (map[string]string, error) {
	result := make(map[string]string)
	var stdinKeys []string

	for _, e := range envSlice {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid env format %q: expected KEY=VALUE", e)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid env format %q: key cannot be empty", e)
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
			continue
		}
		result[key] = value
	}

	if len(stdinKeys) > 0 {
		content, err := readStdin()
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
		}
		for _, key := range stdinKeys {
			result[key] = content
		}
	}
	return result, nil
}

// envPlaceholderRegex matches {key}, {key:raw} and {key:-default}.
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces placeholders with shell-quoted values.
//
// Static placeholders: {path}, {repo}, {action}, {strategy}, {remote}, {trigger}.
// Custom placeholders from Context.Env: {key}, {key:raw} (unquoted) and
// {key:-default}.
func SubstitutePlaceholders(command string, hctx Context) string {
	static := map[string]string{
		"path":     hctx.Path,
		"repo":     hctx.Repo,
		"action":   hctx.Action,
		"strategy": hctx.Strategy,
		"remote":   hctx.Remote,
		"trigger":  string(hctx.Trigger),
	}

	return envPlaceholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		sub := envPlaceholderRegex.FindStringSubmatch(match)
		key, isRaw, defaultVal := sub[1], sub[2] == ":raw", sub[3]
		plain := !isRaw && !strings.Contains(match, ":-")

		if val, ok := static[key]; ok && plain {
			return shellQuote(val)
		}
		if val, ok := hctx.Env[key]; ok {
			return quoteUnlessRaw(val, isRaw)
		}
		return quoteUnlessRaw(defaultVal, isRaw)
	})
}

func quoteUnlessRaw(val string, raw bool) string {
	if raw {
		return val
	}
	return shellQuote(val)
}

func sortedNames(cfg config.HooksConfig) []string {
	return slices.Sorted(maps.Keys(cfg.Hooks))
}
