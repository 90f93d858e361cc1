package doctor

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/registry"
)

// Options configures a doctor run.
type Options struct {
	Config    *config.Config // nil skips the workdir and repository checks
	ConfigErr error          // error loading the config file, if any
	Registry  *registry.Registry
	Mounts    *rclone.Manager // nil skips the mount checks
	Fix       bool
	Out       io.Writer // nil uses os.Stdout

	LookPath func(string) (string, error) // nil uses exec.LookPath
	GOOS     string                       // empty uses runtime.GOOS
}

func (o Options) lookPath(name string) (string, error) {
	if o.LookPath != nil {
		return o.LookPath(name)
	}
	return exec.LookPath(name)
}

func (o Options) goos() string {
	if o.GOOS != "" {
		return o.GOOS
	}
	return runtime.GOOS
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// Diagnose runs every check and returns the issues found.
func Diagnose(ctx context.Context, opts Options) ([]Issue, IssueStats) {
	var stats IssueStats
	var all []Issue

	toolIssues, found := checkTools(opts)
	stats.ToolsFound = found
	all = append(all, toolIssues...)

	configIssues := checkConfig(opts)
	stats.ConfigInvalid = opts.ConfigErr != nil
	all = append(all, configIssues...)

	if opts.Config != nil && opts.Registry != nil {
		for _, repo := range opts.Registry.Sorted() {
			issues := checkRepo(ctx, opts.Config.Workdir, repo)
			if len(issues) == 0 {
				stats.ReposHealthy++
				continue
			}
			stats.ReposIssues++
			all = append(all, issues...)
		}
	}

	mountIssues, active := checkMounts(ctx, opts)
	stats.MountsActive = active
	for _, issue := range mountIssues {
		if issue.FixAction == FixForgetMount {
			stats.MountsStale++
		}
	}
	all = append(all, mountIssues...)

	return all, stats
}

// Run performs the checks, prints a report and with opts.Fix repairs what
// it can. It returns an error when a non-warning issue remains.
func Run(ctx context.Context, opts Options) error {
	out := opts.out()

	fmt.Fprintln(out, "Checking tools, configuration, repositories and mounts...")
	issues, stats := Diagnose(ctx, opts)

	printSummary(out, stats)

	if len(issues) == 0 {
		fmt.Fprintln(out, "\n✓ No issues found")
		return nil
	}

	fmt.Fprintf(out, "\nFound %d issues:\n", len(issues))
	printIssuesByCategory(out, issues)

	if opts.Fix {
		fmt.Fprintln(out)
		if err := fixAllIssues(ctx, opts, issues, out); err != nil {
			return err
		}
	} else if slices.ContainsFunc(issues, func(i Issue) bool { return i.FixAction != "" }) {
		fmt.Fprintln(out, "\nRun 'syncdash doctor --fix' to repair.")
	}

	for _, issue := range issues {
		if !issue.Warning && issue.FixAction == "" {
			return fmt.Errorf("doctor found problems that need manual attention")
		}
	}
	return nil
}

// printSummary prints a categorized summary.
func printSummary(out io.Writer, stats IssueStats) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  ✓ %d tools found\n", stats.ToolsFound)
	if stats.ConfigInvalid {
		fmt.Fprintln(out, "  ✗ config file invalid")
	}
	if stats.ReposHealthy > 0 {
		fmt.Fprintf(out, "  ✓ %d repositories healthy\n", stats.ReposHealthy)
	}
	if stats.ReposIssues > 0 {
		fmt.Fprintf(out, "  ⚠ %d repositories need attention\n", stats.ReposIssues)
	}
	if stats.MountsActive > 0 {
		fmt.Fprintf(out, "  ✓ %d mounts active\n", stats.MountsActive)
	}
	if stats.MountsStale > 0 {
		fmt.Fprintf(out, "  ⚠ %d stale mount records\n", stats.MountsStale)
	}
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(out io.Writer, issues []Issue) {
	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[IssueCategory]string{
		CategoryTools:  "Tools",
		CategoryConfig: "Configuration",
		CategoryRepos:  "Repositories",
		CategoryMounts: "Mounts",
	}

	for _, cat := range []IssueCategory{CategoryTools, CategoryConfig, CategoryRepos, CategoryMounts} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}

		fmt.Fprintf(out, "\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			mark := "✗"
			if issue.Warning {
				mark = "⚠"
			}
			fmt.Fprintf(out, "  %s %s: %s\n", mark, issue.Key, issue.Description)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
