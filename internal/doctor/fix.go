package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/syncdash/syncdash/internal/git"
)

// fixAllIssues applies the fix of every fixable issue. The workdir is
// created before repositories are cloned into it.
func fixAllIssues(ctx context.Context, opts Options, issues []Issue, out io.Writer) error {
	var fixed, failed int

	for _, issue := range issues {
		switch issue.FixAction {
		case FixCreateWorkdir:
			if err := os.MkdirAll(opts.Config.Workdir, 0o755); err != nil {
				fmt.Fprintf(out, "  ✗ Failed to create workdir: %v\n", err)
				failed++
				continue
			}
			fmt.Fprintf(out, "  ✓ Created workdir %s\n", opts.Config.Workdir)
			fixed++

		case FixClone:
			if err := os.MkdirAll(opts.Config.Workdir, 0o755); err != nil {
				fmt.Fprintf(out, "  ✗ Failed to clone %q: %v\n", issue.Key, err)
				failed++
				continue
			}
			res, err := git.Clone(ctx, opts.Config.Workdir, issue.URL, issue.Key, nil)
			if err == nil && !res.OK() {
				err = fmt.Errorf("%s", strings.TrimSpace(res.Output))
			}
			if err != nil {
				fmt.Fprintf(out, "  ✗ Failed to clone %q: %v\n", issue.Key, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "  ✓ Cloned %q\n", issue.Key)
			fixed++

		case FixForgetMount:
			if err := opts.Mounts.Store.Forget(issue.Key); err != nil {
				fmt.Fprintf(out, "  ✗ Failed to forget mount %s: %v\n", issue.Key, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "  ✓ Forgot stale mount %s\n", issue.Key)
			fixed++
		}
	}

	fmt.Fprintf(out, "\nFixed %d issues", fixed)
	if failed > 0 {
		fmt.Fprintf(out, ", %d failed", failed)
	}
	fmt.Fprintln(out)
	if failed > 0 {
		return fmt.Errorf("%d fixes failed", failed)
	}
	return nil
}
