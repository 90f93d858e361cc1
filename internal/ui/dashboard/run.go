package dashboard

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
)

// Run shows the dashboard until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.cancel()

	profile := colorprofile.Detect(os.Stdout, os.Environ())
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithColorProfile(profile),
	)
	_, err := p.Run()
	m.stopWatch()
	return err
}
