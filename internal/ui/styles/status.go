package styles

import (
	"charm.land/lipgloss/v2"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/runner"
)

// LocalStatusStyle colors a local status: green when OK, red when the
// repository needs attention, yellow before the first check.
func LocalStatusStyle(s git.LocalStatus) lipgloss.Style {
	switch s.State {
	case git.LocalOK:
		return SuccessStyle
	case git.LocalNotChecked:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// RemoteStatusStyle colors a remote status: green when up to date, yellow
// when not checked, red otherwise.
func RemoteStatusStyle(s git.RemoteStatus) lipgloss.Style {
	switch s.State {
	case git.RemoteUpToDate:
		return SuccessStyle
	case git.RemoteNotChecked:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// FormatLocalStatus returns the colored local status text.
func FormatLocalStatus(s git.LocalStatus) string {
	return LocalStatusStyle(s).Render(s.String())
}

// FormatRemoteStatus returns the colored remote status text.
func FormatRemoteStatus(s git.RemoteStatus) string {
	return RemoteStatusStyle(s).Render(s.String())
}

// FormatMounted returns "MOUNTED ✓" in green or "NOT MOUNTED" in red.
func FormatMounted(mounted bool) string {
	if mounted {
		return SuccessStyle.Render("MOUNTED " + currentSymbols.Success)
	}
	return ErrorStyle.Render("NOT MOUNTED")
}

// EventStyle colors a run event by its level.
func EventStyle(level runner.Level) lipgloss.Style {
	switch level {
	case runner.LevelHeader:
		return HeaderStyle
	case runner.LevelSuccess:
		return SuccessStyle
	case runner.LevelWarn:
		return WarningStyle
	case runner.LevelError:
		return ErrorStyle
	case runner.LevelDetail:
		return MutedStyle
	default:
		return NormalStyle
	}
}

// FormatEvent renders a run event as a colored log line.
func FormatEvent(ev runner.Event) string {
	return EventStyle(ev.Level).Render(ev.Format())
}
