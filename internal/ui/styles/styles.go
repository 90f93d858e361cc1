// Package styles provides shared lipgloss styles for UI components.
//
// Colors come from the active [Theme]; call [Init] after loading the
// config so every component (static tables, prompts, the dashboard and
// the drive menu) renders with the same palette.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme
var (
	// Primary is the main accent color (titles, section headers)
	Primary color.Color = lipgloss.Color("62")

	// Accent is the highlight color for the focused item
	Accent color.Color = lipgloss.Color("212")

	// Success marks clean or up to date repositories
	Success color.Color = lipgloss.Color("82")

	// Error marks dirty, unpushed, behind or failed repositories
	Error color.Color = lipgloss.Color("196")

	// Muted is used for disabled/inactive text
	Muted color.Color = lipgloss.Color("240")

	// Normal is the standard text color
	Normal color.Color = lipgloss.Color("252")

	// Info is used for informational text
	Info color.Color = lipgloss.Color("244")

	// Warning marks statuses not checked yet and shortcut letters
	Warning color.Color = lipgloss.Color("214")
)

// Common styles
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	NormalStyle  = lipgloss.NewStyle().Foreground(Normal)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	// HeaderStyle renders section titles such as "ACTION:"
	HeaderStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// ShortcutStyle renders the key letter inside a label
	ShortcutStyle = lipgloss.NewStyle().Foreground(Warning).Bold(true)

	// FocusStyle renders the focused row
	FocusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(Primary)
)

// Border styles
var (
	// RoundedBorder creates a rounded border with primary color
	RoundedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 2)
)

// HighlightStyle marks fuzzy-matched characters
var HighlightStyle = lipgloss.NewStyle().
	Foreground(Accent).
	Bold(true).
	Underline(true)
