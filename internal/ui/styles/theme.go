package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/syncdash/syncdash/internal/config"
)

// Theme is the palette every style is derived from.
type Theme struct {
	Primary color.Color // borders, titles, focused row
	Accent  color.Color // selection marks, highlighted text
	Success color.Color // clean, up to date, mounted
	Error   color.Color // uncommitted, failed, not mounted
	Muted   color.Color // hints, timestamps
	Normal  color.Color
	Info    color.Color
	Warning color.Color // not checked yet, shortcut letters
}

// palette builds a Theme from colors in field order.
func palette(primary, accent, success, errc, muted, normal, info, warning string) Theme {
	c := lipgloss.Color
	return Theme{c(primary), c(accent), c(success), c(errc), c(muted), c(normal), c(info), c(warning)}
}

var (
	DefaultTheme = palette("62", "212", "82", "196", "240", "252", "244", "214")

	DraculaTheme         = palette("#bd93f9", "#ff79c6", "#50fa7b", "#ff5555", "#6272a4", "#f8f8f2", "#8be9fd", "#ffb86c")
	NordTheme            = palette("#88c0d0", "#b48ead", "#a3be8c", "#bf616a", "#4c566a", "#eceff4", "#81a1c1", "#ebcb8b")
	NordLightTheme       = palette("#5e81ac", "#b48ead", "#a3be8c", "#bf616a", "#9a9a9a", "#2e3440", "#81a1c1", "#d08770")
	GruvboxTheme         = palette("#83a598", "#d3869b", "#b8bb26", "#fb4934", "#665c54", "#ebdbb2", "#8ec07c", "#fabd2f")
	GruvboxLightTheme    = palette("#076678", "#8f3f71", "#79740e", "#9d0006", "#928374", "#3c3836", "#427b58", "#b57614")
	CatppuccinMochaTheme = palette("#89b4fa", "#f5c2e7", "#a6e3a1", "#f38ba8", "#6c7086", "#cdd6f4", "#94e2d5", "#fab387")
	CatppuccinLatteTheme = palette("#1e66f5", "#ea76cb", "#40a02b", "#d20f39", "#9ca0b0", "#4c4f69", "#179299", "#fe640b")

	// NoneTheme keeps bold and reverse video but emits no colors.
	NoneTheme = Theme{
		lipgloss.NoColor{}, lipgloss.NoColor{}, lipgloss.NoColor{}, lipgloss.NoColor{},
		lipgloss.NoColor{}, lipgloss.NoColor{}, lipgloss.NoColor{}, lipgloss.NoColor{},
	}
)

// variants holds the dark and light palette of a named theme. Light is nil
// for dark-only themes.
type variants struct {
	dark, light *Theme
}

var presets = map[string]variants{
	"none":       {&NoneTheme, &NoneTheme},
	"default":    {&DefaultTheme, nil},
	"dracula":    {&DraculaTheme, nil},
	"nord":       {&NordTheme, &NordLightTheme},
	"gruvbox":    {&GruvboxTheme, &GruvboxLightTheme},
	"catppuccin": {&CatppuccinMochaTheme, &CatppuccinLatteTheme},
}

var currentTheme = DefaultTheme

// Current returns the active theme.
func Current() Theme {
	return currentTheme
}

// darkBackground reports whether the terminal background is dark. Replaced in
// tests.
var darkBackground = func() bool {
	return lipgloss.HasDarkBackground(os.Stdin, os.Stderr)
}

// Init activates the theme described by cfg and rebuilds all styles. Unknown
// names fall back to the default theme and unknown modes to auto detection;
// the config loader reports both.
func Init(cfg config.ThemeConfig) {
	theme := pick(cfg.Name, cfg.Mode)
	for _, o := range []struct {
		value string
		dst   *color.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Accent, &theme.Accent},
		{cfg.Success, &theme.Success},
		{cfg.Error, &theme.Error},
		{cfg.Muted, &theme.Muted},
		{cfg.Normal, &theme.Normal},
		{cfg.Info, &theme.Info},
		{cfg.Warning, &theme.Warning},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}

	currentTheme = theme
	applyTheme(theme)
	SetNerdfont(cfg.Nerdfont)
}

func pick(name, mode string) Theme {
	v, ok := presets[name]
	if !ok {
		v = presets["default"]
	}
	light := mode == "light" || (mode != "dark" && !darkBackground())
	if light && v.light != nil {
		return *v.light
	}
	return *v.dark
}

// applyTheme rebuilds the package level colors and styles from t.
func applyTheme(t Theme) {
	Primary, Accent, Success, Error = t.Primary, t.Accent, t.Success, t.Error
	Muted, Normal, Info, Warning = t.Muted, t.Normal, t.Info, t.Warning

	fg := func(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	PrimaryStyle = fg(t.Primary)
	AccentStyle = fg(t.Accent).Bold(true)
	SuccessStyle = fg(t.Success)
	ErrorStyle = fg(t.Error)
	MutedStyle = fg(t.Muted)
	NormalStyle = fg(t.Normal)
	InfoStyle = fg(t.Info).Italic(true)
	WarningStyle = fg(t.Warning)
	HeaderStyle = fg(t.Primary).Bold(true)
	ShortcutStyle = fg(t.Warning).Bold(true)
	HighlightStyle = fg(t.Accent).Bold(true).Underline(true)
	RoundedBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 2)

	FocusStyle = lipgloss.NewStyle().Reverse(true)
	if _, plain := t.Primary.(lipgloss.NoColor); !plain {
		FocusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(t.Primary)
	}
}

// GetPreset returns the dark variant of the named theme, or nil.
func GetPreset(name string) *Theme {
	if v, ok := presets[name]; ok {
		return v.dark
	}
	return nil
}

// PresetNames lists the theme names accepted in the config.
func PresetNames() []string {
	return config.ValidThemeNames
}
