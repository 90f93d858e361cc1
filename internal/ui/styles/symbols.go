package styles

// Symbols holds the icon set based on nerdfont configuration
type Symbols struct {
	Selected string // chosen radio option
	Checked  string // selected repository
	Success  string
	Warning  string
	Failure  string
	Mounted  string
	Cursor   string
}

// Default symbols
var defaultSymbols = Symbols{
	Selected: "●",
	Checked:  "✓",
	Success:  "✓",
	Warning:  "⚠",
	Failure:  "✗",
	Mounted:  "⏏",
	Cursor:   ">",
}

// Nerd font symbols
var nerdfontSymbols = Symbols{
	Selected: "\uf444", // nf-oct-dot_fill
	Checked:  "\uf42e", // nf-oct-check
	Success:  "\uf42e", // nf-oct-check
	Warning:  "\uf421", // nf-oct-alert
	Failure:  "\uf467", // nf-oct-x
	Mounted:  "\uf0a0", // nf-fa-hdd_o
	Cursor:   "\uf460", // nf-oct-chevron_right
}

var useNerdfont bool

var currentSymbols = defaultSymbols

// SetNerdfont enables or disables nerd font symbols
func SetNerdfont(enabled bool) {
	useNerdfont = enabled
	if enabled {
		currentSymbols = nerdfontSymbols
	} else {
		currentSymbols = defaultSymbols
	}
}

// NerdfontEnabled returns whether nerd font symbols are enabled
func NerdfontEnabled() bool {
	return useNerdfont
}

// CurrentSymbols returns the current symbol set
func CurrentSymbols() Symbols {
	return currentSymbols
}

// Marker renders "[x]" style boxes: the symbol when on, a space otherwise.
func Marker(on bool, symbol string) string {
	if on {
		return "[" + symbol + "]"
	}
	return "[ ]"
}
