package runner

// Level classifies an Event for rendering.
type Level int

const (
	LevelHeader  Level = iota // "==> Processing 'repo'"
	LevelInfo                 // step announcement
	LevelSuccess              // ✓
	LevelWarn                 // ⚠
	LevelError                // ✗
	LevelDetail               // subprocess output, indented
)

// Event is one line of progress reported while a repository is processed.
type Event struct {
	Repo  string
	Level Level
	Text  string
}

// Format renders the event as a plain text log line.
func (e Event) Format() string {
	switch e.Level {
	case LevelHeader:
		return "==> " + e.Text
	case LevelSuccess:
		return "  ✓ " + e.Text
	case LevelWarn:
		return "  ⚠ " + e.Text
	case LevelError:
		return "  ✗ " + e.Text
	case LevelDetail:
		return "    " + e.Text
	default:
		return "  " + e.Text
	}
}

// EmitFunc receives events as they happen. Runner serializes its calls,
// which may come from worker goroutines.
type EmitFunc func(Event)
