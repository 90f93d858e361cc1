package prompt

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/syncdash/syncdash/internal/ui/styles"
)

// TextInputResult holds the result of a text input prompt.
type TextInputResult struct {
	Value     string
	Cancelled bool
}

type textInputModel struct {
	input     textinput.Model
	prompt    string
	def       string
	done      bool
	cancelled bool
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// value is the typed text, or the default when nothing was typed.
func (m textInputModel) value() string {
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		return v
	}
	return m.def
}

func (m textInputModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	title := m.prompt
	if m.def != "" {
		title += " " + styles.MutedStyle.Render("["+m.def+"]")
	}
	return tea.NewView(title + "\n" + m.input.View())
}

func newTextInputModel(prompt, def string) textInputModel {
	ti := textinput.New()
	ti.Placeholder = def
	ti.Focus()
	ti.CharLimit = 512
	ti.SetWidth(60)
	return textInputModel{input: ti, prompt: prompt, def: def}
}

// TextInput reads one line. Enter on an empty line accepts def.
func TextInput(prompt, def string) (TextInputResult, error) {
	p := tea.NewProgram(newTextInputModel(prompt, def), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return TextInputResult{}, err
	}
	m := final.(textInputModel)
	if m.cancelled {
		return TextInputResult{Cancelled: true}, nil
	}
	return TextInputResult{Value: m.value()}, nil
}
