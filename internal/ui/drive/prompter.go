package drive

import (
	"errors"

	"github.com/syncdash/syncdash/internal/ui/prompt"
)

// ErrCancelled is returned when the user backs out of a question.
var ErrCancelled = errors.New("cancelled")

// Prompter asks the questions of a flow. Every question has a default that
// an empty answer accepts.
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
	Text(question, def string) (string, error)
	Select(question string, options []string, def int) (int, error)
	Pause() error
}

// TerminalPrompter asks on the terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Confirm(question string, def bool) (bool, error) {
	res, err := prompt.Confirm(question, def)
	if err != nil {
		return false, err
	}
	if res.Cancelled {
		return false, ErrCancelled
	}
	return res.Confirmed, nil
}

func (TerminalPrompter) Text(question, def string) (string, error) {
	res, err := prompt.TextInput(question, def)
	if err != nil {
		return "", err
	}
	if res.Cancelled {
		return "", ErrCancelled
	}
	return res.Value, nil
}

func (TerminalPrompter) Select(question string, options []string, def int) (int, error) {
	res, err := prompt.Select(question, options, def)
	if err != nil {
		return 0, err
	}
	if res.Cancelled {
		return 0, ErrCancelled
	}
	return res.Index, nil
}

func (TerminalPrompter) Pause() error {
	_, err := prompt.TextInput("Press Enter to continue...", "")
	return err
}
