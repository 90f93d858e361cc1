// Package progress shows progress on stderr while the CLI waits on git or
// rclone: a [Spinner] for open-ended waits such as mount verification and a
// [Bar] for scans over a known number of repositories.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/syncdash/syncdash/internal/ui/styles"
)

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

type messageUpdate string

// Spinner shows an animated message until stopped.
type Spinner struct {
	out     io.Writer
	program *tea.Program
	msgCh   chan string
	done    chan struct{}

	mu      sync.Mutex
	running bool
	message string
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	msgCh   chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitFor(m.msgCh))
}

// waitFor turns the next message from ch into a tea message; a closed
// channel quits the program.
func waitFor[T any](ch chan T) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return v
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case string:
		m.message = msg
		return m, waitFor(m.msgCh)
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		out:     os.Stderr,
		msgCh:   make(chan string, 10),
		done:    make(chan struct{}),
		message: message,
	}
}

// Start begins the animation. It is a no-op when already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.PrimaryStyle

	model := spinnerModel{spinner: sp, message: s.message, msgCh: s.msgCh}
	s.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithInput(nil), tea.WithOutput(s.out))
	s.running = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// UpdateMessage changes the message. Updates are dropped while the
// program is busy rather than blocking the caller.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.message = message
		return
	}
	select {
	case s.msgCh <- message:
	default:
	}
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.msgCh)
	s.mu.Unlock()

	s.program.Quit()
	select {
	case <-s.done:
	case <-time.After(stopTimeout):
	}
	fmt.Fprint(s.out, "\r\033[K")
}

// Run shows message while fn runs.
func Run(message string, fn func() error) error {
	s := NewSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}
