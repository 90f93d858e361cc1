package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/syncdash/syncdash/internal/ui/styles"
)

type barUpdate struct {
	done  int
	total int
}

// Bar shows "[████░░░░]  50% Fetching remote status... (4/8)" for work
// over a known number of items.
type Bar struct {
	out      io.Writer
	label    string
	program  *tea.Program
	updateCh chan barUpdate
	exited   chan struct{}

	mu      sync.Mutex
	running bool
	last    barUpdate
}

type barModel struct {
	bar      progress.Model
	label    string
	state    barUpdate
	updateCh chan barUpdate
}

func (m barModel) Init() tea.Cmd {
	return waitFor(m.updateCh)
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case barUpdate:
		m.state = msg
		return m, waitFor(m.updateCh)
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.bar, cmd = m.bar.Update(msg)
	return m, cmd
}

func (m barModel) View() tea.View {
	return tea.NewView(renderBar(m.bar, m.label, m.state))
}

func renderBar(bar progress.Model, label string, s barUpdate) string {
	percent := 0.0
	if s.total > 0 {
		percent = float64(s.done) / float64(s.total)
	}
	return fmt.Sprintf("%s %3d%% %s (%d/%d)", bar.ViewAs(percent), int(percent*100), label, s.done, s.total)
}

// NewBar creates a progress bar for total items, writing to stderr.
func NewBar(label string, total int) *Bar {
	return &Bar{
		out:      os.Stderr,
		label:    label,
		updateCh: make(chan barUpdate, 16),
		exited:   make(chan struct{}),
		last:     barUpdate{total: total},
	}
}

// Start shows the bar. It is a no-op when already running.
func (b *Bar) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}

	model := barModel{
		bar: progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
			progress.WithColors(styles.Primary, styles.Accent),
		),
		label:    b.label,
		state:    b.last,
		updateCh: b.updateCh,
	}
	b.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithInput(nil), tea.WithOutput(b.out))
	b.running = true

	go func() {
		_, _ = b.program.Run()
		close(b.exited)
	}()
}

// Set records progress. It is safe for concurrent use and matches the
// progress callback of the status scans.
func (b *Bar) Set(done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if done < b.last.done {
		// scans report out of order; keep the bar monotonic
		return
	}
	b.last = barUpdate{done: done, total: total}
	if !b.running {
		return
	}
	select {
	case b.updateCh <- b.last:
	default:
	}
}

// Done returns the last recorded progress.
func (b *Bar) Done() (done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last.done, b.last.total
}

// Stop hides the bar and clears the line.
func (b *Bar) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.updateCh)
	b.mu.Unlock()

	b.program.Quit()
	select {
	case <-b.exited:
	case <-time.After(stopTimeout):
	}
	fmt.Fprint(b.out, "\r\033[K")
}
