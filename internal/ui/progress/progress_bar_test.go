package progress

import (
	"strings"
	"sync"
	"testing"

	"charm.land/bubbles/v2/progress"
	"github.com/charmbracelet/x/ansi"
)

func TestBar_SetBeforeStart(t *testing.T) {
	t.Parallel()

	b := NewBar("Fetching remote status...", 4)
	b.Set(1, 4)
	b.Set(3, 4)
	b.Set(2, 4) // stale, ignored
	if done, total := b.Done(); done != 3 || total != 4 {
		t.Errorf("Done() = %d/%d, want 3/4", done, total)
	}
	b.Stop() // without Start must not panic
}

func TestBar_ConcurrentSet(t *testing.T) {
	t.Parallel()

	b := NewBar("Refreshing local status...", 50)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Set(i, 50)
		}()
	}
	wg.Wait()
	if done, _ := b.Done(); done != 50 {
		t.Errorf("Done() = %d, want 50", done)
	}
}

func TestRenderBar(t *testing.T) {
	t.Parallel()

	bar := progress.New(progress.WithWidth(10), progress.WithoutPercentage())
	got := ansi.Strip(renderBar(bar, "Fetching remote status...", barUpdate{done: 1, total: 4}))
	if !strings.HasSuffix(got, " 25% Fetching remote status... (1/4)") {
		t.Errorf("renderBar() = %q", got)
	}

	empty := ansi.Strip(renderBar(bar, "Scanning", barUpdate{}))
	if !strings.HasSuffix(empty, "  0% Scanning (0/0)") {
		t.Errorf("renderBar() with no total = %q", empty)
	}
}

func TestSpinner_StopBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSpinner("Verifying mount...")
	s.UpdateMessage("still verifying")
	s.Stop()
}
