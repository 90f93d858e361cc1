package dashboard

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/registry"
	"github.com/syncdash/syncdash/internal/runner"
)

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	if m.filtering {
		m.handleFilterKey(msg)
		return nil
	}
	switch key {
	case "pgup":
		m.scrollLog(logLines)
		return nil
	case "pgdown":
		m.scrollLog(-logLines)
		return nil
	}
	if m.running {
		if key == "q" {
			return m.quit()
		}
		return nil
	}

	switch key {
	case "q":
		return m.quit()
	case "tab":
		m.focus = (m.focus + 1) % fieldCount
	case "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case "up":
		m.moveUp()
	case "down":
		m.moveDown()
	case "space", " ":
		return m.toggle()
	case "enter":
		return m.run()
	case "a":
		m.selectVisible(true)
	case "u":
		m.selectVisible(false)
	case "k":
		m.smartSelect()
	case "o":
		m.setStrategy(runner.StrategyLocal)
	case "e":
		m.setStrategy(runner.StrategyRemote)
	case "r":
		return tea.Batch(m.scan(scanLocal), m.scan(scanRemote))
	case "/":
		m.filtering = true
		m.focus = fieldRepos
	case "esc":
		if m.filter != "" {
			m.setFilter("")
		}
	case "y":
		m.copyPath()
	default:
		if a, ok := runner.ActionForKey(key); ok {
			m.action = a
			switch a {
			case runner.ActionFetch:
				return m.scan(scanRemote)
			case runner.ActionStatus:
				return m.scan(scanLocal)
			}
		}
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.setFilter("")
	case "enter":
		m.filtering = false
	case "up":
		m.moveUp()
	case "down":
		m.moveDown()
	case "backspace":
		if r := []rune(m.filter); len(r) > 0 {
			m.setFilter(string(r[:len(r)-1]))
		}
	default:
		if msg.Text != "" {
			m.setFilter(m.filter + msg.Text)
		}
	}
}

func (m *Model) moveUp() {
	if m.focus != fieldRepos {
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return
	}
	if m.cursor > 0 {
		m.cursor--
		m.scrollToCursor()
		return
	}
	if !m.filtering {
		m.focus = fieldAction
	}
}

func (m *Model) moveDown() {
	if m.focus != fieldRepos {
		m.focus = (m.focus + 1) % fieldCount
		return
	}
	if m.cursor < len(m.visible)-1 {
		m.cursor++
		m.scrollToCursor()
		return
	}
	if !m.filtering {
		m.focus = fieldRun
	}
}

// scrollLog moves the run log window by n lines, back in time for positive
// n, clamped to the kept history.
func (m *Model) scrollLog(n int) {
	m.logScroll = min(max(m.logScroll+n, 0), max(len(m.log)-logLines, 0))
}

func (m *Model) scrollToCursor() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.opts.MaxVisible {
		m.offset = m.cursor - m.opts.MaxVisible + 1
	}
}

func (m *Model) toggle() tea.Cmd {
	switch m.focus {
	case fieldWorkdir:
		return m.toggleWorkdir()
	case fieldStrategy:
		m.setStrategy(m.strategy.Toggle())
	case fieldAction:
		m.action = m.action.Next()
	case fieldRepos:
		if repo, ok := m.focused(); ok {
			m.selected[repo.Name] = !m.selected[repo.Name]
		}
	case fieldRun:
		return m.run()
	}
	return nil
}

// toggleWorkdir switches between the current and the configured working
// directory. Statuses of the old directory are dropped and rescanned.
func (m *Model) toggleWorkdir() tea.Cmd {
	m.useCurrent = !m.useCurrent
	m.gen++
	m.scans = [2]scanState{}
	m.local = map[string]git.LocalStatus{}
	m.remote = map[string]git.RemoteStatus{}
	m.setMessage("Working directory: " + m.Workdir())
	return tea.Batch(m.scan(scanLocal), m.startWatch())
}

func (m *Model) setStrategy(s runner.Strategy) {
	m.strategy = s
	m.strategySet = true
}

func (m *Model) selectVisible(on bool) {
	for _, idx := range m.visible {
		name := m.opts.Repos[idx].Name
		if on {
			m.selected[name] = true
		} else {
			delete(m.selected, name)
		}
	}
}

func (m *Model) smartSelect() {
	names := make([]string, len(m.opts.Repos))
	for i, repo := range m.opts.Repos {
		names[i] = repo.Name
	}
	picked, action := runner.SmartSelect(names, m.local, m.remote)

	m.selected = map[string]bool{}
	for _, name := range picked {
		m.selected[name] = true
	}
	if len(picked) == 0 {
		m.setMessage("Smart select: everything is up to date.")
		return
	}
	m.action = action
	m.setMessage(fmt.Sprintf("Smart select: %s, action %s.", pluralize(len(picked), "repository", "repositories"), action))
}

func (m *Model) copyPath() {
	repo, ok := m.focused()
	if !ok {
		return
	}
	path := repo.Dir(m.Workdir())
	if err := m.opts.Copy(path); err != nil {
		m.setError("Copy failed: " + err.Error())
		return
	}
	m.setMessage("Copied " + path)
}

func (m *Model) focused() (registry.Repo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return registry.Repo{}, false
	}
	return m.opts.Repos[m.visible[m.cursor]], true
}

func (m *Model) repoIndex(name string) int {
	for i, repo := range m.opts.Repos {
		if repo.Name == name {
			return i
		}
	}
	return -1
}

// repoSource implements fuzzy.Source over repository names.
type repoSource []registry.Repo

func (s repoSource) String(i int) string { return s[i].Name }
func (s repoSource) Len() int            { return len(s) }

func (m *Model) setFilter(filter string) {
	m.filter = filter
	m.applyFilter()
}

// applyFilter rebuilds the visible rows: every repository in registry
// order without a filter, fuzzy matches best first with one.
func (m *Model) applyFilter() {
	m.visible = m.visible[:0]
	if m.filter == "" {
		for i := range m.opts.Repos {
			m.visible = append(m.visible, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(m.filter, repoSource(m.opts.Repos)) {
			m.visible = append(m.visible, match.Index)
		}
	}
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
	m.offset = 0
	m.scrollToCursor()
}
