package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/syncdash/syncdash/internal/runner"
	"github.com/syncdash/syncdash/internal/ui/styles"
)

const (
	repoColumn   = 34 // width of the repository column
	statusColumn = 20 // width of the local status column
)

func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	title := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(styles.Primary).
		Padding(0, 1).
		Bold(true).
		Render("syncdash - Git Sync Manager")
	b.WriteString(title + "\n\n")

	m.renderWorkdir(&b)
	m.renderStrategy(&b)
	m.renderActions(&b)
	m.renderRepos(&b)

	run := "   [ RUN ]   "
	if m.focus == fieldRun {
		b.WriteString("  " + styles.FocusStyle.Bold(true).Render(run) + "\n\n")
	} else {
		b.WriteString("  " + styles.Bold.Render(run) + "\n\n")
	}

	if line := m.statusLine(); line != "" {
		b.WriteString("  " + line + "\n\n")
	}
	m.renderLog(&b)
	m.renderHelp(&b)

	return tea.NewView(b.String())
}

func section(b *strings.Builder, title string) {
	b.WriteString("  " + styles.HeaderStyle.Render(title) + "\n")
	b.WriteString("  " + styles.MutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))) + "\n")
}

// option renders one radio line, highlighted when its field has focus.
func (m *Model) option(f field, chosen bool, label string) string {
	line := styles.Marker(chosen, styles.CurrentSymbols().Selected) + " " + label
	if m.focus == f && chosen {
		return "    " + styles.FocusStyle.Render(line)
	}
	return "    " + line
}

// shortcut highlights the first occurrence of key in label.
func shortcut(label, key string) string {
	i := strings.Index(strings.ToUpper(label), strings.ToUpper(key))
	if i < 0 {
		return label
	}
	return label[:i] + styles.ShortcutStyle.Render(label[i:i+len(key)]) + label[i+len(key):]
}

func (m *Model) renderWorkdir(b *strings.Builder) {
	section(b, "WORKING DIRECTORY:")
	b.WriteString(m.option(fieldWorkdir, m.useCurrent, "Current Directory (.)") + "\n")
	b.WriteString(m.option(fieldWorkdir, !m.useCurrent, "Custom Path: "+m.opts.Workdir) + "\n\n")
}

func (m *Model) renderStrategy(b *strings.Builder) {
	section(b, "MERGE STRATEGY (On Conflict):")
	for _, s := range []struct {
		strategy   runner.Strategy
		label, key string
	}{
		{runner.StrategyLocal, "LOCAL  (Keep local changes)", "O"},
		{runner.StrategyRemote, "REMOTE (Overwrite with remote)", "E"},
	} {
		chosen := m.strategy == s.strategy
		if m.focus == fieldStrategy && chosen {
			b.WriteString(m.option(fieldStrategy, chosen, s.label) + "\n")
			continue
		}
		b.WriteString("    " + styles.Marker(chosen, styles.CurrentSymbols().Selected) + " " + shortcut(s.label, s.key) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) renderActions(b *strings.Builder) {
	section(b, "ACTION:")
	for _, a := range runner.Actions {
		if a == runner.ActionStatus {
			b.WriteString("\n")
		}
		chosen := m.action == a
		name := fmt.Sprintf("%-10s", strings.ToUpper(a.String()))
		desc := styles.MutedStyle.Render("(" + a.Description() + ")")
		if m.focus == fieldAction && chosen {
			b.WriteString(m.option(fieldAction, chosen, name) + " " + desc + "\n")
			continue
		}
		b.WriteString("    " + styles.Marker(chosen, styles.CurrentSymbols().Selected) + " " + shortcut(name, a.Key()) + " " + desc + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) renderRepos(b *strings.Builder) {
	header := fmt.Sprintf("%-*s%-*s%s", repoColumn+2, "REPOSITORIES (Toggle with SPACE):", statusColumn, "LOCAL STATUS:", "REMOTE STATUS:")
	section(b, header)

	if m.filtering || m.filter != "" {
		prompt := "/" + m.filter
		if m.filtering {
			prompt += "█"
		}
		b.WriteString("    " + styles.AccentStyle.Render("Filter: ") + prompt + "\n")
	}

	switch {
	case len(m.opts.Repos) == 0:
		b.WriteString("    " + styles.MutedStyle.Render("No repositories registered. Add one with 'syncdash repos add <url>'.") + "\n\n")
		return
	case len(m.visible) == 0:
		b.WriteString("    " + styles.MutedStyle.Render("No repositories match the filter.") + "\n\n")
		return
	}

	if m.offset > 0 {
		b.WriteString("    " + styles.MutedStyle.Render(fmt.Sprintf("↑ %d more", m.offset)) + "\n")
	}
	end := min(m.offset+m.opts.MaxVisible, len(m.visible))
	for row := m.offset; row < end; row++ {
		b.WriteString(m.repoLine(row) + "\n")
	}
	if rest := len(m.visible) - end; rest > 0 {
		b.WriteString("    " + styles.MutedStyle.Render(fmt.Sprintf("↓ %d more", rest)) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) repoLine(row int) string {
	repo := m.opts.Repos[m.visible[row]]
	local, remote := m.local[repo.Name], m.remote[repo.Name]

	name := styles.Marker(m.selected[repo.Name], styles.CurrentSymbols().Checked) + " " + repo.Name
	name = fmt.Sprintf("%-*s", repoColumn, name)
	localText := fmt.Sprintf("%-*s", statusColumn, local.String())

	cursor := "  "
	if m.focus == fieldRepos && row == m.cursor {
		cursor = styles.CurrentSymbols().Cursor + " "
		return "  " + cursor + styles.FocusStyle.Render(name+"  "+localText+remote.String())
	}
	return "  " + cursor + name + "  " + styles.LocalStatusStyle(local).Render(localText) + styles.RemoteStatusStyle(remote).Render(remote.String())
}

func (m *Model) statusLine() string {
	var parts []string
	if st := m.scans[scanLocal]; st.active {
		parts = append(parts, fmt.Sprintf("Refreshing local status... (%d/%d)", st.done, st.total))
	}
	if st := m.scans[scanRemote]; st.active {
		parts = append(parts, fmt.Sprintf("Fetching remote status... (%d/%d)", st.done, st.total))
	}
	if len(parts) > 0 {
		return styles.ShortcutStyle.Render(strings.Join(parts, "  "))
	}
	if m.message == "" {
		return ""
	}
	if m.isError {
		return styles.ErrorStyle.Bold(true).Render(m.message)
	}
	return styles.ShortcutStyle.Render(m.message)
}

func (m *Model) renderLog(b *strings.Builder) {
	if m.runHeader == "" {
		return
	}
	b.WriteString("  " + styles.AccentStyle.Render(m.runHeader) + "\n")
	end := len(m.log) - m.logScroll
	start := max(end-logLines, 0)
	if start > 0 {
		b.WriteString("  " + styles.MutedStyle.Render(fmt.Sprintf("↑ %d earlier (PgUp)", start)) + "\n")
	}
	for _, ev := range m.log[start:end] {
		b.WriteString("  " + styles.FormatEvent(ev) + "\n")
	}
	if m.logScroll > 0 {
		b.WriteString("  " + styles.MutedStyle.Render(fmt.Sprintf("↓ %d later (PgDn)", m.logScroll)) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) renderHelp(b *strings.Builder) {
	section(b, "KEYBOARD SHORTCUTS")
	lines := [][][2]string{
		{{"↑/↓", "List"}, {"TAB", "Field"}, {"SPACE", "Toggle"}, {"ENTER", "Run"}, {"PgUp/PgDn", "Log"}, {"q", "Quit"}},
		{{"a", "All"}, {"u", "None"}, {"k", "Smart Select"}, {"/", "Filter"}, {"y", "Copy Path"}},
		{{"o", "Local"}, {"e", "Remote"}},
		{{"s", "Sync"}, {"f", "Fetch"}, {"l", "Pull"}, {"p", "Push"}},
		{{"t", "Status"}, {"n", "Untracked"}, {"i", "Ignored"}, {"r", "Refresh"}},
	}
	labels := []string{"Navigate:", "Select:", "Strategy:", "Actions:", ""}
	for i, line := range lines {
		parts := make([]string, len(line))
		for j, kv := range line {
			parts[j] = "(" + styles.ShortcutStyle.Render(kv[0]) + ") " + kv[1]
		}
		b.WriteString("  " + styles.Bold.Render(fmt.Sprintf("%-10s", labels[i])) + strings.Join(parts, " | ") + "\n")
	}
}
