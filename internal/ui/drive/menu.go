package drive

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/syncdash/syncdash/internal/ui/styles"
)

// Item is a menu entry. Its value is the digit that selects it.
type Item int

const (
	ItemExit Item = iota
	ItemConfigure
	ItemStatus
	ItemMount
	ItemUnmount
	ItemReset
	ItemCheck
	ItemBisync
	ItemEditMountPath
	ItemViewLog
)

// Items lists the menu in display order.
var Items = []Item{
	ItemConfigure, ItemStatus, ItemMount, ItemUnmount, ItemReset,
	ItemCheck, ItemBisync, ItemEditMountPath, ItemViewLog, ItemExit,
}

var itemLabels = map[Item]string{
	ItemExit:          "Exit",
	ItemConfigure:     "Rclone Configuration",
	ItemStatus:        "Check Mount Status",
	ItemMount:         "Mount Remote",
	ItemUnmount:       "Unmount Remote",
	ItemReset:         "Reset Mount (Unmount + Mount)",
	ItemCheck:         "Check Folders",
	ItemBisync:        "Bisync Folders",
	ItemEditMountPath: "Edit Default Mount Path",
	ItemViewLog:       "View Log File",
}

func (i Item) String() string {
	if label, ok := itemLabels[i]; ok {
		return label
	}
	return fmt.Sprintf("Item(%d)", int(i))
}

// Key is the digit that selects the item.
func (i Item) Key() string {
	return fmt.Sprint(int(i))
}

// Header is the mount state shown above the menu.
type Header struct {
	Mountpoint string
	Mounted    bool
	Info       string // mount table line when mounted
	Err        error  // mount table could not be read
}

type menuModel struct {
	header  Header
	message string
	cursor  int // index into Items
	chosen  Item
	done    bool
}

func newMenuModel(h Header, message string) menuModel {
	return menuModel{header: h, message: message}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); k {
	case "up", "k":
		m.cursor = (m.cursor + len(Items) - 1) % len(Items)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(Items)
	case "enter":
		m.chosen = Items[m.cursor]
		m.done = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.chosen = ItemExit
		m.done = true
		return m, tea.Quit
	default:
		if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
			m.chosen = Item(k[0] - '0')
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(styles.HeaderStyle.Render(rule+"\n          RCLONE SYNC MANAGER\n"+rule) + "\n\n")

	b.WriteString(styles.HeaderStyle.Render("Current Mount Status:") + "\n")
	b.WriteString("Default mountpoint: " + styles.Bold.Render(m.header.Mountpoint) + "\n")
	switch {
	case m.header.Err != nil:
		b.WriteString("Status: " + styles.WarningStyle.Render("UNKNOWN ("+m.header.Err.Error()+")") + "\n")
	default:
		b.WriteString("Status: " + styles.FormatMounted(m.header.Mounted) + "\n")
		if m.header.Info != "" {
			b.WriteString(styles.InfoStyle.Render(m.header.Info) + "\n")
		}
	}

	b.WriteString("\n" + styles.AccentStyle.Render("Main Menu:") + "\n")
	for i, item := range Items {
		cursor := "  "
		line := styles.Bold.Render(item.Key()+".") + " " + item.String()
		if i == m.cursor {
			cursor = styles.CurrentSymbols().Cursor + " "
			line = styles.FocusStyle.Render(item.Key() + ". " + item.String())
		}
		b.WriteString("  " + cursor + line + "\n")
	}

	if m.message != "" {
		b.WriteString("\n" + styles.WarningStyle.Render(m.message) + "\n")
	}
	b.WriteString("\n" + styles.MutedStyle.Render("0-9 select • ↑/↓ move • enter choose • q quit") + "\n")
	return tea.NewView(b.String())
}

// Menu shows the menu and returns the chosen item. Quitting chooses
// ItemExit.
func Menu(h Header, message string) (Item, error) {
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	p := tea.NewProgram(newMenuModel(h, message),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	final, err := p.Run()
	if err != nil {
		return ItemExit, err
	}
	return final.(menuModel).chosen, nil
}
