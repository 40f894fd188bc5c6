// Package menu is the start screen: a short list of destinations.
package menu

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
)

// Item is one destination. Quit items end the program instead of switching view.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

func defaultItems() []Item {
	return []Item{
		{Label: "Chat", Description: "Ask questions about the data", View: messages.ViewChat},
		{Label: "Tables", Description: "Browse the loaded schema", View: messages.ViewTables},
		{Label: "Help", Description: "Keybindings", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

// View renders the menu and moves the cursor.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	tables   int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Nil arguments fall back to the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keymap: km, items: defaultItems(), width: 80, height: 24}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor or emits the chosen destination.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
	case key.Matches(msg, v.keymap.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
	case key.Matches(msg, v.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, v.keymap.Select):
		item := v.items[v.selected]
		if item.Quit {
			return tea.Quit
		}
		return func() tea.Msg { return messages.ViewChanged{View: item.View} }
	}
	return nil
}

// View renders the title, the table count and the items.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	subtitle := "Ask your spreadsheets in plain language"
	if v.tables > 0 {
		subtitle += " · " + pluralTables(v.tables) + " loaded"
	}

	lines := []string{v.styles.Title.Render("thorr"), "", v.styles.Muted.Render(subtitle), ""}
	for i, item := range v.items {
		line := "  " + v.styles.Normal.Render(item.Label)
		if i == v.selected {
			line = "> " + v.styles.Title.Render(item.Label)
		}
		if item.Description != "" {
			line += "  " + v.styles.Muted.Render(item.Description)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", v.styles.Help.Render(v.helpLine()))
	return strings.Join(lines, "\n")
}

func (v *View) helpLine() string {
	bindings := []key.Binding{v.keymap.Up, v.keymap.Down, v.keymap.Select, v.keymap.Quit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = "[" + b.Help().Key + "] " + b.Help().Desc
	}
	return strings.Join(parts, "  ")
}

func pluralTables(n int) string {
	if n == 1 {
		return "1 table"
	}
	return strconv.Itoa(n) + " tables"
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true
}

// SetTableCount sets the number shown under the title.
func (v *View) SetTableCount(n int) {
	v.tables = n
}

// Selected returns the cursor index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
