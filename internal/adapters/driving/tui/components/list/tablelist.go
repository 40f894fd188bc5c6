// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/thorr/internal/core/domain"
)

// TableList displays the loaded tables in a navigable list.
type TableList struct {
	tables   []domain.Table
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewTableList creates a new table list component.
func NewTableList(s *styles.Styles) *TableList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TableList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the table list.
func (l *TableList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *TableList) Update(msg tea.Msg) (*TableList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.tables) > 0 {
				l.selected = len(l.tables) - 1
			}
		}
	}
	return l, nil
}

// View renders the table list.
func (l *TableList) View() string {
	if len(l.tables) == 0 {
		return l.styles.Muted.Render("No tables loaded")
	}

	lines := make([]string, 0, len(l.tables)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Tables (%d)", len(l.tables))), "")

	// One line per table, header and padding excluded.
	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.tables))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderTable(i, &l.tables[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *TableList) renderTable(index int, table *domain.Table) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	nameWidth := 24
	descWidth := l.width - nameWidth - 16
	if descWidth < 10 {
		descWidth = 10
	}
	desc := table.Description
	if r := []rune(desc); len(r) > descWidth {
		desc = string(r[:descWidth-3]) + "..."
	}

	cols := fmt.Sprintf("%3d cols", len(table.Columns))
	line := fmt.Sprintf("%s%-*s %s  ", indicator, nameWidth, table.Name, cols)
	if index == l.selected {
		return l.styles.Selected.Render(line + desc)
	}
	return l.styles.Normal.Render(line) + l.styles.Muted.Render(desc)
}

// SetTables replaces the listed tables and resets the selection.
func (l *TableList) SetTables(tables []domain.Table) {
	l.tables = tables
	l.selected = 0
}

// Tables returns the listed tables.
func (l *TableList) Tables() []domain.Table {
	return l.tables
}

// SelectedIndex returns the selected index.
func (l *TableList) SelectedIndex() int {
	return l.selected
}

// Selected returns the selected table, or nil when the list is empty.
func (l *TableList) Selected() *domain.Table {
	if len(l.tables) == 0 {
		return nil
	}
	return &l.tables[l.selected]
}

// MoveUp moves the selection up.
func (l *TableList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *TableList) MoveDown() {
	if l.selected < len(l.tables)-1 {
		l.selected++
	}
}

// SetSize sets the list dimensions.
func (l *TableList) SetSize(width, height int) {
	l.width = width
	l.height = height
}
