// Package tables provides the schema browser view for the TUI.
package tables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// View lists the loaded tables and shows the selected one in detail.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.TableList
	statusbar *status.Bar

	schema    driving.SchemaService
	assistant driving.AssistantService
	ctx       context.Context

	loaded map[string]time.Time
	width  int
	height int
}

// NewView creates a tables view. Schema is read from the store when set,
// otherwise from the tables the assistant was built with.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	schema driving.SchemaService,
	assistant driving.AssistantService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.TablesHelp())

	v := &View{
		styles:    s,
		keymap:    km,
		list:      list.NewTableList(s),
		statusbar: bar,
		schema:    schema,
		assistant: assistant,
		ctx:       context.Background(),
		loaded:    make(map[string]time.Time),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context used for schema reads.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the tables.
func (v *View) Init() tea.Cmd {
	schema, assistant, ctx := v.schema, v.assistant, v.ctx
	return func() tea.Msg {
		if schema == nil {
			if assistant == nil {
				return messages.TablesLoaded{}
			}
			return messages.TablesLoaded{Tables: assistant.Tables()}
		}
		tables, err := schema.Tables(ctx)
		if err != nil {
			return messages.TablesLoaded{Err: err}
		}
		history, err := schema.History(ctx)
		return messages.TablesLoaded{Tables: tables, History: history, Err: err}
	}
}

// Update handles messages for the tables view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TablesLoaded:
		v.SetTables(msg.Tables, msg.History)
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		}
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keymap.Back) {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

// SetTables replaces the listed tables and their load times.
func (v *View) SetTables(tables []domain.Table, history []domain.LoadRecord) {
	v.list.SetTables(tables)
	v.loaded = make(map[string]time.Time, len(history))
	for _, rec := range history {
		v.loaded[rec.Table] = rec.LoadedAt
	}
	v.statusbar.Clear()
	v.statusbar.SetCount(len(tables), "tables")
}

// View renders the list beside the selected table's details.
func (v *View) View() string {
	title := v.styles.Title.Render("thorr") + v.styles.Muted.Render("  tables")

	listWidth := v.width / 2
	left := lipgloss.NewStyle().Width(listWidth).Render(v.list.View())
	right := lipgloss.NewStyle().Width(v.width - listWidth - 2).Render(v.details())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", v.statusbar.View())
}

func (v *View) details() string {
	table := v.list.Selected()
	if table == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(table.Name))
	b.WriteString("\n")
	if table.Description != "" {
		b.WriteString(v.styles.Normal.Render(table.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Muted.Render("Columns: "))
	b.WriteString(strings.Join(table.Columns, ", "))
	b.WriteString("\n")
	if len(table.KeyColumns) > 0 {
		b.WriteString(v.styles.Muted.Render("Keys: "))
		b.WriteString(strings.Join(table.KeyColumns, ", "))
		b.WriteString("\n")
	}
	for _, rel := range table.Relations {
		b.WriteString(v.styles.Muted.Render("Joins: "))
		fmt.Fprintf(&b, "%s via %s\n", rel.Table, rel.Column)
	}
	if at, ok := v.loaded[table.Name]; ok {
		b.WriteString(v.styles.Muted.Render("Loaded: "))
		b.WriteString(at.Local().Format("2006-01-02 15:04"))
		b.WriteString("\n")
	}
	if len(table.Rows) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Sample"))
		b.WriteString("\n")
		b.WriteString(render.ResultTable(&domain.QueryResult{Columns: table.Columns, Rows: table.Rows}))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusbar.SetWidth(width)
	// title, blank, blank, status bar
	v.list.SetSize(width/2, height-4)
}

// List returns the table list.
func (v *View) List() *list.TableList {
	return v.list
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
