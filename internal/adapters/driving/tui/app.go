package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/views/tables"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView   *menu.View
	chatView   *chat.View
	tablesView *tables.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// Options tunes the app.
type Options struct {
	// Markdown renders answers with glamour.
	Markdown bool
}

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s, km)
	menuView.SetTableCount(len(ports.Assistant.Tables()))

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menuView,
		chatView:    chat.NewView(s, km, ports.Assistant, opts.Markdown),
		tablesView:  tables.NewView(s, km, ports.Schema, ports.Assistant),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.tablesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("thorr"),
		a.waitForPromptReload(),
	)
}

// waitForPromptReload blocks on the next prompt event. Each delivered
// PromptsReloaded re-arms it.
func (a *App) waitForPromptReload() tea.Cmd {
	events := a.ports.PromptEvents
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-events
		if !ok {
			return nil
		}
		return messages.PromptsReloaded{Name: name}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			return a, a.chatView.Init()
		case messages.ViewTables:
			return a, a.tablesView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.AnswerReceived:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.TablesLoaded:
		a.err = msg.Err
		if msg.Err == nil {
			a.menuView.SetTableCount(len(msg.Tables))
		}
		a.tablesView, cmd = a.tablesView.Update(msg)
		return a, cmd

	case messages.PromptsReloaded:
		a.chatView, _ = a.chatView.Update(msg)
		return a, a.waitForPromptReload()

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) updateKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return nil
		}
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewHelp:
		switch msg.String() {
		case "esc", "?":
			a.currentView = messages.ViewMenu
		case "q":
			return tea.Quit
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewTables:
		return a.tablesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("  Type sair, exit or quit in the chat to leave.\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.tablesView.SetDimensions(width, height)
}
