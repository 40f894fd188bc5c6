// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// IsExitWord reports whether input ends the conversation.
func IsExitWord(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "sair", "exit", "quit":
		return true
	}
	return false
}

// View is the chat screen: transcript on top, question input and status
// bar below.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	assistant driving.AssistantService
	ctx       context.Context

	thinking bool
	width    int
	height   int
}

// NewView creates a chat view backed by assistant.
func NewView(s *styles.Styles, km *keymap.KeyMap, assistant driving.AssistantService, markdown bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s, markdown),
		statusbar:  bar,
		assistant:  assistant,
		ctx:        context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context used for assistant calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Focus(), v.input.Init())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.thinking = false
		v.transcript.Resolve(msg.Answer, msg.Err)
		v.statusbar.SetMessage("")
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		} else {
			v.statusbar.SetState(status.StateReady)
		}
		v.statusbar.SetCount(v.transcript.Len(), "answers")
		return v, nil

	case messages.PromptsReloaded:
		v.statusbar.SetMessage("prompt " + msg.Name + " reloaded")
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case key.Matches(msg, v.keymap.Clear):
		v.transcript.Clear()
		v.statusbar.Clear()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		v.transcript, _ = v.transcript.Update(msg)
		return v, nil

	case key.Matches(msg, v.keymap.Send):
		return v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Only one question is in flight at a
// time; Enter is ignored until its answer arrives.
func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.thinking {
		return v, nil
	}
	if IsExitWord(question) {
		return v, tea.Quit
	}

	v.input.Reset()
	v.transcript.Ask(question)
	v.thinking = true
	v.statusbar.SetState(status.StateThinking)

	return v, v.ask(question)
}

func (v *View) ask(question string) tea.Cmd {
	assistant, ctx := v.assistant, v.ctx
	return func() tea.Msg {
		answer, err := assistant.Ask(ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// View renders the chat view.
func (v *View) View() string {
	title := v.styles.Title.Render("thorr") + v.styles.Muted.Render("  chat")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to the space left by the title,
// the input box and the status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// title + blank + blank + input (3 rows with border) + status bar
	transcriptHeight := height - 7
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.SetSize(width, transcriptHeight)
}

// Thinking reports whether a question is awaiting its answer.
func (v *View) Thinking() bool {
	return v.thinking
}

// Transcript returns the exchange log.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
