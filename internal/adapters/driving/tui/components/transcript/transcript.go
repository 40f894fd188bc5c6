// Package transcript renders the running question and answer log.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/thorr/internal/core/domain"
)

// Entry is one exchange. Exactly one of Answer and Err is set once the
// exchange completes; both are nil while it is pending.
type Entry struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// Pending reports whether the answer has not arrived yet.
func (e Entry) Pending() bool {
	return e.Answer == nil && e.Err == nil
}

// Transcript is a scrollable log of exchanges.
type Transcript struct {
	entries  []Entry
	viewport viewport.Model
	styles   *styles.Styles
	markdown bool
}

// New creates an empty transcript. Markdown turns on glamour rendering of
// answers.
func New(s *styles.Styles, markdown bool) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		viewport: viewport.New(render.DefaultWidth, 10),
		styles:   s,
		markdown: markdown,
	}
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update handles scrolling.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "pgup":
			t.viewport.HalfPageUp()
			return t, nil
		case "pgdown":
			t.viewport.HalfPageDown()
			return t, nil
		}
		// Other keys belong to the question input.
		return t, nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("Ask anything about the loaded tables. Type exit to leave.")
	}
	return t.viewport.View()
}

// Ask appends a pending exchange for question.
func (t *Transcript) Ask(question string) {
	t.entries = append(t.entries, Entry{Question: question})
	t.refresh()
}

// Resolve completes the latest pending exchange. An answer with no pending
// question is appended on its own.
func (t *Transcript) Resolve(answer *domain.Answer, err error) {
	if n := len(t.entries); n > 0 && t.entries[n-1].Pending() {
		t.entries[n-1].Answer = answer
		t.entries[n-1].Err = err
	} else {
		question := ""
		if answer != nil {
			question = answer.Question
		}
		t.entries = append(t.entries, Entry{Question: question, Answer: answer, Err: err})
	}
	t.refresh()
}

// Entries returns the exchanges in order.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of exchanges.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Clear removes every exchange.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// SetSize sets the viewport dimensions and re-wraps the content.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// Content returns the full rendered transcript, visible or not.
func (t *Transcript) Content() string {
	var b strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.styles.Question.Render("> " + e.Question))
		b.WriteString("\n")
		switch {
		case e.Err != nil:
			b.WriteString(t.styles.Error.Render("Error: " + e.Err.Error()))
			b.WriteString("\n")
		case e.Pending():
			b.WriteString(t.styles.Muted.Render("..."))
			b.WriteString("\n")
		case e.Answer.Failed():
			b.WriteString(t.styles.Warning.Render(e.Answer.Text))
			b.WriteString("\n")
		default:
			b.WriteString(render.Answer(e.Answer, render.Options{
				Width:    t.viewport.Width,
				Markdown: t.markdown,
			}))
		}
	}
	return b.String()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.Content())
	t.viewport.GotoBottom()
}
