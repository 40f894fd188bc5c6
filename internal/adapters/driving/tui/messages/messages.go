// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/thorr/internal/core/domain"
)

// AnswerReceived carries the assistant's answer back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// TablesLoaded carries the schema and its load history.
type TablesLoaded struct {
	Tables  []domain.Table
	History []domain.LoadRecord
	Err     error
}

// PromptsReloaded is sent when a prompt file changes on disk.
type PromptsReloaded struct {
	Name string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer transcript.
	ViewChat
	// ViewTables browses the loaded tables.
	ViewTables
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewTables:
		return "tables"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
