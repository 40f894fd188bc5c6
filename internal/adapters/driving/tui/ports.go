// Package tui provides an interactive terminal user interface for thorr.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// Ports aggregates the driving ports and event sources used by the TUI.
type Ports struct {
	// Assistant answers questions. Required.
	Assistant driving.AssistantService

	// Schema reads tables and load history from the store. When nil the
	// tables view shows the tables the assistant was built with.
	Schema driving.SchemaService

	// PromptEvents delivers the name of each prompt reloaded from disk.
	// Optional.
	PromptEvents <-chan string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
