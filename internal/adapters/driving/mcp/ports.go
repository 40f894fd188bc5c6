package mcp

import (
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Assistant answers questions.
	Assistant driving.AssistantService

	// Schema reads the schema without AI providers. When nil the tables
	// loaded by the assistant are used instead.
	Schema driving.SchemaService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
