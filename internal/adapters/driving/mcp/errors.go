// Package mcp exposes the assistant as a Model Context Protocol server, so
// MCP clients can ask questions and read the schema.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant service is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant service is required")
