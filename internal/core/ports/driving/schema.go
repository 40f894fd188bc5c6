package driving

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// SchemaService reads the schema straight from the store, without any
// AI provider. It backs the tables command and the MCP schema resource.
type SchemaService interface {
	// Tables returns every table with its catalog entry and one sample row.
	Tables(ctx context.Context) ([]domain.Table, error)

	// History returns the latest load of each table, newest first.
	// It is empty when the store keeps no history.
	History(ctx context.Context) ([]domain.LoadRecord, error)

	// Describe renders every table the way the data-assistance prompt sees it.
	Describe(ctx context.Context) (string, error)
}
