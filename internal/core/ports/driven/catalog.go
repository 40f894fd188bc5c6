package driven

import "github.com/custodia-labs/thorr/internal/core/domain"

// CatalogStore provides the parts of the schema the relational store does not:
// table descriptions, declared relations and key columns.
type CatalogStore interface {
	// Load returns the catalog entries keyed by table name.
	// Tables absent from the catalog get an empty TableSpec.
	Load() (map[string]domain.TableSpec, error)
}
