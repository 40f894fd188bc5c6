package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// Ensure SchemaService implements the interface.
var _ driving.SchemaService = (*SchemaService)(nil)

// SchemaService reads tables and catalog entries on demand.
type SchemaService struct {
	store   driven.TableStore
	catalog driven.CatalogStore
	history driven.LoadHistory
}

// NewSchemaService creates a schema service. catalog and history may be nil.
func NewSchemaService(store driven.TableStore, catalog driven.CatalogStore, history driven.LoadHistory) *SchemaService {
	return &SchemaService{store: store, catalog: catalog, history: history}
}

// Tables returns every table in name order with one sample row.
func (s *SchemaService) Tables(ctx context.Context) ([]domain.Table, error) {
	return LoadCorpus(ctx, s.store, s.catalog, 1, 0)
}

// History returns the latest load of each table.
func (s *SchemaService) History(ctx context.Context) ([]domain.LoadRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	records, err := s.history.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

// Describe renders every table with its columns and first row.
// It fails with domain.ErrEmptyCorpus when no table is loaded.
func (s *SchemaService) Describe(ctx context.Context) (string, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", domain.ErrEmptyCorpus
	}
	return RenderFullSchema(tables), nil
}
