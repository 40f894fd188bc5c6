package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// LoadCorpus reads every table from store, keeping up to sampleRows rows of
// each, and attaches descriptions, relations and key columns from catalog.
// catalog may be nil. Relations pointing at tables absent from the store are
// dropped. An empty store yields an empty slice.
//
// With sampleValues above zero and a store that implements
// driven.ColumnSampler, each column also gets up to sampleValues examples
// taken from the whole column, so a column that is empty in the first
// sampleRows rows still has examples.
func LoadCorpus(
	ctx context.Context,
	store driven.TableStore,
	catalog driven.CatalogStore,
	sampleRows, sampleValues int,
) ([]domain.Table, error) {
	names, err := store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	specs := map[string]domain.TableSpec{}
	if catalog != nil {
		specs, err = catalog.Load()
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}

	tables := make([]domain.Table, 0, len(names))
	for _, name := range names {
		data, err := store.ReadTable(ctx, name, sampleRows)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}

		spec := specs[name]
		table := domain.Table{
			Name:        name,
			Columns:     data.Columns,
			Description: spec.Description,
			Rows:        data.Rows,
		}
		for _, rel := range spec.Relations {
			if _, ok := present[rel.Table]; !ok {
				logger.Debug("Dropping relation %s -> %s: table not loaded", name, rel.Table)
				continue
			}
			table.Relations = append(table.Relations, rel)
		}
		for _, key := range spec.KeyColumns {
			if table.HasColumn(key) {
				table.KeyColumns = append(table.KeyColumns, key)
			}
		}
		if sampler, ok := store.(driven.ColumnSampler); ok && sampleValues > 0 {
			if table.Samples, err = sampleColumns(ctx, sampler, table, sampleValues); err != nil {
				return nil, err
			}
		}
		tables = append(tables, table)
	}

	logger.Info("Loaded %d tables", len(tables))
	return tables, nil
}

func sampleColumns(ctx context.Context, sampler driven.ColumnSampler, table domain.Table, limit int) (map[string][]string, error) {
	samples := make(map[string][]string, len(table.Columns))
	for _, col := range table.Columns {
		values, err := sampler.ColumnValues(ctx, table.Name, col, limit)
		if err != nil {
			return nil, fmt.Errorf("sample %s.%s: %w", table.Name, col, err)
		}
		samples[col] = distinctStrings(values, limit)
	}
	return samples, nil
}
