package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// DefaultTopColumns is the number of columns kept across all shortlisted tables.
const DefaultTopColumns = domain.DefaultTopColumns

// ColumnRefiner narrows shortlisted tables down to the columns relevant to a
// question. The column index is rebuilt on every call since the candidate
// set depends on the shortlist; wrap the embedder in a cache to avoid
// re-embedding unchanged column passages.
type ColumnRefiner struct {
	embedder     driven.EmbeddingService
	build        driven.VectorIndexBuilder
	keyColumns   []string
	sampleValues int
}

// NewColumnRefiner creates a refiner. keyColumns is the global list of join
// columns preserved in every table that has them.
func NewColumnRefiner(
	embedder driven.EmbeddingService,
	build driven.VectorIndexBuilder,
	keyColumns []string,
	sampleValues int,
) *ColumnRefiner {
	if sampleValues <= 0 {
		sampleValues = DefaultSampleValues
	}
	return &ColumnRefiner{
		embedder:     embedder,
		build:        build,
		keyColumns:   keyColumns,
		sampleValues: sampleValues,
	}
}

// Refine ranks every column of the retrieved tables against the question in a
// single global top-k, groups the winners by table, then adds each surviving
// table's key columns. Tables with no winning column are dropped. Unknown
// table names are skipped. No candidate columns yields an empty schema.
// A non-positive topK uses DefaultTopColumns.
func (r *ColumnRefiner) Refine(
	ctx context.Context,
	question string,
	retrieved []string,
	all map[string]domain.Table,
	topK int,
) (domain.RefinedSchema, error) {
	if topK <= 0 {
		topK = DefaultTopColumns
	}

	var passages []domain.Passage
	refs := make(map[string]domain.PassageRef)
	for _, name := range retrieved {
		table, ok := all[name]
		if !ok {
			logger.Debug("Skipping unknown table %q", name)
			continue
		}
		for _, col := range table.Columns {
			p := BuildColumnPassage(name, col, ColumnSamples(table, col, r.sampleValues))
			if _, dup := refs[p.Ref.Key()]; dup {
				continue
			}
			refs[p.Ref.Key()] = p.Ref
			passages = append(passages, p)
		}
	}
	if len(passages) == 0 {
		return domain.RefinedSchema{}, nil
	}

	index, err := BuildPassageIndex(ctx, r.embedder, r.build, passages)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return domain.RefinedSchema{}, nil
		}
		return nil, fmt.Errorf("column index: %w", err)
	}
	defer index.Close()

	hits, err := index.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]map[string]struct{})
	for _, hit := range hits {
		ref, ok := refs[hit.Ref]
		if !ok {
			continue
		}
		if selected[ref.Table] == nil {
			selected[ref.Table] = make(map[string]struct{})
		}
		selected[ref.Table][ref.Column] = struct{}{}
	}

	refined := make(domain.RefinedSchema, len(selected))
	for name, cols := range selected {
		table := all[name]
		for _, key := range KeyColumnsFor(table, r.keyColumns) {
			cols[key] = struct{}{}
		}
		ordered := make([]string, 0, len(cols))
		for _, col := range table.Columns {
			if _, ok := cols[col]; ok {
				ordered = append(ordered, col)
			}
		}
		refined[name] = ordered
		logger.Debug("  %s: %s", name, strings.Join(ordered, ", "))
	}
	return refined, nil
}

// KeyColumnsFor returns the columns of table that must survive refinement:
// its declared key columns, the join column of each of its relations, and any
// of the global key columns, restricted to columns the table actually has.
// The result follows the table's column order.
func KeyColumnsFor(table domain.Table, global []string) []string {
	want := make(map[string]struct{}, len(table.KeyColumns)+len(table.Relations)+len(global))
	for _, k := range table.KeyColumns {
		want[k] = struct{}{}
	}
	for _, rel := range table.Relations {
		want[rel.Column] = struct{}{}
	}
	for _, k := range global {
		want[k] = struct{}{}
	}

	var keys []string
	for _, col := range table.Columns {
		if _, ok := want[col]; ok {
			keys = append(keys, col)
		}
	}
	return keys
}
