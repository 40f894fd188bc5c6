package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// DefaultTopTables is the number of tables shortlisted per question.
const DefaultTopTables = domain.DefaultTopTables

// TableRetriever shortlists the tables most relevant to a question.
// The table index is built once and shared read-only across questions.
type TableRetriever struct {
	index  *PassageIndex
	tables map[string]struct{}
}

// NewTableRetriever builds the table-level index over tables.
// It fails with domain.ErrEmptyCorpus when tables is empty.
func NewTableRetriever(
	ctx context.Context,
	embedder driven.EmbeddingService,
	build driven.VectorIndexBuilder,
	tables []domain.Table,
) (*TableRetriever, error) {
	passages := make([]domain.Passage, len(tables))
	names := make(map[string]struct{}, len(tables))
	for i, t := range tables {
		passages[i] = BuildTablePassage(t)
		names[t.Name] = struct{}{}
	}

	index, err := BuildPassageIndex(ctx, embedder, build, passages)
	if err != nil {
		return nil, fmt.Errorf("table index: %w", err)
	}
	logger.Debug("Table index built over %d tables", index.Len())

	return &TableRetriever{index: index, tables: names}, nil
}

// Retrieve returns up to topK table names, nearest first, without duplicates.
// A non-positive topK uses DefaultTopTables.
func (r *TableRetriever) Retrieve(ctx context.Context, question string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultTopTables
	}

	hits, err := r.index.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(hits))
	names := make([]string, 0, len(hits))
	for _, hit := range hits {
		if _, ok := r.tables[hit.Ref]; !ok {
			continue
		}
		if _, dup := seen[hit.Ref]; dup {
			continue
		}
		seen[hit.Ref] = struct{}{}
		names = append(names, hit.Ref)
		logger.Debug("  %s (distance %.4f)", hit.Ref, hit.Distance)
	}
	return names, nil
}

// Close releases the table index.
func (r *TableRetriever) Close() error {
	return r.index.Close()
}
