package driving

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// AssistantService answers natural-language questions over the loaded schema.
// Provider failures are reported as Answer kinds, not errors.
type AssistantService interface {
	// Ask classifies the question and dispatches it to the matching path.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// GenerateSQL runs retrieval, refinement and SQL generation directly.
	GenerateSQL(ctx context.Context, question string) (*domain.Answer, error)

	// DescribeSchema answers a question about the schema using every table.
	DescribeSchema(ctx context.Context, question string) (*domain.Answer, error)

	// Converse replies in the assistant persona without schema context.
	Converse(ctx context.Context, question string) (*domain.Answer, error)

	// Tables returns the loaded tables in name order.
	Tables() []domain.Table
}
