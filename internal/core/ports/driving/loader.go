package driving

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// LoaderService imports spreadsheets into the relational store.
type LoaderService interface {
	// LoadDir loads every spreadsheet in dir, one table per file.
	LoadDir(ctx context.Context, dir string, opts domain.LoadOptions) ([]domain.LoadReport, error)

	// LoadFile loads one spreadsheet into the named table.
	LoadFile(ctx context.Context, table, path string, opts domain.LoadOptions) (*domain.LoadReport, error)
}
