package driven

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// TableStore reads the relational tables the assistant answers questions about.
type TableStore interface {
	// ListTables returns the names of all user tables.
	ListTables(ctx context.Context) ([]string, error)

	// ReadTable returns the column names and up to limit rows of the named table.
	// A limit of zero or less reads every row.
	ReadTable(ctx context.Context, name string, limit int) (*domain.QueryResult, error)
}

// ColumnSampler reads example values from a whole column, not just the rows
// LoadCorpus keeps. Stores that cannot do this cheaply need not implement it.
type ColumnSampler interface {
	// ColumnValues returns up to limit distinct values of column that are
	// neither NULL nor blank, in the order they were stored.
	ColumnValues(ctx context.Context, table, column string, limit int) ([]any, error)
}

// QueryExecutor runs a query against the relational store.
type QueryExecutor interface {
	// Execute runs query and returns at most maxRows rows. Zero means no cap.
	Execute(ctx context.Context, query string, maxRows int) (*domain.QueryResult, error)
}

// LoadHistory reports when each table was last written by the loader.
type LoadHistory interface {
	// LoadHistory returns the latest load of each table, newest first.
	LoadHistory(ctx context.Context) ([]domain.LoadRecord, error)
}

// ColumnType is the storage affinity used when writing a column.
type ColumnType string

// Column storage types.
const (
	ColumnInteger ColumnType = "INTEGER"
	ColumnReal    ColumnType = "REAL"
	ColumnText    ColumnType = "TEXT"
)

// ColumnDef describes one column written by a TableWriter.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// TableWriter replaces tables in the relational store. Used by the load command.
type TableWriter interface {
	// ReplaceTable drops name if it exists and recreates it with rows.
	ReplaceTable(ctx context.Context, name string, columns []ColumnDef, rows [][]any) error
}

// Sheet is a rectangular block of cells read from a spreadsheet.
// The first row of the source is used as the header.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// SpreadsheetReader reads the first worksheet of a spreadsheet file.
type SpreadsheetReader interface {
	ReadSheet(ctx context.Context, path string) (*Sheet, error)
}
