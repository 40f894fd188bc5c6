package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure TableStore implements the interfaces.
var (
	_ driven.TableStore    = (*TableStore)(nil)
	_ driven.TableWriter   = (*TableStore)(nil)
	_ driven.ColumnSampler = (*TableStore)(nil)
)

type table struct {
	columns []string
	rows    [][]any
}

// TableStore is an in-memory relational store. It lists, reads and replaces
// tables but cannot execute SQL.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]table
}

// NewTableStore creates an empty in-memory table store.
func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string]table)}
}

// Put stores a table, replacing any existing table with the same name.
func (s *TableStore) Put(name string, columns []string, rows [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = table{columns: columns, rows: rows}
}

// ListTables returns the table names in sorted order.
func (s *TableStore) ListTables(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadTable returns the columns and up to limit rows of the named table.
func (s *TableStore) ReadTable(_ context.Context, name string, limit int) (*domain.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, domain.ErrNotFound)
	}
	rows := t.rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return &domain.QueryResult{
		Columns: append([]string(nil), t.columns...),
		Rows:    append([][]any(nil), rows...),
	}, nil
}

// ColumnValues returns up to limit distinct values of column that are neither
// nil nor blank strings, in row order.
func (s *TableStore) ColumnValues(_ context.Context, name, column string, limit int) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, domain.ErrNotFound)
	}
	pos := slices.Index(t.columns, column)
	if pos < 0 {
		return nil, fmt.Errorf("column %s.%s: %w", name, column, domain.ErrNotFound)
	}

	var values []any
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		if len(values) >= limit {
			break
		}
		if pos >= len(row) || row[pos] == nil {
			continue
		}
		v := row[pos]
		if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		key := fmt.Sprint(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// ReplaceTable stores rows under name with the given column names.
func (s *TableStore) ReplaceTable(_ context.Context, name string, columns []driven.ColumnDef, rows [][]any) error {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	s.Put(name, names, rows)
	return nil
}
