package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/thorr/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.TableStore    = (*Store)(nil)
	_ driven.ColumnSampler = (*Store)(nil)
	_ driven.QueryExecutor = (*Store)(nil)
	_ driven.TableWriter   = (*Store)(nil)
	_ driven.LoadHistory   = (*Store)(nil)
)

// Bookkeeping tables hidden from ListTables.
const (
	migrationsTable  = "schema_migrations"
	loadHistoryTable = "load_history"
)

// Store is the SQLite relational store holding the tables questions are
// asked about.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens (creating if needed) the database file at path and applies
// pending migrations.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newWithDB(db, path)
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func newWithDB(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path, now: time.Now}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

// ListTables returns the names of all user tables in sorted order.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name NOT IN (?, ?)
		ORDER BY name
	`, migrationsTable, loadHistoryTable)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReadTable returns the column names and up to limit rows of the named table.
func (s *Store) ReadTable(ctx context.Context, name string, limit int) (*domain.QueryResult, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, name) {
		return nil, fmt.Errorf("table %q: %w", name, domain.ErrNotFound)
	}

	query := "SELECT * FROM " + quoteIdent(name)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", name, err)
	}
	defer rows.Close()

	return collect(rows, 0)
}

// ColumnValues returns up to limit distinct non-null, non-blank values of
// column in first-stored order.
func (s *Store) ColumnValues(ctx context.Context, table, column string, limit int) ([]any, error) {
	col := quoteIdent(column)
	query := fmt.Sprintf(`SELECT %[1]s FROM %[2]s
		WHERE %[1]s IS NOT NULL AND TRIM(%[1]s) <> ''
		GROUP BY %[1]s ORDER BY MIN(rowid) LIMIT ?`, col, quoteIdent(table))

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sampling %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	result, err := collect(rows, 0)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(result.Rows))
	for i, row := range result.Rows {
		values[i] = row[0]
	}
	return values, nil
}

// Execute runs query and returns at most maxRows rows. Zero means no cap.
func (s *Store) Execute(ctx context.Context, query string, maxRows int) (*domain.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows, maxRows)
}

// ReplaceTable drops name if it exists and recreates it with rows, all in one
// transaction, then appends an entry to the load history.
func (s *Store) ReplaceTable(ctx context.Context, name string, columns []driven.ColumnDef, rows [][]any) error {
	if name == "" || len(columns) == 0 {
		return fmt.Errorf("replace table %q: name and columns are required: %w", name, domain.ErrInvalidInput)
	}
	if name == migrationsTable || name == loadHistoryTable {
		return fmt.Errorf("replace table %q: name is reserved: %w", name, domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("dropping table %s: %w", name, err)
	}

	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		colType := col.Type
		if colType == "" {
			colType = driven.ColumnText
		}
		defs[i] = quoteIdent(col.Name) + " " + string(colType)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d of %s has %d values, want %d: %w",
				i, name, len(row), len(columns), domain.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO load_history (table_name, row_count, loaded_at) VALUES (?, ?, ?)",
		name, len(rows), s.now().UTC()); err != nil {
		return fmt.Errorf("recording load of %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing table %s: %w", name, err)
	}
	logger.Debug("Replaced table %s with %d rows", name, len(rows))
	return nil
}

// LoadHistory returns the most recent load of each table, newest first.
func (s *Store) LoadHistory(ctx context.Context) ([]domain.LoadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, row_count, loaded_at FROM load_history
		WHERE id IN (SELECT MAX(id) FROM load_history GROUP BY table_name)
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("reading load history: %w", err)
	}
	defer rows.Close()

	var records []domain.LoadRecord
	for rows.Next() {
		var rec domain.LoadRecord
		var loadedAt sql.NullTime
		if err := rows.Scan(&rec.Table, &rec.Rows, &loadedAt); err != nil {
			return nil, fmt.Errorf("scanning load history: %w", err)
		}
		rec.LoadedAt = loadedAt.Time
		records = append(records, rec)
	}
	return records, rows.Err()
}

// collect reads rows into a QueryResult, stopping after maxRows when positive.
func collect(rows *sql.Rows, maxRows int) (*domain.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &domain.QueryResult{Columns: columns}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
