// Package sqlite provides the SQLite relational store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One Store implements three ports over a single connection:
//
//   - TableStore: lists and samples the user tables
//   - QueryExecutor: runs generated queries with a row cap
//   - TableWriter: replaces tables for the spreadsheet loader
//
// # Schema
//
// User tables are created by the loader. Bookkeeping tables (schema_migrations
// and load_history) are managed through versioned migrations in migrations/
// and never appear in ListTables.
//
// # Thread Safety
//
// All operations are thread-safe. The store opens SQLite in WAL mode with a
// busy timeout.
package sqlite
