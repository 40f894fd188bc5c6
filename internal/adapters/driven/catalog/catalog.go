// Package catalog provides a TOML-backed driven.CatalogStore.
//
// The catalog carries what the database cannot tell us about its tables:
// a free-text description, the joins to other tables and the key columns.
// When no catalog file exists the embedded default for the real-estate
// dataset is used.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// FileName is the catalog file name inside the thorr directory.
const FileName = "catalog.toml"

//go:embed default.toml
var defaultCatalog []byte

type relationEntry struct {
	Table  string `toml:"table"`
	Column string `toml:"column"`
}

type tableEntry struct {
	Description string          `toml:"description"`
	KeyColumns  []string        `toml:"key_columns"`
	Relations   []relationEntry `toml:"relations"`
}

type catalogFile struct {
	Tables map[string]tableEntry `toml:"tables"`
}

// Store reads the catalog from a TOML file.
type Store struct {
	path string
}

// NewStore creates a catalog store for path. An empty path always uses the
// embedded default.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the catalog file path, or "" for the embedded default.
func (s *Store) Path() string {
	return s.path
}

// Load returns the catalog entries keyed by table name.
func (s *Store) Load() (map[string]domain.TableSpec, error) {
	data := defaultCatalog
	if s.path != "" {
		raw, err := os.ReadFile(s.path)
		switch {
		case err == nil:
			data = raw
		case errors.Is(err, os.ErrNotExist):
			// fall through to the embedded default
		default:
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (map[string]domain.TableSpec, error) {
	var doc catalogFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	specs := make(map[string]domain.TableSpec, len(doc.Tables))
	for name, entry := range doc.Tables {
		spec := domain.TableSpec{
			Description: entry.Description,
			KeyColumns:  entry.KeyColumns,
		}
		for _, rel := range entry.Relations {
			if rel.Table == "" || rel.Column == "" {
				return nil, fmt.Errorf("table %s: relation needs table and column: %w", name, domain.ErrInvalidInput)
			}
			spec.Relations = append(spec.Relations, domain.Relation{Table: rel.Table, Column: rel.Column})
		}
		specs[name] = spec
	}
	return specs, nil
}

// WriteDefault writes the embedded catalog to path unless a file is already there.
// It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("create catalog directory: %w", err)
	}
	if err := os.WriteFile(path, defaultCatalog, 0600); err != nil {
		return false, fmt.Errorf("write catalog: %w", err)
	}
	return true, nil
}
