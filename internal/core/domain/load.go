package domain

import "time"

// LoadOptions controls how spreadsheets are written to the store.
type LoadOptions struct {
	// NormalizeText lower-cases text cells and strips their diacritics.
	NormalizeText bool
}

// LoadReport describes one table written by the loader.
type LoadReport struct {
	Table  string
	Source string
	Rows   int

	// Columns maps each column to the storage type chosen for it.
	Columns map[string]string

	// Widened lists numeric columns stored as TEXT because a value did not
	// fit in a signed 64-bit integer.
	Widened []string
}

// LoadRecord is the most recent load of one table.
type LoadRecord struct {
	Table    string
	Rows     int
	LoadedAt time.Time
}
