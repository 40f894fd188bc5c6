package domain

import (
	"slices"
	"sort"
)

// Relation declares that a table joins Table through Column.
type Relation struct {
	// Table is the foreign table name.
	Table string

	// Column is the join column, present in both tables.
	Column string
}

// Table is a relational table loaded once per session.
// It is never mutated after construction.
type Table struct {
	// Name uniquely identifies the table.
	Name string

	// Columns is the ordered list of column names.
	Columns []string

	// Description is free text describing the table's contents.
	Description string

	// Relations lists declared joins to other tables.
	Relations []Relation

	// KeyColumns lists columns declared as keys for this table.
	KeyColumns []string

	// Rows holds a bounded sample of the table's data, in column order.
	Rows [][]any

	// Samples maps a column to example values drawn from the whole column.
	// Nil when the store cannot sample; Rows is used instead.
	Samples map[string][]string
}

// HasColumn reports whether the table declares column.
func (t Table) HasColumn(column string) bool {
	return slices.Contains(t.Columns, column)
}

// TableSpec is the catalog entry for a table: the parts of a Table that
// do not come from the store itself.
type TableSpec struct {
	Description string
	Relations   []Relation
	KeyColumns  []string
}

// PassageRef is a back-reference from a passage to its source.
// Column is empty for table-level passages.
type PassageRef struct {
	Table  string
	Column string
}

// Key returns the lookup key for the reference: "table" or "table.column".
func (r PassageRef) Key() string {
	if r.Column == "" {
		return r.Table
	}
	return r.Table + "." + r.Column
}

// Passage is a text unit built for embedding and retrieval.
type Passage struct {
	Ref  PassageRef
	Text string
}

// VectorHit is a single nearest-neighbour result.
type VectorHit struct {
	// Ref is the back-reference key of the matching passage.
	Ref string

	// Distance is the Euclidean distance to the query vector.
	Distance float64
}

// RefinedSchema maps a table name to the reduced set of columns selected for it.
type RefinedSchema map[string][]string

// Tables returns the table names in sorted order.
func (s RefinedSchema) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no table survived refinement.
func (s RefinedSchema) IsEmpty() bool {
	return len(s) == 0
}

// QueryResult is the tabular result of executing a query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}
