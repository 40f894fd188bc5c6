// Package domain defines the core business entities for Thorr.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Table: A relational table with its columns, relations and sample rows
//   - Passage: A retrieval-ready text unit with a back-reference to its source
//   - RefinedSchema: The per-table reduced column set handed to SQL generation
//   - Intent: The classified category of a user question
//   - Answer: The tagged outcome of handling one question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
