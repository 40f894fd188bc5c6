// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vector embeddings for passages and questions
//   - VectorIndexBuilder: Builds exact nearest-neighbour indexes
//   - LLMService: Classifies intents and generates SQL and replies
//   - TableStore: Lists and reads the relational tables
//   - CatalogStore: Table descriptions, relations and key columns
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - QueryExecutor: Runs generated SQL. Without it, SQL is returned unexecuted.
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//   - TableWriter, SpreadsheetReader: Only used by the load command.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
