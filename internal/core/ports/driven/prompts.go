package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptIntentClassify routes a question to SQL_QUERY, DATA_ASSISTANCE
	// or GENERAL_CONVERSATION and expects {"intent": "..."} back.
	// This prompt has no format placeholders.
	PromptIntentClassify = "intent_classify"

	// PromptSQLGeneration is the system prompt for turning a question and a
	// narrowed schema into a single SQLite query.
	// This prompt has no format placeholders.
	PromptSQLGeneration = "sql_generation"

	// PromptDataAssistance answers questions about the schema itself.
	// This prompt has no format placeholders.
	PromptDataAssistance = "data_assistance"

	// PromptConversation is the persona prompt for general conversation.
	// The prompt template expects a %s placeholder for the current date.
	PromptConversation = "conversation"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
