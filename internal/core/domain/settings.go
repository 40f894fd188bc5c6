package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings tunes the two-stage table and column retrieval.
type RetrievalSettings struct {
	// TopTables is the number of tables shortlisted per question.
	TopTables int

	// TopColumns is the global number of columns kept across shortlisted tables.
	TopColumns int

	// SampleValues is the number of distinct sample values per column passage.
	SampleValues int

	// SampleRows bounds how many rows are read from each table at startup.
	// Column examples are read from the whole column, not from these rows.
	SampleRows int

	// KeyColumns lists join columns preserved in every table that has them.
	KeyColumns []string

	// CacheEmbeddings keeps column passage embeddings across questions.
	CacheEmbeddings bool
}

// DatabaseSettings locates the relational store.
type DatabaseSettings struct {
	// Path is the SQLite database file.
	Path string
}

// ExecutionSettings controls running generated SQL.
type ExecutionSettings struct {
	// Enabled runs generated SQL against the store after the statement guard.
	Enabled bool

	// MaxRows caps the rows returned from an executed query. Zero means no cap.
	MaxRows int
}

// RateLimitSettings throttles calls to remote providers.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained call rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the maximum number of calls allowed at once.
	Burst int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Retrieval holds retrieval tuning.
	Retrieval RetrievalSettings

	// Database holds store location.
	Database DatabaseSettings

	// Execution holds query execution settings.
	Execution ExecutionSettings

	// RateLimit holds provider throttling.
	RateLimit RateLimitSettings
}

// Retrieval defaults.
const (
	DefaultTopTables    = 3
	DefaultTopColumns   = 20
	DefaultSampleValues = 5
	DefaultSampleRows   = 200
	DefaultDatabasePath = "database.db"
)

// DefaultKeyColumns returns the join columns shared by the real-estate tables.
func DefaultKeyColumns() []string {
	return []string{"id_unidade", "id_predio", "id_tipologia", "unidade_id", "id_atualização"}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
// Users must explicitly configure them via settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		// Embedding is left unconfigured - user must set up via settings
		Embedding: EmbeddingSettings{},
		// LLM is left unconfigured - user must set up via settings
		LLM: LLMSettings{},
		Retrieval: RetrievalSettings{
			TopTables:       DefaultTopTables,
			TopColumns:      DefaultTopColumns,
			SampleValues:    DefaultSampleValues,
			SampleRows:      DefaultSampleRows,
			KeyColumns:      DefaultKeyColumns(),
			CacheEmbeddings: true,
		},
		Database: DatabaseSettings{
			Path: DefaultDatabasePath,
		},
		Execution: ExecutionSettings{
			Enabled: true,
			MaxRows: 100,
		},
		RateLimit: RateLimitSettings{},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
// Multilingual models are preferred since questions and data are in Portuguese.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "jeffh/intfloat-multilingual-e5-large:f16",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"jeffh/intfloat-multilingual-e5-large:f16": 1024,
		"nomic-embed-text":                         768,
		"mxbai-embed-large":                        1024,
		"all-minilm":                               384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
