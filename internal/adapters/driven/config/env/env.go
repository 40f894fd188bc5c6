// Package env layers THORR_* environment variables over a driven.ConfigStore.
// Variables win over the file for reads; writes still go to the file.
package env

import (
	"fmt"
	"sort"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/logger"
)

// Prefix is prepended to every variable name.
const Prefix = "THORR_"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Overrides holds the environment variables thorr understands.
// Unset variables leave their pointer nil so the file value is used.
type Overrides struct {
	EmbeddingProvider *string `env:"EMBEDDING_PROVIDER"`
	EmbeddingModel    *string `env:"EMBEDDING_MODEL"`
	EmbeddingBaseURL  *string `env:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   *string `env:"EMBEDDING_API_KEY"`

	LLMProvider *string `env:"LLM_PROVIDER"`
	LLMModel    *string `env:"LLM_MODEL"`
	LLMBaseURL  *string `env:"LLM_BASE_URL"`
	LLMAPIKey   *string `env:"LLM_API_KEY"`

	TopTables  *int     `env:"TOP_TABLES"`
	TopColumns *int     `env:"TOP_COLUMNS"`
	KeyColumns []string `env:"KEY_COLUMNS" envSeparator:","`

	DBPath *string `env:"DB_PATH"`

	ExecutionEnabled *bool `env:"EXECUTE"`
	MaxRows          *int  `env:"MAX_ROWS"`

	RequestsPerSecond *float64 `env:"RATE_LIMIT_RPS"`
	Burst             *int     `env:"RATE_LIMIT_BURST"`
}

// Parse reads overrides from the process environment.
func Parse() (*Overrides, error) {
	return parse(env.Options{Prefix: Prefix})
}

// ParseFrom reads overrides from environ instead of the process environment.
func ParseFrom(environ map[string]string) (*Overrides, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (*Overrides, error) {
	var o Overrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return nil, fmt.Errorf("parse environment variables: %w", err)
	}
	return &o, nil
}

// Values returns the set overrides keyed by config key.
func (o *Overrides) Values() map[string]any {
	values := make(map[string]any)
	putString := func(key string, v *string) {
		if v != nil {
			values[key] = *v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			values[key] = *v
		}
	}

	putString("embedding.provider", o.EmbeddingProvider)
	putString("embedding.model", o.EmbeddingModel)
	putString("embedding.base_url", o.EmbeddingBaseURL)
	putString("embedding.api_key", o.EmbeddingAPIKey)
	putString("llm.provider", o.LLMProvider)
	putString("llm.model", o.LLMModel)
	putString("llm.base_url", o.LLMBaseURL)
	putString("llm.api_key", o.LLMAPIKey)
	putInt("retrieval.top_tables", o.TopTables)
	putInt("retrieval.top_columns", o.TopColumns)
	if len(o.KeyColumns) > 0 {
		values["retrieval.key_columns"] = o.KeyColumns
	}
	putString("database.path", o.DBPath)
	if o.ExecutionEnabled != nil {
		values["execution.enabled"] = *o.ExecutionEnabled
	}
	putInt("execution.max_rows", o.MaxRows)
	if o.RequestsPerSecond != nil {
		values["rate_limit.requests_per_second"] = *o.RequestsPerSecond
	}
	putInt("rate_limit.burst", o.Burst)

	return values
}

// ConfigStore reads through environment overrides before falling back to the
// wrapped store. Set, Save and Load act on the wrapped store only.
type ConfigStore struct {
	driven.ConfigStore
	overrides map[string]any
}

// Wrap returns inner with overrides applied on read.
func Wrap(inner driven.ConfigStore, overrides *Overrides) *ConfigStore {
	values := overrides.Values()
	if len(values) > 0 {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("Environment overrides: %v", keys)
	}
	return &ConfigStore{ConfigStore: inner, overrides: values}
}

// Overridden reports whether key is set from the environment.
func (s *ConfigStore) Overridden(key string) bool {
	_, ok := s.overrides[key]
	return ok
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.overrides[key]; ok {
		return v, true
	}
	return s.ConfigStore.Get(key)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := s.overrides[key].(string); ok {
		return v
	}
	return s.ConfigStore.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := s.overrides[key].(int); ok {
		return v
	}
	return s.ConfigStore.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (s *ConfigStore) GetFloat(key string) float64 {
	switch v := s.overrides[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return s.ConfigStore.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := s.overrides[key].(bool); ok {
		return v
	}
	return s.ConfigStore.GetBool(key)
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if v, ok := s.overrides[key].([]string); ok {
		return v
	}
	return s.ConfigStore.GetStringSlice(key)
}
