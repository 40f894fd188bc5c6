package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/adapters/driven/storage/memory"
)

func TestParseFrom_Empty(t *testing.T) {
	o, err := ParseFrom(map[string]string{})

	require.NoError(t, err)
	assert.Empty(t, o.Values())
}

func TestParseFrom_AllVariables(t *testing.T) {
	o, err := ParseFrom(map[string]string{
		"THORR_EMBEDDING_PROVIDER": "openai",
		"THORR_EMBEDDING_API_KEY":  "sk-embed",
		"THORR_LLM_PROVIDER":       "anthropic",
		"THORR_LLM_MODEL":          "claude-3-5-haiku-latest",
		"THORR_LLM_API_KEY":        "sk-llm",
		"THORR_TOP_TABLES":         "2",
		"THORR_KEY_COLUMNS":        "id_predio,id_unidade",
		"THORR_DB_PATH":            "/data/imoveis.db",
		"THORR_EXECUTE":            "false",
		"THORR_RATE_LIMIT_RPS":     "0.5",
		"UNRELATED":                "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"embedding.provider":             "openai",
		"embedding.api_key":              "sk-embed",
		"llm.provider":                   "anthropic",
		"llm.model":                      "claude-3-5-haiku-latest",
		"llm.api_key":                    "sk-llm",
		"retrieval.top_tables":           2,
		"retrieval.key_columns":          []string{"id_predio", "id_unidade"},
		"database.path":                  "/data/imoveis.db",
		"execution.enabled":              false,
		"rate_limit.requests_per_second": 0.5,
	}, o.Values())
}

func TestParseFrom_InvalidNumber(t *testing.T) {
	_, err := ParseFrom(map[string]string{"THORR_TOP_TABLES": "three"})

	assert.ErrorContains(t, err, "parse environment variables")
}

func TestParse_ProcessEnvironment(t *testing.T) {
	t.Setenv("THORR_LLM_MODEL", "qwen2.5")

	o, err := Parse()

	require.NoError(t, err)
	require.NotNil(t, o.LLMModel)
	assert.Equal(t, "qwen2.5", *o.LLMModel)
}

func TestConfigStore_OverridesReads(t *testing.T) {
	inner := memory.NewConfigStore()
	require.NoError(t, inner.Set("llm.provider", "ollama"))
	require.NoError(t, inner.Set("llm.model", "llama3.2"))
	require.NoError(t, inner.Set("retrieval.top_columns", 20))
	require.NoError(t, inner.Set("execution.enabled", true))

	o, err := ParseFrom(map[string]string{
		"THORR_LLM_PROVIDER":   "openai",
		"THORR_TOP_COLUMNS":    "10",
		"THORR_EXECUTE":        "false",
		"THORR_RATE_LIMIT_RPS": "3",
		"THORR_KEY_COLUMNS":    "id_predio",
	})
	require.NoError(t, err)
	store := Wrap(inner, o)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Equal(t, 10, store.GetInt("retrieval.top_columns"))
	assert.False(t, store.GetBool("execution.enabled"))
	assert.InDelta(t, 3.0, store.GetFloat("rate_limit.requests_per_second"), 1e-9)
	assert.Equal(t, []string{"id_predio"}, store.GetStringSlice("retrieval.key_columns"))

	v, ok := store.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "openai", v)

	assert.True(t, store.Overridden("llm.provider"))
	assert.False(t, store.Overridden("llm.model"))
}

func TestConfigStore_WritesGoToInnerStore(t *testing.T) {
	inner := memory.NewConfigStore()
	o, err := ParseFrom(map[string]string{"THORR_LLM_PROVIDER": "openai"})
	require.NoError(t, err)
	store := Wrap(inner, o)

	require.NoError(t, store.Set("llm.provider", "anthropic"))

	assert.Equal(t, "anthropic", inner.GetString("llm.provider"))
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, inner.Path(), store.Path())
}
