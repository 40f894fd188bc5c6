package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.provider", "openai"))

	val, ok := store.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "openai", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("retrieval.top_tables", 3)
	_ = store.Set("retrieval.top_columns", int64(20))
	_ = store.Set("rate_limit.requests_per_second", 2.5)
	_ = store.Set("execution.enabled", true)
	_ = store.Set("retrieval.key_columns", []any{"id_predio", 7, "unidade_id"})

	assert.Equal(t, 3, store.GetInt("retrieval.top_tables"))
	assert.Equal(t, 20, store.GetInt("retrieval.top_columns"))
	assert.Equal(t, 2, store.GetInt("rate_limit.requests_per_second"))
	assert.InDelta(t, 2.5, store.GetFloat("rate_limit.requests_per_second"), 0.0001)
	assert.InDelta(t, 3.0, store.GetFloat("retrieval.top_tables"), 0.0001)
	assert.True(t, store.GetBool("execution.enabled"))
	assert.Equal(t, []string{"id_predio", "unidade_id"}, store.GetStringSlice("retrieval.key_columns"))
}

func TestConfigStore_WrongTypesReturnZeroValues(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", 42)

	assert.Empty(t, store.GetString("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "value")

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
	assert.Equal(t, "value", store.GetString("key"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
