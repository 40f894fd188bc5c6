package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := newTestConfigStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	val, ok := store.Get("llm.provider")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestDefaultDir_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".thorr"), dir)
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(nested)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, "config.toml"), store.Path())
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml {{[["), 0600))

	store, err := NewConfigStore(dir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# nothing yet\n"), 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("retrieval.top_tables", 3))
	require.NoError(t, store.Set("ratelimit.requests_per_second", 2.5))
	require.NoError(t, store.Set("execution.enabled", true))
	require.NoError(t, store.Set("retrieval.key_columns", []string{"id_predio", "id_unidade"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("llm.provider"), "ollama"},
		{"string wrong type", store.GetString("retrieval.top_tables"), ""},
		{"string missing", store.GetString("llm.model"), ""},
		{"int", store.GetInt("retrieval.top_tables"), 3},
		{"int wrong type", store.GetInt("llm.provider"), 0},
		{"float", store.GetFloat("ratelimit.requests_per_second"), 2.5},
		{"float from int", store.GetFloat("retrieval.top_tables"), 3.0},
		{"float wrong type", store.GetFloat("llm.provider"), 0.0},
		{"bool", store.GetBool("execution.enabled"), true},
		{"bool wrong type", store.GetBool("llm.provider"), false},
		{"slice", store.GetStringSlice("retrieval.key_columns"), []string{"id_predio", "id_unidade"}},
		{"slice missing", store.GetStringSlice("retrieval.other"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	store, dir := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("retrieval.top_columns", 20))
	require.NoError(t, store.Set("ratelimit.requests_per_second", 4))
	require.NoError(t, store.Set("execution.enabled", false))
	require.NoError(t, store.Set("retrieval.key_columns", []string{"id_predio"}))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", reopened.GetString("llm.provider"))
	assert.Equal(t, 20, reopened.GetInt("retrieval.top_columns"))
	assert.InDelta(t, 4.0, reopened.GetFloat("ratelimit.requests_per_second"), 1e-9)
	assert.False(t, reopened.GetBool("execution.enabled"))
	assert.Equal(t, []string{"id_predio"}, reopened.GetStringSlice("retrieval.key_columns"))

	raw, ok := reopened.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "anthropic", raw)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[embedding]")
	assert.NotContains(t, string(data), "llm.provider")
}

func TestConfigStore_ReadsHandWrittenTables(t *testing.T) {
	dir := t.TempDir()
	content := "database = 'imoveis.db'\n\n[llm]\nprovider = 'openai'\nmodel = 'gpt-4o-mini'\n\n[retrieval]\ntop_tables = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "imoveis.db", store.GetString("database"))
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
	assert.Equal(t, 5, store.GetInt("retrieval.top_tables"))
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, _ := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("llm.model", "qwen2.5"))

	assert.Equal(t, "qwen2.5", store.GetString("llm.model"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.api_key", "sk-test"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	store, dir := newTestConfigStore(t)

	store.mu.Lock()
	store.data["database"] = "custom.db"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", reopened.GetString("database"))
}

func TestConfigStore_SetWriteError(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("database", "a.db"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("database", "b.db"))
}

func TestConfigStore_SetUnmarshallableValue(t *testing.T) {
	store, _ := newTestConfigStore(t)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, _ := newTestConfigStore(t)
	require.NoError(t, store.Set("database", "a.db"))
	require.NoError(t, os.WriteFile(store.Path(), []byte("][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "retrieval.k" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 7, store.GetInt("retrieval.k7"))
}

func TestNestMap(t *testing.T) {
	tests := []struct {
		name string
		flat map[string]any
		want map[string]any
	}{
		{
			name: "top level only",
			flat: map[string]any{"database": "a.db"},
			want: map[string]any{"database": "a.db"},
		},
		{
			name: "shared table",
			flat: map[string]any{"llm.provider": "ollama", "llm.model": "llama3.2"},
			want: map[string]any{"llm": map[string]any{"provider": "ollama", "model": "llama3.2"}},
		},
		{
			name: "leaf clashes with table",
			flat: map[string]any{"llm": "x", "llm.provider": "ollama"},
			want: map[string]any{"llm": "x", "llm.provider": "ollama"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nested := nestMap(tt.flat)
			assert.Equal(t, tt.want, nested)
			assert.Equal(t, tt.flat, flattenMap(nested, ""))
		})
	}
}
