package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

func testPromptDefaults() map[string]string {
	return map[string]string{
		driven.PromptIntentClassify: `Reply with {"intent": "SQL_QUERY"}`,
		driven.PromptSQLGeneration:  "Write one SQLite query.",
		driven.PromptDataAssistance: "Explain the schema.",
		driven.PromptConversation:   "Today is %s.",
	}
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testPromptDefaults())
	require.NoError(t, err)
	return store, dir
}

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+promptExt), []byte(content), 0600))
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	store, dir := newTestPromptStore(t)

	assert.Equal(t, dir, store.Dir())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "constructor must not write files")
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".thorr", "prompts"), store.Dir())
}

func TestNewPromptStore_CopiesDefaults(t *testing.T) {
	defaults := testPromptDefaults()
	store, err := NewPromptStore(t.TempDir(), defaults)
	require.NoError(t, err)

	defaults[driven.PromptSQLGeneration] = "changed"

	prompt, err := store.Load(driven.PromptSQLGeneration)
	require.NoError(t, err)
	assert.Equal(t, "Write one SQLite query.", prompt)
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptIntentClassify)
	require.NoError(t, err)

	for _, f := range []string{
		"intent_classify.txt",
		"sql_generation.txt",
		"data_assistance.txt",
		"conversation.txt",
		"README.md",
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "intent_classify.txt")
}

func TestPromptStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"default content", "", "", "Today is %s."},
		{"custom content", "conversation", "Hoje é %s. Seja breve.", "Hoje é %s. Seja breve."},
		{"trims whitespace", "conversation", "\n\n  Hoje é %s.  \n", "Hoje é %s."},
		{"empty file falls back", "conversation", "   \n", "Today is %s."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestPromptStore(t)
			if tt.file != "" {
				writePrompt(t, dir, tt.file, tt.content)
			}

			prompt, err := store.Load(driven.PromptConversation)

			require.NoError(t, err)
			assert.Equal(t, tt.want, prompt)
		})
	}
}

func TestPromptStore_Load_FallsBackWhenDeleted(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptSQLGeneration)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "sql_generation.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptSQLGeneration)
	require.NoError(t, err)
	assert.Equal(t, "Write one SQLite query.", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts", testPromptDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDataAssistance)
	require.NoError(t, err)
	assert.Equal(t, "Explain the schema.", prompt)

	_, err = store.Load("nonexistent_prompt")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptIntentClassify)
	require.NoError(t, err)

	writePrompt(t, dir, driven.PromptIntentClassify, "edited")

	cached, err := store.Load(driven.PromptIntentClassify)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	reloaded, err := store.Load(driven.PromptIntentClassify)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)
	writePrompt(t, dir, driven.PromptSQLGeneration, "pre-existing")

	_, err := store.Load(driven.PromptConversation)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "sql_generation.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", string(data))
}

func TestPromptStore_Names(t *testing.T) {
	store, _ := newTestPromptStore(t)

	assert.Equal(t, []string{
		driven.PromptConversation,
		driven.PromptDataAssistance,
		driven.PromptIntentClassify,
		driven.PromptSQLGeneration,
	}, store.Names())
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptSQLGeneration)
			if err == nil {
				results[i] = prompt
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "Write one SQLite query.", got)
	}
}
