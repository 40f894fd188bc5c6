package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// --- Mock implementations ---

// term maps a marker found in passage text, or a word found in query text,
// to one vector dimension.
type term struct {
	passage string
	query   string
}

// fakeEmbedder implements driven.EmbeddingService with a deterministic
// function of the text.
type fakeEmbedder struct {
	mu        sync.Mutex
	fn        func(text string) []float32
	embedErr  error
	batchErr  error
	embedded  []string
	batchSize []int
}

// termEmbedder sets dimension i to 1 when the text contains terms[i]:
// the passage marker for passages, the query word for queries.
func termEmbedder(terms ...term) *fakeEmbedder {
	return &fakeEmbedder{fn: func(text string) []float32 {
		isQuery := strings.HasPrefix(text, QueryPrefix)
		v := make([]float32, len(terms))
		for i, t := range terms {
			marker := t.passage
			if isQuery {
				marker = t.query
			}
			if marker != "" && strings.Contains(text, marker) {
				v[i] = 1
			}
		}
		return v
	}}
}

func (m *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.embedded = append(m.embedded, text)
	return m.fn(text), nil
}

func (m *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	m.batchSize = append(m.batchSize, len(texts))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		m.embedded = append(m.embedded, t)
		out[i] = m.fn(t)
	}
	return out, nil
}

func (m *fakeEmbedder) Dimensions() int              { return len(m.fn("")) }
func (m *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (m *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (m *fakeEmbedder) Close() error                 { return nil }

func (m *fakeEmbedder) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.embedded...)
}

// mockLLM implements driven.LLMService, replying per prompt kind.
type mockLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []llmCall
}

type llmCall struct {
	kind   string
	system string
	user   string
	opts   driven.GenerateOptions
}

func newMockLLM() *mockLLM {
	return &mockLLM{replies: map[string]string{}, errs: map[string]error{}}
}

// promptKind identifies which built-in prompt a system message came from.
func promptKind(system string) string {
	for name, p := range DefaultPrompts() {
		if strings.HasPrefix(system, p[:40]) {
			return name
		}
	}
	return "custom"
}

func (m *mockLLM) Complete(_ context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind := promptKind(system)
	m.calls = append(m.calls, llmCall{kind: kind, system: system, user: user, opts: opts})
	if err := m.errs[kind]; err != nil {
		return "", err
	}
	return m.replies[kind], nil
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, len(m.calls))
	for i, c := range m.calls {
		kinds[i] = c.kind
	}
	return kinds
}

func (m *mockLLM) lastCall() llmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts  map[string]string
	err      error
	reloaded int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() { m.reloaded++ }

// mockExecutor implements driven.QueryExecutor.
type mockExecutor struct {
	result  *domain.QueryResult
	err     error
	queries []string
	maxRows int
}

func (m *mockExecutor) Execute(_ context.Context, query string, maxRows int) (*domain.QueryResult, error) {
	m.queries = append(m.queries, query)
	m.maxRows = maxRows
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockMetrics implements driven.MetricsRecorder.
type mockMetrics struct {
	stages  []string
	answers []domain.AnswerKind
}

func (m *mockMetrics) ObserveStage(stage string, _ time.Duration) {
	m.stages = append(m.stages, stage)
}

func (m *mockMetrics) ObserveAnswer(_ domain.Intent, kind domain.AnswerKind) {
	m.answers = append(m.answers, kind)
}

// mockCatalog implements driven.CatalogStore.
type mockCatalog struct {
	specs map[string]domain.TableSpec
	err   error
}

func (m *mockCatalog) Load() (map[string]domain.TableSpec, error) {
	return m.specs, m.err
}

// --- Fixtures ---

func realEstateTables() []domain.Table {
	return []domain.Table{
		{
			Name:        "buildings",
			Columns:     []string{"id_predio", "nome", "cidade"},
			Description: "Edifícios com dados de incorporadora, endereço, cidade.",
			Relations: []domain.Relation{
				{Table: "units", Column: "id_predio"},
			},
			Rows: [][]any{{int64(1), "Edifício Sol", "Porto Alegre"}},
		},
		{
			Name:        "units",
			Columns:     []string{"id_unidade", "id_predio", "andar", "area"},
			Description: "Unidades individuais para venda/aluguel.",
			Relations: []domain.Relation{
				{Table: "buildings", Column: "id_predio"},
				{Table: "units_updates", Column: "unidade_id"},
			},
			KeyColumns: []string{"id_unidade"},
			Rows:       [][]any{{int64(10), int64(1), int64(3), 72.5}},
		},
		{
			Name:        "units_updates",
			Columns:     []string{"unidade_id", "preco", "disponivel"},
			Description: "Histórico de preços das unidades.",
			Relations: []domain.Relation{
				{Table: "units", Column: "unidade_id"},
			},
			Rows: [][]any{{int64(10), 350000.0, "sim"}},
		},
	}
}

func tablesByName(tables []domain.Table) map[string]domain.Table {
	m := make(map[string]domain.Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}

// tableTerms route "predio" questions to buildings, "unidade" to units and
// "preco" to units_updates.
func tableTerms() []term {
	return []term{
		{passage: "table: buildings\n", query: "predio"},
		{passage: "table: units\n", query: "unidade"},
		{passage: "table: units_updates\n", query: "preco"},
	}
}

// columnTerms give every column its own dimension, hit by the column name in
// the question.
func columnTerms(columns ...string) []term {
	terms := make([]term, len(columns))
	for i, c := range columns {
		terms[i] = term{passage: "column " + c + ".", query: c}
	}
	return terms
}
