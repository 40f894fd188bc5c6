package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
	"github.com/custodia-labs/thorr/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// User-facing replies for paths that do not come from the model.
const (
	FallbackMessage      = "Sorry, I couldn't understand. Could you rephrase?"
	NoDataMessage        = "I couldn't find data related to your question. Could you rephrase it?"
	ConversationFailure  = "Sorry, an error occurred while processing your question. Please try again."
	executionErrorPrefix = "Error executing query: "
)

// AssistantConfig tunes the question pipeline.
type AssistantConfig struct {
	TopTables    int
	TopColumns   int
	SampleValues int
	KeyColumns   []string

	// Execute runs generated SQL when an executor is set.
	Execute bool
	MaxRows int
}

// AssistantConfigFrom derives the pipeline config from application settings.
func AssistantConfigFrom(settings *domain.AppSettings) AssistantConfig {
	return AssistantConfig{
		TopTables:    settings.Retrieval.TopTables,
		TopColumns:   settings.Retrieval.TopColumns,
		SampleValues: settings.Retrieval.SampleValues,
		KeyColumns:   settings.Retrieval.KeyColumns,
		Execute:      settings.Execution.Enabled,
		MaxRows:      settings.Execution.MaxRows,
	}
}

// AssistantService answers questions by routing them on their intent.
// It holds no per-question state; the table index is shared read-only.
type AssistantService struct {
	tables      map[string]domain.Table
	ordered     []domain.Table
	retriever   *TableRetriever
	refiner     *ColumnRefiner
	classifier  *IntentClassifier
	synthesizer *QuerySynthesizer
	llm         driven.LLMService
	prompts     driven.PromptStore
	executor    driven.QueryExecutor
	metrics     driven.MetricsRecorder
	cfg         AssistantConfig
	now         func() time.Time
}

// NewAssistantService builds the table index over tables and wires the
// pipeline. columnEmbedder embeds column passages; pass a caching decorator
// to avoid re-embedding per question, or the same service as embedder.
// It fails with domain.ErrEmptyCorpus when tables is empty.
func NewAssistantService(
	ctx context.Context,
	tables []domain.Table,
	embedder driven.EmbeddingService,
	columnEmbedder driven.EmbeddingService,
	build driven.VectorIndexBuilder,
	llm driven.LLMService,
	cfg AssistantConfig,
) (*AssistantService, error) {
	if columnEmbedder == nil {
		columnEmbedder = embedder
	}

	retriever, err := NewTableRetriever(ctx, embedder, build, tables)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	ordered := append([]domain.Table(nil), tables...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	return &AssistantService{
		tables:      byName,
		ordered:     ordered,
		retriever:   retriever,
		refiner:     NewColumnRefiner(columnEmbedder, build, cfg.KeyColumns, cfg.SampleValues),
		classifier:  NewIntentClassifier(llm, nil),
		synthesizer: NewQuerySynthesizer(llm, nil),
		llm:         llm,
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

// SetPromptStore sets the prompt store used by every pipeline stage.
func (s *AssistantService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
	s.classifier.SetPromptStore(store)
	s.synthesizer.SetPromptStore(store)
}

// SetQueryExecutor enables running generated SQL when cfg.Execute is set.
func (s *AssistantService) SetQueryExecutor(executor driven.QueryExecutor) {
	s.executor = executor
}

// SetMetricsRecorder sets where pipeline measurements are reported.
func (s *AssistantService) SetMetricsRecorder(m driven.MetricsRecorder) {
	s.metrics = m
}

// Tables returns the loaded tables in name order.
func (s *AssistantService) Tables() []domain.Table {
	return s.ordered
}

// Close releases the table index.
func (s *AssistantService) Close() error {
	return s.retriever.Close()
}

// Ask classifies the question and dispatches it.
func (s *AssistantService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	answer, err := s.newAnswer(question)
	if err != nil {
		return nil, err
	}

	logger.Section("Intent Classification")
	start := time.Now()
	answer.Intent = s.classifier.Classify(ctx, answer.Question)
	s.observeStage(driven.StageClassify, start)
	logger.With("trace", answer.ID).Info("classified", "intent", answer.Intent)

	switch answer.Intent {
	case domain.IntentSQLQuery:
		s.generateSQL(ctx, answer)
	case domain.IntentDataAssistance:
		s.describeSchema(ctx, answer)
	case domain.IntentGeneralConversation:
		s.converse(ctx, answer)
	default:
		answer.Kind = domain.AnswerFallback
		answer.Text = FallbackMessage
	}

	s.observeAnswer(answer)
	return answer, nil
}

// GenerateSQL runs the SQL path without classification.
func (s *AssistantService) GenerateSQL(ctx context.Context, question string) (*domain.Answer, error) {
	answer, err := s.newAnswer(question)
	if err != nil {
		return nil, err
	}
	answer.Intent = domain.IntentSQLQuery
	s.generateSQL(ctx, answer)
	s.observeAnswer(answer)
	return answer, nil
}

// DescribeSchema runs the data-assistance path without classification.
func (s *AssistantService) DescribeSchema(ctx context.Context, question string) (*domain.Answer, error) {
	answer, err := s.newAnswer(question)
	if err != nil {
		return nil, err
	}
	answer.Intent = domain.IntentDataAssistance
	s.describeSchema(ctx, answer)
	s.observeAnswer(answer)
	return answer, nil
}

// Converse runs the persona path without classification.
func (s *AssistantService) Converse(ctx context.Context, question string) (*domain.Answer, error) {
	answer, err := s.newAnswer(question)
	if err != nil {
		return nil, err
	}
	answer.Intent = domain.IntentGeneralConversation
	s.converse(ctx, answer)
	s.observeAnswer(answer)
	return answer, nil
}

func (s *AssistantService) newAnswer(question string) (*domain.Answer, error) {
	if s == nil || s.retriever == nil {
		return nil, errors.New("assistant: not initialised")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	return &domain.Answer{ID: uuid.New().String(), Question: question}, nil
}

func (s *AssistantService) generateSQL(ctx context.Context, answer *domain.Answer) {
	trace := logger.With("trace", answer.ID)

	logger.Section("Table Retrieval")
	logger.Debug("Question: %q", answer.Question)
	start := time.Now()
	tables, err := s.retriever.Retrieve(ctx, answer.Question, s.cfg.TopTables)
	s.observeStage(driven.StageRetrieve, start)
	if err != nil {
		s.providerFailure(answer, "Sorry, I could not search the schema right now: %v", err)
		return
	}
	answer.Tables = tables
	trace.Info("retrieved tables", "tables", strings.Join(tables, ","))

	logger.Section("Column Refinement")
	start = time.Now()
	refined, err := s.refiner.Refine(ctx, answer.Question, tables, s.tables, s.cfg.TopColumns)
	s.observeStage(driven.StageRefine, start)
	if err != nil {
		s.providerFailure(answer, "Sorry, I could not search the schema right now: %v", err)
		return
	}
	answer.Refined = refined
	if refined.IsEmpty() {
		trace.Info("no relevant columns")
		answer.Kind = domain.AnswerNoData
		answer.Text = NoDataMessage
		return
	}

	logger.Section("SQL Generation")
	start = time.Now()
	query, err := s.synthesizer.Synthesize(ctx, answer.Question, refined)
	s.observeStage(driven.StageSynthesize, start)
	if err != nil {
		answer.Kind = domain.AnswerProviderError
		answer.Text = query
		answer.Err = err
		return
	}
	answer.Kind = domain.AnswerSQL
	answer.SQL = query
	logger.Debug("Generated SQL:\n%s", query)

	if s.executor == nil || !s.cfg.Execute {
		return
	}

	if err := GuardSQL(query); err != nil {
		trace.Warn("query rejected", "err", err)
		answer.Kind = domain.AnswerRejected
		answer.Text = fmt.Sprintf("The generated query was not run: %v", err)
		answer.Err = err
		return
	}

	logger.Section("Query Execution")
	start = time.Now()
	result, err := s.executor.Execute(ctx, query, s.cfg.MaxRows)
	s.observeStage(driven.StageExecute, start)
	if err != nil {
		answer.Text = executionErrorPrefix + err.Error()
		answer.Err = err
		return
	}
	answer.Result = result
	logger.Debug("Query returned %d rows", len(result.Rows))
}

func (s *AssistantService) describeSchema(ctx context.Context, answer *domain.Answer) {
	if s.llm == nil {
		s.providerFailure(answer, "Sorry, an error occurred while processing your request about the data schema: %v",
			domain.ErrLLMUnavailable)
		return
	}

	system := loadPrompt(s.prompts, driven.PromptDataAssistance)
	user := fmt.Sprintf("Database schema:\n%s\nUser question: %s\n\nAnswer:", RenderFullSchema(s.ordered), answer.Question)

	start := time.Now()
	reply, err := s.llm.Complete(ctx, system, user, driven.GenerateOptions{MaxTokens: 512, Temperature: 0.3})
	s.observeStage(driven.StageRespond, start)
	if err != nil {
		s.providerFailure(answer, "Sorry, an error occurred while processing your request about the data schema: %v", err)
		return
	}
	answer.Kind = domain.AnswerAssistance
	answer.Text = strings.TrimSpace(reply)
}

func (s *AssistantService) converse(ctx context.Context, answer *domain.Answer) {
	if s.llm == nil {
		answer.Kind = domain.AnswerProviderError
		answer.Text = ConversationFailure
		answer.Err = domain.NewProviderError("converse", domain.ErrLLMUnavailable)
		return
	}

	// The prompt is user-editable, so the date is substituted, never formatted.
	system := strings.ReplaceAll(loadPrompt(s.prompts, driven.PromptConversation),
		"%s", s.now().Format("January 2, 2006"))

	start := time.Now()
	reply, err := s.llm.Complete(ctx, system, answer.Question, driven.GenerateOptions{MaxTokens: 256, Temperature: 0.7})
	s.observeStage(driven.StageRespond, start)
	if err != nil {
		logger.Warn("Conversation failed: %v", err)
		answer.Kind = domain.AnswerProviderError
		answer.Text = ConversationFailure
		answer.Err = domain.NewProviderError("converse", err)
		return
	}
	answer.Kind = domain.AnswerConversation
	answer.Text = strings.TrimSpace(reply)
}

func (s *AssistantService) providerFailure(answer *domain.Answer, format string, err error) {
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		perr = domain.NewProviderError(string(answer.Intent), err)
	}
	logger.Warn("Provider failure: %v", err)
	answer.Kind = domain.AnswerProviderError
	answer.Text = fmt.Sprintf(format, err)
	answer.Err = perr
}

func (s *AssistantService) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, time.Since(start))
	}
}

func (s *AssistantService) observeAnswer(answer *domain.Answer) {
	if s.metrics != nil {
		s.metrics.ObserveAnswer(answer.Intent, answer.Kind)
	}
}

// RenderFullSchema renders every table with all its columns and its first row.
func RenderFullSchema(tables []domain.Table) string {
	var b strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&b, "Table: %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", t.Description)
		}
		fmt.Fprintf(&b, "- Columns: %s\n", strings.Join(t.Columns, ", "))
		if len(t.Rows) > 0 {
			fmt.Fprintf(&b, "- Sample row: %s\n", renderRow(t.Columns, t.Rows[0]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(columns []string, row []any) string {
	parts := make([]string, 0, len(columns))
	for i, col := range columns {
		val := "NULL"
		if i < len(row) {
			if s, ok := stringify(row[i]); ok {
				val = s
			}
		}
		parts = append(parts, col+"="+val)
	}
	return strings.Join(parts, ", ")
}
