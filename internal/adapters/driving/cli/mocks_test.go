package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

// mockAssistant implements driving.AssistantService.
type mockAssistant struct {
	answer   *domain.Answer
	err      error
	tables   []domain.Table
	asked    []string
	sqlAsked []string
}

func (m *mockAssistant) reply(q string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		a := *m.answer
		a.Question = q
		return &a, nil
	}
	return &domain.Answer{Question: q, Kind: domain.AnswerConversation, Text: "resposta para " + q}, nil
}

func (m *mockAssistant) Ask(_ context.Context, q string) (*domain.Answer, error) {
	m.asked = append(m.asked, q)
	return m.reply(q)
}

func (m *mockAssistant) GenerateSQL(_ context.Context, q string) (*domain.Answer, error) {
	m.sqlAsked = append(m.sqlAsked, q)
	return m.reply(q)
}

func (m *mockAssistant) DescribeSchema(_ context.Context, q string) (*domain.Answer, error) {
	return m.reply(q)
}

func (m *mockAssistant) Converse(_ context.Context, q string) (*domain.Answer, error) {
	return m.reply(q)
}

func (m *mockAssistant) Tables() []domain.Table {
	return m.tables
}

// mockSchema implements driving.SchemaService.
type mockSchema struct {
	tables   []domain.Table
	history  []domain.LoadRecord
	describe string
	err      error
}

func (m *mockSchema) Tables(context.Context) ([]domain.Table, error) {
	return m.tables, m.err
}

func (m *mockSchema) History(context.Context) ([]domain.LoadRecord, error) {
	return m.history, nil
}

func (m *mockSchema) Describe(context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.describe, nil
}

// mockLoader implements driving.LoaderService.
type mockLoader struct {
	dirs    []string
	files   []string
	tables  []string
	opts    []domain.LoadOptions
	reports []domain.LoadReport
	err     error
}

func (m *mockLoader) LoadDir(_ context.Context, dir string, opts domain.LoadOptions) ([]domain.LoadReport, error) {
	m.dirs = append(m.dirs, dir)
	m.opts = append(m.opts, opts)
	return m.reports, m.err
}

func (m *mockLoader) LoadFile(_ context.Context, table, path string, opts domain.LoadOptions) (*domain.LoadReport, error) {
	m.files = append(m.files, path)
	m.tables = append(m.tables, table)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.LoadReport{Table: table, Source: path, Rows: 3, Columns: map[string]string{"id": "INTEGER"}}, nil
}

// mockSettings implements driving.SettingsService.
type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	values      map[string]string
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings(), values: map[string]string{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettings) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettings) SetValue(key, value string) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Validate() error {
	return m.validateErr
}

func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettings) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettings) ValidateLLMConfig() error {
	return m.pingErr
}

// withAssistant returns an assistant factory that always yields a.
func withAssistant(a driving.AssistantService) func(context.Context) (driving.AssistantService, error) {
	return func(context.Context) (driving.AssistantService, error) {
		return a, nil
	}
}

// execute runs the root command with fresh flags and services and returns
// everything written to stdout and stderr.
func execute(t *testing.T, svc Services, stdin string, args ...string) (string, error) {
	t.Helper()

	verbose, metricsAddr = false, ""
	askJSON, sqlJSON = false, false
	tablesJSON, tablesSchema = false, false
	loadNormalize, loadTable = false, ""
	SetServices(svc)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		verbose, metricsAddr = false, ""
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		SetServices(Services{})
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecuteHelper_ResetsServices(t *testing.T) {
	_, err := execute(t, Services{}, "", "version")
	require.NoError(t, err)
	require.Nil(t, settingsService)
}
