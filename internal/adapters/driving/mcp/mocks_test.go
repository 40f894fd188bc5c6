package mcp

import (
	"context"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// mockAssistant is a mock implementation of driving.AssistantService.
type mockAssistant struct {
	answer   *domain.Answer
	err      error
	tables   []domain.Table
	asked    []string
	sqlAsked []string
}

func (m *mockAssistant) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

func (m *mockAssistant) GenerateSQL(_ context.Context, question string) (*domain.Answer, error) {
	m.sqlAsked = append(m.sqlAsked, question)
	return m.answer, m.err
}

func (m *mockAssistant) DescribeSchema(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAssistant) Converse(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAssistant) Tables() []domain.Table {
	return m.tables
}

// mockSchema is a mock implementation of driving.SchemaService.
type mockSchema struct {
	tables   []domain.Table
	history  []domain.LoadRecord
	describe string
	err      error
}

func (m *mockSchema) Tables(_ context.Context) ([]domain.Table, error) {
	return m.tables, m.err
}

func (m *mockSchema) History(_ context.Context) ([]domain.LoadRecord, error) {
	return m.history, m.err
}

func (m *mockSchema) Describe(_ context.Context) (string, error) {
	return m.describe, m.err
}

func testTables() []domain.Table {
	return []domain.Table{
		{
			Name:        "buildings",
			Columns:     []string{"id_predio", "nome"},
			Description: "Edifícios com dados de incorporadora.",
			Relations:   []domain.Relation{{Table: "units", Column: "id_predio"}},
			KeyColumns:  []string{"id_predio"},
			Rows:        [][]any{{int64(10), "Edifício Sol"}},
		},
		{
			Name:    "units",
			Columns: []string{"id_unidade", "id_predio", "andar"},
			Rows:    [][]any{{int64(1), int64(10), int64(3)}},
		},
	}
}
