package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// MockAssistant implements driving.AssistantService for testing.
type MockAssistant struct {
	AskFunc   func(ctx context.Context, question string) (*domain.Answer, error)
	TableList []domain.Table
}

func (m *MockAssistant) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.Answer{Question: question, Kind: domain.AnswerConversation, Text: "ok"}, nil
}

func (m *MockAssistant) GenerateSQL(ctx context.Context, question string) (*domain.Answer, error) {
	return m.Ask(ctx, question)
}

func (m *MockAssistant) DescribeSchema(ctx context.Context, question string) (*domain.Answer, error) {
	return m.Ask(ctx, question)
}

func (m *MockAssistant) Converse(ctx context.Context, question string) (*domain.Answer, error) {
	return m.Ask(ctx, question)
}

func (m *MockAssistant) Tables() []domain.Table {
	return m.TableList
}

// MockSchema implements driving.SchemaService for testing.
type MockSchema struct {
	TableList []domain.Table
	Records   []domain.LoadRecord
}

func (m *MockSchema) Tables(context.Context) ([]domain.Table, error) {
	return m.TableList, nil
}

func (m *MockSchema) History(context.Context) ([]domain.LoadRecord, error) {
	return m.Records, nil
}

func (m *MockSchema) Describe(context.Context) (string, error) {
	return "", nil
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"nil ports", nil, ErrMissingAssistant},
		{"missing assistant", &Ports{Schema: &MockSchema{}}, ErrMissingAssistant},
		{"assistant only", &Ports{Assistant: &MockAssistant{}}, nil},
		{"all ports", &Ports{Assistant: &MockAssistant{}, Schema: &MockSchema{}, PromptEvents: make(chan string)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
