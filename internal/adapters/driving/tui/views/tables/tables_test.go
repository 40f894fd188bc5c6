package tables

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/thorr/internal/core/domain"
)

func testTables() []domain.Table {
	return []domain.Table{
		{
			Name:        "buildings",
			Columns:     []string{"id_predio", "nome"},
			Description: "Empreendimentos",
			KeyColumns:  []string{"id_predio"},
			Rows:        [][]any{{int64(10), "Edifício Sol"}},
		},
		{
			Name:        "units",
			Columns:     []string{"id_unidade", "id_predio", "andar"},
			Description: "Unidades",
			Relations:   []domain.Relation{{Table: "buildings", Column: "id_predio"}},
		},
	}
}

type mockSchema struct {
	tables     []domain.Table
	history    []domain.LoadRecord
	err        error
	historyErr error
}

func (m *mockSchema) Tables(context.Context) ([]domain.Table, error) {
	return m.tables, m.err
}

func (m *mockSchema) History(context.Context) ([]domain.LoadRecord, error) {
	return m.history, m.historyErr
}

func (m *mockSchema) Describe(context.Context) (string, error) {
	return "", nil
}

type mockAssistant struct {
	tables []domain.Table
}

func (m *mockAssistant) Ask(context.Context, string) (*domain.Answer, error)            { return nil, nil }
func (m *mockAssistant) GenerateSQL(context.Context, string) (*domain.Answer, error)    { return nil, nil }
func (m *mockAssistant) DescribeSchema(context.Context, string) (*domain.Answer, error) { return nil, nil }
func (m *mockAssistant) Converse(context.Context, string) (*domain.Answer, error)       { return nil, nil }
func (m *mockAssistant) Tables() []domain.Table                                         { return m.tables }

func TestView_InitFromSchema(t *testing.T) {
	loadedAt := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	schema := &mockSchema{
		tables:  testTables(),
		history: []domain.LoadRecord{{Table: "buildings", Rows: 1, LoadedAt: loadedAt}},
	}
	v := NewView(nil, nil, schema, nil)

	msg := v.Init()()

	loaded, ok := msg.(messages.TablesLoaded)
	require.True(t, ok)
	assert.Len(t, loaded.Tables, 2)
	assert.Len(t, loaded.History, 1)
	assert.NoError(t, loaded.Err)
}

func TestView_InitFallsBackToAssistant(t *testing.T) {
	v := NewView(nil, nil, nil, &mockAssistant{tables: testTables()})

	loaded := v.Init()().(messages.TablesLoaded)

	assert.Len(t, loaded.Tables, 2)
	assert.Nil(t, loaded.History)
}

func TestView_InitWithoutServices(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	loaded := v.Init()().(messages.TablesLoaded)

	assert.Empty(t, loaded.Tables)
	assert.NoError(t, loaded.Err)
}

func TestView_InitSchemaError(t *testing.T) {
	v := NewView(nil, nil, &mockSchema{err: errors.New("database is locked")}, nil)

	loaded := v.Init()().(messages.TablesLoaded)

	assert.EqualError(t, loaded.Err, "database is locked")
}

func TestView_TablesLoaded(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetDimensions(140, 30)

	v.Update(messages.TablesLoaded{
		Tables:  testTables(),
		History: []domain.LoadRecord{{Table: "buildings", Rows: 1, LoadedAt: time.Now()}},
	})

	assert.Equal(t, 2, v.StatusBar().Count())
	view := v.View()
	assert.Contains(t, view, "buildings")
	assert.Contains(t, view, "Empreendimentos")
	assert.Contains(t, view, "Keys:")
	assert.Contains(t, view, "Loaded:")
	assert.Contains(t, view, "Edifício Sol")
}

func TestView_TablesLoadedError(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	v.Update(messages.TablesLoaded{Err: errors.New("database is locked")})

	assert.Equal(t, status.StateError, v.StatusBar().State())
	assert.Equal(t, "database is locked", v.StatusBar().Message())
}

func TestView_NavigateShowsRelations(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetDimensions(140, 30)
	v.SetTables(testTables(), nil)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, "units", v.List().Selected().Name)
	assert.Contains(t, v.View(), "Joins:")
}

func TestView_EscGoesBack(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EmptyDetails(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	assert.Equal(t, "", v.details())
	assert.Contains(t, v.View(), "No tables loaded")
}
