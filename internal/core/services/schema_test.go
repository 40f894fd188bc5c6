package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/thorr/internal/core/domain"
)

type fakeHistory struct {
	records []domain.LoadRecord
	err     error
}

func (f *fakeHistory) LoadHistory(context.Context) ([]domain.LoadRecord, error) {
	return f.records, f.err
}

func newSchemaStore() *memory.TableStore {
	store := memory.NewTableStore()
	store.Put("units", []string{"id_unidade", "andar"}, [][]any{{int64(1), int64(3)}, {int64(2), int64(4)}})
	store.Put("buildings", []string{"id_predio", "nome"}, [][]any{{int64(10), "Edifício Sol"}})
	return store
}

func TestSchemaService_Tables(t *testing.T) {
	catalog := &mockCatalog{specs: map[string]domain.TableSpec{
		"units": {Description: "Unidades individuais.", KeyColumns: []string{"id_unidade"}},
	}}

	tables, err := NewSchemaService(newSchemaStore(), catalog, nil).Tables(context.Background())

	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "buildings", tables[0].Name)
	assert.Equal(t, "Unidades individuais.", tables[1].Description)
	assert.Equal(t, []string{"id_unidade"}, tables[1].KeyColumns)
	assert.Len(t, tables[1].Rows, 1, "only one sample row is read")
}

func TestSchemaService_History(t *testing.T) {
	loadedAt := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	history := &fakeHistory{records: []domain.LoadRecord{{Table: "units", Rows: 2, LoadedAt: loadedAt}}}

	records, err := NewSchemaService(newSchemaStore(), nil, history).History(context.Background())

	require.NoError(t, err)
	assert.Equal(t, history.records, records)
}

func TestSchemaService_History_NoStore(t *testing.T) {
	records, err := NewSchemaService(newSchemaStore(), nil, nil).History(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSchemaService_History_Error(t *testing.T) {
	history := &fakeHistory{err: errors.New("database is locked")}

	_, err := NewSchemaService(newSchemaStore(), nil, history).History(context.Background())

	assert.ErrorContains(t, err, "load history: database is locked")
}

func TestSchemaService_Describe(t *testing.T) {
	text, err := NewSchemaService(newSchemaStore(), nil, nil).Describe(context.Background())

	require.NoError(t, err)
	assert.Contains(t, text, "Table: buildings")
	assert.Contains(t, text, "- Columns: id_unidade, andar")
	assert.Contains(t, text, "- Sample row: id_predio=10, nome=Edifício Sol")
}

func TestSchemaService_Describe_Empty(t *testing.T) {
	_, err := NewSchemaService(memory.NewTableStore(), nil, nil).Describe(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}
