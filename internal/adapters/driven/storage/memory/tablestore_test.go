package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

func TestTableStore_ListAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore()
	store.Put("units", []string{"id_unidade", "andar"}, [][]any{{1, 3}, {2, 4}, {3, 5}})
	store.Put("buildings", []string{"id_predio"}, nil)

	names, err := store.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"buildings", "units"}, names)

	res, err := store.ReadTable(ctx, "units", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id_unidade", "andar"}, res.Columns)
	assert.Len(t, res.Rows, 2)

	res, err = store.ReadTable(ctx, "units", 0)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
}

func TestTableStore_ReadMissing(t *testing.T) {
	_, err := NewTableStore().ReadTable(context.Background(), "nope", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTableStore_ReplaceTable(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore()
	store.Put("typologies", []string{"old"}, [][]any{{1}})

	err := store.ReplaceTable(ctx, "typologies", []driven.ColumnDef{
		{Name: "id_tipologia", Type: driven.ColumnInteger},
		{Name: "quartos", Type: driven.ColumnInteger},
	}, [][]any{{int64(1), int64(2)}})
	require.NoError(t, err)

	res, err := store.ReadTable(ctx, "typologies", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id_tipologia", "quartos"}, res.Columns)
	assert.Equal(t, [][]any{{int64(1), int64(2)}}, res.Rows)
}

func TestTableStore_ColumnValues(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore()
	store.Put("units", []string{"id_unidade", "obs"}, [][]any{
		{int64(1), nil},
		{int64(2), " "},
		{int64(3), "Cobertura"},
		{int64(3), "Cobertura"},
		{int64(4), "Térreo"},
	})

	obs, err := store.ColumnValues(ctx, "units", "obs", 5)
	require.NoError(t, err)
	assert.Equal(t, []any{"Cobertura", "Térreo"}, obs)

	ids, err := store.ColumnValues(ctx, "units", "id_unidade", 2)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	_, err = store.ColumnValues(ctx, "nope", "obs", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.ColumnValues(ctx, "units", "nope", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
