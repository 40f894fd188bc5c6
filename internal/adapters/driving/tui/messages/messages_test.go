package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewChat, "chat"},
		{ViewTables, "tables"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := map[ViewType]bool{}
	for _, v := range []ViewType{ViewMenu, ViewChat, ViewTables, ViewHelp} {
		assert.False(t, seen[v], "duplicate view %s", v)
		seen[v] = true
	}
}

func TestAnswerReceived(t *testing.T) {
	answer := &domain.Answer{Kind: domain.AnswerSQL, SQL: "SELECT 1"}
	msg := AnswerReceived{Answer: answer}

	assert.Same(t, answer, msg.Answer)
	assert.NoError(t, msg.Err)

	failed := AnswerReceived{Err: errors.New("empty question")}
	assert.Nil(t, failed.Answer)
	assert.EqualError(t, failed.Err, "empty question")
}

func TestTablesLoaded(t *testing.T) {
	msg := TablesLoaded{
		Tables:  []domain.Table{{Name: "units"}},
		History: []domain.LoadRecord{{Table: "units", Rows: 3}},
	}

	assert.Len(t, msg.Tables, 1)
	assert.Equal(t, 3, msg.History[0].Rows)
}
