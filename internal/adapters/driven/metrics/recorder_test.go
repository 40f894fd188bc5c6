package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecorder_ObserveAnswer(t *testing.T) {
	r := NewRecorder()

	r.ObserveAnswer(domain.IntentSQLQuery, domain.AnswerSQL)
	r.ObserveAnswer(domain.IntentSQLQuery, domain.AnswerSQL)
	r.ObserveAnswer("", domain.AnswerFallback)

	body := scrape(t, r.Handler())
	assert.Contains(t, body, `thorr_answers_total{intent="SQL_QUERY",kind="sql"} 2`)
	assert.Contains(t, body, `thorr_answers_total{intent="UNKNOWN",kind="fallback"} 1`)
}

func TestRecorder_ObserveStage(t *testing.T) {
	r := NewRecorder()

	r.ObserveStage(driven.StageRetrieve, 30*time.Millisecond)
	r.ObserveStage(driven.StageRetrieve, 2*time.Second)

	body := scrape(t, r.Handler())
	assert.Contains(t, body, `thorr_stage_duration_seconds_count{stage="retrieve"} 2`)
	assert.Contains(t, body, `thorr_stage_duration_seconds_bucket{stage="retrieve",le="0.05"} 1`)
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.ObserveAnswer(domain.IntentDataAssistance, domain.AnswerAssistance)

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "thorr_answers_total", f.GetName())
	}
}

func TestRecorder_Serve(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r := NewRecorder()
	r.ObserveAnswer(domain.IntentGeneralConversation, domain.AnswerConversation)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx, addr) }()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + Path)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, string(body), "thorr_answers_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRecorder_Serve_BadAddress(t *testing.T) {
	err := NewRecorder().Serve(context.Background(), "not-an-address")

	assert.Error(t, err)
}
