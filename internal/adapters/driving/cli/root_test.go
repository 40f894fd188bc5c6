package cli

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
	"github.com/custodia-labs/thorr/internal/logger"
)

func TestRootCmd(t *testing.T) {
	assert.Equal(t, "thorr", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)

	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ask", "sql", "chat", "tables", "load", "settings", "mcp", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestSetVersion(t *testing.T) {
	original := version
	defer SetVersion(original)

	SetVersion("v1.2.3")

	out, err := execute(t, Services{}, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "thorr version v1.2.3")
}

func TestVerboseFlag(t *testing.T) {
	defer logger.SetVerbose(false)

	_, err := execute(t, Services{}, "", "--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestAssistant_BuiltOnce(t *testing.T) {
	var builds atomic.Int32
	SetServices(Services{Assistant: func(context.Context) (driving.AssistantService, error) {
		builds.Add(1)
		return &mockAssistant{}, nil
	}})
	defer SetServices(Services{})

	first, err := assistant(context.Background())
	require.NoError(t, err)
	second, err := assistant(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), builds.Load())
}

func TestAssistant_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := assistant(context.Background())

	assert.ErrorContains(t, err, "assistant service not configured")
}

func TestAssistant_BuildError(t *testing.T) {
	_, err := execute(t, Services{Assistant: func(context.Context) (driving.AssistantService, error) {
		return nil, errors.New("no tables loaded")
	}}, "", "ask", "oi")

	assert.ErrorContains(t, err, "no tables loaded")
}

func TestMetricsFlag_Serves(t *testing.T) {
	served := make(chan string, 1)
	svc := Services{ServeMetrics: func(_ context.Context, addr string) error {
		served <- addr
		return nil
	}}

	_, err := execute(t, svc, "", "--metrics-addr", "127.0.0.1:0", "version")
	require.NoError(t, err)

	select {
	case addr := <-served:
		assert.Equal(t, "127.0.0.1:0", addr)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server was not started")
	}
}

func TestMetricsFlag_NotConfigured(t *testing.T) {
	_, err := execute(t, Services{}, "", "--metrics-addr", ":9090", "version")

	assert.ErrorContains(t, err, "metrics not configured")
}

func TestRenderOptions_NonTerminal(t *testing.T) {
	opts := renderOptions(new(bytes.Buffer))

	assert.False(t, opts.Markdown)
	assert.Equal(t, render.DefaultWidth, opts.Width)
}
