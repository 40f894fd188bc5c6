// Package cli implements the thorr command line on top of the driving ports.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
	"github.com/custodia-labs/thorr/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	verbose     bool
	metricsAddr string
)

// Services wires the command line to the core.
type Services struct {
	Settings driving.SettingsService
	Loader   driving.LoaderService
	Schema   driving.SchemaService

	// Assistant builds the assistant on first use. Building it embeds the
	// corpus, so commands that do not answer questions never call it.
	Assistant func(ctx context.Context) (driving.AssistantService, error)

	// PromptEvents delivers the name of each prompt reloaded from disk.
	PromptEvents <-chan string

	// ServeMetrics exposes metrics on addr until ctx is done.
	ServeMetrics func(ctx context.Context, addr string) error
}

var (
	settingsService driving.SettingsService
	loaderService   driving.LoaderService
	schemaService   driving.SchemaService
	buildAssistant  func(ctx context.Context) (driving.AssistantService, error)
	promptEvents    <-chan string
	serveMetrics    func(ctx context.Context, addr string) error

	assistantOnce sync.Once
	assistantSvc  driving.AssistantService
	assistantErr  error
)

// SetServices installs the services used by every command.
func SetServices(s Services) {
	settingsService = s.Settings
	loaderService = s.Loader
	schemaService = s.Schema
	buildAssistant = s.Assistant
	promptEvents = s.PromptEvents
	serveMetrics = s.ServeMetrics
	assistantOnce = sync.Once{}
	assistantSvc, assistantErr = nil, nil
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "thorr",
	Short: "Ask questions about spreadsheet data in plain language",
	Long: `thorr answers natural-language questions over a relational store loaded
from spreadsheets. Questions about the data become SQL, questions about the
data's meaning are answered from the schema, and everything else gets a
conversational reply.

Load data with 'thorr load <dir>', configure providers with
'thorr settings', then ask away with 'thorr ask' or 'thorr chat'.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print each pipeline stage")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address, e.g. :9090")
}

func setupRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if metricsAddr == "" {
		return nil
	}
	if serveMetrics == nil {
		return errors.New("metrics not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	addr := metricsAddr
	go func() {
		if err := serveMetrics(ctx, addr); err != nil {
			logger.Warn("metrics server stopped: %v", err)
		}
	}()
	logger.Info("Serving metrics on %s/metrics", addr)
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// assistant returns the shared assistant, building it on the first call.
func assistant(ctx context.Context) (driving.AssistantService, error) {
	if buildAssistant == nil {
		return nil, errors.New("assistant service not configured")
	}
	assistantOnce.Do(func() {
		assistantSvc, assistantErr = buildAssistant(ctx)
	})
	return assistantSvc, assistantErr
}

// renderOptions styles output for w: glamour and terminal width when w is
// a terminal, plain text otherwise.
func renderOptions(w io.Writer) render.Options {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return render.Options{Width: render.DefaultWidth}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = render.DefaultWidth
	}
	return render.Options{Width: width, Markdown: true}
}
