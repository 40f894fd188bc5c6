// Command thorr answers natural-language questions about spreadsheet data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/custodia-labs/thorr/internal/adapters/driven/ai"
	"github.com/custodia-labs/thorr/internal/adapters/driven/catalog"
	"github.com/custodia-labs/thorr/internal/adapters/driven/config/env"
	"github.com/custodia-labs/thorr/internal/adapters/driven/config/file"
	"github.com/custodia-labs/thorr/internal/adapters/driven/metrics"
	"github.com/custodia-labs/thorr/internal/adapters/driven/spreadsheet/xlsx"
	"github.com/custodia-labs/thorr/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/thorr/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/thorr/internal/adapters/driving/cli"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
	"github.com/custodia-labs/thorr/internal/core/services"
	"github.com/custodia-labs/thorr/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the adapters into the core and executes the command line.
// Errors from commands are already printed by cobra.
func run(ctx context.Context) error {
	app, err := bootstrap(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer app.close()

	cli.SetVersion(version)
	cli.SetServices(app.services())
	return cli.Execute(ctx)
}

type application struct {
	settings *services.SettingsService
	store    *sqlite.Store
	catalog  *catalog.Store
	prompts  *file.PromptStore
	events   <-chan string
	recorder *metrics.Recorder

	models    *ai.InitResult
	assistant *services.AssistantService
}

func bootstrap(ctx context.Context) (*application, error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}

	fileStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	overrides, err := env.Parse()
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	settingsSvc := services.NewSettingsService(env.Wrap(fileStore, overrides), ai.NewConfigValidator())

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", settings.Database.Path, err)
	}

	catalogPath := filepath.Join(dir, catalog.FileName)
	if written, err := catalog.WriteDefault(catalogPath); err != nil {
		logger.Warn("Could not write %s, using the built-in catalog: %v", catalogPath, err)
		catalogPath = ""
	} else if written {
		logger.Debug("Wrote default catalog to %s", catalogPath)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"), services.DefaultPrompts())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	events, err := file.NewPromptWatcher(prompts).Watch(ctx)
	if err != nil {
		logger.Warn("Prompt files will not be reloaded: %v", err)
	}

	return &application{
		settings: settingsSvc,
		store:    store,
		catalog:  catalog.NewStore(catalogPath),
		prompts:  prompts,
		events:   events,
		recorder: metrics.NewRecorder(),
	}, nil
}

func (a *application) services() cli.Services {
	return cli.Services{
		Settings:     a.settings,
		Loader:       services.NewLoaderService(xlsx.NewReader(), a.store),
		Schema:       services.NewSchemaService(a.store, a.catalog, a.store),
		Assistant:    a.buildAssistant,
		PromptEvents: a.events,
		ServeMetrics: a.recorder.Serve,
	}
}

// buildAssistant connects to the model providers and indexes the loaded
// tables. Settings are read again so values set earlier in the same run apply.
func (a *application) buildAssistant(ctx context.Context) (driving.AssistantService, error) {
	settings, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	tables, err := services.LoadCorpus(ctx, a.store, a.catalog,
		settings.Retrieval.SampleRows, settings.Retrieval.SampleValues)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: run 'thorr load <dir>' first", domain.ErrEmptyCorpus)
	}

	models, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, err
	}

	stopSpinner := startSpinner(fmt.Sprintf(" Indexing %d tables...", len(tables)))
	assistant, err := services.NewAssistantService(ctx, tables,
		models.EmbeddingService, models.ColumnEmbedder, flat.Build, models.LLMService,
		services.AssistantConfigFrom(settings))
	stopSpinner()
	if err != nil {
		models.Close()
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return nil, fmt.Errorf("%w: run 'thorr load <dir>' first", err)
		}
		return nil, fmt.Errorf("index tables: %w", err)
	}

	assistant.SetPromptStore(a.prompts)
	assistant.SetQueryExecutor(a.store)
	assistant.SetMetricsRecorder(a.recorder)

	a.models = models
	a.assistant = assistant
	logger.Debug("Assistant ready with %d tables", len(tables))
	return assistant, nil
}

// startSpinner shows progress on stderr when it is a terminal.
func startSpinner(suffix string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func (a *application) close() {
	if a.assistant != nil {
		if err := a.assistant.Close(); err != nil {
			logger.Warn("Closing table index: %v", err)
		}
	}
	if a.models != nil {
		a.models.Close()
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Closing database: %v", err)
	}
}
