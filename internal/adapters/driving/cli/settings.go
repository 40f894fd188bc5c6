package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, retrieval tuning and the store location.

Settings live in ~/.thorr/config.toml. THORR_* environment variables
override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding and LLM providers.`,
	RunE:  runSettingsWizard,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single value",
	Long: `Set one setting by its dot-notation key. Lists are comma separated.

Keys:
  ` + strings.Join(services.SettableKeys(), "\n  "),
	Example: `  thorr settings set retrieval.top_tables 2
  thorr settings set retrieval.key_columns id_unidade,id_predio
  thorr settings set database.path ./imoveis.db`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to retrieve tables and columns.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used to classify questions, pick columns and write SQL.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	for _, sec := range settingsSections(settings) {
		cmd.Printf("[%s]\n", sec.title)
		for _, f := range sec.fields {
			if f.label == "" {
				cmd.Printf("  %s\n", f.value)
				continue
			}
			cmd.Printf("  %s: %s\n", f.label, f.value)
		}
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'thorr settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

type settingsField struct{ label, value string }

type settingsSection struct {
	title  string
	fields []settingsField
}

func settingsSections(s *domain.AppSettings) []settingsSection {
	r := s.Retrieval
	rate := []settingsField{{"", "Disabled"}}
	if s.RateLimit.RequestsPerSecond > 0 {
		rate = []settingsField{
			{"Requests per second", strconv.FormatFloat(s.RateLimit.RequestsPerSecond, 'g', -1, 64)},
			{"Burst", strconv.Itoa(s.RateLimit.Burst)},
		}
	}

	return []settingsSection{
		{"Embedding", providerFields(s.Embedding.Provider, s.Embedding.Model, s.Embedding.BaseURL, s.Embedding.APIKey, s.Embedding.IsConfigured())},
		{"LLM", providerFields(s.LLM.Provider, s.LLM.Model, s.LLM.BaseURL, s.LLM.APIKey, s.LLM.IsConfigured())},
		{"Retrieval", []settingsField{
			{"Top tables", strconv.Itoa(r.TopTables)},
			{"Top columns", strconv.Itoa(r.TopColumns)},
			{"Sample values per column", strconv.Itoa(r.SampleValues)},
			{"Sample rows per table", strconv.Itoa(r.SampleRows)},
			{"Key columns", strings.Join(r.KeyColumns, ", ")},
			{"Cache column embeddings", yesNo(r.CacheEmbeddings)},
		}},
		{"Database", []settingsField{{"Path", s.Database.Path}}},
		{"Execution", []settingsField{
			{"Run generated SQL", yesNo(s.Execution.Enabled)},
			{"Max rows", strconv.Itoa(s.Execution.MaxRows)},
		}},
		{"Rate Limit", rate},
	}
}

func providerFields(provider domain.AIProvider, model, baseURL, apiKey string, configured bool) []settingsField {
	fields := []settingsField{{"Provider", provider.Description()}, {"Model", model}}
	if provider.IsLocal() {
		fields = append(fields, settingsField{"Base URL", baseURL})
	}
	if provider.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		fields = append(fields, settingsField{"API Key", key})
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	return append(fields, settingsField{"Status", status})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("thorr Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	steps := []struct {
		heading, blurb string
		step           providerStep
	}{
		{"Step 1: Configure Embedding Provider", "Embeddings rank the tables and columns relevant to each question.", embeddingStep()},
		{"Step 2: Configure LLM Provider", "The LLM classifies questions, narrows columns and writes SQL.", llmStep()},
	}
	for _, s := range steps {
		cmd.Println(s.heading)
		cmd.Println(strings.Repeat("-", len(s.heading)))
		cmd.Println(s.blurb)
		cmd.Println()
		if err := configureProvider(cmd, reader, s.step); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if strings.HasSuffix(key, ".api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingStep())
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmStep())
}

// providerStep is one provider prompt. kind names it in errors and output.
type providerStep struct {
	kind     string
	choices  []domain.AIProvider
	defaults map[domain.AIProvider]string
	save     func(provider domain.AIProvider, model, apiKey string) error
	validate func() error
}

func embeddingStep() providerStep {
	return providerStep{
		kind:     "embedding",
		choices:  domain.AllEmbeddingProviders(),
		defaults: domain.DefaultEmbeddingModels(),
		save:     settingsService.SetEmbeddingProvider,
		validate: settingsService.ValidateEmbeddingConfig,
	}
}

func llmStep() providerStep {
	return providerStep{
		kind:     "LLM",
		choices:  domain.AllLLMProviders(),
		defaults: domain.DefaultLLMModels(),
		save:     settingsService.SetLLMProvider,
		validate: settingsService.ValidateLLMConfig,
	}
}

// configureProvider asks for a provider, a model and, for cloud providers,
// an API key. The choice is saved and then pinged.
func configureProvider(cmd *cobra.Command, reader *bufio.Reader, step providerStep) error {
	cmd.Printf("Select %s Provider\n", titleCase(step.kind))
	for i, p := range step.choices {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := step.choices[parseChoice(readLine(reader), len(step.choices), 1)-1]

	model := step.defaults[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if in := readLine(reader); in != "" {
		model = in
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := step.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", step.kind, err)
	}

	cmd.Print("Validating configuration... ")
	if err := step.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", step.kind, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", titleCase(step.kind), provider.Description(), model)
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when the command reads from a
// terminal, and a plain line otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
