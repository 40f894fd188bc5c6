package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/core/domain"
)

var (
	tablesJSON   bool
	tablesSchema bool
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the loaded tables",
	Long: `Lists the tables in the store with their catalog descriptions and the
time each was last loaded. No AI provider is needed.

Use --schema to print every table the way the assistant sees it.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "output tables as JSON")
	tablesCmd.Flags().BoolVar(&tablesSchema, "schema", false, "print the full schema description")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	if schemaService == nil {
		return errors.New("schema service not configured")
	}
	ctx := cmd.Context()

	if tablesSchema {
		text, err := schemaService.Describe(ctx)
		if err != nil {
			return err
		}
		cmd.Print(text)
		return nil
	}

	tables, err := schemaService.Tables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	history, err := schemaService.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to read load history: %w", err)
	}

	if tablesJSON {
		return outputTablesJSON(cmd, tables)
	}
	if len(tables) == 0 {
		cmd.Println("No tables loaded. Run 'thorr load <dir>' first.")
		return nil
	}
	cmd.Println(render.Tables(tables, history))
	return nil
}

type tableJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Columns     []string          `json:"columns"`
	KeyColumns  []string          `json:"key_columns,omitempty"`
	Relations   []domain.Relation `json:"relations,omitempty"`
}

func outputTablesJSON(cmd *cobra.Command, tables []domain.Table) error {
	out := make([]tableJSON, len(tables))
	for i, t := range tables {
		out[i] = tableJSON{
			Name:        t.Name,
			Description: t.Description,
			Columns:     t.Columns,
			KeyColumns:  t.KeyColumns,
			Relations:   t.Relations,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tables: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
