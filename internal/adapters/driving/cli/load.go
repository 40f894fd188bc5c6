package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/services"
)

var (
	loadNormalize bool
	loadTable     string
)

var loadCmd = &cobra.Command{
	Use:   "load <dir | file.xlsx>",
	Short: "Load spreadsheets into the store",
	Long: `Copies spreadsheets into the SQLite store, one table per file. Given a
directory, every .xlsx file in it is loaded and named after the file:
units.xlsx becomes the units table. Existing tables are replaced.

Columns holding only integers are stored as INTEGER, numeric columns as
REAL, and everything else as TEXT. Numbers too large for a 64-bit integer
keep their digits as TEXT.`,
	Example: `  thorr load ./data
  thorr load ./data/units.xlsx --table units
  thorr load --normalize ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadNormalize, "normalize", false,
		"lower-case text cells and strip their accents")
	loadCmd.Flags().StringVarP(&loadTable, "table", "t", "",
		"table name when loading a single file (default: file name)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loaderService == nil {
		return errors.New("loader service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	opts := domain.LoadOptions{NormalizeText: loadNormalize}

	var reports []domain.LoadReport
	if info.IsDir() {
		if loadTable != "" {
			return fmt.Errorf("--table applies to a single file: %w", domain.ErrInvalidInput)
		}
		reports, err = loaderService.LoadDir(cmd.Context(), path, opts)
	} else {
		table := loadTable
		if table == "" {
			table = services.TableNameFor(path)
		}
		var report *domain.LoadReport
		report, err = loaderService.LoadFile(cmd.Context(), table, path, opts)
		if report != nil {
			reports = append(reports, *report)
		}
	}

	if len(reports) > 0 {
		cmd.Println(render.LoadReports(reports))
	}
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}
