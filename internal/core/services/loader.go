package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
	"github.com/custodia-labs/thorr/internal/logger"
)

// Ensure LoaderService implements the interface.
var _ driving.LoaderService = (*LoaderService)(nil)

// SpreadsheetExt is the extension LoadDir picks up.
const SpreadsheetExt = ".xlsx"

// LoaderService copies spreadsheets into the relational store, one table per file.
type LoaderService struct {
	reader driven.SpreadsheetReader
	writer driven.TableWriter
}

// NewLoaderService creates a loader.
func NewLoaderService(reader driven.SpreadsheetReader, writer driven.TableWriter) *LoaderService {
	return &LoaderService{reader: reader, writer: writer}
}

// LoadDir loads every .xlsx file in dir in name order. The table name is the
// file name without extension, so buildings.xlsx becomes buildings.
// Excel lock files (~$name.xlsx) and hidden files are skipped.
func (s *LoaderService) LoadDir(ctx context.Context, dir string, opts domain.LoadOptions) ([]domain.LoadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), SpreadsheetExt) {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s: %w", SpreadsheetExt, dir, domain.ErrNotFound)
	}

	reports := make([]domain.LoadReport, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.LoadFile(ctx, TableNameFor(name), filepath.Join(dir, name), opts)
		if err != nil {
			return reports, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// LoadFile loads one spreadsheet into table, replacing it.
func (s *LoaderService) LoadFile(ctx context.Context, table, path string, opts domain.LoadOptions) (*domain.LoadReport, error) {
	if table == "" {
		return nil, fmt.Errorf("table name is required: %w", domain.ErrInvalidInput)
	}

	sheet, err := s.reader.ReadSheet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	names := ColumnNames(sheet.Header)
	columns := make([]driven.ColumnDef, len(names))
	converted := make([][]any, len(sheet.Rows))
	for i := range converted {
		converted[i] = make([]any, len(names))
	}

	report := &domain.LoadReport{
		Table:   table,
		Source:  path,
		Rows:    len(sheet.Rows),
		Columns: make(map[string]string, len(names)),
	}

	for c, name := range names {
		cells := make([]string, len(sheet.Rows))
		for r, row := range sheet.Rows {
			if c < len(row) {
				cells[r] = row[c]
			}
		}

		colType, values, widened := convertColumn(cells, opts)
		if widened {
			logger.Warn("Column %s.%s stored as TEXT: values exceed the 64-bit integer range", table, name)
			report.Widened = append(report.Widened, name)
		}
		columns[c] = driven.ColumnDef{Name: name, Type: colType}
		report.Columns[name] = string(colType)
		for r, v := range values {
			converted[r][c] = v
		}
	}

	if err := s.writer.ReplaceTable(ctx, table, columns, converted); err != nil {
		return nil, fmt.Errorf("write table %s: %w", table, err)
	}
	logger.Info("Loaded %s into %s (%d rows)", path, table, report.Rows)
	return report, nil
}

// TableNameFor derives a table name from a spreadsheet file name:
// extension dropped, lower-cased, anything other than letters, digits and
// underscores replaced with an underscore.
func TableNameFor(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return identifier(base)
}

// ColumnNames cleans a header row: blanks become column_N (1-based) and
// repeated names get a _2, _3... suffix.
func ColumnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		names[i] = name
	}
	return names
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// convertColumn picks a storage type for cells and converts them. Empty cells
// become NULL. A numeric column with any value outside the int64 range is
// kept as TEXT with the cells unchanged; widened reports that case.
func convertColumn(cells []string, opts domain.LoadOptions) (driven.ColumnType, []any, bool) {
	allInt, allNumeric, overflow := true, true, false
	present := 0
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		present++
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			continue
		} else if errors.Is(err, strconv.ErrRange) {
			overflow = true
			allInt = false
			continue
		}
		allInt = false
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			allNumeric = false
			break
		}
		if f > math.MaxInt64 || f < math.MinInt64 {
			overflow = true
		}
	}

	colType := driven.ColumnText
	switch {
	case present == 0 || !allNumeric || overflow:
	case allInt:
		colType = driven.ColumnInteger
	default:
		colType = driven.ColumnReal
	}

	values := make([]any, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		switch colType {
		case driven.ColumnInteger:
			values[i], _ = strconv.ParseInt(cell, 10, 64)
		case driven.ColumnReal:
			values[i], _ = strconv.ParseFloat(cell, 64)
		default:
			// Widened numbers keep their digits as written.
			if opts.NormalizeText && !allNumeric {
				cell = Normalize(cell)
			}
			values[i] = cell
		}
	}

	return colType, values, allNumeric && overflow && present > 0
}
