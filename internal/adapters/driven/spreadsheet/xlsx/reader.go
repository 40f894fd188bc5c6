// Package xlsx reads Excel workbooks for the spreadsheet loader.
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SpreadsheetReader = (*Reader)(nil)

// Reader reads the first worksheet of an .xlsx file.
type Reader struct{}

// NewReader creates a workbook reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadSheet returns the header and data rows of the first worksheet.
// Cells are read raw, without number formatting, and every row is padded or
// cut to the header width. Fully empty rows are skipped.
func (r *Reader) ReadSheet(ctx context.Context, path string) (*driven.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets: %w", path, domain.ErrInvalidInput)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	sheet := &driven.Sheet{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(cells) {
			continue
		}
		if sheet.Header == nil {
			sheet.Header = trimAll(cells)
			continue
		}
		sheet.Rows = append(sheet.Rows, fit(cells, len(sheet.Header)))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if sheet.Header == nil {
		return nil, fmt.Errorf("sheet %s of %s is empty: %w", sheets[0], path, domain.ErrInvalidInput)
	}

	return sheet, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func fit(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}
