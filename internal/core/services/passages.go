package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// DefaultSampleValues is the number of distinct sample values in a column passage.
const DefaultSampleValues = domain.DefaultSampleValues

// BuildTablePassage renders a table as one retrieval passage: its name, its
// description followed by every declared relation, and its full column list.
func BuildTablePassage(table domain.Table) domain.Passage {
	description := strings.TrimSpace(table.Description)
	if len(table.Relations) > 0 {
		related := make([]string, len(table.Relations))
		for i, r := range table.Relations {
			related[i] = fmt.Sprintf("related to %s via column %s", r.Table, r.Column)
		}
		description = strings.TrimSpace(description + " " + strings.Join(related, "; "))
	}

	text := strings.Join([]string{
		"TABLE: " + table.Name,
		"DESCRIPTION: " + description,
		"COLUMNS: " + strings.Join(table.Columns, ", "),
	}, "\n")

	return domain.Passage{
		Ref:  domain.PassageRef{Table: table.Name},
		Text: Normalize(text),
	}
}

// BuildColumnPassage renders one column with its sample values.
// At most DefaultSampleValues samples are used.
func BuildColumnPassage(table, column string, samples []string) domain.Passage {
	if len(samples) > DefaultSampleValues {
		samples = samples[:DefaultSampleValues]
	}
	text := fmt.Sprintf("Table %s, Column %s. Examples: %s", table, column, strings.Join(samples, ", "))
	return domain.Passage{
		Ref:  domain.PassageRef{Table: table, Column: column},
		Text: Normalize(text),
	}
}

// ColumnSamples returns up to limit distinct, non-null, stringified values of
// column. Samples taken from the whole column by LoadCorpus are preferred;
// otherwise the table's loaded rows are scanned in order. Empty strings are
// skipped.
func ColumnSamples(table domain.Table, column string, limit int) []string {
	pos := -1
	for i, c := range table.Columns {
		if c == column {
			pos = i
			break
		}
	}
	if pos < 0 || limit <= 0 {
		return nil
	}
	if samples, ok := table.Samples[column]; ok {
		return samples[:min(limit, len(samples))]
	}

	values := make([]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		if pos < len(row) {
			values = append(values, row[pos])
		}
	}
	return distinctStrings(values, limit)
}

// distinctStrings stringifies values in order, skipping nulls, blanks and
// repeats, and stops after limit.
func distinctStrings(values []any, limit int) []string {
	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)
	for _, v := range values {
		if len(out) == limit {
			break
		}
		s, ok := stringify(v)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// stringify renders a cell value, reporting false for nulls and blanks.
func stringify(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case []byte:
		s = string(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		s = x.Format(time.DateOnly)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
