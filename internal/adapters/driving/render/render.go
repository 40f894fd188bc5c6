// Package render formats answers for terminals. It is shared by the CLI
// and the TUI.
package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// Options controls how an answer is rendered.
type Options struct {
	// Width is the wrap width. Zero means DefaultWidth.
	Width int

	// Markdown styles text and SQL with glamour. Leave it off when the
	// output is not a terminal.
	Markdown bool
}

// Answer renders an answer: the SQL and its result rows for SQL answers,
// the reply text otherwise.
func Answer(a *domain.Answer, opts Options) string {
	var b strings.Builder

	if a.SQL != "" {
		b.WriteString(SQL(a.SQL, opts))
	}
	if a.Text != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if opts.Markdown {
			b.WriteString(Markdown(a.Text, opts.Width))
		} else {
			b.WriteString(a.Text)
			b.WriteString("\n")
		}
	}
	if a.Result != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ResultTable(a.Result))
		b.WriteString("\n")
	}
	return b.String()
}

// SQL renders a query, as a highlighted code block when opts.Markdown is set.
func SQL(query string, opts Options) string {
	if !opts.Markdown {
		return query + "\n"
	}
	return Markdown("```sql\n"+query+"\n```", opts.Width)
}

// Markdown renders text with glamour, returning it unchanged if the
// renderer cannot be built.
func Markdown(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// ResultTable renders query rows as a table, with the row count beneath.
func ResultTable(result *domain.QueryResult) string {
	t := table.NewWriter()
	header := make(table.Row, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, row := range result.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = Value(v)
		}
		t.AppendRow(r)
	}
	t.SetStyle(table.StyleRounded)

	return t.Render() + "\n" + rowCount(len(result.Rows))
}

// Tables renders a table listing: name, column count, description and the
// time of the last load, if known.
func Tables(tables []domain.Table, history []domain.LoadRecord) string {
	loaded := make(map[string]domain.LoadRecord, len(history))
	for _, rec := range history {
		loaded[rec.Table] = rec
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Table", "Columns", "Description", "Loaded"})
	for _, tbl := range tables {
		when := "-"
		if rec, ok := loaded[tbl.Name]; ok && !rec.LoadedAt.IsZero() {
			when = fmt.Sprintf("%s (%s)", rec.LoadedAt.Local().Format(time.DateTime), rowCount(rec.Rows))
		}
		t.AppendRow(table.Row{tbl.Name, len(tbl.Columns), truncate(tbl.Description, 60), when})
	}
	t.SetStyle(table.StyleRounded)
	return t.Render()
}

// LoadReports renders one line per loaded spreadsheet, with the total
// row count in the footer.
func LoadReports(reports []domain.LoadReport) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Table", "Source", "Rows", "Columns", "Stored as text"})
	total := 0
	for _, r := range reports {
		widened := "-"
		if len(r.Widened) > 0 {
			widened = strings.Join(r.Widened, ", ")
		}
		t.AppendRow(table.Row{r.Table, filepath.Base(r.Source), r.Rows, len(r.Columns), widened})
		total += r.Rows
	}
	t.AppendFooter(table.Row{"", "", total, "", ""})
	t.SetStyle(table.StyleRounded)
	return t.Render()
}

// Value formats one cell for display.
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
