package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/thorr/internal/core/domain"
)

// QuestionInput is the input schema for the ask and generate_sql tools.
type QuestionInput struct {
	Question string `json:"question" jsonschema:"the question about the data, in natural language"`
}

// AnswerOutput is the output schema for the ask and generate_sql tools.
type AnswerOutput struct {
	ID      string   `json:"id"`
	Intent  string   `json:"intent"`
	Kind    string   `json:"kind"`
	Text    string   `json:"text,omitempty"`
	SQL     string   `json:"sql,omitempty"`
	Tables  []string `json:"tables,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
}

// ListTablesInput is the (empty) input schema for the list_tables tool.
type ListTablesInput struct{}

// ListTablesOutput is the output schema for the list_tables tool.
type ListTablesOutput struct {
	Tables []TableOutput `json:"tables"`
	Count  int           `json:"count"`
}

// TableOutput describes one table.
type TableOutput struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Columns     []string         `json:"columns"`
	KeyColumns  []string         `json:"key_columns,omitempty"`
	Relations   []RelationOutput `json:"relations,omitempty"`
}

// RelationOutput is a declared join to another table.
type RelationOutput struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question about the real-estate data. The question is routed to SQL " +
			"generation, a schema explanation or a conversational reply.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_sql",
		Description: "Generate a SQLite query for a question, skipping intent classification",
	}, s.handleGenerateSQL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the tables with their columns, descriptions and relations",
	}, s.handleListTables)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Assistant.Ask(ctx, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return answerResult(answer), toAnswerOutput(answer), nil
}

func (s *Server) handleGenerateSQL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Assistant.GenerateSQL(ctx, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return answerResult(answer), toAnswerOutput(answer), nil
}

func (s *Server) handleListTables(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTablesInput,
) (*mcp.CallToolResult, ListTablesOutput, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}

	output := ListTablesOutput{
		Tables: make([]TableOutput, len(tables)),
		Count:  len(tables),
	}
	for i, t := range tables {
		out := TableOutput{
			Name:        t.Name,
			Description: t.Description,
			Columns:     t.Columns,
			KeyColumns:  t.KeyColumns,
		}
		for _, rel := range t.Relations {
			out.Relations = append(out.Relations, RelationOutput{Table: rel.Table, Column: rel.Column})
		}
		output.Tables[i] = out
	}
	return nil, output, nil
}

// tables prefers a fresh read from the schema service.
func (s *Server) tables(ctx context.Context) ([]domain.Table, error) {
	if s.ports.Schema == nil {
		return s.ports.Assistant.Tables(), nil
	}
	tables, err := s.ports.Schema.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return tables, nil
}

// answerResult flags failed answers as tool errors. Successful answers
// return nil so the SDK fills the content from the structured output.
func answerResult(answer *domain.Answer) *mcp.CallToolResult {
	if !answer.Failed() {
		return nil
	}
	text := answer.Text
	if text == "" && answer.Err != nil {
		text = answer.Err.Error()
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toAnswerOutput(answer *domain.Answer) AnswerOutput {
	out := AnswerOutput{
		ID:     answer.ID,
		Intent: string(answer.Intent),
		Kind:   string(answer.Kind),
		Text:   answer.Text,
		SQL:    answer.SQL,
		Tables: answer.Tables,
	}
	if answer.Result != nil {
		out.Columns = answer.Result.Columns
		out.Rows = answer.Result.Rows
	}
	return out
}
