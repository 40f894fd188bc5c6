package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/services"
)

const uriScheme = "thorr://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema",
		Name:        "schema",
		Description: "Every table with its columns, description and one sample row",
		MIMEType:    "text/plain",
	}, s.handleSchemaResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tables/{table}",
		Name:        "table",
		Description: "Columns, relations and sample rows of one table",
		MIMEType:    "application/json",
	}, s.handleTableResource)
}

func (s *Server) handleSchemaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var text string
	if s.ports.Schema != nil {
		described, err := s.ports.Schema.Describe(ctx)
		if err != nil && !errors.Is(err, domain.ErrEmptyCorpus) {
			return nil, fmt.Errorf("describing schema: %w", err)
		}
		text = described
	} else {
		text = services.RenderFullSchema(s.ports.Assistant.Tables())
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

func (s *Server) handleTableResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractTableName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		if t.Name != name {
			continue
		}
		info := struct {
			TableOutput
			SampleRows [][]any `json:"sample_rows,omitempty"`
		}{
			TableOutput: TableOutput{
				Name:        t.Name,
				Description: t.Description,
				Columns:     t.Columns,
				KeyColumns:  t.KeyColumns,
			},
			SampleRows: t.Rows,
		}
		for _, rel := range t.Relations {
			info.Relations = append(info.Relations, RelationOutput{Table: rel.Table, Column: rel.Column})
		}

		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling table: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractTableName extracts the table name from a URI like thorr://tables/{table}.
func extractTableName(uri string) string {
	const prefix = uriScheme + "tables/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
