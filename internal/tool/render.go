// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/evidence-locator/internal/config"
	"github.com/gemaraproj/evidence-locator/internal/display"
	"github.com/gemaraproj/evidence-locator/internal/query"
)

// MetadataRenderResults describes the render_results tool.
var MetadataRenderResults = &mcp.Tool{
	Name: "render_results",
	Description: "Compute the title, excerpt and link shown for each result of a query response. " +
		"Titles fall back from the configured title field to extracted_metadata.title, " +
		"extracted_metadata.filename and finally document_id. Excerpts use the first passage when " +
		"passages are enabled, then the body field, then the empty-result text. Also returns the " +
		"document_id filter needed to fetch source documents of tables missing from the response.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"response"},
		"properties": map[string]interface{}{
			"response": map[string]interface{}{
				"type":        "object",
				"description": "Query response with results and table_results",
			},
			"config": map[string]interface{}{
				"type":        "string",
				"description": "Optional display configuration as YAML or JSON (title_field, body_field, use_passages, passage_length, result_link_field, dangerously_render_html, empty_result_text, show_tables_only, component_settings).",
			},
		},
	},
}

// InputRenderResults is the input for the RenderResults tool.
type InputRenderResults struct {
	Response *query.Response `json:"response"`
	Config   string          `json:"config"`
}

// OutputRenderResults is the output for the RenderResults tool.
type OutputRenderResults struct {
	MatchingResults int                  `json:"matching_results"`
	Results         []display.ResultView `json:"results"`
	FetchFilter     string               `json:"fetch_filter,omitempty"`
	// PassageLength is the passage length to request from the query engine.
	PassageLength int `json:"passage_length"`
}

// RenderResults resolves display settings and renders every result.
func (h *Handlers) RenderResults(_ context.Context, _ *mcp.CallToolRequest, input InputRenderResults) (*mcp.CallToolResult, OutputRenderResults, error) {
	if input.Response == nil {
		return nil, OutputRenderResults{}, fmt.Errorf("response is required")
	}
	cfg, err := config.Parse([]byte(input.Config))
	if err != nil {
		return nil, OutputRenderResults{}, err
	}

	page := display.Render(*input.Response, cfg.Settings())
	if page.Results == nil {
		page.Results = []display.ResultView{}
	}

	h.logger.Info("results rendered",
		"tool", MetadataRenderResults.Name,
		"request_id", uuid.NewString(),
		"results", len(page.Results),
		"fetch_filter", page.FetchFilter,
	)
	return nil, OutputRenderResults{
		MatchingResults: page.MatchingResults,
		Results:         page.Results,
		FetchFilter:     page.FetchFilter,
		PassageLength:   display.PassageLength(cfg.PassageLength),
	}, nil
}
