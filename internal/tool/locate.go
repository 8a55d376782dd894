// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/evidence-locator/internal/display"
	"github.com/gemaraproj/evidence-locator/internal/evidence"
	"github.com/gemaraproj/evidence-locator/internal/query"
)

// ReasonDocumentNotLoaded is reported when the evidence's document is not
// among the response results; FetchFilter then names it.
const ReasonDocumentNotLoaded = "document-not-loaded"

// MetadataLocateEvidence describes the locate_evidence tool.
var MetadataLocateEvidence = &mcp.Tool{
	Name: "locate_evidence",
	Description: "Resolve a passage, table or highlight from a query response to a renderable anchor " +
		"inside its document. Structured documents yield page and bounding-box anchors, plain text " +
		"yields a clamped character range, HTML and JSON documents yield a text match selector. " +
		"When the document cannot be anchored the result explains why and the document should be " +
		"shown without a highlight.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"response", "document_id"},
		"properties": map[string]interface{}{
			"response": map[string]interface{}{
				"type":        "object",
				"description": "Query response with results and table_results",
			},
			"document_id": map[string]interface{}{
				"type":        "string",
				"description": "document_id of the result to preview",
			},
			"evidence": map[string]interface{}{
				"type":        "string",
				"description": "Evidence kind. One of: passage, table, highlight. If omitted, the document is located without a highlight.",
				"enum":        []string{"passage", "table", "highlight"},
			},
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Index of the passage in document_passages, or of the table among the document's table results.",
				"minimum":     0,
			},
			"begin": map[string]interface{}{
				"type":        "integer",
				"description": "Highlight begin offset (highlight evidence only)",
			},
			"end": map[string]interface{}{
				"type":        "integer",
				"description": "Highlight end offset (highlight evidence only)",
			},
			"file_base64": map[string]interface{}{
				"type":        "string",
				"description": "Optional base64-encoded original file (PDF) backing the preview.",
			},
		},
	},
}

// InputLocateEvidence is the input for the LocateEvidence tool.
type InputLocateEvidence struct {
	Response   query.Response `json:"response"`
	DocumentID string         `json:"document_id"`
	Evidence   string         `json:"evidence"`
	Index      int            `json:"index"`
	Begin      int            `json:"begin"`
	End        int            `json:"end"`
	FileBase64 string         `json:"file_base64"`
}

// OutputLocateEvidence is the output for the LocateEvidence tool.
type OutputLocateEvidence struct {
	DocumentID   string       `json:"document_id"`
	DocumentKind string       `json:"document_kind,omitempty"`
	LoaderUsed   string       `json:"loader_used,omitempty"`
	Found        bool         `json:"found"`
	Reason       string       `json:"reason,omitempty"`
	Anchors      []AnchorView `json:"anchors"`
	FetchFilter  string       `json:"fetch_filter,omitempty"`
}

// AnchorView is the wire form of an anchor. Fields not used by Kind are
// omitted.
type AnchorView struct {
	Kind      string                `json:"kind"`
	Page      *int                  `json:"page,omitempty"`
	BBox      *evidence.BoundingBox `json:"bbox,omitempty"`
	Range     *evidence.Span        `json:"range,omitempty"`
	NodeID    string                `json:"node_id,omitempty"`
	TextMatch string                `json:"text_match,omitempty"`
	Offset    *int                  `json:"offset,omitempty"`
}

// NewAnchorView converts an anchor to its wire form.
func NewAnchorView(a evidence.Anchor) AnchorView {
	view := AnchorView{Kind: evidence.AnchorKind(a)}
	switch v := a.(type) {
	case evidence.PageAnchor:
		page, bbox := v.PageIndex, v.BBox
		view.Page, view.BBox = &page, &bbox
	case evidence.TextRangeAnchor:
		r := v.Span
		view.Range = &r
	case evidence.DOMSelectorAnchor:
		offset := v.Offset
		view.NodeID, view.TextMatch, view.Offset = v.NodeID, v.TextMatch, &offset
	}
	return view
}

// Handlers serves the tools over a document loading pipeline.
type Handlers struct {
	pipeline *evidence.Pipeline
	logger   *slog.Logger
}

// NewHandlers creates tool handlers. A nil logger discards log output.
func NewHandlers(pipeline *evidence.Pipeline, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{pipeline: pipeline, logger: logger}
}

// LocateEvidence loads the requested document and resolves the selected
// evidence to anchors.
func (h *Handlers) LocateEvidence(ctx context.Context, _ *mcp.CallToolRequest, input InputLocateEvidence) (*mcp.CallToolResult, OutputLocateEvidence, error) {
	if input.DocumentID == "" {
		return nil, OutputLocateEvidence{}, fmt.Errorf("document_id is required")
	}
	log := h.logger.With("tool", MetadataLocateEvidence.Name, "request_id", uuid.NewString(), "document_id", input.DocumentID)

	out := OutputLocateEvidence{DocumentID: input.DocumentID, Anchors: []AnchorView{}}

	result, ok := input.Response.FindResult(input.DocumentID)
	if !ok {
		out.Reason = ReasonDocumentNotLoaded
		out.FetchFilter = display.DocumentIDFilter([]string{input.DocumentID})
		log.Info("document not in response", "fetch_filter", out.FetchFilter)
		return nil, out, nil
	}

	ev, err := selectEvidence(input, result)
	if err != nil {
		return nil, OutputLocateEvidence{}, err
	}

	var file []byte
	if input.FileBase64 != "" {
		file, err = base64.StdEncoding.DecodeString(input.FileBase64)
		if err != nil {
			return nil, OutputLocateEvidence{}, fmt.Errorf("file_base64 is not valid base64: %w", err)
		}
	}

	loaded, err := h.pipeline.LoadWithMeta(ctx, evidence.DocumentSource{
		Record: map[string]any(result),
		File:   file,
		ID:     input.DocumentID,
	})
	if err != nil {
		log.Error("document load failed", "error", err)
		return nil, OutputLocateEvidence{}, err
	}

	loc := evidence.Locate(loaded.Document, ev)
	out.DocumentKind = string(loaded.Document.Kind())
	out.LoaderUsed = loaded.LoaderUsed
	out.Found = loc.Found
	out.Reason = loc.Reason
	for _, a := range loc.Resolution.All() {
		out.Anchors = append(out.Anchors, NewAnchorView(a))
	}

	log.Info("evidence located",
		"evidence", evidence.Kind(ev),
		"document_kind", out.DocumentKind,
		"found", out.Found,
		"anchors", len(out.Anchors),
		"reason", out.Reason,
	)
	return nil, out, nil
}

// selectEvidence picks the evidence named by the input from the result and
// the response's table results. A nil Evidence means no highlight.
func selectEvidence(input InputLocateEvidence, result query.Result) (evidence.Evidence, error) {
	switch input.Evidence {
	case "":
		return nil, nil
	case "passage":
		passages := result.Passages()
		if input.Index < 0 || input.Index >= len(passages) {
			return nil, fmt.Errorf("passage index %d out of range: document has %d passages", input.Index, len(passages))
		}
		return passages[input.Index].Evidence(), nil
	case "table":
		tables := input.Response.TablesFor(input.DocumentID)
		if input.Index < 0 || input.Index >= len(tables) {
			return nil, fmt.Errorf("table index %d out of range: document has %d tables", input.Index, len(tables))
		}
		return tables[input.Index].Evidence(), nil
	case "highlight":
		return evidence.FreeHighlight{Span: evidence.Span{Begin: input.Begin, End: input.End}}, nil
	}
	return nil, fmt.Errorf("unsupported evidence kind %q", input.Evidence)
}
