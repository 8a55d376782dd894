// SPDX-License-Identifier: Apache-2.0

package loaders_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
	"github.com/gemaraproj/evidence-locator/internal/evidence/loaders"
)

const mappingsJSON = `{"text_mappings":[` +
	`{"page":{"page_number":2,"bbox":[10,20,300,40]},"field":{"name":"text","index":0,"span":[50,120]}},` +
	`{"page":{"page_number":1,"bbox":[10,20,300,40]},"field":{"name":"text","index":0,"span":[0,50]}},` +
	`{"page":{"page_number":1,"bbox":[1,1,2,2]},"field":{"name":"title","index":0,"span":[0,5]}},` +
	`{"page":{"page_number":1,"bbox":[1,1,2]},"field":{"name":"text","index":0,"span":[5,9]}},` +
	`{"page":{"page_number":2,"bbox":[1,1,2,2]},"field":{"name":"text","index":0,"span":[60,70]}}` +
	`]}`

func structuredRecord() map[string]any {
	return map[string]any{
		"document_id": "art-effects",
		"text":        "0123456789",
		"extracted_metadata": map[string]any{
			"file_type":     "pdf",
			"filename":      "Art Effects.pdf",
			"text_mappings": mappingsJSON,
		},
	}
}

// minimalPDF writes a PDF with the given number of empty pages and a correct
// cross-reference table.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

func TestDefaultPipeline_RegisteredLoaders(t *testing.T) {
	p := loaders.NewDefaultPipeline()
	assert.Equal(t, []string{"pdf", "html", "json", "structured", "simple"}, p.RegisteredLoaders())
}

func TestPipeline_NoLoaders(t *testing.T) {
	p := evidence.NewPipeline()
	_, err := p.Load(context.Background(), evidence.DocumentSource{ID: "doc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document representation")
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loaders.NewDefaultPipeline().Load(ctx, evidence.DocumentSource{Record: structuredRecord()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_SelectsByRepresentation(t *testing.T) {
	tests := []struct {
		name       string
		source     evidence.DocumentSource
		wantLoader string
		wantKind   evidence.DocumentKind
	}{
		{
			name:       "structured record",
			source:     evidence.DocumentSource{Record: structuredRecord()},
			wantLoader: "structured",
			wantKind:   evidence.KindStructured,
		},
		{
			name: "record without mappings",
			source: evidence.DocumentSource{Record: map[string]any{
				"document_id":        "simple",
				"text":               "plain text",
				"extracted_metadata": map[string]any{"file_type": "pdf"},
			}},
			wantLoader: "simple",
			wantKind:   evidence.KindUnstructured,
		},
		{
			name: "html record",
			source: evidence.DocumentSource{Record: map[string]any{
				"document_id":        "movie",
				"html":               "<p>how are ya</p>",
				"extracted_metadata": map[string]any{"file_type": "HTML"},
			}},
			wantLoader: "html",
			wantKind:   evidence.KindHTML,
		},
		{
			name: "html record without markup falls back to text",
			source: evidence.DocumentSource{Record: map[string]any{
				"text":               "only text",
				"extracted_metadata": map[string]any{"file_type": "html"},
			}},
			wantLoader: "simple",
			wantKind:   evidence.KindUnstructured,
		},
		{
			name: "json record",
			source: evidence.DocumentSource{Record: map[string]any{
				"text":               "From: ken",
				"extracted_metadata": map[string]any{"file_type": "json", "text_mappings": mappingsJSON},
			}},
			wantLoader: "json",
			wantKind:   evidence.KindJSON,
		},
		{
			name:       "pdf payload",
			source:     evidence.DocumentSource{Record: structuredRecord(), File: minimalPDF(1)},
			wantLoader: "pdf",
			wantKind:   evidence.KindStructured,
		},
	}

	p := loaders.NewDefaultPipeline()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.LoadWithMeta(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLoader, result.LoaderUsed)
			assert.Equal(t, tt.wantKind, result.Document.Kind())
		})
	}
}

// ---------------------------------------------------------------------------
// StructuredLoader
// ---------------------------------------------------------------------------

func TestStructuredLoader_Load(t *testing.T) {
	l := loaders.NewStructuredLoader()
	src := evidence.DocumentSource{Record: structuredRecord()}
	require.True(t, l.CanHandle(src))

	doc, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	s, ok := doc.(evidence.Structured)
	require.True(t, ok)

	assert.Equal(t, "art-effects", s.ID())
	assert.Equal(t, "0123456789", s.Text)
	require.Len(t, s.Blocks, 2, "foreign fields, malformed boxes and overlapping ranges are skipped")
	assert.Equal(t, evidence.TextBlock{
		Page:  0,
		BBox:  evidence.BoundingBox{Left: 10, Top: 20, Right: 300, Bottom: 40},
		Range: evidence.Span{Begin: 0, End: 50},
	}, s.Blocks[0])
	assert.Equal(t, 1, s.Blocks[1].Page)
	assert.Equal(t, evidence.Span{Begin: 50, End: 120}, s.Blocks[1].Range)
}

func TestStructuredLoader_InlineMappings(t *testing.T) {
	record := map[string]any{
		"document_id": "inline",
		"text":        []any{"first text value", "second"},
		"extracted_metadata": map[string]any{
			"text_mappings": map[string]any{
				"text_mappings": []any{
					map[string]any{
						"page":  map[string]any{"page_number": float64(1), "bbox": []any{1.5, 2.5, 3.5, 4.5}},
						"field": map[string]any{"name": "text", "index": float64(0), "span": []any{float64(0), float64(16)}},
					},
				},
			},
		},
	}
	doc, err := loaders.NewStructuredLoader().Load(context.Background(), evidence.DocumentSource{Record: record})
	require.NoError(t, err)
	s := doc.(evidence.Structured)
	assert.Equal(t, "first text value", s.Text)
	require.Len(t, s.Blocks, 1)
	assert.Equal(t, evidence.BoundingBox{Left: 1.5, Top: 2.5, Right: 3.5, Bottom: 4.5}, s.Blocks[0].BBox)
}

func TestStructuredLoader_InvalidMappings(t *testing.T) {
	record := map[string]any{
		"extracted_metadata": map[string]any{"text_mappings": "{not: [valid"},
	}
	_, err := loaders.NewDefaultPipeline().Load(context.Background(), evidence.DocumentSource{Record: record, ID: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loader "structured" failed`)
}

func TestStructuredLoader_IgnoresOtherFileTypes(t *testing.T) {
	record := structuredRecord()
	record["extracted_metadata"].(map[string]any)["file_type"] = "html"
	assert.False(t, loaders.NewStructuredLoader().CanHandle(evidence.DocumentSource{Record: record}))
}

// ---------------------------------------------------------------------------
// PDFLoader
// ---------------------------------------------------------------------------

func TestPDFLoader_PageCountBoundsAnchors(t *testing.T) {
	doc, err := loaders.NewPDFLoader().Load(context.Background(), evidence.DocumentSource{
		Record: structuredRecord(),
		File:   minimalPDF(1),
	})
	require.NoError(t, err)
	s := doc.(evidence.Structured)
	assert.Equal(t, 1, s.PageCount)

	res, ok := evidence.ResolveAnchor(s, evidence.Span{Begin: 40, End: 60}, true, "")
	require.True(t, ok)
	assert.Equal(t, 0, res.Primary.(evidence.PageAnchor).PageIndex)
	assert.Empty(t, res.Secondary)
}

func TestPDFLoader_CanHandle(t *testing.T) {
	l := loaders.NewPDFLoader()
	assert.False(t, l.CanHandle(evidence.DocumentSource{Record: structuredRecord()}), "no payload")
	assert.True(t, l.CanHandle(evidence.DocumentSource{Record: structuredRecord(), File: []byte("%PDF")}))
	assert.False(t, l.CanHandle(evidence.DocumentSource{
		Record: map[string]any{"extracted_metadata": map[string]any{"file_type": "json"}},
		File:   []byte("%PDF"),
	}))
}

func TestPDFLoader_InvalidPayload(t *testing.T) {
	_, err := loaders.NewPDFLoader().Load(context.Background(), evidence.DocumentSource{
		Record: structuredRecord(),
		File:   []byte("definitely not a pdf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open pdf")
}
