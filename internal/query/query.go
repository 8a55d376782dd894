// SPDX-License-Identifier: Apache-2.0

// Package query models the parts of a document-intelligence query response
// the locator reads: result records, their passages, and table results.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
	"github.com/gemaraproj/evidence-locator/internal/fieldpath"
)

// Response is a decoded query response.
type Response struct {
	MatchingResults int           `json:"matching_results"`
	Results         []Result      `json:"results"`
	TableResults    []TableResult `json:"table_results"`
}

// Decode reads a JSON query response.
func Decode(r io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode query response: %w", err)
	}
	return resp, nil
}

// FindResult returns the result whose document_id is id.
func (r Response) FindResult(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.DocumentID() == id {
			return res, true
		}
	}
	return nil, false
}

// TablesFor returns the table results whose source document is id.
func (r Response) TablesFor(id string) []TableResult {
	var out []TableResult
	for _, t := range r.TableResults {
		if t.SourceDocumentID == id {
			out = append(out, t)
		}
	}
	return out
}

// Result is one result record. It stays a generic mapping because display
// fields are addressed by user-configured paths.
type Result map[string]any

// DocumentID returns the record's document_id, or "".
func (r Result) DocumentID() string {
	id, _ := fieldpath.String(map[string]any(r), "document_id")
	return id
}

// Passages returns the record's document_passages in order. Entries that are
// not objects are skipped.
func (r Result) Passages() []Passage {
	raw, ok := fieldpath.Resolve(map[string]any(r), "document_passages")
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Passage, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, passageFromRecord(m))
	}
	return out
}

// Passage is an entry of document_passages.
type Passage struct {
	Text  string `json:"passage_text"`
	Field string `json:"field,omitempty"`
	// Begin and End are nil when the engine returned no offsets.
	Begin *int `json:"begin,omitempty"`
	End   *int `json:"end,omitempty"`
}

func passageFromRecord(m map[string]any) Passage {
	p := Passage{}
	p.Text, _ = fieldpath.String(m, "passage_text")
	p.Field, _ = fieldpath.String(m, "field")
	p.Begin = firstInt(m, "start_offset", "begin")
	p.End = firstInt(m, "end_offset", "end")
	return p
}

func firstInt(m map[string]any, keys ...string) *int {
	for _, k := range keys {
		v, ok := fieldpath.Resolve(m, k)
		if !ok {
			continue
		}
		if n, ok := toInt(v); ok {
			return &n
		}
	}
	return nil
}

// toInt converts a decoded offset to int. Values beyond the int range
// saturate so that clamping keeps them at the matching end of the text;
// NaN is rejected.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return floatToInt(n)
	case int:
		return n, true
	case int64:
		return int(max(math.MinInt, min(n, math.MaxInt))), true
	case uint64:
		if n > math.MaxInt {
			return math.MaxInt, true
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(max(math.MinInt, min(i, math.MaxInt))), true
		}
		f, err := n.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return floatToInt(f)
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// Evidence converts the passage to locator evidence. A passage has a span
// only when both offsets are present.
func (p Passage) Evidence() evidence.Passage {
	ev := evidence.Passage{Text: p.Text, Field: p.Field}
	if p.Begin != nil && p.End != nil {
		ev.Span = &evidence.Span{Begin: *p.Begin, End: *p.End}
	}
	return ev
}

// Location is a character range reported for a table.
type Location struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// TableDetail is the structured part of a table result.
type TableDetail struct {
	Location *Location `json:"location,omitempty"`
}

// TableResult is an entry of table_results.
type TableResult struct {
	TableID          string       `json:"table_id"`
	SourceDocumentID string       `json:"source_document_id"`
	CollectionID     string       `json:"collection_id,omitempty"`
	TableHTML        string       `json:"table_html"`
	TableHTMLOffset  int          `json:"table_html_offset,omitempty"`
	Table            *TableDetail `json:"table,omitempty"`
	Location         *Location    `json:"location,omitempty"`
}

// Span returns the table location, preferring table.location over a
// top-level location. It is nil when the table has no positional data.
func (t TableResult) Span() *evidence.Span {
	loc := t.Location
	if t.Table != nil && t.Table.Location != nil {
		loc = t.Table.Location
	}
	if loc == nil {
		return nil
	}
	return &evidence.Span{Begin: loc.Begin, End: loc.End}
}

// Evidence converts the table result to locator evidence.
func (t TableResult) Evidence() evidence.Table {
	return evidence.Table{
		Location:         t.Span(),
		TableID:          t.TableID,
		SourceDocumentID: t.SourceDocumentID,
		HTML:             t.TableHTML,
	}
}
