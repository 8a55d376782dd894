// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gemaraproj/evidence-locator/internal/markup"
)

// ErrUnresolvableEvidence reports that an evidence value carries no
// positional data. It is an expected outcome: the document is shown without
// a highlight.
var ErrUnresolvableEvidence = errors.New("evidence has no positional data")

// Span is a half-open character interval [Begin, End) into a document's
// extracted text.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Clamp fits the span into [0, length] without failing.
func (s Span) Clamp(length int) Span {
	if length < 0 {
		length = 0
	}
	begin := max(0, min(s.Begin, length))
	end := max(begin, min(s.End, length))
	return Span{Begin: begin, End: end}
}

// textLength counts characters (runes) of extracted text.
func textLength(text string) int {
	return utf8.RuneCountInString(text)
}

// Evidence is a piece of query output claiming relevance within a document.
// The set of implementations is closed: Passage, Table and FreeHighlight.
type Evidence interface {
	evidenceKind() string
}

// Passage is a passage returned by the query engine.
type Passage struct {
	// Span is nil when the engine did not return offsets.
	Span *Span
	// Text is the passage text as returned, possibly with <em> markup.
	Text string
	// Field is the record field the span counts from. Empty means the
	// extracted text field.
	Field string
}

// TextField is the record field holding extracted text. Offsets of
// structured and unstructured documents index this field.
const TextField = "text"

// Table is a table result.
type Table struct {
	// Location is nil when the table was supplied as HTML only.
	Location         *Span
	TableID          string
	SourceDocumentID string
	HTML             string
}

// FreeHighlight is a caller-supplied highlight range.
type FreeHighlight struct {
	Span Span
}

func (Passage) evidenceKind() string       { return "passage" }
func (Table) evidenceKind() string         { return "table" }
func (FreeHighlight) evidenceKind() string { return "highlight" }

// Kind names the evidence variant: "passage", "table" or "highlight".
func Kind(ev Evidence) string {
	if ev == nil {
		return ""
	}
	return ev.evidenceKind()
}

// Normalize converts an evidence value to its canonical span. Evidence that
// carries no offsets, or passages whose offsets count from a field other
// than the extracted text, yield ErrUnresolvableEvidence.
func Normalize(ev Evidence) (Span, error) {
	switch e := ev.(type) {
	case Passage:
		if e.Span == nil || (e.Field != "" && e.Field != TextField) {
			return Span{}, ErrUnresolvableEvidence
		}
		return *e.Span, nil
	case Table:
		if e.Location == nil {
			return Span{}, ErrUnresolvableEvidence
		}
		return *e.Location, nil
	case FreeHighlight:
		return e.Span, nil
	}
	return Span{}, ErrUnresolvableEvidence
}

// Quotes returns the literal forms of the text an evidence value carries,
// in the order they should be searched for in raw content. Passages yield
// their text with highlight markup removed. Tables yield their raw markup
// followed by its text content. Free highlights carry none.
func Quotes(ev Evidence) []string {
	var forms []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(forms, s) {
			return
		}
		forms = append(forms, s)
	}
	switch e := ev.(type) {
	case Passage:
		add(markup.StripTags(e.Text))
	case Table:
		add(e.HTML)
		add(markup.StripTags(e.HTML))
	}
	return forms
}
