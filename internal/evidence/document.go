// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"unicode/utf8"

	"github.com/gemaraproj/evidence-locator/internal/markup"
)

// DocumentKind names a document representation.
type DocumentKind string

const (
	KindStructured   DocumentKind = "structured"
	KindUnstructured DocumentKind = "unstructured"
	KindHTML         DocumentKind = "html"
	KindJSON         DocumentKind = "json"
)

// Document is one of Structured, Unstructured, HTML or JSON. Each kind
// implements its own anchor resolution, so adding a kind means adding its
// resolution branch.
type Document interface {
	Kind() DocumentKind
	ID() string
	resolve(span Span, hasSpan bool, quotes []string) (Resolution, bool)
}

// Structured is extracted text with per-block page and bounding-box
// metadata.
type Structured struct {
	DocumentID string
	Text       string
	Blocks     []TextBlock
	// PageCount is the number of pages in the source file, or 0 if unknown.
	PageCount int
}

// Unstructured is extracted text with no positional metadata.
type Unstructured struct {
	DocumentID string
	Text       string
}

// HTML is a document rendered from its raw markup.
type HTML struct {
	DocumentID string
	Markup     string
}

// JSON is a document whose raw text content is shown verbatim.
type JSON struct {
	DocumentID string
	Content    string
}

func (d Structured) Kind() DocumentKind   { return KindStructured }
func (d Unstructured) Kind() DocumentKind { return KindUnstructured }
func (d HTML) Kind() DocumentKind         { return KindHTML }
func (d JSON) Kind() DocumentKind         { return KindJSON }

func (d Structured) ID() string   { return d.DocumentID }
func (d Unstructured) ID() string { return d.DocumentID }
func (d HTML) ID() string         { return d.DocumentID }
func (d JSON) ID() string         { return d.DocumentID }

func (d Structured) resolve(span Span, hasSpan bool, _ []string) (Resolution, bool) {
	if !hasSpan {
		return Resolution{}, false
	}
	var anchors []Anchor
	for _, b := range MapOffsetToBlocks(d.Blocks, span) {
		if d.PageCount > 0 && b.Page >= d.PageCount {
			continue
		}
		anchors = append(anchors, PageAnchor{PageIndex: b.Page, BBox: b.BBox})
	}
	return newResolution(anchors)
}

func (d Unstructured) resolve(span Span, hasSpan bool, _ []string) (Resolution, bool) {
	if !hasSpan {
		return Resolution{}, false
	}
	return Resolution{Primary: TextRangeAnchor{Span: span.Clamp(textLength(d.Text))}}, true
}

func (d HTML) resolve(_ Span, _ bool, quotes []string) (Resolution, bool) {
	m, ok := findFirst(d.Markup, quotes)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Primary: DOMSelectorAnchor{
		NodeID:    markup.EnclosingID(d.Markup, m.ByteOffset),
		TextMatch: m.Matched,
		Offset:    utf8.RuneCountInString(d.Markup[:m.ByteOffset]),
	}}, true
}

func (d JSON) resolve(_ Span, _ bool, quotes []string) (Resolution, bool) {
	m, ok := findFirst(d.Content, quotes)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Primary: DOMSelectorAnchor{
		TextMatch: m.Matched,
		Offset:    utf8.RuneCountInString(d.Content[:m.ByteOffset]),
	}}, true
}

// findFirst returns the match of the first quote form found in content.
func findFirst(content string, quotes []string) (markup.Match, bool) {
	for _, q := range quotes {
		if m, ok := markup.FindLiteral(content, q); ok {
			return m, true
		}
	}
	return markup.Match{}, false
}
