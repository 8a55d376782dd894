// SPDX-License-Identifier: Apache-2.0

package evidence

// Anchor is a renderable location for evidence inside a document: a page
// region, a text range or a DOM selector.
type Anchor interface {
	anchorKind() string
}

// PageAnchor is a region on a zero-based page of a structured document.
type PageAnchor struct {
	PageIndex int
	BBox      BoundingBox
}

// TextRangeAnchor is a character range in extracted text, already clamped to
// the text length.
type TextRangeAnchor struct {
	Span Span
}

// DOMSelectorAnchor locates a literal text match inside raw markup or raw
// JSON text. NodeID is the id of the nearest enclosing element, if any.
// Offset is the character offset of the match in the raw content.
type DOMSelectorAnchor struct {
	NodeID    string
	TextMatch string
	Offset    int
}

func (PageAnchor) anchorKind() string        { return "page" }
func (TextRangeAnchor) anchorKind() string   { return "text_range" }
func (DOMSelectorAnchor) anchorKind() string { return "dom_selector" }

// AnchorKind names the anchor variant.
func AnchorKind(a Anchor) string {
	if a == nil {
		return ""
	}
	return a.anchorKind()
}

// Resolution is the result of resolving evidence in a document. Secondary
// holds further regions of a highlight that spans several blocks, in text
// order; callers decide whether to render them.
type Resolution struct {
	Primary   Anchor
	Secondary []Anchor
}

// All returns the primary anchor followed by the secondary ones.
func (r Resolution) All() []Anchor {
	if r.Primary == nil {
		return nil
	}
	return append([]Anchor{r.Primary}, r.Secondary...)
}

func newResolution(anchors []Anchor) (Resolution, bool) {
	switch len(anchors) {
	case 0:
		return Resolution{}, false
	case 1:
		return Resolution{Primary: anchors[0]}, true
	}
	return Resolution{Primary: anchors[0], Secondary: anchors[1:]}, true
}

// ResolveAnchor resolves a span and/or quotes to an anchor in doc. Structured
// and unstructured documents use the span; HTML and JSON documents use the
// first quote form found in their raw content, since character offsets do
// not apply to raw markup. The second return value is false when nothing
// can be anchored.
func ResolveAnchor(doc Document, span Span, hasSpan bool, quotes ...string) (Resolution, bool) {
	if doc == nil {
		return Resolution{}, false
	}
	return doc.resolve(span, hasSpan, quotes)
}
