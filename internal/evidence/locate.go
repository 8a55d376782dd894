// SPDX-License-Identifier: Apache-2.0

package evidence

import "errors"

// Reasons reported when no anchor is produced.
const (
	ReasonNoEvidence   = "no-evidence"
	ReasonUnresolvable = "unresolvable-evidence"
	ReasonNoMatch      = "no-match"
)

// Location is the outcome of locating one piece of evidence in a document.
// When Found is false the document is rendered without a highlight and
// Reason says why.
type Location struct {
	Resolution Resolution
	Found      bool
	Reason     string
}

// Locate normalises ev, resolves it against doc and reports the outcome. A
// nil ev means "show the document unhighlighted".
func Locate(doc Document, ev Evidence) Location {
	if ev == nil {
		return Location{Reason: ReasonNoEvidence}
	}

	span, err := Normalize(ev)
	hasSpan := err == nil
	quotes := Quotes(ev)

	res, ok := ResolveAnchor(doc, span, hasSpan, quotes...)
	if ok {
		return Location{Resolution: res, Found: true}
	}
	if usesQuote(doc) {
		if len(quotes) == 0 {
			return Location{Reason: ReasonUnresolvable}
		}
		return Location{Reason: ReasonNoMatch}
	}
	if errors.Is(err, ErrUnresolvableEvidence) {
		return Location{Reason: ReasonUnresolvable}
	}
	return Location{Reason: ReasonNoMatch}
}

func usesQuote(doc Document) bool {
	if doc == nil {
		return false
	}
	switch doc.Kind() {
	case KindHTML, KindJSON:
		return true
	}
	return false
}
