// SPDX-License-Identifier: Apache-2.0

// Package markup holds the small amount of HTML handling the locator needs:
// reducing marked-up passages to text and finding the element that encloses
// a byte offset in raw markup.
package markup

import (
	"bytes"
	"html"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
)

// StripTags returns the text content of s with all tags removed and entities
// decoded. Input that is not HTML is returned unchanged apart from entity
// decoding.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := nethtml.NewTokenizer(strings.NewReader(s))
	var out bytes.Buffer
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			if z.Err() == io.EOF {
				return out.String()
			}
			return s
		case nethtml.TextToken:
			out.Write(z.Text())
		}
	}
}

// Match is a literal occurrence of text inside raw markup.
type Match struct {
	// ByteOffset is the offset of the occurrence in the raw content.
	ByteOffset int
	// Matched is the form that was found, which is either the quote itself
	// or its entity-escaped form.
	Matched string
}

// FindLiteral looks for quote in content, first verbatim and then with HTML
// special characters escaped the way serialised markup carries them.
func FindLiteral(content, quote string) (Match, bool) {
	if quote == "" {
		return Match{}, false
	}
	candidates := []string{quote}
	if escaped := html.EscapeString(quote); escaped != quote {
		candidates = append(candidates, escaped)
	}
	for _, c := range candidates {
		if i := strings.Index(content, c); i >= 0 {
			return Match{ByteOffset: i, Matched: c}, true
		}
	}
	return Match{}, false
}

type openElement struct {
	name string
	id   string
}

// EnclosingID returns the id attribute of the innermost element that is open
// at byteOffset in content, or "" when no open element carries an id.
func EnclosingID(content string, byteOffset int) string {
	z := nethtml.NewTokenizer(strings.NewReader(content))
	var stack []openElement
	pos := 0
	for pos <= byteOffset {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			break
		}
		raw := len(z.Raw())
		if pos+raw > byteOffset && tt != nethtml.TextToken {
			// The offset falls inside a tag; that tag does not enclose it.
			break
		}
		pos += raw

		switch tt {
		case nethtml.StartTagToken:
			name, hasAttr := z.TagName()
			el := openElement{name: string(name)}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" {
					el.id = string(val)
				}
			}
			if !isVoid(el.name) {
				stack = append(stack, el)
			}
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			stack = popTo(stack, string(name))
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].id != "" {
			return stack[i].id
		}
	}
	return ""
}

func popTo(stack []openElement, name string) []openElement {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name == name {
			return stack[:i]
		}
	}
	return stack
}

func isVoid(name string) bool {
	switch name {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "source", "track", "wbr":
		return true
	}
	return false
}
