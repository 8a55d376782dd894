// SPDX-License-Identifier: Apache-2.0

// Package display chooses the title, body and link text shown for a query
// result. The fallback order is fixed and is the user-visible contract of
// result rendering.
package display

import (
	"github.com/gemaraproj/evidence-locator/internal/fieldpath"
	"github.com/gemaraproj/evidence-locator/internal/markup"
	"github.com/gemaraproj/evidence-locator/internal/query"
)

const (
	DefaultBodyField       = "text"
	DefaultEmptyResultText = "Excerpt unavailable."

	DefaultPassageLength = 400
	MinPassageLength     = 50
	MaxPassageLength     = 2000
)

// Options are the render options supplied by the caller. Zero values mean
// "unset".
type Options struct {
	TitleField            string
	BodyField             string
	UsePassages           *bool
	PassageLength         *int
	ResultLinkField       string
	DangerouslyRenderHTML bool
	EmptyResultText       string
	TablesOnly            bool
}

// ComponentSettings are project-level defaults for result display.
type ComponentSettings struct {
	FieldsShown    FieldsShown `json:"fields_shown" yaml:"fields_shown"`
	ResultsPerPage int         `json:"results_per_page,omitempty" yaml:"results_per_page"`
}

type FieldsShown struct {
	Title FieldRef  `json:"title" yaml:"title"`
	Body  BodyField `json:"body" yaml:"body"`
}

type FieldRef struct {
	Field string `json:"field,omitempty" yaml:"field"`
}

type BodyField struct {
	Field      string `json:"field,omitempty" yaml:"field"`
	UsePassage *bool  `json:"use_passage,omitempty" yaml:"use_passage"`
}

// Settings is the resolved display configuration, computed once per render
// configuration and read-only afterwards.
type Settings struct {
	TitleField  string
	BodyField   string
	UsePassages *bool
	LinkField   string
	RenderHTML  bool
	EmptyText   string
	TablesOnly  bool
}

// SelectSettings merges render options over component settings. Options win
// whenever they are set.
func SelectSettings(opts Options, defaults ComponentSettings) Settings {
	s := Settings{
		TitleField:  opts.TitleField,
		BodyField:   opts.BodyField,
		UsePassages: opts.UsePassages,
		LinkField:   opts.ResultLinkField,
		RenderHTML:  opts.DangerouslyRenderHTML,
		EmptyText:   opts.EmptyResultText,
		TablesOnly:  opts.TablesOnly,
	}
	if s.TitleField == "" {
		s.TitleField = defaults.FieldsShown.Title.Field
	}
	if s.BodyField == "" {
		s.BodyField = defaults.FieldsShown.Body.Field
	}
	if s.UsePassages == nil {
		s.UsePassages = defaults.FieldsShown.Body.UsePassage
	}
	if s.EmptyText == "" {
		s.EmptyText = DefaultEmptyResultText
	}
	return s
}

// Title picks the result title: the configured title field, then
// extracted_metadata.title, then extracted_metadata.filename, then
// document_id.
func Title(r query.Result, s Settings) string {
	record := map[string]any(r)
	for _, path := range []string{s.TitleField, "extracted_metadata.title", "extracted_metadata.filename"} {
		if path == "" {
			continue
		}
		if v, ok := fieldpath.String(record, path); ok {
			return v
		}
	}
	return r.DocumentID()
}

// Body sources.
const (
	SourcePassage = "passage"
	SourceField   = "field"
	SourceEmpty   = "empty"
)

// Body is the excerpt shown for a result.
type Body struct {
	Text   string
	Source string
}

// SelectBody picks the result excerpt. With passages enabled (true or unset)
// the first passage wins, then the body field, then the empty-state text.
// With passages disabled only the body field is considered.
func SelectBody(r query.Result, s Settings) Body {
	if s.UsePassages == nil || *s.UsePassages {
		if passages := r.Passages(); len(passages) > 0 && passages[0].Text != "" {
			return Body{Text: s.clean(passages[0].Text), Source: SourcePassage}
		}
	}

	field := s.BodyField
	if field == "" {
		field = DefaultBodyField
	}
	if v, ok := fieldpath.String(map[string]any(r), field); ok {
		return Body{Text: s.clean(v), Source: SourceField}
	}

	empty := s.EmptyText
	if empty == "" {
		empty = DefaultEmptyResultText
	}
	return Body{Text: empty, Source: SourceEmpty}
}

// Link resolves the configured link field of a result.
func Link(r query.Result, s Settings) (string, bool) {
	if s.LinkField == "" {
		return "", false
	}
	return fieldpath.String(map[string]any(r), s.LinkField)
}

func (s Settings) clean(text string) string {
	if s.RenderHTML {
		return text
	}
	return markup.StripTags(text)
}

// PassageLength returns the passage length to request from the query
// engine: DefaultPassageLength when unset, otherwise clamped to
// [MinPassageLength, MaxPassageLength].
func PassageLength(n *int) int {
	if n == nil {
		return DefaultPassageLength
	}
	return max(MinPassageLength, min(*n, MaxPassageLength))
}
