// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
	"github.com/gemaraproj/evidence-locator/internal/fieldpath"
)

// textMappings mirrors extracted_metadata.text_mappings. The service sends
// it as a JSON string; fixtures often inline it as an object.
type textMappings struct {
	TextMappings []textMapping `yaml:"text_mappings"`
}

type textMapping struct {
	Page struct {
		PageNumber int       `yaml:"page_number"`
		BBox       []float64 `yaml:"bbox"`
	} `yaml:"page"`
	Field struct {
		Name  string `yaml:"name"`
		Index int    `yaml:"index"`
		Span  []int  `yaml:"span"`
	} `yaml:"field"`
}

const textMappingsPath = "extracted_metadata.text_mappings"

func hasTextMappings(record map[string]any) bool {
	_, ok := fieldpath.Resolve(record, textMappingsPath)
	return ok
}

// parseTextMappings decodes the record's text mappings into sorted,
// non-overlapping blocks over the first "text" field value. Mappings for
// other fields, with malformed spans or boxes, or overlapping an earlier
// block are skipped.
func parseTextMappings(record map[string]any) ([]evidence.TextBlock, error) {
	raw, ok := fieldpath.Resolve(record, textMappingsPath)
	if !ok {
		return nil, nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode text mappings: %w", err)
		}
		data = encoded
	}

	var tm textMappings
	if err := yaml.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal text mappings: %w", err)
	}

	blocks := make([]evidence.TextBlock, 0, len(tm.TextMappings))
	for _, m := range tm.TextMappings {
		if m.Field.Name != "" && m.Field.Name != "text" {
			continue
		}
		if m.Field.Index != 0 || len(m.Field.Span) != 2 || len(m.Page.BBox) != 4 {
			continue
		}
		if m.Page.PageNumber < 1 || m.Field.Span[0] < 0 || m.Field.Span[1] < m.Field.Span[0] {
			continue
		}
		blocks = append(blocks, evidence.TextBlock{
			Page: m.Page.PageNumber - 1,
			BBox: evidence.BoundingBox{
				Left:   m.Page.BBox[0],
				Top:    m.Page.BBox[1],
				Right:  m.Page.BBox[2],
				Bottom: m.Page.BBox[3],
			},
			Range: evidence.Span{Begin: m.Field.Span[0], End: m.Field.Span[1]},
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Range.Begin < blocks[j].Range.Begin
	})

	out := blocks[:0]
	end := -1
	for _, b := range blocks {
		if b.Range.Begin < end {
			continue
		}
		out = append(out, b)
		end = b.Range.End
	}
	return out, nil
}

// recordText returns the record's extracted text. Multi-valued text fields
// contribute their first value, which is the one text mappings refer to.
func recordText(record map[string]any) string {
	if s, ok := fieldpath.String(record, "text"); ok {
		return s
	}
	s, _ := fieldpath.String(record, "text[0]")
	return s
}

func documentID(source evidence.DocumentSource) string {
	if id, ok := fieldpath.String(source.Record, "document_id"); ok {
		return id
	}
	return source.ID
}
