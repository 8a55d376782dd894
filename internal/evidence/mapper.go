// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"sort"
)

// BoundingBox is a rectangle on a page in the coordinate space of the
// structural metadata: left, top, right, bottom.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// TextBlock ties a character range of the extracted text to a region of a
// page. Page is zero-based.
type TextBlock struct {
	Page  int         `json:"page"`
	BBox  BoundingBox `json:"bbox"`
	Range Span        `json:"range"`
}

// MapOffsetToBlocks returns the blocks that intersect span. blocks must be
// sorted by Range.Begin and non-overlapping. Ranges are half-open, so a span
// starting on a block boundary belongs to the block that begins there. A
// zero-length span selects the block containing its offset.
func MapOffsetToBlocks(blocks []TextBlock, span Span) []TextBlock {
	if len(blocks) == 0 {
		return nil
	}

	first := sort.Search(len(blocks), func(i int) bool {
		return blocks[i].Range.End > span.Begin
	})
	if first == len(blocks) {
		return nil
	}

	if span.End <= span.Begin {
		if blocks[first].Range.Begin <= span.Begin {
			return []TextBlock{blocks[first]}
		}
		return nil
	}

	var out []TextBlock
	for i := first; i < len(blocks) && blocks[i].Range.Begin < span.End; i++ {
		out = append(out, blocks[i])
	}
	return out
}
