// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"context"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
)

// StructuredLoader builds Structured documents from records that carry
// extracted_metadata.text_mappings.
type StructuredLoader struct{}

// NewStructuredLoader creates a new StructuredLoader.
func NewStructuredLoader() *StructuredLoader {
	return &StructuredLoader{}
}

func (l *StructuredLoader) Name() string {
	return "structured"
}

// CanHandle returns true for pdf or untyped records that have text mappings.
func (l *StructuredLoader) CanHandle(source evidence.DocumentSource) bool {
	switch source.FileType() {
	case "", "pdf":
		return hasTextMappings(source.Record)
	}
	return false
}

func (l *StructuredLoader) Load(_ context.Context, source evidence.DocumentSource) (evidence.Document, error) {
	blocks, err := parseTextMappings(source.Record)
	if err != nil {
		return nil, err
	}
	return evidence.Structured{
		DocumentID: documentID(source),
		Text:       recordText(source.Record),
		Blocks:     blocks,
	}, nil
}

// SimpleLoader builds Unstructured documents from the record text. It
// accepts every source and is registered last.
type SimpleLoader struct{}

// NewSimpleLoader creates a new SimpleLoader.
func NewSimpleLoader() *SimpleLoader {
	return &SimpleLoader{}
}

func (l *SimpleLoader) Name() string {
	return "simple"
}

func (l *SimpleLoader) CanHandle(evidence.DocumentSource) bool {
	return true
}

func (l *SimpleLoader) Load(_ context.Context, source evidence.DocumentSource) (evidence.Document, error) {
	return evidence.Unstructured{
		DocumentID: documentID(source),
		Text:       recordText(source.Record),
	}, nil
}
