// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/gemaraproj/evidence-locator/internal/fieldpath"
)

// DocumentSource is the raw input a loader builds a Document from: a query
// result record and, for PDF previews, the original file bytes.
type DocumentSource struct {
	// Record is the decoded query result (document_id, text, html,
	// extracted_metadata, ...).
	Record map[string]any
	// File is the optional binary payload of the original document.
	File []byte
	ID   string
}

// FileType returns the lower-cased extracted_metadata.file_type of the
// record, or "" when absent.
func (s DocumentSource) FileType() string {
	ft, _ := fieldpath.String(s.Record, "extracted_metadata.file_type")
	return strings.ToLower(strings.TrimSpace(ft))
}

// DocumentLoader builds one document representation.
type DocumentLoader interface {
	CanHandle(source DocumentSource) bool
	Load(ctx context.Context, source DocumentSource) (Document, error)
	Name() string
}

type Pipeline struct {
	loaders []DocumentLoader
}

// NewPipeline creates a Pipeline that tries loaders in the given order.
func NewPipeline(loaders ...DocumentLoader) *Pipeline {
	return &Pipeline{loaders: loaders}
}

// LoadResult is the output of a successful load.
type LoadResult struct {
	Document   Document
	LoaderUsed string
}

func (p *Pipeline) Load(ctx context.Context, source DocumentSource) (Document, error) {
	result, err := p.LoadWithMeta(ctx, source)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

func (p *Pipeline) LoadWithMeta(ctx context.Context, source DocumentSource) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}
	loader, err := p.selectLoader(source)
	if err != nil {
		return LoadResult{}, err
	}

	doc, err := loader.Load(ctx, source)
	if err != nil {
		return LoadResult{}, fmt.Errorf("loader %q failed: %w", loader.Name(), err)
	}
	return LoadResult{Document: doc, LoaderUsed: loader.Name()}, nil
}

// selectLoader returns the first registered loader that can handle the source.
func (p *Pipeline) selectLoader(source DocumentSource) (DocumentLoader, error) {
	for _, loader := range p.loaders {
		if loader.CanHandle(source) {
			return loader, nil
		}
	}
	return nil, fmt.Errorf("unsupported document representation: no loader found for source %q (file type: %q)", source.ID, source.FileType())
}

// RegisteredLoaders returns the names of all registered loaders.
func (p *Pipeline) RegisteredLoaders() []string {
	names := make([]string, len(p.loaders))
	for i, loader := range p.loaders {
		names[i] = loader.Name()
	}
	return names
}
