// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"context"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
	"github.com/gemaraproj/evidence-locator/internal/fieldpath"
)

// HTMLLoader builds HTML documents from records with file_type "html" and a
// raw html field.
type HTMLLoader struct{}

// NewHTMLLoader creates a new HTMLLoader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

func (l *HTMLLoader) Name() string {
	return "html"
}

func (l *HTMLLoader) CanHandle(source evidence.DocumentSource) bool {
	if source.FileType() != "html" {
		return false
	}
	_, ok := fieldpath.String(source.Record, "html")
	return ok
}

func (l *HTMLLoader) Load(_ context.Context, source evidence.DocumentSource) (evidence.Document, error) {
	markup, _ := fieldpath.String(source.Record, "html")
	return evidence.HTML{DocumentID: documentID(source), Markup: markup}, nil
}

// JSONLoader builds JSON documents from records with file_type "json"; the
// raw text field is shown verbatim.
type JSONLoader struct{}

// NewJSONLoader creates a new JSONLoader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

func (l *JSONLoader) Name() string {
	return "json"
}

func (l *JSONLoader) CanHandle(source evidence.DocumentSource) bool {
	return source.FileType() == "json"
}

func (l *JSONLoader) Load(_ context.Context, source evidence.DocumentSource) (evidence.Document, error) {
	return evidence.JSON{DocumentID: documentID(source), Content: recordText(source.Record)}, nil
}
