// SPDX-License-Identifier: Apache-2.0

package loaders

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/gemaraproj/evidence-locator/internal/evidence"
)

// PDFLoader builds documents for previews backed by the original PDF file.
// The page count of the file bounds the page anchors of a structured
// document; when the record has no extracted text, the PDF's plain text is
// used instead.
type PDFLoader struct{}

// NewPDFLoader creates a new PDFLoader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Name() string {
	return "pdf"
}

// CanHandle returns true for pdf or untyped records that come with a file
// payload.
func (l *PDFLoader) CanHandle(source evidence.DocumentSource) bool {
	if len(source.File) == 0 {
		return false
	}
	switch source.FileType() {
	case "", "pdf":
		return true
	}
	return false
}

func (l *PDFLoader) Load(ctx context.Context, source evidence.DocumentSource) (evidence.Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(source.File), int64(len(source.File)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	text := recordText(source.Record)
	if text == "" {
		text, err = plainText(ctx, r)
		if err != nil {
			return nil, err
		}
	}

	if !hasTextMappings(source.Record) {
		return evidence.Unstructured{DocumentID: documentID(source), Text: text}, nil
	}

	blocks, err := parseTextMappings(source.Record)
	if err != nil {
		return nil, err
	}
	return evidence.Structured{
		DocumentID: documentID(source),
		Text:       text,
		Blocks:     blocks,
		PageCount:  r.NumPage(),
	}, nil
}

func plainText(ctx context.Context, r *pdf.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return string(out), nil
}
