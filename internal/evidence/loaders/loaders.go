// SPDX-License-Identifier: Apache-2.0

// Package loaders builds evidence.Document values from query result records.
package loaders

import "github.com/gemaraproj/evidence-locator/internal/evidence"

// NewDefaultPipeline returns a Pipeline with every loader registered. Order
// matters: loaders for specific representations come before the catch-all
// simple loader.
func NewDefaultPipeline() *evidence.Pipeline {
	return evidence.NewPipeline(
		NewPDFLoader(),
		NewHTMLLoader(),
		NewJSONLoader(),
		NewStructuredLoader(),
		NewSimpleLoader(),
	)
}
