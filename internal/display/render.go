// SPDX-License-Identifier: Apache-2.0

package display

import (
	"github.com/gemaraproj/evidence-locator/internal/markup"
	"github.com/gemaraproj/evidence-locator/internal/query"
)

// ResultView is the display text of one result row.
type ResultView struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	BodySource string `json:"body_source"`
	Link       string `json:"link,omitempty"`
	// TableID is set on rows rendered for a table result.
	TableID string `json:"table_id,omitempty"`
}

// Page is the display text of a whole response.
type Page struct {
	MatchingResults int          `json:"matching_results"`
	Results         []ResultView `json:"results"`
	// FetchFilter retrieves source documents of tables that have no
	// result in this response. Empty when nothing is missing.
	FetchFilter string `json:"fetch_filter,omitempty"`
}

// Render builds the display text for every result, or for every table
// result when s.TablesOnly is set.
func Render(resp query.Response, s Settings) Page {
	page := Page{MatchingResults: resp.MatchingResults}
	page.FetchFilter, _ = FetchFilter(resp)

	if s.TablesOnly {
		for _, t := range resp.TableResults {
			page.Results = append(page.Results, renderTable(resp, t, s))
		}
		return page
	}

	for _, r := range resp.Results {
		page.Results = append(page.Results, renderResult(r, s))
	}
	return page
}

func renderResult(r query.Result, s Settings) ResultView {
	body := SelectBody(r, s)
	link, _ := Link(r, s)
	return ResultView{
		DocumentID: r.DocumentID(),
		Title:      Title(r, s),
		Body:       body.Text,
		BodySource: body.Source,
		Link:       link,
	}
}

// renderTable shows a table row. The title comes from the source result
// when it is loaded, otherwise from the source document id.
func renderTable(resp query.Response, t query.TableResult, s Settings) ResultView {
	view := ResultView{
		DocumentID: t.SourceDocumentID,
		Title:      t.SourceDocumentID,
		Body:       t.TableHTML,
		BodySource: SourceField,
		TableID:    t.TableID,
	}
	if !s.RenderHTML {
		view.Body = markup.StripTags(t.TableHTML)
	}
	if r, ok := resp.FindResult(t.SourceDocumentID); ok {
		view.Title = Title(r, s)
		view.Link, _ = Link(r, s)
	}
	return view
}
