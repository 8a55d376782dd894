// SPDX-License-Identifier: Apache-2.0

package display

import (
	"strings"

	"github.com/gemaraproj/evidence-locator/internal/query"
)

const documentIDFilterPrefix = "document_id::"

// TablesWithoutResults returns the tables whose source document has no
// corresponding result, in table order.
func TablesWithoutResults(tables []query.TableResult, results []query.Result) []query.TableResult {
	loaded := make(map[string]struct{}, len(results))
	for _, r := range results {
		loaded[r.DocumentID()] = struct{}{}
	}
	var out []query.TableResult
	for _, t := range tables {
		if _, ok := loaded[t.SourceDocumentID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// DocumentIDFilter builds the fetch filter "document_id::<id1>|<id2>|...".
// It returns "" for no ids.
func DocumentIDFilter(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return documentIDFilterPrefix + strings.Join(ids, "|")
}

// FetchFilter returns the filter that retrieves the source documents of
// tables not covered by the response's results. The second return value is
// false when nothing needs fetching.
func FetchFilter(resp query.Response) (string, bool) {
	missing := TablesWithoutResults(resp.TableResults, resp.Results)
	if len(missing) == 0 {
		return "", false
	}
	ids := make([]string, len(missing))
	for i, t := range missing {
		ids[i] = t.SourceDocumentID
	}
	return DocumentIDFilter(ids), true
}
