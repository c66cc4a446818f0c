package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/query"
	"rustdocmcp/internal/search"
)

// SearchRequest is a TF-IDF search over one crate's documentation.
type SearchRequest struct {
	Query     string
	CrateName string
	// Limit caps the number of results returned; zero means the default of 10.
	Limit int
}

// HandleSearch runs a SearchRequest against the active workspace.
func HandleSearch(ctx context.Context, d *docstate.DocState, req SearchRequest) (string, error) {
	wsCtx, err := ensureWorkspace(d)
	if err != nil {
		return "", err
	}

	qctx := newQueryContext(ctx, d, wsCtx)

	idx, resolvedName, suggestions, err := loadOrBuildIndex(wsCtx, qctx, d, req.CrateName)
	if err != nil {
		return formatCrateSuggestions(req.CrateName, suggestions), nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	matches := idx.Search(req.Query, limit)

	if len(matches) == 0 {
		return formatNoResults(req.Query, req.CrateName), nil
	}

	return formatSearchResults(matches, req.Query, resolvedName, qctx), nil
}

func formatCrateSuggestions(crateName string, suggestions []query.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crate '%s' not found. Did you mean one of these?\n\n", crateName)

	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	shown := 0
	for _, s := range suggestions {
		if shown >= 5 || s.Score <= 0.8 {
			break
		}
		if s.Item != nil {
			fmt.Fprintf(&b, "• `%s` (%s)\n", s.Path, s.Item.Kind().Label())
		} else {
			fmt.Fprintf(&b, "• `%s` (Crate)\n", s.Path)
		}
		shown++
	}
	return b.String()
}

func formatNoResults(q, crateName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No results found for '%s' in crate '%s'.\n\n", q, crateName)
	b.WriteString("Search tips:\n")
	b.WriteString("• Try a shorter or more general term\n")
	b.WriteString("• Search for types like 'HashMap', 'Vec', 'String'\n")
	b.WriteString("• Try function names like 'parse', 'read', 'write'\n")
	b.WriteString("• Search uses stemming: 'parsing' matches 'parse'\n")
	if strings.Contains(q, "::") {
		b.WriteString("• Note: Search by term only, not full paths\n")
	}
	return b.String()
}

// formatSearchResults renders matches into the ranked, relevance-annotated
// listing HandleSearch returns: one line of
// "N. path (kind) - relevance: P%" per match, followed by the item's first
// non-empty doc line if it has one.
func formatSearchResults(matches []search.Match, queryStr, crateName string, qctx *query.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s' in '%s':\n\n", queryStr, crateName)

	maxScore := float32(1.0)
	if len(matches) > 0 && matches[0].Score > 0 {
		maxScore = matches[0].Score
	}

	for i, m := range matches {
		relevance := int((m.Score / maxScore) * 100)

		it, ok := qctx.GetItemFromIDPath(crateName, m.IDPath)
		if !ok {
			fmt.Fprintf(&b, "%d. [Unable to resolve item] - relevance: %d%%\n\n", i+1, relevance)
			continue
		}

		path, _ := it.Path()
		if path == "" {
			path = crateName
		}
		fmt.Fprintf(&b, "%d. `%s` (%s) - relevance: %d%%\n", i+1, path, it.Kind().Label(), relevance)

		if docs, ok := it.Comment(); ok {
			for _, line := range strings.Split(docs, "\n") {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					fmt.Fprintf(&b, "   %s\n", trimmed)
					break
				}
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}
