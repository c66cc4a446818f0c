package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/item"
	"rustdocmcp/internal/query"
	"rustdocmcp/internal/render"
	"rustdocmcp/internal/rustdoc"
)

// maxTotalInspectResults bounds how many search hits inspect_item
// accumulates across every crate it searches, to keep memory bounded when a
// workspace has many dependencies and the query is generic.
const maxTotalInspectResults = 500

// InspectItemRequest looks up a single documentation item by name or path.
type InspectItemRequest struct {
	Query string
	// Kind, if set, restricts matches to one item kind.
	Kind *rustdoc.ItemKind
	// DetailLevel controls how much of the item gets rendered.
	DetailLevel render.DetailLevel
}

// inspectMatch is one candidate surviving the search-and-filter pass,
// carrying enough of its already-resolved item.Ref to render directly
// without a second lookup.
type inspectMatch struct {
	ref       item.Ref
	name      string
	path      string
	kindLabel string
	crateName string
	docs      string
	relevance int
}

// HandleInspectItem resolves an InspectItemRequest: an explicit
// "crate::path" query is tried as a direct path resolution first; anything
// else (or a path resolution miss) falls back to a TF-IDF search across
// every candidate crate, followed by exact-name disambiguation.
func HandleInspectItem(ctx context.Context, d *docstate.DocState, req InspectItemRequest) (string, error) {
	wsCtx, err := ensureWorkspace(d)
	if err != nil {
		return "", err
	}

	known := wsCtx.DependencyNames()
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	path := query.Parse(req.Query)
	qctx := newQueryContext(ctx, d, wsCtx)

	resolved, hasCrate := query.ResolveCrate(path, knownSet)
	isPathQuery := path.IsMultiSegment() || strings.Contains(req.Query, "::")

	if isPathQuery && hasCrate {
		fullPath := resolved.QualifiedPath()
		it, _, resolveErr := qctx.ResolvePath(fullPath)
		if resolveErr == nil {
			if req.Kind != nil && it.Kind() != *req.Kind {
				return "", fmt.Errorf("item '%s' found but is not a %s", resolved.FullPath(), req.Kind.Label())
			}
			return formatItemOutput(it, req.DetailLevel, resolved.CrateName), nil
		}
		// Path resolution failed - fall back to search within this crate,
		// which also catches re-exports that never made it into the module
		// hierarchy rustdoc recorded.
	}

	searchQuery := resolved.FullPath()
	cratesToSearch := []string{resolved.CrateName}
	if !hasCrate {
		cratesToSearch = known
	}

	var allResults []inspectMatch
	var searchFailures []string

	for _, crateName := range cratesToSearch {
		if len(allResults) >= maxTotalInspectResults {
			break
		}

		idx, resolvedName, suggestions, err := loadOrBuildIndex(wsCtx, qctx, d, crateName)
		if err != nil {
			msg := "Documentation not found or failed to load"
			if len(suggestions) > 0 {
				msg = fmt.Sprintf("Documentation not found (did you mean: %s?)", suggestions[0].Path)
			}
			searchFailures = append(searchFailures, fmt.Sprintf("%s: %s", crateName, msg))
			continue
		}

		remaining := maxTotalInspectResults - len(allResults)
		limit := remaining
		if limit > 50 {
			limit = 50
		}

		for _, m := range idx.Search(searchQuery, limit) {
			it, ok := qctx.GetItemFromIDPath(resolvedName, m.IDPath)
			if !ok {
				continue
			}
			if req.Kind != nil && it.Kind() != *req.Kind {
				continue
			}
			name, _ := it.Name()
			itemPath, _ := it.Path()
			docs, _ := it.Comment()
			allResults = append(allResults, inspectMatch{
				ref:       it,
				name:      name,
				path:      itemPath,
				kindLabel: it.Kind().Label(),
				crateName: resolvedName,
				docs:      docs,
				relevance: int(m.Score * 100),
			})
		}
	}

	sort.SliceStable(allResults, func(i, j int) bool {
		if allResults[i].relevance != allResults[j].relevance {
			return allResults[i].relevance > allResults[j].relevance
		}
		return allResults[i].name < allResults[j].name
	})
	allResults = dedupeByID(allResults)
	allResults = applyExactMatchHeuristic(allResults, req.Query)

	if len(allResults) == 0 {
		msg := fmt.Sprintf("No items found matching '%s'", searchQuery)
		if req.Kind != nil {
			msg += fmt.Sprintf(" with kind '%s'", *req.Kind)
		}
		if len(searchFailures) > 0 {
			msg += "\n\nFailed to search in the following crates:"
			for i, f := range searchFailures {
				if i >= 5 {
					msg += fmt.Sprintf("\n  ... and %d more", len(searchFailures)-5)
					break
				}
				msg += "\n  - " + f
			}
		}
		return "", fmt.Errorf("%s", msg)
	}

	if len(allResults) > 1 {
		return "", fmt.Errorf("%s", formatDisambiguationError(allResults, searchQuery))
	}

	result := allResults[0]
	return formatItemOutput(result.ref, req.DetailLevel, result.crateName), nil
}

// dedupeByID keeps only the first occurrence of each distinct item,
// matching a re-export turning up at more than one path.
func dedupeByID(results []inspectMatch) []inspectMatch {
	seen := make(map[rustdoc.Id]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		id := r.ref.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}

// applyExactMatchHeuristic narrows a simple (no "::") query down to an
// exact case-insensitive name match when there's exactly one, and treats a
// query that "looks like a specific identifier" (mixed case or digits) with
// zero exact matches as not-found, rather than surfacing unrelated partial
// matches.
func applyExactMatchHeuristic(results []inspectMatch, rawQuery string) []inspectMatch {
	if strings.Contains(rawQuery, "::") || len(results) <= 1 {
		return results
	}

	queryLower := strings.ToLower(rawQuery)
	var exact []inspectMatch
	for _, r := range results {
		if strings.ToLower(r.name) == queryLower {
			exact = append(exact, r)
		}
	}

	switch len(exact) {
	case 1:
		return exact
	case 0:
		looksSpecific := strings.ContainsAny(rawQuery, "0123456789") || rawQuery != strings.ToLower(rawQuery)
		if looksSpecific {
			return nil
		}
	}
	return results
}

func formatDisambiguationError(results []inspectMatch, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Multiple items found matching '%s'. Please be more specific:\n\n", query)

	for i, r := range results {
		if i >= 10 {
			fmt.Fprintf(&b, "\n... and %d more matches\n", len(results)-10)
			break
		}
		fullPath := r.crateName + "::" + r.path
		fmt.Fprintf(&b, "%d. %s [%s]", i+1, fullPath, r.kindLabel)
		if docs := strings.TrimSpace(r.docs); docs != "" {
			firstLine := docs
			if idx := strings.IndexByte(docs, '\n'); idx >= 0 {
				firstLine = docs[:idx]
			}
			if firstLine = strings.TrimSpace(firstLine); firstLine != "" {
				fmt.Fprintf(&b, " - %s", firstLine)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// formatItemOutput renders a resolved item at the requested detail level.
func formatItemOutput(it item.Ref, detail render.DetailLevel, crateName string) string {
	return render.RenderItem(it, render.Options{DetailLevel: detail}, crateName)
}
