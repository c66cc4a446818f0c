// Package tools implements the MCP-facing request handlers: search,
// inspect_item, inspect_crate, and set_workspace. Each handler takes a
// plain request struct and the shared docstate.DocState, and returns a
// formatted string response (or an error for outright failures), mirroring
// the string-in/string-out handler shape used throughout, so the transport
// layer has one uniform call convention regardless of which tool ran.
package tools

import (
	"context"
	"fmt"
	"os"
	"time"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/query"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/search"
	"rustdocmcp/internal/workspace"
)

// newQueryContext builds a query.Context over every crate wsCtx knows
// about, loading each crate's docs (with caching/dedup) through d.
func newQueryContext(ctx context.Context, d *docstate.DocState, wsCtx *workspace.Context) *query.Context {
	return query.NewContext(
		func(crateName string) (*rustdoc.CrateIndex, error) { return d.GetDocs(ctx, crateName) },
		wsCtx.DependencyNames(),
	)
}

// loadOrBuildIndex resolves crateName against qctx, then returns its TF-IDF
// search index: a persisted index at least as new as the crate's rustdoc
// JSON is reused as-is, otherwise the index is rebuilt from the loaded
// crate and persisted (with the artifact's current mtime) for next time.
// d.Store() may be nil, in which case every call rebuilds - acceptable for
// tests, not for the long-running server.
//
// On failure to resolve crateName at all, returns crate-name suggestions
// for the caller to format into a response.
func loadOrBuildIndex(wsCtx *workspace.Context, qctx *query.Context, d *docstate.DocState, crateName string) (*search.InvertedIndex, string, []query.Suggestion, error) {
	idx, err := qctx.LoadCrate(crateName)
	if err != nil {
		return nil, "", qctx.Suggestions(crateName), err
	}
	resolvedName := idx.Name()

	docPath := workspace.DocJSONPath(wsCtx.Root, resolvedName)
	artifactMtime := time.Now()
	if info, statErr := os.Stat(docPath); statErr == nil {
		artifactMtime = info.ModTime()
	}

	if st := d.Store(); st != nil {
		if cached, savedMtime, ok, loadErr := st.LoadIndex(resolvedName); loadErr == nil && ok {
			if !savedMtime.Before(artifactMtime) {
				logging.Get(logging.CategoryCache).Debug("using cached search index for %s", resolvedName)
				return cached, resolvedName, nil, nil
			}
		}
	}

	built, err := buildIndex(qctx, resolvedName)
	if err != nil {
		return nil, "", nil, err
	}

	if st := d.Store(); st != nil {
		if err := st.SaveIndex(resolvedName, built, artifactMtime); err != nil {
			logging.Get(logging.CategoryCache).Warn("failed to persist search index for %s: %v", resolvedName, err)
		}
	}
	return built, resolvedName, nil, nil
}

// buildIndex walks crateName's parsed documentation from its root item and
// returns a finalized TF-IDF index.
func buildIndex(qctx *query.Context, crateName string) (*search.InvertedIndex, error) {
	root, _, err := qctx.ResolvePath(crateName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve crate root for %s: %w", crateName, err)
	}

	timer := logging.StartTimer(logging.CategoryGeneration, "build_search_index")
	defer timer.Stop()

	builder := search.NewTermBuilder()
	builder.Recurse(root, nil, true)
	return builder.Finalize(), nil
}

// ensureWorkspace is the shared "no workspace configured" guard every
// handler in this package starts with.
func ensureWorkspace(d *docstate.DocState) (*workspace.Context, error) {
	wsCtx := d.Workspace()
	if wsCtx == nil {
		return nil, fmt.Errorf(
			"no workspace configured.\n\n" +
				"To configure a workspace:\n" +
				"• Use set_workspace with a path to a Rust project",
		)
	}
	return wsCtx, nil
}
