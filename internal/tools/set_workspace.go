package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/workspace"
)

// SetWorkspaceRequest points the server at a Rust project directory.
type SetWorkspaceRequest struct {
	Path string
}

// HandleSetWorkspace resolves req.Path to a workspace root, rebuilds its
// crate metadata, and installs it as d's active workspace, clearing any
// cached docs from whatever workspace was previously configured.
func HandleSetWorkspace(ctx context.Context, d *docstate.DocState, req SetWorkspaceRequest) (string, error) {
	if strings.TrimSpace(req.Path) == "" {
		return "", fmt.Errorf("path cannot be empty. Please provide a path to your Rust project directory")
	}

	expanded := workspace.ExpandTilde(req.Path)
	canonical, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", req.Path, err)
	}
	canonical, err = filepath.EvalSymlinks(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w. Please check the path exists and is accessible", req.Path, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to access path '%s': %w", canonical, err)
	}

	resolvedDir := canonical
	if !info.IsDir() {
		filename := filepath.Base(canonical)
		switch {
		case filename == "Cargo.toml" || filename == "Cargo.lock":
			resolvedDir = filepath.Dir(canonical)
		case strings.HasSuffix(filename, ".rs"):
			return "", fmt.Errorf("source files cannot be used as workspace paths. " +
				"Please provide the project directory (containing Cargo.toml)")
		default:
			return "", fmt.Errorf("file `%s` is not a Rust project file. "+
				"Please provide a directory path or a Cargo.toml/Cargo.lock file", filename)
		}
	}

	if _, err := os.Stat(filepath.Join(resolvedDir, "Cargo.toml")); err != nil {
		return "", fmt.Errorf(
			"no valid Rust workspace found at: `%s`. Please ensure the directory contains a Cargo.toml file",
			resolvedDir,
		)
	}

	newCtx, err := workspace.BuildContext(ctx, resolvedDir)
	if err != nil {
		return "", fmt.Errorf("failed to load workspace metadata: %w", err)
	}

	oldCtx := d.Workspace()
	changed := oldCtx == nil || oldCtx.Root != newCtx.Root

	if changed {
		d.ClearCache()
	}
	d.SetWorkspace(newCtx)

	var oldRoot string
	if oldCtx != nil {
		oldRoot = oldCtx.Root
	}
	return formatSetWorkspaceResponse(newCtx, oldRoot, changed), nil
}

// formatSetWorkspaceResponse renders a workspace-configuration confirmation
// listing the new workspace's members and first ten dependencies.
func formatSetWorkspaceResponse(ctx *workspace.Context, oldRoot string, changed bool) string {
	var b strings.Builder

	switch {
	case !changed:
		fmt.Fprintf(&b, "Workspace already set to: `%s`\n\n", ctx.Root)
	case oldRoot != "":
		fmt.Fprintf(&b, "Workspace changed:\n  From: `%s`\n  To:   `%s`\n\n", oldRoot, ctx.Root)
	default:
		fmt.Fprintf(&b, "Workspace set to: `%s`\n\n", ctx.Root)
	}

	if len(ctx.Members) > 0 {
		fmt.Fprintf(&b, "Workspace members (%d):\n", len(ctx.Members))
		for _, m := range ctx.Members {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
		b.WriteByte('\n')
	}

	var deps []workspace.CrateMetadata
	for _, meta := range ctx.CrateInfo {
		if meta.Origin == workspace.OriginExternal {
			deps = append(deps, meta)
		}
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })

	if len(deps) > 0 {
		fmt.Fprintf(&b, "Dependencies (%d):\n", len(deps))
		limit := len(deps)
		if limit > 10 {
			limit = 10
		}
		for _, meta := range deps[:limit] {
			fmt.Fprintf(&b, "  - %s v%s\n", meta.Name, orUnknown(meta.Version))
		}
		if len(deps) > 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(deps)-10)
		}
	}

	return b.String()
}
