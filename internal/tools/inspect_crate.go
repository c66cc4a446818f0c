package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/render"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/workspace"
)

// InspectCrateRequest looks up crate-level information: every known crate
// (summary mode, CrateName empty) or one crate's module layout and exports
// (detail mode).
type InspectCrateRequest struct {
	CrateName   string
	DetailLevel render.DetailLevel
}

// HandleInspectCrate dispatches an InspectCrateRequest to summary or detail
// mode depending on whether CrateName was given.
func HandleInspectCrate(ctx context.Context, d *docstate.DocState, req InspectCrateRequest) (string, error) {
	wsCtx, err := ensureWorkspace(d)
	if err != nil {
		return "", err
	}

	if req.CrateName == "" {
		return renderSummaryMode(wsCtx, req.DetailLevel), nil
	}
	return renderDetailMode(ctx, d, wsCtx, req.CrateName, req.DetailLevel)
}

func renderSummaryMode(wsCtx *workspace.Context, detail render.DetailLevel) string {
	var members, external, std []workspace.CrateMetadata
	for _, meta := range wsCtx.CrateInfo {
		switch meta.Origin {
		case workspace.OriginLocal:
			members = append(members, meta)
		case workspace.OriginExternal:
			external = append(external, meta)
		case workspace.OriginStandard:
			std = append(std, meta)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	sort.Slice(external, func(i, j int) bool {
		if len(external[i].UsedBy) != len(external[j].UsedBy) {
			return len(external[i].UsedBy) > len(external[j].UsedBy)
		}
		return external[i].Name < external[j].Name
	})

	var b strings.Builder

	if len(members) > 0 {
		fmt.Fprintf(&b, "Workspace Members (%d):\n", len(members))
		for _, meta := range members {
			version := orUnknown(meta.Version)
			fmt.Fprintf(&b, "  • %s v%s", meta.Name, version)
			if meta.IsRootCrate {
				b.WriteString(" (root)")
			}
			b.WriteByte('\n')
			if detail != render.DetailLow && meta.Description != "" {
				fmt.Fprintf(&b, "    %s\n", truncateDescription(meta.Description, 80))
			}
		}
		b.WriteByte('\n')
	}

	if len(external) > 0 {
		fmt.Fprintf(&b, "External Dependencies (%d):\n", len(external))

		limit := len(external)
		switch detail {
		case render.DetailLow:
			limit = 10
		case render.DetailMedium:
			limit = 20
		}
		if limit > len(external) {
			limit = len(external)
		}

		for _, meta := range external[:limit] {
			version := orUnknown(meta.Version)
			fmt.Fprintf(&b, "  • %s v%s", meta.Name, version)
			if detail != render.DetailLow && len(meta.UsedBy) > 0 {
				fmt.Fprintf(&b, " (used by %s)", strings.Join(meta.UsedBy, ", "))
			}
			b.WriteByte('\n')
			if detail == render.DetailHigh && meta.Description != "" {
				fmt.Fprintf(&b, "    %s\n", truncateDescription(meta.Description, 80))
			}
		}
		if len(external) > limit {
			fmt.Fprintf(&b, "  ... and %d more dependencies\n", len(external)-limit)
		}
		b.WriteByte('\n')
	}

	if len(std) > 0 && detail != render.DetailLow {
		fmt.Fprintf(&b, "Standard Library (%d):\n", len(std))
		sort.Slice(std, func(i, j int) bool { return std[i].Name < std[j].Name })
		shown := std
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, meta := range shown {
			fmt.Fprintf(&b, "  • %s\n", meta.Name)
		}
		if len(std) > 5 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(std)-5)
		}
	}

	return b.String()
}

func renderDetailMode(ctx context.Context, d *docstate.DocState, wsCtx *workspace.Context, crateName string, detail render.DetailLevel) (string, error) {
	meta, ok := wsCtx.GetCrate(crateName)
	if !ok {
		return "", fmt.Errorf("crate '%s' not found in workspace", crateName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Crate: %s v%s\n", crateName, orUnknown(meta.Version))
	fmt.Fprintf(&b, "Origin: %s\n", meta.Origin)
	if meta.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", meta.Description)
	}
	if len(meta.UsedBy) > 0 {
		fmt.Fprintf(&b, "\nUsed by: %s\n", strings.Join(meta.UsedBy, ", "))
	}

	idx, err := d.GetDocs(ctx, crateName)
	if err != nil {
		b.WriteString("\nDocumentation: Not available\n")
		fmt.Fprintf(&b, "  Error: %v\n", err)
		return b.String(), nil
	}

	b.WriteString("\nDocumentation: Available\n")

	counts := countItemsByKind(idx)
	b.WriteString("\nItem Counts:\n")
	for _, kc := range counts {
		fmt.Fprintf(&b, "  %s: %d\n", kc.kind, kc.count)
	}

	if detail != render.DetailLow {
		if root, ok := idx.RootItem(); ok {
			if mod, ok := root.Inner.AsModule(); ok {
				var moduleNames []string
				for _, id := range mod.Items {
					it, ok := idx.Get(id)
					if !ok || it.Inner.Kind != rustdoc.KindModule || it.Name == nil {
						continue
					}
					moduleNames = append(moduleNames, *it.Name)
				}
				sort.Strings(moduleNames)

				b.WriteString("\nTop-level Modules:\n")
				limit := len(moduleNames)
				if detail != render.DetailHigh && limit > 10 {
					limit = 10
				}
				for _, name := range moduleNames[:limit] {
					fmt.Fprintf(&b, "  • %s\n", name)
				}
				if len(moduleNames) > limit {
					fmt.Fprintf(&b, "  ... and %d more modules\n", len(moduleNames)-limit)
				}
			}
		}
	}

	if detail == render.DetailHigh {
		b.WriteString("\nCommon Exports:\n")
		writeTopItems(&b, "Types", idx, idx.PublicTypes())
		writeTopItems(&b, "Traits", idx, idx.PublicTraits())
		writeTopItems(&b, "Functions", idx, idx.PublicFunctions())
	}

	return b.String(), nil
}

func writeTopItems(b *strings.Builder, label string, idx *rustdoc.CrateIndex, items []rustdoc.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	limit := len(items)
	if limit > 5 {
		limit = 5
	}
	for _, it := range items[:limit] {
		if it.Name == nil {
			continue
		}
		fmt.Fprintf(b, "    • %s\n", idx.GetItemPath(it))
	}
	if len(items) > 5 {
		fmt.Fprintf(b, "    ... and %d more %s\n", len(items)-5, strings.ToLower(label))
	}
}

type kindCount struct {
	kind  string
	count int
}

// countItemsByKind tallies the searchable item kinds over every item in
// idx's index (nested items included, not just top-level ones), sorted by
// count descending - the same categories the summary and
// disambiguation listings recognize.
func countItemsByKind(idx *rustdoc.CrateIndex) []kindCount {
	labels := map[rustdoc.ItemKind]string{
		rustdoc.KindModule:    "Modules",
		rustdoc.KindStruct:    "Structs",
		rustdoc.KindEnum:      "Enums",
		rustdoc.KindFunction:  "Functions",
		rustdoc.KindTrait:     "Traits",
		rustdoc.KindTypeAlias: "Type Aliases",
		rustdoc.KindConstant:  "Constants",
		rustdoc.KindStatic:    "Statics",
		rustdoc.KindMacro:     "Macros",
	}

	counts := make(map[string]int)
	for _, it := range idx.Data().Index {
		if label, ok := labels[it.Inner.Kind]; ok {
			counts[label]++
		}
	}

	out := make([]kindCount, 0, len(counts))
	for kind, count := range counts {
		out = append(out, kindCount{kind, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].kind < out[j].kind
	})
	return out
}

// truncateDescription returns desc's first line, cut to at most maxLen
// bytes at the last word boundary, with a trailing "..." if it was cut.
func truncateDescription(desc string, maxLen int) string {
	firstLine := desc
	if idx := strings.IndexByte(desc, '\n'); idx >= 0 {
		firstLine = desc[:idx]
	}
	if len(firstLine) <= maxLen {
		return firstLine
	}
	if pos := strings.LastIndexByte(firstLine[:maxLen], ' '); pos >= 0 {
		return firstLine[:pos] + "..."
	}
	return firstLine[:maxLen] + "..."
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
