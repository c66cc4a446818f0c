package tools

import (
	"os"
	"path/filepath"
	"testing"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/workspace"
)

// demoFixtureJSON is a small rustdoc document (one module, a struct, an
// enum, and a function) shared by every handler test in this package,
// grounded on the same fixture shape internal/render's tests use.
const demoFixtureJSON = `{
	"root": 0,
	"crate_version": "0.1.0",
	"index": {
		"0": {"id": 0, "crate_id": 0, "name": "demo", "span": null, "visibility": "public",
			"docs": null,
			"inner": {"kind": "module", "inner": {"items": [1, 10, 20], "is_crate": true, "is_stripped": false}},
			"deprecation": null},
		"1": {"id": 1, "crate_id": 0, "name": "Point", "span": null, "visibility": "public",
			"docs": "A 2D point.\n\nUsed throughout the demo crate.",
			"inner": {"kind": "struct", "inner": {
				"kind": {"plain": {"fields": [2, 3], "has_stripped_fields": false}},
				"generics": {"params": [], "where_predicates": []},
				"impls": []
			}},
			"deprecation": null},
		"2": {"id": 2, "crate_id": 0, "name": "x", "span": null, "visibility": "public",
			"docs": null, "inner": {"kind": "struct_field", "inner": {"primitive": "i32"}}, "deprecation": null},
		"3": {"id": 3, "crate_id": 0, "name": "y", "span": null, "visibility": "public",
			"docs": null, "inner": {"kind": "struct_field", "inner": {"primitive": "i32"}}, "deprecation": null},
		"10": {"id": 10, "crate_id": 0, "name": "Shape", "span": null, "visibility": "public",
			"docs": "Either a circle or a square.",
			"inner": {"kind": "enum", "inner": {
				"generics": {"params": [], "where_predicates": []},
				"variants": [11, 12],
				"impls": []
			}},
			"deprecation": null},
		"11": {"id": 11, "crate_id": 0, "name": "Circle", "span": null, "visibility": "public",
			"docs": null, "inner": {"kind": "variant", "inner": {"kind": {"tuple": [4]}}}, "deprecation": null},
		"4": {"id": 4, "crate_id": 0, "name": null, "span": null, "visibility": "public",
			"docs": null, "inner": {"kind": "struct_field", "inner": {"primitive": "f64"}}, "deprecation": null},
		"12": {"id": 12, "crate_id": 0, "name": "Square", "span": null, "visibility": "public",
			"docs": null, "inner": {"kind": "variant", "inner": {"kind": "plain"}}, "deprecation": null},
		"20": {"id": 20, "crate_id": 0, "name": "area", "span": null, "visibility": "public",
			"docs": "Computes the area of a shape.",
			"inner": {"kind": "function", "inner": {
				"sig": {"inputs": [["shape", {"generic": "Shape"}]], "output": {"primitive": "f64"}, "is_c_variadic": false},
				"generics": {"params": [], "where_predicates": []},
				"header": {"is_const": false, "is_async": false, "is_unsafe": false}
			}},
			"deprecation": null}
	},
	"paths": {
		"0": {"crate_id": 0, "path": ["demo"], "kind": "module"},
		"1": {"crate_id": 0, "path": ["demo", "Point"], "kind": "struct"},
		"10": {"crate_id": 0, "path": ["demo", "Shape"], "kind": "enum"},
		"20": {"crate_id": 0, "path": ["demo", "area"], "kind": "function"}
	},
	"external_crates": {},
	"format_version": 30
}`

// newDemoWorkspace builds a DocState with a single local crate "demo",
// preseeded with demoFixtureJSON so handlers never need to shell out to
// cargo rustdoc.
func newDemoWorkspace(t *testing.T) *docstate.DocState {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "target", "doc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	docPath := filepath.Join(dir, "demo.json")
	if err := os.WriteFile(docPath, []byte(demoFixtureJSON), 0644); err != nil {
		t.Fatal(err)
	}

	wsCtx := &workspace.Context{
		Root:      root,
		Members:   []string{"demo"},
		RootCrate: "demo",
		CrateInfo: map[string]workspace.CrateMetadata{
			"demo": {Name: "demo", Origin: workspace.OriginLocal, Version: "0.1.0", Dir: root},
		},
	}

	d, err := docstate.New(nil)
	if err != nil {
		t.Fatalf("docstate.New: %v", err)
	}
	d.SetWorkspace(wsCtx)

	idx, err := rustdoc.Load(docPath)
	if err != nil {
		t.Fatalf("rustdoc.Load: %v", err)
	}
	d.PutCached("demo", idx)

	return d
}
