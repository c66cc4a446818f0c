package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rustdocmcp/internal/item"
	"rustdocmcp/internal/rustdoc"
)

// fixtureJSON is a small hand-built rustdoc document exercising a module
// with a struct, an enum, and a function child, grounded on the same shape
// the tool-handler fixtures use elsewhere in this repo.
const fixtureJSON = `{
	"root": 0,
	"crate_version": "1.0.0",
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

func loadFixture(t *testing.T) *rustdoc.CrateIndex {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	idx, err := rustdoc.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return idx
}

func refByID(t *testing.T, idx *rustdoc.CrateIndex, id rustdoc.Id) item.Ref {
	t.Helper()
	it, ok := idx.Get(id)
	if !ok {
		t.Fatalf("no item %d", id)
	}
	return item.New(idx, 1, it)
}

func TestRenderStructLowDetail(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 1)
	s, _ := r.Inner().AsStruct()

	out := RenderStruct(r, s, DetailLow, "demo")
	if !strings.Contains(out, "struct Point") {
		t.Errorf("expected signature, got %q", out)
	}
	if strings.Contains(out, "A 2D point") {
		t.Error("low detail should not include docs")
	}
	if strings.Contains(out, "x: i32") {
		t.Error("low detail should not include fields")
	}
}

func TestRenderStructHighDetail(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 1)
	s, _ := r.Inner().AsStruct()

	out := RenderStruct(r, s, DetailHigh, "demo")
	if !strings.Contains(out, "A 2D point.") {
		t.Errorf("expected doc summary, got %q", out)
	}
	if !strings.Contains(out, "x: i32") || !strings.Contains(out, "y: i32") {
		t.Errorf("expected both fields rendered, got %q", out)
	}
}

func TestRenderEnumHighDetail(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 10)
	e, _ := r.Inner().AsEnum()

	out := RenderEnum(r, e, DetailHigh, "demo")
	if !strings.Contains(out, "Circle(f64)") {
		t.Errorf("expected tuple variant rendered, got %q", out)
	}
	if !strings.Contains(out, "Square,") {
		t.Errorf("expected plain variant rendered, got %q", out)
	}
}

func TestRenderFunction(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 20)

	out := RenderFunction(r, DetailMedium, "demo")
	if !strings.Contains(out, "fn area(shape: Shape) -> f64") {
		t.Errorf("expected full signature, got %q", out)
	}
	if !strings.Contains(out, "Computes the area") {
		t.Errorf("expected doc summary at medium detail, got %q", out)
	}
}

func TestRenderModuleGroupsByKindAndRespectsLimit(t *testing.T) {
	idx := loadFixture(t)
	root, ok := item.Root(idx, 1)
	if !ok {
		t.Fatal("no root")
	}

	out := RenderModule(root, DetailLow, "demo")
	if !strings.Contains(out, "Structs:") || !strings.Contains(out, "Point") {
		t.Errorf("expected Point listed under Structs, got %q", out)
	}
	if !strings.Contains(out, "Enums:") || !strings.Contains(out, "Shape") {
		t.Errorf("expected Shape listed under Enums, got %q", out)
	}
	if !strings.Contains(out, "Functions:") || !strings.Contains(out, "area") {
		t.Errorf("expected area listed under Functions, got %q", out)
	}
}

func TestRenderItemDispatchesByKind(t *testing.T) {
	idx := loadFixture(t)
	fn := refByID(t, idx, 20)
	out := RenderItem(fn, Options{DetailLevel: DetailLow}, "demo")
	if !strings.Contains(out, "fn area") {
		t.Errorf("expected function rendering from dispatcher, got %q", out)
	}
}

func TestExtractTypeDefinitionStruct(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 1)

	info, ok := ExtractTypeDefinition(r, "demo")
	if !ok {
		t.Fatal("expected struct to extract")
	}
	if info.Kind != TypeKindStruct || len(info.Fields) != 2 {
		t.Errorf("expected 2 public fields, got %+v", info)
	}
}

func TestExtractTypeDefinitionEnum(t *testing.T) {
	idx := loadFixture(t)
	r := refByID(t, idx, 10)

	info, ok := ExtractTypeDefinition(r, "demo")
	if !ok {
		t.Fatal("expected enum to extract")
	}
	if info.Kind != TypeKindEnum || len(info.Variants) != 2 {
		t.Errorf("expected 2 variants, got %+v", info)
	}
	if info.Variants[0].TupleFields == nil || info.Variants[0].TupleFields[0] != "f64" {
		t.Errorf("expected Circle's tuple field to be f64, got %+v", info.Variants[0])
	}
}
