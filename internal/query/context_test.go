package query

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"rustdocmcp/internal/rustdoc"
)

// contextFixtureJSON models a "demo" crate with a root module containing a
// nested module ("shapes") with a public struct ("Circle"), so multi-segment
// path resolution has something to walk and suggestions have near-miss
// siblings to score against.
const contextFixtureJSON = `{
	"root": 0,
	"crate_version": "1.0.0",
	"index": {
		"0": {"id": 0, "crate_id": 0, "name": "demo", "span": null, "visibility": "public",
			"docs": null,
			"inner": {"kind": "module", "inner": {"items": [1], "is_crate": true, "is_stripped": false}},
			"deprecation": null},
		"1": {"id": 1, "crate_id": 0, "name": "shapes", "span": null, "visibility": "public",
			"docs": null,
			"inner": {"kind": "module", "inner": {"items": [2, 3], "is_crate": false, "is_stripped": false}},
			"deprecation": null},
		"2": {"id": 2, "crate_id": 0, "name": "Circle", "span": null, "visibility": "public",
			"docs": "A circle shape.",
			"inner": {"kind": "struct", "inner": {
				"kind": {"plain": {"fields": [], "has_stripped_fields": false}},
				"generics": {"params": [], "where_predicates": []},
				"impls": []
			}},
			"deprecation": null},
		"3": {"id": 3, "crate_id": 0, "name": "Square", "span": null, "visibility": "public",
			"docs": "A square shape.",
			"inner": {"kind": "struct", "inner": {
				"kind": {"plain": {"fields": [], "has_stripped_fields": false}},
				"generics": {"params": [], "where_predicates": []},
				"impls": []
			}},
			"deprecation": null}
	},
	"paths": {
		"0": {"crate_id": 0, "path": ["demo"], "kind": "module"},
		"1": {"crate_id": 0, "path": ["demo", "shapes"], "kind": "module"},
		"2": {"crate_id": 0, "path": ["demo", "shapes", "Circle"], "kind": "struct"},
		"3": {"crate_id": 0, "path": ["demo", "shapes", "Square"], "kind": "struct"}
	},
	"external_crates": {},
	"format_version": 30
}`

func buildFixtureIndex(t *testing.T) *rustdoc.CrateIndex {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.json")
	if err := os.WriteFile(path, []byte(contextFixtureJSON), 0644); err != nil {
		t.Fatal(err)
	}
	idx, err := rustdoc.Load(path)
	if err != nil {
		t.Fatalf("rustdoc.Load: %v", err)
	}
	return idx
}

func demoLoader(t *testing.T) (Loader, *int) {
	idx := buildFixtureIndex(t)
	calls := 0
	return func(crateName string) (*rustdoc.CrateIndex, error) {
		calls++
		if normalizeCrateName(crateName) != "demo" {
			return nil, fmt.Errorf("unknown crate %q", crateName)
		}
		return idx, nil
	}, &calls
}

func TestLoadCrateCachesAcrossCalls(t *testing.T) {
	loader, calls := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	if _, err := c.LoadCrate("demo"); err != nil {
		t.Fatalf("LoadCrate: %v", err)
	}
	if _, err := c.LoadCrate("demo"); err != nil {
		t.Fatalf("LoadCrate: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected the loader to be called once, got %d", *calls)
	}
}

func TestLoadCrateNormalizesDashesForCaching(t *testing.T) {
	calls := 0
	loader := func(crateName string) (*rustdoc.CrateIndex, error) {
		calls++
		return buildFixtureIndex(t), nil
	}
	c := NewContext(loader, []string{"demo"})

	if _, err := c.LoadCrate("my-crate"); err != nil {
		t.Fatalf("LoadCrate: %v", err)
	}
	// "my-crate" and "my_crate" normalize to the same cache key, so the
	// second call should be served from cache without invoking the loader.
	if _, err := c.LoadCrate("my_crate"); err != nil {
		t.Fatalf("LoadCrate: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the loader to be called once for dash/underscore variants of the same name, got %d", calls)
	}
}

func TestResolvePathBareName(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	ref, suggestions, err := c.ResolvePath("demo")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if suggestions != nil {
		t.Errorf("expected no suggestions on success, got %v", suggestions)
	}
	if ref.Kind() != rustdoc.KindModule {
		t.Errorf("expected the crate root module, got %q", ref.Kind())
	}
}

func TestResolvePathMultiSegment(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	ref, _, err := c.ResolvePath("demo::shapes::Circle")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if name, _ := ref.Name(); name != "Circle" {
		t.Errorf("expected Circle, got %q", name)
	}
}

func TestResolvePathUnknownCrateReturnsSuggestions(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	_, suggestions, err := c.ResolvePath("dem::shapes::Circle")
	if err == nil {
		t.Fatal("expected an error for an unknown crate")
	}
	if len(suggestions) == 0 {
		t.Fatal("expected crate-name suggestions")
	}
	if suggestions[0].Path != "demo" {
		t.Errorf("expected demo to be the top suggestion for a near-miss spelling, got %q", suggestions[0].Path)
	}
}

func TestResolvePathMissingItemReturnsSiblingSuggestions(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	// A single mismatched segment directly under the crate root surfaces
	// its sibling as a suggestion (a typo buried deeper, behind an
	// already-matched ancestor segment, does not propagate the same way -
	// the ancestor itself gets filtered out of its own suggestion list).
	_, suggestions, err := c.ResolvePath("demo::shaeps")
	if err == nil {
		t.Fatal("expected an error for a misspelled module name")
	}
	if len(suggestions) == 0 {
		t.Fatal("expected sibling suggestions")
	}
	if suggestions[0].Path != "shapes" {
		t.Errorf("expected shapes to be the closest suggestion, got %q", suggestions[0].Path)
	}
}

func TestSuggestionsScoresKnownCrateNames(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo", "tokio"})

	out := c.Suggestions("dem")
	if len(out) != 2 {
		t.Fatalf("expected 2 scored suggestions, got %d", len(out))
	}
	if out[0].Path != "demo" {
		t.Errorf("expected demo to score highest against \"dem\", got %q", out[0].Path)
	}
}

func TestGetItem(t *testing.T) {
	idx := buildFixtureIndex(t)
	c := NewContext(func(string) (*rustdoc.CrateIndex, error) { return idx, nil }, nil)

	ref, ok := c.GetItem(idx, 1, 2)
	if !ok {
		t.Fatal("expected item 2 to resolve")
	}
	if name, _ := ref.Name(); name != "Circle" {
		t.Errorf("expected Circle, got %q", name)
	}

	if _, ok := c.GetItem(idx, 1, 9999); ok {
		t.Error("expected lookup of an unknown id to fail")
	}
}

func TestGetItemFromIDPath(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	ref, ok := c.GetItemFromIDPath("demo", []uint32{0, 1, 2})
	if !ok {
		t.Fatal("expected the id path to resolve")
	}
	if name, _ := ref.Name(); name != "Circle" {
		t.Errorf("expected Circle, got %q", name)
	}
}

func TestGetItemFromIDPathUnknownCrate(t *testing.T) {
	loader, _ := demoLoader(t)
	c := NewContext(loader, []string{"demo"})

	if _, ok := c.GetItemFromIDPath("nope", []uint32{0}); ok {
		t.Error("expected failure for an unloadable crate")
	}
}
