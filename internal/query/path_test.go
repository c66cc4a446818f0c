package query

import "testing"

func TestParseSplitsOnDoubleColon(t *testing.T) {
	p := Parse("serde_json::Value")
	want := []string{"serde_json", "Value"}
	if len(p.Components) != len(want) || p.Components[0] != want[0] || p.Components[1] != want[1] {
		t.Errorf("expected %v, got %v", want, p.Components)
	}
}

func TestParseTrimsWhitespaceAndDropsEmptySegments(t *testing.T) {
	p := Parse(" foo :: :: bar ")
	want := []string{"foo", "bar"}
	if len(p.Components) != len(want) || p.Components[0] != want[0] || p.Components[1] != want[1] {
		t.Errorf("expected %v, got %v", want, p.Components)
	}
}

func TestParseEmptyQueryYieldsSingleEmptyComponent(t *testing.T) {
	p := Parse("")
	if len(p.Components) != 1 || p.Components[0] != "" {
		t.Errorf("expected a single empty component, got %v", p.Components)
	}

	p = Parse("   ")
	if len(p.Components) != 1 || p.Components[0] != "" {
		t.Errorf("expected a single empty component for whitespace-only input, got %v", p.Components)
	}
}

func TestItemName(t *testing.T) {
	if got := Parse("std::collections::HashMap").ItemName(); got != "HashMap" {
		t.Errorf("expected HashMap, got %q", got)
	}
	if got := Parse("Vec").ItemName(); got != "Vec" {
		t.Errorf("expected Vec, got %q", got)
	}
}

func TestModulePath(t *testing.T) {
	mod, ok := Parse("std::collections::HashMap").ModulePath()
	if !ok || mod != "std::collections" {
		t.Errorf("expected std::collections, got %q (ok=%v)", mod, ok)
	}
	if _, ok := Parse("Vec").ModulePath(); ok {
		t.Error("expected a single-component path to have no module path")
	}
}

func TestFullPathAndQualifiedPath(t *testing.T) {
	p := Parse("collections::HashMap")
	if got := p.FullPath(); got != "collections::HashMap" {
		t.Errorf("expected collections::HashMap, got %q", got)
	}
	if got := p.QualifiedPath(); got != "collections::HashMap" {
		t.Errorf("expected no crate prefix when CrateName is unset, got %q", got)
	}
	p.CrateName = "std"
	if got := p.QualifiedPath(); got != "std::collections::HashMap" {
		t.Errorf("expected std::collections::HashMap, got %q", got)
	}
}

func TestIsMultiSegment(t *testing.T) {
	if Parse("Vec").IsMultiSegment() {
		t.Error("expected a bare name to not be multi-segment")
	}
	if !Parse("std::vec::Vec").IsMultiSegment() {
		t.Error("expected a qualified path to be multi-segment")
	}
}

func TestNormalizeCrateName(t *testing.T) {
	if got := NormalizeCrateName("my-crate"); got != "my_crate" {
		t.Errorf("expected dashes normalized to underscores, got %q", got)
	}
	if got := NormalizeCrateName("already_snake"); got != "already_snake" {
		t.Errorf("expected no change, got %q", got)
	}
}

func TestResolveCrate(t *testing.T) {
	known := map[string]struct{}{"serde-json": {}, "tokio": {}}

	p := Parse("serde_json::Value")
	resolved, ok := ResolveCrate(p, known)
	if !ok {
		t.Fatal("expected serde_json to match the dash-spelled known crate serde-json")
	}
	if resolved.CrateName != "serde_json" {
		t.Errorf("expected CrateName serde_json, got %q", resolved.CrateName)
	}
	if len(resolved.Components) != 1 || resolved.Components[0] != "Value" {
		t.Errorf("expected remaining component [Value], got %v", resolved.Components)
	}
}

func TestResolveCrateNoMatch(t *testing.T) {
	known := map[string]struct{}{"tokio": {}}
	p := Parse("HashMap")
	_, ok := ResolveCrate(p, known)
	if ok {
		t.Error("expected no match for an unknown crate name")
	}
}

func TestResolveCrateBareCrateNameLeavesEmptyComponent(t *testing.T) {
	known := map[string]struct{}{"tokio": {}}
	p := Parse("tokio")
	resolved, ok := ResolveCrate(p, known)
	if !ok {
		t.Fatal("expected tokio to resolve as a crate name")
	}
	if len(resolved.Components) != 1 || resolved.Components[0] != "" {
		t.Errorf("expected a single empty remaining component, got %v", resolved.Components)
	}
}
