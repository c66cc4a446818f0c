package tools

import (
	"context"
	"strings"
	"testing"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/render"
	"rustdocmcp/internal/workspace"
)

func TestHandleInspectCrateNoWorkspace(t *testing.T) {
	d, err := docstate.New(nil)
	if err != nil {
		t.Fatalf("docstate.New: %v", err)
	}

	_, err = HandleInspectCrate(context.Background(), d, InspectCrateRequest{DetailLevel: render.DetailMedium})
	if err == nil {
		t.Fatal("expected an error with no workspace configured")
	}
	if !strings.Contains(err.Error(), "no workspace configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleInspectCrateSummaryMode(t *testing.T) {
	d, err := docstate.New(nil)
	if err != nil {
		t.Fatalf("docstate.New: %v", err)
	}
	d.SetWorkspace(&workspace.Context{
		Root:      "/test/project",
		Members:   []string{"my-crate"},
		RootCrate: "my-crate",
		CrateInfo: map[string]workspace.CrateMetadata{
			"my-crate": {
				Name: "my-crate", Origin: workspace.OriginLocal, Version: "0.1.0",
				Description: "Test crate", IsRootCrate: true,
			},
			"serde": {
				Name: "serde", Origin: workspace.OriginExternal, Version: "1.0.0",
				Description: "Serialization framework", UsedBy: []string{"my-crate"},
			},
			"tokio": {
				Name: "tokio", Origin: workspace.OriginExternal, Version: "1.0.0",
				Description: "Async runtime", UsedBy: []string{"my-crate"},
			},
		},
	})

	out, err := HandleInspectCrate(context.Background(), d, InspectCrateRequest{DetailLevel: render.DetailHigh})
	if err != nil {
		t.Fatalf("HandleInspectCrate: %v", err)
	}

	for _, want := range []string{
		"Workspace Members (1)", "my-crate",
		"External Dependencies (2)", "serde", "tokio", "Serialization framework",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestHandleInspectCrateDetailModeNotFound(t *testing.T) {
	d, err := docstate.New(nil)
	if err != nil {
		t.Fatalf("docstate.New: %v", err)
	}
	d.SetWorkspace(&workspace.Context{
		Root:      "/test/project",
		Members:   []string{"my-crate"},
		RootCrate: "my-crate",
		CrateInfo: map[string]workspace.CrateMetadata{},
	})

	_, err = HandleInspectCrate(context.Background(), d, InspectCrateRequest{
		CrateName: "nonexistent", DetailLevel: render.DetailMedium,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown crate name")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleInspectCrateDetailModeShowsDocumentation(t *testing.T) {
	d := newDemoWorkspace(t)

	out, err := HandleInspectCrate(context.Background(), d, InspectCrateRequest{
		CrateName: "demo", DetailLevel: render.DetailHigh,
	})
	if err != nil {
		t.Fatalf("HandleInspectCrate: %v", err)
	}
	for _, want := range []string{"Documentation: Available", "Item Counts:", "Structs: 1", "Common Exports:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTruncateDescription(t *testing.T) {
	cases := []struct {
		desc, want string
		maxLen     int
	}{
		{"short", "short", 100},
		{"a very long description that exceeds the limit", "a very long...", 20},
		{"exact length test", "exact length test", 17},
	}
	for _, c := range cases {
		if got := truncateDescription(c.desc, c.maxLen); got != c.want {
			t.Errorf("truncateDescription(%q, %d) = %q, want %q", c.desc, c.maxLen, got, c.want)
		}
	}
}
