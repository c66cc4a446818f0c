package tools

import (
	"context"
	"strings"
	"testing"
)

func TestHandleSearchNoWorkspace(t *testing.T) {
	d := newDemoWorkspace(t)
	d.SetWorkspace(nil)

	_, err := HandleSearch(context.Background(), d, SearchRequest{Query: "point", CrateName: "demo"})
	if err == nil {
		t.Fatal("expected an error with no workspace configured")
	}
	if !strings.Contains(err.Error(), "no workspace configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleSearchReturnsResults(t *testing.T) {
	d := newDemoWorkspace(t)

	out, err := HandleSearch(context.Background(), d, SearchRequest{Query: "point", CrateName: "demo"})
	if err != nil {
		t.Fatalf("HandleSearch: %v", err)
	}
	if !strings.Contains(out, "Point") {
		t.Errorf("expected Point in results, got:\n%s", out)
	}
	if !strings.Contains(out, "relevance:") {
		t.Errorf("expected a relevance annotation, got:\n%s", out)
	}
}

func TestHandleSearchNoResults(t *testing.T) {
	d := newDemoWorkspace(t)

	out, err := HandleSearch(context.Background(), d, SearchRequest{Query: "zzzznonexistentzzz", CrateName: "demo"})
	if err != nil {
		t.Fatalf("HandleSearch: %v", err)
	}
	if !strings.Contains(out, "No results found") {
		t.Errorf("expected a no-results message, got:\n%s", out)
	}
}

func TestHandleSearchCrateNotFoundSuggestsKnownCrate(t *testing.T) {
	d := newDemoWorkspace(t)

	out, err := HandleSearch(context.Background(), d, SearchRequest{Query: "point", CrateName: "dem0"})
	if err != nil {
		t.Fatalf("HandleSearch: %v", err)
	}
	if !strings.Contains(out, "demo") {
		t.Errorf("expected a suggestion naming 'demo', got:\n%s", out)
	}
}
