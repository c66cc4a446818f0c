package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/workspace"
)

const fixtureJSON = `{
	"root": 0,
	"crate_version": "0.1.0",
	"index": {
		"0": {"id": 0, "crate_id": 0, "name": "demo", "span": null, "visibility": "public",
			"docs": null,
			"inner": {"kind": "module", "inner": {"items": [1], "is_crate": true, "is_stripped": false}},
			"deprecation": null},
		"1": {"id": 1, "crate_id": 0, "name": "Widget", "span": null, "visibility": "public",
			"docs": "A small widget.",
			"inner": {"kind": "struct", "inner": {
				"kind": {"plain": {"fields": [], "has_stripped_fields": false}},
				"generics": {"params": [], "where_predicates": []},
				"impls": []
			}},
			"deprecation": null}
	},
	"paths": {
		"0": {"crate_id": 0, "path": ["demo"], "kind": "module"},
		"1": {"crate_id": 0, "path": ["demo", "Widget"], "kind": "struct"}
	},
	"external_crates": {},
	"format_version": 30
}`

func newDemoState(t *testing.T) *docstate.DocState {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "target", "doc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	docPath := filepath.Join(dir, "demo.json")
	if err := os.WriteFile(docPath, []byte(fixtureJSON), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := docstate.New(nil)
	if err != nil {
		t.Fatalf("docstate.New: %v", err)
	}
	d.SetWorkspace(&workspace.Context{
		Root:      root,
		Members:   []string{"demo"},
		RootCrate: "demo",
		CrateInfo: map[string]workspace.CrateMetadata{
			"demo": {Name: "demo", Origin: workspace.OriginLocal, Version: "0.1.0", Dir: root},
		},
	})

	idx, err := rustdoc.Load(docPath)
	if err != nil {
		t.Fatalf("rustdoc.Load: %v", err)
	}
	d.PutCached("demo", idx)

	return d
}

// sendLine runs a single JSON-RPC request through the server and returns
// its decoded response line, or nil if it was a notification (no response
// written).
func sendLine(t *testing.T, s *Server, req map[string]interface{}) map[string]interface{} {
	t.Helper()
	in, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := s.Serve(context.Background(), bytes.NewReader(append(in, '\n')), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if out.Len() == 0 {
		return nil
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (raw: %s)", err, out.String())
	}
	return resp
}

func TestServeInitialize(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 1, "method": "initialize",
	})
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a result object, got: %v", resp)
	}
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("expected protocolVersion %q, got %v", protocolVersion, result["protocolVersion"])
	}
}

func TestServeNotificationGetsNoResponse(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "method": "notifications/initialized",
	})
	if resp != nil {
		t.Errorf("expected no response for a notification, got: %v", resp)
	}
}

func TestServeToolsList(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 2, "method": "tools/list",
	})
	result := resp["result"].(map[string]interface{})
	toolList := result["tools"].([]interface{})
	if len(toolList) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(toolList))
	}

	names := make(map[string]bool)
	for _, raw := range toolList {
		tool := raw.(map[string]interface{})
		names[tool["name"].(string)] = true

		schema := tool["inputSchema"].(map[string]interface{})
		if schema["type"] != "object" {
			t.Errorf("tool %v: expected an object schema", tool["name"])
		}
	}
	for _, want := range []string{"search", "inspect_item", "inspect_crate", "set_workspace"} {
		if !names[want] {
			t.Errorf("expected tool %q to be listed, got %v", want, names)
		}
	}
}

func TestServeToolsListInlinesDetailLevelEnum(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 3, "method": "tools/list",
	})
	result := resp["result"].(map[string]interface{})
	for _, raw := range result["tools"].([]interface{}) {
		tool := raw.(map[string]interface{})
		if tool["name"] != "inspect_crate" {
			continue
		}
		schema := tool["inputSchema"].(map[string]interface{})
		props := schema["properties"].(map[string]interface{})
		detail := props["detail_level"].(map[string]interface{})
		enumVals, ok := detail["enum"].([]interface{})
		if !ok || len(enumVals) != 3 {
			t.Fatalf("expected detail_level to carry a flat 3-value enum, got: %v", detail)
		}
	}
}

func TestServeToolsCallSearch(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 4, "method": "tools/call",
		"params": map[string]interface{}{
			"name":      "search",
			"arguments": map[string]interface{}{"query": "Widget", "crate_name": "demo"},
		},
	})
	result := resp["result"].(map[string]interface{})
	content := result["content"].([]interface{})[0].(map[string]interface{})
	if !strings.Contains(content["text"].(string), "Widget") {
		t.Errorf("expected Widget in search result text, got: %v", content["text"])
	}
	if isErr, _ := result["isError"].(bool); isErr {
		t.Errorf("expected isError to be unset, got: %v", result)
	}
}

func TestServeToolsCallUnknownTool(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 5, "method": "tools/call",
		"params": map[string]interface{}{
			"name":      "no_such_tool",
			"arguments": map[string]interface{}{},
		},
	})
	result := resp["result"].(map[string]interface{})
	if isErr, _ := result["isError"].(bool); !isErr {
		t.Errorf("expected isError for an unknown tool, got: %v", result)
	}
}

func TestServeUnknownMethod(t *testing.T) {
	s := New(newDemoState(t))
	resp := sendLine(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 6, "method": "resources/list",
	})
	errObj, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an error response, got: %v", resp)
	}
	if int(errObj["code"].(float64)) != codeMethodNotFound {
		t.Errorf("expected method-not-found code, got: %v", errObj["code"])
	}
}
