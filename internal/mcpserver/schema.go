package mcpserver

import "encoding/json"

// detailLevelEnum lists render.DetailLevel's values as a flat JSON Schema
// enum array. Schema properties that reference it must NOT carry a
// per-value description - a naive client renders a oneOf-with-descriptions
// enum as one widget per value instead of a single dropdown.
var detailLevelEnum = []string{"low", "medium", "high"}

// itemKindEnum lists the item kinds inspect_item's optional filter accepts;
// the handler compares the filter to each candidate's rustdoc kind exactly.
var itemKindEnum = []string{
	"module", "struct", "enum", "function", "trait", "type_alias", "constant", "static",
}

func mustSchema(v map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func detailLevelProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        detailLevelEnum,
		"default":     "medium",
	}
}

// searchSchema is the inline input schema for the "search" tool.
func searchSchema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search terms to look for in item names and documentation",
			},
			"crate_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the crate to search within",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results to return",
				"default":     10,
			},
		},
		"required": []string{"query", "crate_name"},
	})
}

// inspectItemSchema is the inline input schema for the "inspect_item" tool.
func inspectItemSchema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Item name or path to inspect, e.g. 'Vec', 'std::vec::Vec', or 'HashMap'",
			},
			"kind": map[string]interface{}{
				"type":        "string",
				"description": "Optional filter by item kind (struct, enum, function, trait, module, etc.)",
				"enum":        itemKindEnum,
			},
			"detail_level": detailLevelProperty("How much detail to include in the response"),
		},
		"required": []string{"query"},
	})
}

// inspectCrateSchema is the inline input schema for the "inspect_crate" tool.
func inspectCrateSchema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"crate_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the crate to inspect. Omit to list all known crates",
			},
			"detail_level": detailLevelProperty("How much detail to include in the response"),
		},
	})
}

// setWorkspaceSchema is the inline input schema for the "set_workspace" tool.
func setWorkspaceSchema() json.RawMessage {
	return mustSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the Rust project directory (must contain Cargo.toml)",
			},
		},
		"required": []string{"path"},
	})
}
