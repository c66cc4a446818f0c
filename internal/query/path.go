// Package query resolves dotted/"::"-separated item paths (like
// "serde_json::Value" or "HashMap") against one or more crates' doc
// indexes, with Jaro-Winkler-scored suggestions when resolution fails.
package query

import "strings"

// Path is a parsed "a::b::c"-style query, optionally still carrying a
// leading crate name component.
type Path struct {
	CrateName  string
	Components []string
}

// Parse splits a query string on "::", trimming whitespace and dropping
// empty segments. An empty or all-whitespace query parses to a single
// empty-string component, matching how a bare "" query is treated as "look
// at the root" rather than "no query at all".
func Parse(query string) Path {
	parts := strings.Split(query, "::")
	var components []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			components = append(components, trimmed)
		}
	}
	if len(components) == 0 {
		components = []string{""}
	}
	return Path{Components: components}
}

// ItemName returns the last path component: the name actually being looked up.
func (p Path) ItemName() string {
	if len(p.Components) == 0 {
		return ""
	}
	return p.Components[len(p.Components)-1]
}

// ModulePath returns every component but the last, "::"-joined, or ("",
// false) if there's only one component.
func (p Path) ModulePath() (string, bool) {
	if len(p.Components) <= 1 {
		return "", false
	}
	return strings.Join(p.Components[:len(p.Components)-1], "::"), true
}

// FullPath returns every component "::"-joined.
func (p Path) FullPath() string { return strings.Join(p.Components, "::") }

// QualifiedPath prefixes FullPath with the crate name, if one was resolved.
func (p Path) QualifiedPath() string {
	if p.CrateName == "" {
		return p.FullPath()
	}
	return p.CrateName + "::" + p.FullPath()
}

// IsMultiSegment reports whether this looks like an explicit path query
// (more than one component) rather than a bare name lookup.
func (p Path) IsMultiSegment() bool { return len(p.Components) > 1 }

func normalizeCrateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// NormalizeCrateName exports normalizeCrateName for callers outside this
// package that need dash/underscore-insensitive crate-name comparisons
// without going through a full path resolution.
func NormalizeCrateName(name string) string {
	return normalizeCrateName(name)
}

// ResolveCrate checks whether the path's first component names a known
// crate (workspace member or dependency); if so, it's peeled off into
// CrateName and the remaining components are returned. Matching is
// dash/underscore-insensitive since Cargo crate names freely mix the two.
func ResolveCrate(p Path, known map[string]struct{}) (Path, bool) {
	if len(p.Components) == 0 {
		return p, false
	}
	candidate := p.Components[0]
	normalized := normalizeCrateName(candidate)
	for k := range known {
		if normalizeCrateName(k) == normalized {
			out := p
			out.CrateName = candidate
			out.Components = append([]string(nil), p.Components[1:]...)
			if len(out.Components) == 0 {
				out.Components = []string{""}
			}
			return out, true
		}
	}
	return p, false
}
