// Package workspace discovers a Cargo workspace on disk, parses its
// manifests directly (Cargo.toml/Cargo.lock via BurntSushi/toml, rather
// than shelling out to `cargo metadata`), and drives digest-gated rustdoc
// JSON generation for whichever crates a query touches.
package workspace

import (
	"sort"

	"rustdocmcp/internal/digest"
)

// Origin classifies where a crate in a Context came from.
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginExternal Origin = "external"
	OriginStandard Origin = "standard"
)

// CrateMetadata describes one crate known to a Context: a workspace
// member, one of its external dependencies, or a standard-library pseudo-crate.
type CrateMetadata struct {
	Name        string
	Origin      Origin
	Version     string
	Description string
	DevDep      bool
	IsRootCrate bool
	UsedBy      []string

	// Dir is the member crate's own directory (OriginLocal only), needed to
	// hash its Cargo.toml and src/ tree when computing its digest.
	Dir string
	// Checksum is the Cargo.lock checksum recorded for an external
	// dependency, used as part of its digest (OriginExternal only; zero if
	// the dependency isn't locked, e.g. a path or git dependency).
	Checksum digest.Hash
}

// Context is a resolved Cargo workspace: its root directory, member crate
// names, and every crate (member, dependency, or stdlib pseudo-crate) it
// knows about.
type Context struct {
	Root      string
	Members   []string
	CrateInfo map[string]CrateMetadata
	RootCrate string
}

// DefaultCrateName returns the workspace's "obvious" crate: its declared
// root package, or failing that, the first member.
func (c *Context) DefaultCrateName() string {
	if c.RootCrate != "" {
		return c.RootCrate
	}
	if len(c.Members) > 0 {
		return c.Members[0]
	}
	return ""
}

// IsSubcrateContext reports whether the root crate is itself also a member
// of a multi-member workspace - i.e. whether a query run from "the
// workspace" should really be scoped to that one subcrate by default.
func (c *Context) IsSubcrateContext() bool {
	if c.RootCrate == "" || len(c.Members) <= 1 {
		return false
	}
	for _, m := range c.Members {
		if m == c.RootCrate {
			return true
		}
	}
	return false
}

// GetVersion returns a known crate's version.
func (c *Context) GetVersion(name string) (string, bool) {
	meta, ok := c.CrateInfo[name]
	if !ok {
		return "", false
	}
	return meta.Version, true
}

// GetCrate returns a known crate's full metadata.
func (c *Context) GetCrate(name string) (CrateMetadata, bool) {
	meta, ok := c.CrateInfo[name]
	return meta, ok
}

// DependencyNames returns every known crate name (members, external deps,
// and stdlib pseudo-crates), for fuzzy-suggestion scoring.
func (c *Context) DependencyNames() []string {
	out := make([]string, 0, len(c.CrateInfo))
	for name := range c.CrateInfo {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IterCrates returns every crate this context knows about, optionally
// scoped to just the crates a given member actually uses (its own local
// origin plus dependencies it lists, plus anything standard-library). An
// empty memberFilter returns everything, except in a subcrate context (see
// IsSubcrateContext), where it is treated as a filter on RootCrate.
func (c *Context) IterCrates(memberFilter string) []CrateMetadata {
	if memberFilter == "" && c.IsSubcrateContext() {
		memberFilter = c.RootCrate
	}

	var out []CrateMetadata
	for _, meta := range c.CrateInfo {
		if memberFilter == "" {
			out = append(out, meta)
			continue
		}
		if meta.Origin == OriginStandard {
			out = append(out, meta)
			continue
		}
		if meta.Origin == OriginLocal && meta.Name == memberFilter {
			out = append(out, meta)
			continue
		}
		for _, u := range meta.UsedBy {
			if u == memberFilter {
				out = append(out, meta)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PrioritizedCrates returns member crate names first (these are what a
// user is most likely to query next), then dependencies, for background
// pre-generation ordering.
func (c *Context) PrioritizedCrates() []string {
	out := append([]string(nil), c.Members...)
	seen := make(map[string]struct{}, len(out))
	for _, m := range out {
		seen[m] = struct{}{}
	}
	var rest []string
	for name, meta := range c.CrateInfo {
		if meta.Origin != OriginExternal {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
