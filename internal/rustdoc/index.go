package rustdoc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// CrateIndex wraps one crate's parsed rustdoc JSON with the lookups the
// query layer needs: get-by-id, path resolution, and impl-block discovery.
type CrateIndex struct {
	data  Crate
	paths map[Id]ItemSummary
}

// Load reads and parses a rustdoc JSON document from disk.
func Load(path string) (*CrateIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var c Crate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse rustdoc json %s: %w", path, err)
	}
	return &CrateIndex{data: c, paths: c.Paths}, nil
}

// Data returns the underlying parsed document.
func (c *CrateIndex) Data() *Crate { return &c.data }

// Root returns the crate's root module id.
func (c *CrateIndex) Root() Id { return c.data.Root }

// RootItem returns the root module Item.
func (c *CrateIndex) RootItem() (Item, bool) {
	return c.Get(c.data.Root)
}

// Name returns the crate's name, as recorded on its root module's path
// summary, or "<unnamed>" if rustdoc didn't record one.
func (c *CrateIndex) Name() string {
	if summary, ok := c.paths[c.data.Root]; ok && len(summary.Path) > 0 {
		return summary.Path[0]
	}
	return "<unnamed>"
}

// Version returns the crate's version string, if rustdoc recorded one.
func (c *CrateIndex) Version() string {
	if c.data.CrateVersion != nil {
		return *c.data.CrateVersion
	}
	return ""
}

// Get looks up an item by id.
func (c *CrateIndex) Get(id Id) (Item, bool) {
	it, ok := c.data.Index[id]
	return it, ok
}

// KindOf classifies an item, falling back to inspecting its Inner tag when
// no entry exists in the path summary table (true for most non-exported items).
func (c *CrateIndex) KindOf(id Id) ItemKind {
	if summary, ok := c.paths[id]; ok {
		return summary.Kind
	}
	if it, ok := c.Get(id); ok {
		return it.Inner.Kind
	}
	return ""
}

// Path returns the fully-qualified "::"-joined path of an item, if rustdoc
// recorded a path summary for it.
func (c *CrateIndex) Path(id Id) (string, bool) {
	summary, ok := c.paths[id]
	if !ok {
		return "", false
	}
	return strings.Join(summary.Path, "::"), true
}

// PathSegments returns the raw path segments of an item's summary entry.
func (c *CrateIndex) PathSegments(id Id) ([]string, bool) {
	summary, ok := c.paths[id]
	if !ok {
		return nil, false
	}
	return summary.Path, true
}

// pathCanonicalityScore ranks a candidate public path by how "canonical" it
// looks: shorter paths score higher, and paths that route through an
// internal-looking module segment are penalized so a re-export like
// `crate::Foo` outranks `crate::__private::inner::Foo`.
//
// These constants are this server's own choice (the constants a legacy
// version of the scoring used, -10/-50, were superseded deliberately - see
// the design notes), not a value read back out of rustdoc's schema.
func pathCanonicalityScore(segments []string) int {
	score := 100 - (len(segments)-1)*8
	markers := []string{"_core", "_private", "_internal", "internal", "private", "__"}
	for _, seg := range segments {
		for _, m := range markers {
			if strings.Contains(seg, m) {
				return score - 40
			}
		}
	}
	return score
}

// FindPublicPath finds every known path ending in typeName, sorted by
// canonicality (most canonical first), for use when rendering suggestions
// or disambiguating a bare type name.
func (c *CrateIndex) FindPublicPath(typeName string) []string {
	var candidates []string
	for _, summary := range c.paths {
		if len(summary.Path) == 0 {
			continue
		}
		if summary.Path[len(summary.Path)-1] != typeName {
			continue
		}
		candidates = append(candidates, strings.Join(summary.Path, "::"))
	}
	sort.Slice(candidates, func(i, j int) bool {
		si := strings.Split(candidates[i], "::")
		sj := strings.Split(candidates[j], "::")
		return pathCanonicalityScore(si) > pathCanonicalityScore(sj)
	})
	return candidates
}

// GetImpls returns the ids of impl blocks whose `for` type resolves to typeID.
func (c *CrateIndex) GetImpls(typeID Id) []Id {
	var out []Id
	for id, it := range c.data.Index {
		impl, ok := it.Inner.AsImpl()
		if !ok {
			continue
		}
		if resolvedID, ok := ExtractID(impl.For); ok && resolvedID == typeID {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TraitImplInfo names a trait and the method ids it contributes to an impl
// block implementing it for some type.
type TraitImplInfo struct {
	TraitName string
	Methods   []Id
}

// FindTraitImpls finds every trait impl whose `for` type's resolved-path
// name contains typeName, returning the trait name and provided methods
// for each. Name-containment (rather than exact id match) mirrors the
// original behavior of matching by rendered type name, which is what lets
// this work even for generic instantiations like `impl Display for Wrapper<T>`.
func (c *CrateIndex) FindTraitImpls(typeName string) []TraitImplInfo {
	var out []TraitImplInfo
	for _, it := range c.data.Index {
		impl, ok := it.Inner.AsImpl()
		if !ok || impl.Trait == nil {
			continue
		}
		p, _, ok := impl.For.ResolvedPath()
		if !ok || !strings.Contains(p.Name, typeName) {
			continue
		}
		traitName := impl.Trait.Name
		if path, ok := c.Path(impl.Trait.ID); ok {
			traitName = path
		}
		out = append(out, TraitImplInfo{TraitName: traitName, Methods: impl.Items})
	}
	return out
}

// GetDocs returns an item's raw doc comment, or "" if it has none.
func (c *CrateIndex) GetDocs(id Id) string {
	if it, ok := c.Get(id); ok {
		return it.DocsOr()
	}
	return ""
}

func (c *CrateIndex) filterPublic(kind ItemKind) []Item {
	var out []Item
	for _, it := range c.data.Index {
		if it.Inner.Kind == kind && it.Visibility.IsPublic() {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameOr("") < out[j].NameOr("") })
	return out
}

// PublicFunctions returns every public function item in the crate.
func (c *CrateIndex) PublicFunctions() []Item { return c.filterPublic(KindFunction) }

// PublicTypes returns every public struct/enum item in the crate.
func (c *CrateIndex) PublicTypes() []Item {
	structs := c.filterPublic(KindStruct)
	enums := c.filterPublic(KindEnum)
	out := append(structs, enums...)
	sort.Slice(out, func(i, j int) bool { return out[i].NameOr("") < out[j].NameOr("") })
	return out
}

// PublicTraits returns every public trait item in the crate.
func (c *CrateIndex) PublicTraits() []Item { return c.filterPublic(KindTrait) }

// GetItemPath returns the item's fully-qualified path from the summary
// table, falling back to its bare name (or "<unnamed>") when rustdoc never
// recorded a path for it (true of many impl-block children).
func (c *CrateIndex) GetItemPath(it Item) string {
	if path, ok := c.Path(it.ID); ok {
		return path
	}
	return it.NameOr("<unnamed>")
}

// FormatItem renders a short one-item text summary: its kind and name,
// followed by up to three lines of doc comment. No signature is written.
func (c *CrateIndex) FormatItem(it Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", it.Inner.Kind.Label(), it.NameOr("<unnamed>"))
	if docs := it.DocsOr(); docs != "" {
		lines := strings.Split(docs, "\n")
		if len(lines) > 3 {
			lines = lines[:3]
		}
		for _, l := range lines {
			fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(l))
		}
	}
	return b.String()
}
