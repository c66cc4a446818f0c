// Package item provides a cursor over a single crate's parsed documentation:
// Ref binds a bare rustdoc.Item to the CrateIndex it came from so
// callers can walk to its children, methods, and implemented traits without
// threading the index through every call site.
//
// The original design needed a self-referential arena (bump allocator plus
// an unsafe raw-pointer wrapper) to hand back borrowed references with a
// caller-chosen lifetime. Go has no equivalent need: Ref is a plain
// value holding a pointer to the index, and the garbage collector keeps the
// index alive for as long as any Ref or DocID still points into it.
package item

import (
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/search"

	"github.com/cespare/xxhash/v2"
)

// CrateHash derives the stable DocID.CrateID used to key index entries for
// a crate, from its name. Using a hash rather than an arbitrary counter
// means two Refs built independently for the same crate name always
// agree on its id, without needing a shared registry.
func CrateHash(crateName string) uint64 {
	return xxhash.Sum64String(crateName)
}

// Ref is a cursor over one item within one crate's documentation.
//
// overrideName mirrors the original's ItemRef::override_name: a re-export
// (`pub use inner::Foo as Bar`) resolves through to Foo's item but must
// still display as Bar, so the alias rides alongside the resolved item
// rather than overwriting it.
type Ref struct {
	idx          *rustdoc.CrateIndex
	crateID      uint64
	item         rustdoc.Item
	overrideName string
	hasOverride  bool
}

// New builds a Ref for an item already fetched from idx.
func New(idx *rustdoc.CrateIndex, crateID uint64, it rustdoc.Item) Ref {
	return Ref{idx: idx, crateID: crateID, item: it}
}

// Root builds a Ref for idx's root module.
func Root(idx *rustdoc.CrateIndex, crateID uint64) (Ref, bool) {
	it, ok := idx.RootItem()
	if !ok {
		return Ref{}, false
	}
	return New(idx, crateID, it), true
}

// CrateIndex returns the index this item was resolved from.
func (r Ref) CrateIndex() *rustdoc.CrateIndex { return r.idx }

// CrateID returns the hashed crate identity used in this item's DocID.
func (r Ref) CrateID() uint64 { return r.crateID }

// Item returns the underlying raw item.
func (r Ref) Item() rustdoc.Item { return r.item }

// ID returns the item's id within its crate.
func (r Ref) ID() rustdoc.Id { return r.item.ID }

// Inner returns the item's tagged-union payload.
func (r Ref) Inner() rustdoc.ItemEnum { return r.item.Inner }

// Kind classifies the item.
func (r Ref) Kind() rustdoc.ItemKind { return r.item.Inner.Kind }

// Name returns the item's name, matching search.Node's (string, bool) shape:
// ok is false for unnamed items (most impl blocks).
func (r Ref) Name() (string, bool) {
	if r.hasOverride {
		if r.overrideName == "" {
			return "", false
		}
		return r.overrideName, true
	}
	if r.item.Name == nil || *r.item.Name == "" {
		return "", false
	}
	return *r.item.Name, true
}

// Comment returns the item's doc comment, or ("", false) if it has none.
// Named to match the original's `item.comment()` accessor used throughout
// the renderers; DocComment is the search.Node-interface-satisfying alias.
func (r Ref) Comment() (string, bool) {
	if r.item.Docs == nil || *r.item.Docs == "" {
		return "", false
	}
	return *r.item.Docs, true
}

// DocComment satisfies search.Node.
func (r Ref) DocComment() (string, bool) { return r.Comment() }

// IsPublic reports whether the item is externally visible.
func (r Ref) IsPublic() bool { return r.item.Visibility.IsPublic() }

// Path returns the item's fully-qualified "::"-joined path, if rustdoc
// recorded a path summary entry for it.
func (r Ref) Path() (string, bool) { return r.idx.Path(r.item.ID) }

// Get resolves another id within the same crate to a Ref.
func (r Ref) Get(id rustdoc.Id) (Ref, bool) {
	it, ok := r.idx.Get(id)
	if !ok {
		return Ref{}, false
	}
	return New(r.idx, r.crateID, it), true
}

// DocID satisfies search.Node: the (crateID, itemID) pair a search index
// tracks this item under.
func (r Ref) DocID() search.DocID {
	return search.DocID{CrateID: r.crateID, ItemID: uint32(r.item.ID)}
}

func (r Ref) wrap(it rustdoc.Item) Ref { return New(r.idx, r.crateID, it) }

// withOverrideName returns r tagged with an alias that Name() prefers over
// the underlying item's own name. An empty name still counts as an override
// (it marks the resolved chain as unnamed), matching Option<&str> semantics.
func (r Ref) withOverrideName(name string) Ref {
	r.overrideName = name
	r.hasOverride = true
	return r
}

// Methods returns the functions contributed by every impl block (inherent
// or trait) attached to this item's type. Flattened eagerly into a slice
// rather than the original's incremental MethodIterator-over-ImplIterator
// chain: Go has no borrow-checker pressure to stream this lazily, and the
// method sets involved are small enough that building the whole slice up
// front is simpler to read and to test.
func (r Ref) Methods() []Ref {
	var out []Ref
	for _, implID := range r.idx.GetImpls(r.item.ID) {
		implItem, ok := r.idx.Get(implID)
		if !ok {
			continue
		}
		impl, ok := implItem.Inner.AsImpl()
		if !ok {
			continue
		}
		for _, methodID := range impl.Items {
			if mit, ok := r.idx.Get(methodID); ok && mit.Inner.Kind == rustdoc.KindFunction {
				out = append(out, r.wrap(mit))
			}
		}
	}
	return out
}

// Traits returns the traits implemented for this item's type, each paired
// with the method ids that implementation provides.
func (r Ref) Traits() []rustdoc.TraitImplInfo {
	name, ok := r.Name()
	if !ok {
		return nil
	}
	return r.idx.FindTraitImpls(name)
}

// resolveUseChain follows a (possibly re-exported-through-another-use)
// non-glob Use item to the concrete item it ultimately names, tagging the
// result with u's alias.
func (r Ref) resolveUseChain(u rustdoc.Use) []Ref {
	return r.resolveUseChainNamed(u, u.Name)
}

// resolveUseChainNamed carries overrideName through nested re-export chains
// unchanged: the outermost use's alias is what the caller asked for, and an
// inner use's own name along the way never replaces it (mirrors
// UseIterator::next() re-deriving name() from a ref that already carries the
// previously applied override on every iteration).
func (r Ref) resolveUseChainNamed(u rustdoc.Use, overrideName string) []Ref {
	if u.ID == nil {
		return nil
	}
	target, ok := r.idx.Get(*u.ID)
	if !ok {
		return nil
	}
	if nested, ok := target.Inner.AsUse(); ok {
		if nested.IsGlob {
			return r.resolveGlobUse(nested)
		}
		return r.resolveUseChainNamed(nested, overrideName)
	}
	return []Ref{r.wrap(target).withOverrideName(overrideName)}
}

// resolveGlobUse expands a `use foo::*` item into the items it brings into
// scope: a module's children, or an enum's variants.
func (r Ref) resolveGlobUse(u rustdoc.Use) []Ref {
	if u.ID == nil {
		return nil
	}
	target, ok := r.idx.Get(*u.ID)
	if !ok {
		return nil
	}
	switch target.Inner.Kind {
	case rustdoc.KindModule:
		mod, _ := target.Inner.AsModule()
		return r.wrap(target).moduleChildren(mod, false)
	case rustdoc.KindEnum:
		en, _ := target.Inner.AsEnum()
		var out []Ref
		for _, id := range en.Variants {
			if it, ok := r.idx.Get(id); ok {
				out = append(out, r.wrap(it))
			}
		}
		return out
	}
	return nil
}

// moduleChildren resolves a module's declared item list, expanding glob
// `use` items in place and either resolving or preserving plain `use` items
// depending on includeUse.
func (r Ref) moduleChildren(mod rustdoc.Module, includeUse bool) []Ref {
	var out []Ref
	for _, id := range mod.Items {
		it, ok := r.idx.Get(id)
		if !ok {
			continue
		}
		u, isUse := it.Inner.AsUse()
		switch {
		case isUse && includeUse:
			out = append(out, r.wrap(it))
		case isUse && u.IsGlob:
			out = append(out, r.resolveGlobUse(u)...)
		case isUse:
			out = append(out, r.resolveUseChain(u)...)
		default:
			out = append(out, r.wrap(it))
		}
	}
	return out
}

// ChildRefs returns the item's children: a module's contents, an enum's
// variants plus its methods, or a struct/union/trait's methods. includeUse
// controls whether plain (non-glob) `use` re-exports are returned as the
// Use item itself or resolved through to their target.
func (r Ref) ChildRefs(includeUse bool) []Ref {
	switch r.Kind() {
	case rustdoc.KindModule:
		mod, _ := r.item.Inner.AsModule()
		return r.moduleChildren(mod, includeUse)
	case rustdoc.KindEnum:
		en, _ := r.item.Inner.AsEnum()
		var out []Ref
		for _, id := range en.Variants {
			if it, ok := r.idx.Get(id); ok {
				out = append(out, r.wrap(it))
			}
		}
		return append(out, r.Methods()...)
	case rustdoc.KindStruct, rustdoc.KindUnion, rustdoc.KindTrait:
		return r.Methods()
	case rustdoc.KindUse:
		u, ok := r.item.Inner.AsUse()
		if !ok {
			return nil
		}
		if u.IsGlob {
			return r.resolveGlobUse(u)
		}
		return r.resolveUseChain(u)
	default:
		return nil
	}
}

// Children satisfies search.Node: every child, tagged with whether its
// id-path should be tracked for search results. Methods are indexed (their
// name and docs are searchable) but not path-tracked, matching struct/trait
// methods being reached through the owning type rather than their own path.
func (r Ref) Children() []search.NodeChild {
	var out []search.NodeChild
	switch r.Kind() {
	case rustdoc.KindStruct, rustdoc.KindUnion, rustdoc.KindTrait:
		for _, m := range r.Methods() {
			out = append(out, search.NodeChild{Node: m, TrackPath: false})
		}
	case rustdoc.KindEnum:
		en, _ := r.item.Inner.AsEnum()
		for _, id := range en.Variants {
			if it, ok := r.idx.Get(id); ok {
				out = append(out, search.NodeChild{Node: r.wrap(it), TrackPath: true})
			}
		}
		for _, m := range r.Methods() {
			out = append(out, search.NodeChild{Node: m, TrackPath: false})
		}
	case rustdoc.KindModule:
		out = r.reexportAwareChildren()
	default:
		for _, c := range r.ChildRefs(false) {
			out = append(out, search.NodeChild{Node: c, TrackPath: true})
		}
	}
	return out
}

// reexportNode indexes a non-glob re-export under its own doc-id rather
// than the target's: the alias is searchable by name, and the target's doc
// comment (not the use item's, which rustdoc never populates) is searchable
// as the re-export's documentation.
type reexportNode struct {
	docID   search.DocID
	name    string
	comment string
	hasDoc  bool
}

func (n reexportNode) DocID() search.DocID { return n.docID }
func (n reexportNode) Name() (string, bool) {
	if n.name == "" {
		return "", false
	}
	return n.name, true
}
func (n reexportNode) DocComment() (string, bool) {
	if !n.hasDoc {
		return "", false
	}
	return n.comment, true
}
func (n reexportNode) Children() []search.NodeChild { return nil }

// resolveUseTarget resolves a non-glob Use item to the concrete item it
// ultimately names, following nested re-export chains by id the same way
// resolveUseChain does. Unlike resolveUseChain, the caller here only wants
// the target's own doc comment, not a fully-aliased Ref, so no override
// name is threaded through.
func (r Ref) resolveUseTarget(u rustdoc.Use) (Ref, bool) {
	if u.ID == nil {
		return Ref{}, false
	}
	target, ok := r.idx.Get(*u.ID)
	if !ok {
		return Ref{}, false
	}
	if nested, ok := target.Inner.AsUse(); ok {
		if nested.IsGlob {
			return Ref{}, false
		}
		return r.resolveUseTarget(nested)
	}
	return r.wrap(target), true
}

// reexportNodeFor builds the reexportNode for a raw, non-glob Use child:
// useRef is the wrapped Use item itself (its own Item.Name field already
// holds the alias written at the use site), doc-id'd under the use item's
// own id per index_reexport, not the resolved target's.
func (r Ref) reexportNodeFor(useRef Ref, u rustdoc.Use) reexportNode {
	n := reexportNode{docID: useRef.DocID(), name: u.Name}
	if target, ok := r.resolveUseTarget(u); ok {
		if doc, ok := target.Comment(); ok {
			n.comment, n.hasDoc = doc, true
		}
	}
	return n
}

// reexportAwareChildren walks a module's raw declared items (globs and
// non-glob uses alike left unresolved, per includeUse=true), routing
// non-glob re-exports through reexportNodeFor instead of recursing into
// them, and skipping globs entirely: their contents are indexed at their
// own canonical home elsewhere in the tree.
func (r Ref) reexportAwareChildren() []search.NodeChild {
	mod, ok := r.item.Inner.AsModule()
	if !ok {
		return nil
	}
	var out []search.NodeChild
	for _, c := range r.moduleChildren(mod, true) {
		u, isUse := c.item.Inner.AsUse()
		if !isUse {
			out = append(out, search.NodeChild{Node: c, TrackPath: true})
			continue
		}
		if u.IsGlob {
			continue
		}
		out = append(out, search.NodeChild{Node: r.reexportNodeFor(c, u), TrackPath: true})
	}
	return out
}

// ByName finds a direct child (as from ChildRefs) whose own name matches,
// case-sensitively.
func (r Ref) ByName(name string, includeUse bool) (Ref, bool) {
	for _, c := range r.ChildRefs(includeUse) {
		if n, ok := c.Name(); ok && n == name {
			return c, true
		}
	}
	return Ref{}, false
}
