package query

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"rustdocmcp/internal/item"
	"rustdocmcp/internal/rustdoc"

	"github.com/xrash/smetrics"
)

// Loader loads (generating if necessary) a crate's parsed documentation
// index. Supplied by the caller so this package stays independent of how
// docs actually get generated and cached on disk (internal/docstate).
type Loader func(crateName string) (*rustdoc.CrateIndex, error)

// Suggestion is a candidate item offered up when a path fails to resolve,
// scored by Jaro-Winkler similarity against the query.
type Suggestion struct {
	Path  string
	Item  *item.Ref
	Score float64
}

// Context resolves item paths against a fixed set of known crate names,
// caching every CrateIndex it loads for the lifetime of one request (or
// longer, if the caller reuses it). This cache sits on top of whatever
// caching Loader itself does - intentionally: Loader is typically backed by
// the LRU+singleflight cache in internal/docstate, and this map just saves
// the (cheap) lookup-by-name for the handful of crates one query touches,
// the same two-tier shape the original implementation used.
type Context struct {
	mu    sync.Mutex
	cache map[string]*rustdoc.CrateIndex
	load  Loader

	known map[string]struct{} // workspace members ∪ dependency names, for suggestions
}

// NewContext builds a Context. known should list every crate name worth
// suggesting when a crate lookup fails (workspace members and dependencies).
func NewContext(load Loader, known []string) *Context {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	return &Context{cache: make(map[string]*rustdoc.CrateIndex), load: load, known: set}
}

// LoadCrate returns crateName's parsed docs, loading (and caching) them if
// this is the first request for that crate.
func (c *Context) LoadCrate(crateName string) (*rustdoc.CrateIndex, error) {
	normalized := normalizeCrateName(crateName)

	c.mu.Lock()
	if idx, ok := c.cache[normalized]; ok {
		c.mu.Unlock()
		return idx, nil
	}
	c.mu.Unlock()

	idx, err := c.load(crateName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[normalized] = idx
	c.mu.Unlock()
	return idx, nil
}

func jaroWinkler(a, b string) float64 {
	return smetrics.JaroWinkler(strings.ToLower(a), strings.ToLower(b), 0.7, 4)
}

// crateSuggestions scores every known crate name against the one the
// caller asked for, for use when a crate name fails to load.
func (c *Context) crateSuggestions(crateName string) []Suggestion {
	var out []Suggestion
	for k := range c.known {
		out = append(out, Suggestion{Path: k, Score: jaroWinkler(crateName, k)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Suggestions scores every known crate name against crateName, for callers
// that need crate-not-found suggestions without going through ResolvePath
// (e.g. a tool handler that failed to load an index directly).
func (c *Context) Suggestions(crateName string) []Suggestion {
	return c.crateSuggestions(crateName)
}

// ResolvePath resolves a full "crate::module::Item"-style path. On
// success it returns the resolved item; on failure it returns scored
// suggestions (crate-name suggestions if the crate itself didn't load,
// otherwise sibling-item suggestions from wherever resolution stalled).
func (c *Context) ResolvePath(fullPath string) (item.Ref, []Suggestion, error) {
	crateName, remainder, _ := strings.Cut(fullPath, "::")

	idx, err := c.LoadCrate(crateName)
	if err != nil {
		return item.Ref{}, c.crateSuggestions(crateName), fmt.Errorf("failed to load crate %q: %w", crateName, err)
	}

	root, ok := item.Root(idx, item.CrateHash(normalizeCrateName(crateName)))
	if !ok {
		return item.Ref{}, nil, fmt.Errorf("crate %q has no root module", crateName)
	}
	if remainder == "" {
		return root, nil, nil
	}

	path := Parse(remainder)
	resolved, suggestions, ok := c.findChildrenRecursive(root, path.Components)
	if !ok {
		return item.Ref{}, suggestions, fmt.Errorf("item %q not found in crate %q", remainder, crateName)
	}
	return resolved, nil, nil
}

func (c *Context) findChildrenRecursive(cur item.Ref, segments []string) (item.Ref, []Suggestion, bool) {
	if len(segments) == 0 {
		return cur, nil, true
	}
	seg := segments[0]
	for _, child := range cur.ChildRefs(false) {
		name, ok := child.Name()
		if !ok || name != seg {
			continue
		}
		if resolved, suggestions, ok := c.findChildrenRecursive(child, segments[1:]); ok {
			return resolved, suggestions, true
		} else if len(segments) == 1 {
			return item.Ref{}, suggestions, false
		}
	}
	return item.Ref{}, c.generateSuggestions(cur, strings.Join(segments, "::")), false
}

// generateSuggestions scores cur's direct children against the full
// remaining query path, skipping any child whose own path is merely a
// prefix of the query (an ancestor "on the way" to the real target isn't a
// useful suggestion).
func (c *Context) generateSuggestions(cur item.Ref, queryPath string) []Suggestion {
	var out []Suggestion
	for _, child := range cur.ChildRefs(false) {
		name, ok := child.Name()
		if !ok {
			continue
		}
		if strings.HasPrefix(queryPath, name) {
			continue
		}
		childCopy := child
		out = append(out, Suggestion{Path: name, Item: &childCopy, Score: jaroWinkler(queryPath, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// GetItem resolves an id within an already-loaded crate index.
func (c *Context) GetItem(idx *rustdoc.CrateIndex, crateID uint64, id rustdoc.Id) (item.Ref, bool) {
	it, ok := idx.Get(id)
	if !ok {
		return item.Ref{}, false
	}
	return item.New(idx, crateID, it), true
}

// GetItemFromIDPath walks an id-path recorded by the search index (crate
// root down to a specific item) back into a live item.Ref, re-resolving any
// `use` re-export encountered along the way: first by its recorded target
// id, falling back to a full path resolution of the re-export's source
// path for re-exports that cross a crate boundary.
func (c *Context) GetItemFromIDPath(crateName string, ids []uint32) (item.Ref, bool) {
	idx, err := c.LoadCrate(crateName)
	if err != nil {
		return item.Ref{}, false
	}
	crateID := item.CrateHash(normalizeCrateName(crateName))

	var cur item.Ref
	found := false
	for _, raw := range ids {
		it, ok := idx.Get(rustdoc.Id(raw))
		if !ok {
			return item.Ref{}, false
		}
		if u, isUse := it.Inner.AsUse(); isUse {
			if u.ID != nil {
				if target, ok := idx.Get(*u.ID); ok {
					cur = item.New(idx, crateID, target)
					found = true
					continue
				}
			}
			resolved, _, rerr := c.ResolvePath(u.Source)
			if rerr != nil {
				return item.Ref{}, false
			}
			cur = resolved
			found = true
			continue
		}
		cur = item.New(idx, crateID, it)
		found = true
	}
	return cur, found
}
