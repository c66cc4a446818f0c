// Package docstate is the process-wide cache and generation coordinator for
// parsed crate documentation: an LRU of already-loaded CrateIndex values,
// get-or-generate-once deduplication for concurrent requests on the same
// crate, and the current workspace context tool handlers resolve paths
// against.
package docstate

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/store"
	"rustdocmcp/internal/workspace"
)

// cacheSize bounds how many parsed CrateIndex values are kept in memory at
// once; least-recently-used crates are evicted first.
const cacheSize = 50

// DocState is the central coordination point shared by every tool handler
// and the background worker: it caches parsed docs, deduplicates concurrent
// generation requests for the same crate, and holds the active workspace.
type DocState struct {
	cache *lru.Cache[string, *rustdoc.CrateIndex]
	group singleflight.Group
	store *store.Store

	mu    sync.RWMutex
	wsCtx *workspace.Context
}

// New builds a DocState backed by store for digest-gated regeneration. store
// may be nil: tests pass nil, and cmd/rdmcpd passes nil when it cannot
// create or open its persistence store.
func New(st *store.Store) (*DocState, error) {
	cache, err := lru.New[string, *rustdoc.CrateIndex](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create doc cache: %w", err)
	}
	return &DocState{cache: cache, store: st}, nil
}

// Store returns the digest/index persistence backing this DocState, or nil
// if none was supplied.
func (d *DocState) Store() *store.Store {
	return d.store
}

// Workspace returns the currently configured workspace, or nil if none has
// been set yet.
func (d *DocState) Workspace() *workspace.Context {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wsCtx
}

// HasWorkspace reports whether a workspace has been configured.
func (d *DocState) HasWorkspace() bool {
	return d.Workspace() != nil
}

// SetWorkspace replaces the active workspace context. Callers that are
// switching workspaces should call ClearCache first, since cached indices
// and in-flight generations belong to the old workspace.
func (d *DocState) SetWorkspace(wsCtx *workspace.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wsCtx = wsCtx
}

// ClearCache discards every cached CrateIndex. It does not cancel any
// in-flight generation; a caller already waiting on one still gets its
// result, and that generation still adds its result to the cache when it
// completes, even though ClearCache ran in the meantime.
func (d *DocState) ClearCache() {
	d.cache.Purge()
}

// IsCached reports whether crateName's docs are already in the LRU.
func (d *DocState) IsCached(crateName string) bool {
	return d.cache.Contains(crateName)
}

// GetCached returns crateName's docs only if already cached, without
// triggering generation.
func (d *DocState) GetCached(crateName string) (*rustdoc.CrateIndex, bool) {
	return d.cache.Get(crateName)
}

// PutCached seeds the cache directly, bypassing generation - used when a
// caller has already produced a CrateIndex some other way (tests, or a
// pre-warmed fixture).
func (d *DocState) PutCached(crateName string, idx *rustdoc.CrateIndex) {
	d.cache.Add(crateName, idx)
}

// GetDocs returns crateName's parsed documentation: a cache hit returns
// immediately, a request already in flight is awaited and shared, and
// otherwise generation starts now. Concurrent callers requesting the same
// crate collapse into the single singleflight.Group call, mirroring the
// original's shared-future get_docs flow without needing its explicit
// in-flight map.
func (d *DocState) GetDocs(ctx context.Context, crateName string) (*rustdoc.CrateIndex, error) {
	if idx, ok := d.cache.Get(crateName); ok {
		logging.Get(logging.CategoryCache).Debug("cache hit for %s", crateName)
		return idx, nil
	}

	wsCtx := d.Workspace()
	if wsCtx == nil {
		return nil, fmt.Errorf("no workspace configured")
	}

	v, err, shared := d.group.Do(crateName, func() (interface{}, error) {
		logging.Get(logging.CategoryCache).Info("generating docs for %s", crateName)
		idx, err := workspace.GetDocs(ctx, wsCtx, d.store, crateName)
		if err != nil {
			return nil, err
		}
		d.cache.Add(crateName, idx)
		return idx, nil
	})
	if shared {
		logging.Get(logging.CategoryCache).Debug("awaited in-flight generation for %s", crateName)
	}
	if err != nil {
		return nil, err
	}
	return v.(*rustdoc.CrateIndex), nil
}
