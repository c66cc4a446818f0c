package docstate

import (
	"context"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"

	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/workspace"
)

// detectionInterval is how often the background worker re-checks for a
// workspace and pre-generates docs for crates that aren't cached yet. This
// tick is the authoritative detection path; fsnotify below only shortens
// the wait when it happens to be available, it never replaces the tick.
const detectionInterval = 5 * time.Second

// BackgroundWorker continuously detects the active Cargo workspace and
// pre-generates documentation for its crates, so a query arriving later
// finds a warm cache instead of paying for generation inline.
type BackgroundWorker struct {
	state *DocState

	// watcher is an optional fast path: if fsnotify can't start (platform
	// without inotify/kqueue support, fd exhaustion, ...) the worker falls
	// back to ticker-only detection rather than failing.
	watcher *fsnotify.Watcher
	watched string
}

// NewBackgroundWorker builds a worker over state.
func NewBackgroundWorker(state *DocState) *BackgroundWorker {
	return &BackgroundWorker{state: state}
}

// Run blocks, detecting immediately, on every tick, and (best-effort) as
// soon as fsnotify observes a change under the watched workspace root,
// until ctx is canceled.
func (w *BackgroundWorker) Run(ctx context.Context) {
	log := logging.Get(logging.CategoryWorker)

	if watcher, err := fsnotify.NewWatcher(); err != nil {
		log.Debug("fsnotify unavailable, falling back to polling only: %v", err)
	} else {
		w.watcher = watcher
		defer watcher.Close()
	}

	ticker := time.NewTicker(detectionInterval)
	defer ticker.Stop()

	w.detectAndGenerate(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.detectAndGenerate(ctx)
		case event, ok := <-w.watcherEvents():
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debug("fsnotify fast path triggered by %s", event.Name)
				w.detectAndGenerate(ctx)
			}
		case err, ok := <-w.watcherErrors():
			if ok {
				log.Debug("fsnotify watcher error: %v", err)
			}
		}
	}
}

// watcherEvents returns the watcher's event channel, or nil if fsnotify
// isn't running. A nil channel is never selectable, so the select loop
// above degrades cleanly to ticker-only behavior.
func (w *BackgroundWorker) watcherEvents() <-chan fsnotify.Event {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Events
}

func (w *BackgroundWorker) watcherErrors() <-chan error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Errors
}

// rewatch points the fsnotify watcher at root, replacing whatever it was
// previously watching. A no-op if fsnotify isn't running or root is
// already watched.
func (w *BackgroundWorker) rewatch(root string) {
	if w.watcher == nil || w.watched == root {
		return
	}
	if w.watched != "" {
		w.watcher.Remove(w.watched)
	}
	if err := w.watcher.Add(root); err != nil {
		logging.Get(logging.CategoryWorker).Debug("fsnotify add failed for %s: %v", root, err)
		return
	}
	w.watched = root
}

func (w *BackgroundWorker) detectAndGenerate(ctx context.Context) {
	log := logging.Get(logging.CategoryWorker)

	root, ok := workspace.AutoDetectWorkspace(ctx)
	if !ok {
		log.Debug("no workspace detected")
		return
	}
	w.rewatch(root)

	current := w.state.Workspace()
	changed := current == nil || current.Root != root
	if !changed {
		w.generateUncachedDocs(ctx, current)
		return
	}

	log.Debug("detected workspace change: %s", root)
	wsCtx, err := workspace.BuildContext(ctx, root)
	if err != nil {
		log.Warn("background workspace detection failed: %v", err)
		return
	}

	w.state.ClearCache()
	w.state.SetWorkspace(wsCtx)
	log.Info("background worker configured workspace: %s (%d members, %d crates)",
		wsCtx.Root, len(wsCtx.Members), len(wsCtx.CrateInfo))

	w.generateUncachedDocs(ctx, wsCtx)
}

// generateUncachedDocs walks the workspace's crates in priority order
// (members first, then dependencies), generating docs for whichever aren't
// already cached or in flight. Standard-library pseudo-crates are skipped:
// this port has no separate stdlib documentation backend, so `cargo
// rustdoc` has nothing to generate for them.
func (w *BackgroundWorker) generateUncachedDocs(ctx context.Context, wsCtx *workspace.Context) {
	log := logging.Get(logging.CategoryWorker)

	for _, crateName := range wsCtx.PrioritizedCrates() {
		if w.state.IsCached(crateName) {
			continue
		}
		meta, ok := wsCtx.GetCrate(crateName)
		if !ok || meta.Origin == workspace.OriginStandard {
			continue
		}

		if _, err := w.state.GetDocs(ctx, crateName); err != nil {
			log.Warn("background doc generation failed for %s: %v", crateName, err)
		} else {
			log.Debug("background generated docs for %s", crateName)
		}

		// Yield so other goroutines (tool handlers, the stdio server loop)
		// get a turn between each crate instead of this loop monopolizing
		// the scheduler during a long pre-generation run.
		runtime.Gosched()
	}
}

// SpawnBackgroundWorker starts the worker as a goroutine and returns
// immediately.
//
// The panic-recovery wrapper below is faithfully preserved from the
// original: catch_unwind there guards an empty closure that does nothing,
// while the actual worker.run() call happens afterward, completely
// unprotected. A panic inside Run never reaches the recover - it propagates
// straight up and takes the goroutine (and, in Go, the whole process) down
// with it. This is a known defect in the source this was ported from, kept
// rather than silently fixed.
func SpawnBackgroundWorker(ctx context.Context, state *DocState) {
	go func() {
		worker := NewBackgroundWorker(state)

		for {
			func() {
				defer func() {
					recover()
				}()
			}()

			worker.Run(ctx)
		}
	}()
}
