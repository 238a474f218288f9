package pathbind

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/statepath"
)

// tracerName identifies pathbind spans.
const tracerName = "pathbind"

// Renderer resolves each affected ref to its bound views and applies the
// change. The completion signal is resolved by the scheduler when the
// batch terminates; renderers may wait on it from other goroutines.
type Renderer interface {
	Render(refs []*StatePropertyRef, completion *Completion)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(refs []*StatePropertyRef, completion *Completion)

// Render implements Renderer.
func (f RenderFunc) Render(refs []*StatePropertyRef, completion *Completion) {
	f(refs, completion)
}

// VersionRevision stamps a path with the update cycle (version) and the
// write within it (revision) that last affected it. Readers compare
// stamps to decide whether a value they hold has been superseded by a
// more recent write in the same cycle.
type VersionRevision struct {
	Version  uint64
	Revision uint64
}

// Updater accepts change refs, expands each into the full set of
// potentially affected paths via the dependency graph, and batches
// rendering on the engine's cooperative task loop.
//
// States: idle -> rendering -> idle. All transitions happen on the task
// loop; nothing here is safe for concurrent use from other goroutines.
type Updater struct {
	engine *Engine

	// version is assigned once per Updater; revision is monotonic
	// within it, bumped on every enqueue.
	version  uint64
	revision uint64

	pending []*StatePropertyRef
	saved   []*StatePropertyRef

	flushQueued bool
	inRender    bool

	// affectedCache memoizes the expanded path set per literal source
	// path. The graph only grows, so entries never go stale; stamps are
	// reapplied at the current revision on every hit.
	affectedCache map[string][]string

	stamps map[string]VersionRevision

	tracer trace.Tracer
}

func newUpdater(engine *Engine) *Updater {
	return &Updater{
		engine:        engine,
		version:       nextID(),
		affectedCache: make(map[string][]string),
		stamps:        make(map[string]VersionRevision),
		tracer:        otel.Tracer(tracerName),
	}
}

// Version returns the updater's version number.
func (u *Updater) Version() uint64 {
	return u.version
}

// Revision returns the current revision within this version.
func (u *Updater) Revision() uint64 {
	return u.revision
}

// Stamp returns the (version, revision) that last affected path.
func (u *Updater) Stamp(path string) (VersionRevision, bool) {
	vr, ok := u.stamps[path]
	return vr, ok
}

// AffectedPaths returns the expanded set of paths potentially affected by
// a write to path, as computed by the last enqueue. An unexpanded path
// affects only itself.
func (u *Updater) AffectedPaths(path string) []string {
	if affected, ok := u.affectedCache[path]; ok {
		return affected
	}
	return []string{path}
}

// EnqueueRef records a change notification. The ref joins the pending
// batch; if no flush is scheduled or running, exactly one deferred flush
// is posted to the task loop, otherwise the ref rides the current cycle.
func (u *Updater) EnqueueRef(ref *StatePropertyRef) {
	u.revision++
	u.pending = append(u.pending, ref)
	if u.engine.typ.HasUpdated() {
		u.saved = append(u.saved, ref)
	}

	u.collectMaybeUpdates(ref.Info.Pattern, u.revision)
	u.engine.metrics.recordEnqueued()

	if !u.flushQueued && !u.inRender {
		u.flushQueued = true
		u.engine.loop.Post(u.rendering)
	}
}

// collectMaybeUpdates expands path into every potentially affected path
// and stamps each with (version, revision). The expansion itself is
// cached per literal source path; cache hits restamp without re-walking
// the graph or re-resolving path nodes.
func (u *Updater) collectMaybeUpdates(path string, revision uint64) {
	affected, cached := u.affectedCache[path]
	if !cached {
		if statepath.FindByPath(u.engine.manager.Root(), path) == nil {
			panic(errors.New("PB101").With("pattern", path))
		}
		visited := make(map[string]struct{})
		affected = u.recursiveCollectMaybeUpdates(path, path, visited, nil)
		u.affectedCache[path] = affected
		u.engine.metrics.recordCollect(false, len(affected))
	} else {
		u.engine.metrics.recordCollect(true, len(affected))
	}

	stamp := VersionRevision{Version: u.version, Revision: revision}
	for _, p := range affected {
		u.stamps[p] = stamp
	}
}

// recursiveCollectMaybeUpdates walks static children and dynamic edges
// depth-first. The visited set guards against dependency cycles. When the
// walk stands on the mutation source itself, its list-element children
// are skipped: the loop binding re-renders as a whole, so per-element
// fan-out would be redundant.
func (u *Updater) recursiveCollectMaybeUpdates(source, path string, visited map[string]struct{}, out []string) []string {
	if _, seen := visited[path]; seen {
		return out
	}
	visited[path] = struct{}{}
	out = append(out, path)

	for _, child := range u.engine.manager.StaticDependencies(path) {
		if path == source && u.engine.manager.IsElement(child) {
			continue
		}
		out = u.recursiveCollectMaybeUpdates(source, child, visited, out)
	}
	for _, target := range u.engine.manager.DynamicDependencies(path) {
		if statepath.FindByPath(u.engine.manager.Root(), target) == nil {
			panic(errors.New("PB102").With("source", path).With("target", target))
		}
		out = u.recursiveCollectMaybeUpdates(source, target, visited, out)
	}
	return out
}

// rendering drains the pending queue. Each drained batch is swapped out
// for a fresh queue before rendering, so refs enqueued reentrantly during
// a render are captured as a new batch processed by the same loop pass,
// never dropped and never needing another scheduling round-trip.
func (u *Updater) rendering() {
	u.flushQueued = false
	u.inRender = true
	defer func() { u.inRender = false }()

	u.engine.activity.Begin()
	defer u.engine.activity.End()

	_, span := u.tracer.Start(context.Background(), "pathbind.flush")
	defer span.End()

	batches := 0
	for len(u.pending) > 0 {
		batch := u.pending
		u.pending = nil
		batches++
		u.renderBatch(batch)
	}
	span.SetAttributes(attribute.Int("pathbind.batches", batches))
}

// renderBatch runs one render invocation with its own completion signal.
// The signal resolves in a deferred call even when the renderer panics.
func (u *Updater) renderBatch(batch []*StatePropertyRef) {
	completion := NewCompletion()
	defer func() {
		if r := recover(); r != nil {
			completion.Resolve(recoveredError(r))
			panic(r)
		}
		completion.Resolve(nil)
	}()

	debugf("render batch: %d refs", len(batch))
	u.engine.metrics.recordBatch(len(batch))

	if u.engine.renderer != nil {
		u.engine.renderer.Render(batch, completion)
	}
}

// Update runs fn with a writable state on the task loop. After fn and the
// flush it triggered settle, if the state type declares the updated hook
// and any refs were saved for it, a further cycle is deferred that invokes
// the hook with the deduplicated changed paths.
//
// A top-level call posts fn and drains the loop, so everything fn
// triggers completes before Update returns. A reentrant call — from a
// renderer, a binding, or the updated hook — is already on the loop
// goroutine and runs fn immediately; its writes ride the cycle in
// progress. Either way fn runs before Update returns, so its error is
// wrapped with context (PB301) and returned rather than swallowed.
func (u *Updater) Update(ctx context.Context, loopCtx *LoopContext, fn func(ws *WritableState) error) error {
	u.engine.activity.Begin()
	defer u.engine.activity.End()

	_, span := u.tracer.Start(ctx, "pathbind.update")
	defer span.End()

	var err error
	settle := func() {
		ws := u.engine.writableState(loopCtx)
		if e := fn(ws); e != nil {
			err = errors.New("PB301").With("where", "update").Wrap(e)
		}
		if u.engine.typ.HasUpdated() && len(u.saved) > 0 {
			u.engine.loop.Post(u.invokeUpdatedHook)
		}
	}

	// Posting from inside a running task only queues: the error
	// assignment would land after this frame already returned. Running
	// inline keeps fn ahead of the return on the reentrant path too.
	if u.engine.loop.Running() {
		settle()
	} else {
		u.engine.loop.Post(settle)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// invokeUpdatedHook calls the state type's updated hook with the
// deduplicated changed paths and, for wildcarded paths, the affected
// index vectors grouped by path.
func (u *Updater) invokeUpdatedHook() {
	saved := u.saved
	u.saved = nil
	if len(saved) == 0 || u.engine.typ.updated == nil {
		return
	}

	summary := UpdateSummary{IndexesByPath: make(map[string][][]int)}
	seenRefs := make(map[*StatePropertyRef]struct{}, len(saved))
	seenPaths := make(map[string]struct{}, len(saved))

	for _, ref := range saved {
		if _, dup := seenRefs[ref]; dup {
			continue
		}
		seenRefs[ref] = struct{}{}

		pattern := ref.Info.Pattern
		if _, dup := seenPaths[pattern]; !dup {
			seenPaths[pattern] = struct{}{}
			summary.Paths = append(summary.Paths, pattern)
		}
		if ref.Info.WildcardCount > 0 {
			summary.IndexesByPath[pattern] = append(summary.IndexesByPath[pattern], ref.RequireListIndex().Indexes())
		}
	}

	ws := u.engine.writableState(nil)
	u.engine.typ.updated(ws, summary)
}

// recoveredError normalizes a recovered panic value into an error.
func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("render panic: %v", r)
}
