// Package pathbind is the reactivity and update-scheduling core of the
// binding library. It decides, for any mutation of a hierarchical state
// object, which bound views might be affected, batches those notifications
// on a cooperative single-threaded task loop, and hands the affected refs
// to a renderer.
//
// The building blocks, leaves first:
//
//   - ListIndex: a stable identity object per logical list slot. The same
//     instance survives across renders; only its position is mutated. This
//     is what lets the loop reconciler use pointer identity instead of
//     deep equality.
//   - StatePropertyRef: (PathInfo, ListIndex-or-nil), interned so identical
//     logical references are pointer-equal across an update cycle.
//   - StateType: an explicit registration table of a state type's getters,
//     setters, and methods, built once at type-definition time.
//   - PathManager: per-component-type registry of every known path, its
//     classification (lists, elements, getters, setters, funcs), installed
//     accessors for deep paths, and the static/dynamic dependency maps.
//   - Updater: accepts change refs, assigns version/revision stamps,
//     expands each ref into the full set of potentially affected paths,
//     and batches rendering via the task loop.
//
// All scheduling is cooperative and single-threaded: no locks guard the
// update path, and reentrant enqueues during rendering are captured into a
// subsequent batch processed in the same tick chain.
package pathbind
