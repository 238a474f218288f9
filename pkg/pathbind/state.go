package pathbind

import (
	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/statepath"
)

// LoopContext establishes the list level an update runs in: the
// list-element ref whose ListIndex resolves wildcards for relative reads
// and writes.
type LoopContext struct {
	Ref *StatePropertyRef
}

// ListIndex returns the loop's element identity, or nil outside a loop.
func (lc *LoopContext) ListIndex() *ListIndex {
	if lc == nil || lc.Ref == nil {
		return nil
	}
	return lc.Ref.ListIndex
}

// ReadonlyState is a read-only view over the engine state. Reads go
// through the state type's getters or the installed path accessors; reads
// performed while a getter evaluates are recorded as dynamic dependencies.
type ReadonlyState struct {
	engine  *Engine
	loopCtx *LoopContext
}

// Engine returns the owning engine.
func (rs *ReadonlyState) Engine() *Engine {
	return rs.engine
}

// LoopContext returns the loop level this state view runs in, or nil.
func (rs *ReadonlyState) LoopContext() *LoopContext {
	return rs.loopCtx
}

// Ref returns the canonical ref for (pattern, listIndex).
func (rs *ReadonlyState) Ref(pattern string, listIndex *ListIndex) *StatePropertyRef {
	return rs.engine.refs.GetRefByPattern(pattern, listIndex)
}

// Get resolves ref to its current value: through the declared getter when
// one exists, otherwise through the installed accessor (nearest ancestor
// getter plus remaining segments, or direct chaining).
func (rs *ReadonlyState) Get(ref *StatePropertyRef) any {
	rs.engine.eval.recordRead(ref.Info)
	if ref.Info.WildcardCount > 0 {
		ref.RequireListIndex()
	}

	if member, ok := rs.engine.typ.Member(ref.Info.Pattern); ok && member.Getter != nil {
		rs.engine.eval.push(ref.Info)
		defer rs.engine.eval.pop()
		return member.Getter(rs, ref)
	}

	return rs.resolve(ref)
}

// GetPath is a convenience for non-wildcarded patterns.
func (rs *ReadonlyState) GetPath(pattern string) any {
	return rs.Get(rs.Ref(pattern, nil))
}

// resolve reads ref through the installed accessor or raw navigation.
func (rs *ReadonlyState) resolve(ref *StatePropertyRef) any {
	var indexes []int
	if ref.ListIndex != nil {
		indexes = ref.ListIndex.Indexes()
	}

	resolver, ok := rs.engine.manager.Resolver(ref.Info.Pattern)
	if ok && resolver.Base != nil {
		var baseIndex *ListIndex
		if resolver.Base.WildcardCount > 0 {
			baseIndex = ref.RequireListIndex().AtDepth(resolver.Base.WildcardCount)
		}
		baseRef := rs.engine.refs.GetRef(resolver.Base, baseIndex)
		baseValue := rs.Get(baseRef)
		value, _ := navigate(baseValue, resolver.Rest, indexes[resolver.Base.WildcardCount:])
		return value
	}

	value, _ := navigate(rs.engine.data, ref.Info.Segments, indexes)
	return value
}

// WritableState extends ReadonlyState with writes and method calls. It is
// only handed out inside Updater.Update.
type WritableState struct {
	ReadonlyState
}

// Set writes ref. A declared setter takes precedence; a member with a
// getter but no setter is read-only (PB204). Every successful write
// enqueues the ref with the scheduler.
func (ws *WritableState) Set(ref *StatePropertyRef, value any) error {
	if member, ok := ws.engine.typ.Member(ref.Info.Pattern); ok {
		switch {
		case member.Setter != nil:
			if err := member.Setter(ws, ref, value); err != nil {
				return err
			}
			ws.engine.updater.EnqueueRef(ref)
			return nil
		case member.Getter != nil:
			return errors.New("PB204").With("pattern", ref.Info.Pattern)
		}
	}
	return ws.SetRaw(ref, value)
}

// SetPath is a convenience for non-wildcarded patterns.
func (ws *WritableState) SetPath(pattern string, value any) error {
	return ws.Set(ws.Ref(pattern, nil), value)
}

// SetRaw writes ref directly into the backing data, bypassing any
// declared setter, and enqueues the ref. Setters use this to store their
// backing values.
func (ws *WritableState) SetRaw(ref *StatePropertyRef, value any) error {
	if err := ws.write(ref, value); err != nil {
		return err
	}
	ws.engine.updater.EnqueueRef(ref)
	return nil
}

// Call invokes a plain method member. A missing or non-callable member is
// the PB201 usage error.
func (ws *WritableState) Call(name string, args ...any) (any, error) {
	member, ok := ws.engine.typ.Member(name)
	if !ok || member.Method == nil {
		return nil, errors.New("PB201").With("name", name)
	}
	return member.Method(ws, args...)
}

// write navigates to the parent container and assigns the last segment.
func (ws *WritableState) write(ref *StatePropertyRef, value any) error {
	segments := ref.Info.Segments
	if len(segments) == 0 {
		return errors.Newf(errors.CategoryUsage, "cannot write the root path")
	}

	var indexes []int
	if ref.ListIndex != nil {
		indexes = ref.ListIndex.Indexes()
	}

	parent := any(ws.engine.data)
	var rest []int
	if len(segments) > 1 {
		var found bool
		parent, rest, found = navigateWithRest(ws.engine.data, segments[:len(segments)-1], indexes)
		if !found {
			return errors.Newf(errors.CategoryUsage,
				"no container at %q for write of %q", ref.Info.ParentPath, ref.Info.Pattern)
		}
	} else {
		rest = indexes
	}

	last := segments[len(segments)-1]
	if last == statepath.Wildcard {
		list, ok := parent.([]any)
		if !ok || len(rest) == 0 {
			return errors.Newf(errors.CategoryUsage,
				"no list at %q for element write", ref.Info.ParentPath)
		}
		idx := rest[0]
		if idx < 0 || idx >= len(list) {
			return errors.Newf(errors.CategoryUsage,
				"element index %d out of range for %q", idx, ref.Info.Pattern)
		}
		list[idx] = value
		return nil
	}

	obj, ok := parent.(map[string]any)
	if !ok {
		return errors.Newf(errors.CategoryUsage,
			"no object at %q for write of %q", ref.Info.ParentPath, ref.Info.Pattern)
	}
	obj[last] = value
	return nil
}

// navigate walks segments from value, consuming one index per wildcard.
// Missing links resolve to nil.
func navigate(value any, segments []string, indexes []int) (any, []int) {
	v, rest, _ := navigateWithRest(value, segments, indexes)
	return v, rest
}

// navigateWithRest is navigate plus an explicit "every link existed" flag.
func navigateWithRest(value any, segments []string, indexes []int) (any, []int, bool) {
	for _, seg := range segments {
		if value == nil {
			return nil, indexes, false
		}
		if seg == statepath.Wildcard {
			list, ok := value.([]any)
			if !ok || len(indexes) == 0 {
				return nil, indexes, false
			}
			idx := indexes[0]
			indexes = indexes[1:]
			if idx < 0 || idx >= len(list) {
				return nil, indexes, false
			}
			value = list[idx]
			continue
		}
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, indexes, false
		}
		value = obj[seg]
	}
	return value, indexes, true
}
