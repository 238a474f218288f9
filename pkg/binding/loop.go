package binding

import (
	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/listdiff"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/statepath"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

// LoopBinding renders one list path as a run of pooled content fragments
// anchored after a placeholder node. Each reconciliation diffs the current
// list value against the previous materialization and applies the result
// through one of three paths:
//
//   - remove-all: when the new list is empty, the run is cleared wholesale
//     (a single parent Clear when the anchor is the only other meaningful
//     child, individual detaches otherwise) and every content is pooled.
//   - all-new: when no identity survives and nothing is mounted, contents
//     are acquired pool-first and inserted in bulk, via an off-tree
//     fragment when the anchor is connected to a document.
//   - general: removals detach and pool, survivors are re-spliced only
//     when their neighborhood actually changed, additions mount in order,
//     and overwritten slots re-render in place.
type LoopBinding struct {
	engine   *pathbind.Engine
	registry *Registry
	stats    *ReconcilerStats

	anchor   *vtree.Node
	listRef  *pathbind.StatePropertyRef
	elemInfo *statepath.PathInfo
	factory  ContentFactory

	pool  ContentPool
	arena contentArena

	bindContents []Content
	lastValues   []any
	lastIndexes  []*pathbind.ListIndex

	renderable bool
}

// NewLoopBinding creates a loop binding over a non-wildcarded listPattern,
// anchored after anchor, and registers it. stats may be nil.
func NewLoopBinding(engine *pathbind.Engine, registry *Registry, anchor *vtree.Node, listPattern string, factory ContentFactory, stats *ReconcilerStats) *LoopBinding {
	return NewLoopBindingForRef(engine, registry, anchor,
		engine.Refs().GetRefByPattern(listPattern, nil), factory, stats)
}

// NewLoopBindingForRef is the nested-loop form: listRef may be wildcarded,
// carrying the enclosing slot identity.
func NewLoopBindingForRef(engine *pathbind.Engine, registry *Registry, anchor *vtree.Node, listRef *pathbind.StatePropertyRef, factory ContentFactory, stats *ReconcilerStats) *LoopBinding {
	b := &LoopBinding{
		engine:     engine,
		registry:   registry,
		stats:      stats,
		anchor:     anchor,
		listRef:    listRef,
		elemInfo:   statepath.Get(listRef.Pattern() + "." + statepath.Wildcard),
		factory:    factory,
		renderable: true,
	}
	registry.Register(b)
	return b
}

// Ref implements Binding.
func (b *LoopBinding) Ref() *pathbind.StatePropertyRef {
	return b.listRef
}

// Renderable implements Binding.
func (b *LoopBinding) Renderable() bool {
	return b.renderable
}

// SetRenderable toggles whether the binding accepts changes.
func (b *LoopBinding) SetRenderable(v bool) {
	b.renderable = v
}

// AssignValue implements Binding. A loop has no single assignment target.
func (b *LoopBinding) AssignValue(value any) error {
	return errors.New("PB203").With("pattern", b.listRef.Pattern()).With("kind", "loop")
}

// BindContents returns the currently mounted contents in list order.
func (b *LoopBinding) BindContents() []Content {
	return b.bindContents
}

// PoolSize returns the number of contents currently pooled.
func (b *LoopBinding) PoolSize() int {
	return b.pool.Size()
}

// PoolHighWater returns the largest pooled count the binding ever reached.
func (b *LoopBinding) PoolHighWater() int {
	return b.pool.HighWater()
}

// ContentFor returns the mounted content for a list-slot identity.
func (b *LoopBinding) ContentFor(li *pathbind.ListIndex) (Content, bool) {
	return b.arena.lookup(li)
}

// ApplyChange implements Binding: it re-reads the list, diffs it against
// the previous materialization, and reconciles.
func (b *LoopBinding) ApplyChange(r *Renderer) {
	rs := b.engine.CreateReadonlyState()
	newValues, _ := rs.Get(b.listRef).([]any)

	var parent *pathbind.ListIndex
	if b.listRef.ListIndex != nil {
		parent = b.listRef.ListIndex
	}
	diff := listdiff.Compare(b.lastValues, b.lastIndexes, newValues, parent)
	b.Reconcile(diff, r)
}

// Reconcile applies a list diff to the mounted run. A nil diff means the
// previous materialization and identity set went inconsistent; that is the
// PB104 internal fatal, never silently absorbed.
func (b *LoopBinding) Reconcile(diff *listdiff.Diff, r *Renderer) {
	if diff == nil {
		panic(errors.New("PB104").With("pattern", b.listRef.Pattern()))
	}

	switch {
	case diff.WillRemoveAll():
		b.clearAll()
		b.stats.incFastClears()
	case diff.IsAllNew() && len(b.bindContents) == 0:
		b.mountAllNew(diff, r)
		b.stats.incFastBulkAppends()
	default:
		b.reconcileGeneral(diff, r)
		b.stats.incGeneralPasses()
	}

	b.lastValues = append([]any(nil), diff.NewValues...)
	b.lastIndexes = diff.NewIndexes
}

// clearAll unmounts every content. When the anchor is the only other
// meaningful child of its parent the whole subtree is cleared at once and
// the anchor re-appended; otherwise contents detach one by one.
func (b *LoopBinding) clearAll() {
	parent := b.anchor.Parent()
	if parent != nil && b.anchorAloneWith(parent) {
		parent.Clear()
		parent.AppendChild(b.anchor)
	} else {
		for _, c := range b.bindContents {
			for _, n := range c.Nodes() {
				n.Detach()
			}
		}
	}

	reclaimed := b.bindContents
	for _, c := range reclaimed {
		c.Inactivate()
	}
	for _, li := range b.lastIndexes {
		b.arena.remove(li)
	}
	b.pool.Release(reclaimed)
	b.stats.addReclaimed(int64(len(reclaimed)))
	b.bindContents = nil
}

// anchorAloneWith reports whether every child of parent is the anchor,
// blank text, or a node this binding mounted.
func (b *LoopBinding) anchorAloneWith(parent *vtree.Node) bool {
	mine := make(map[*vtree.Node]struct{})
	for _, c := range b.bindContents {
		for _, n := range c.Nodes() {
			mine[n] = struct{}{}
		}
	}
	for _, child := range parent.Children() {
		if child == b.anchor || child.IsBlankText() {
			continue
		}
		if _, ok := mine[child]; !ok {
			return false
		}
	}
	return true
}

// mountAllNew mounts one content per new identity, pool-first. Under a
// connected anchor the nodes are collected into an off-tree fragment and
// spliced in with one insertion; a detached subtree takes direct appends.
func (b *LoopBinding) mountAllNew(diff *listdiff.Diff, r *Renderer) {
	contents := make([]Content, len(diff.NewIndexes))
	for i, li := range diff.NewIndexes {
		c := b.acquireContent()
		c.Activate(b.elementRef(li))
		b.arena.store(li, c)
		c.ApplyChange(r)
		contents[i] = c
	}

	parent := b.anchor.Parent()
	switch {
	case parent == nil:
		// Anchor not mounted yet; contents attach when it is.
	case b.anchor.Connected():
		frag := vtree.NewFragment()
		for _, c := range contents {
			for _, n := range c.Nodes() {
				frag.AppendChild(n)
			}
		}
		parent.InsertAfter(frag, b.anchor)
	default:
		prev := b.anchor
		for _, c := range contents {
			for _, n := range c.Nodes() {
				parent.InsertAfter(n, prev)
				prev = n
			}
		}
	}

	b.bindContents = contents
}

// reconcileGeneral handles mixed diffs: removals first, then a single
// in-order walk that mounts additions and re-splices moved survivors, then
// in-place overwrites, then fan-out to dependent element bindings.
func (b *LoopBinding) reconcileGeneral(diff *listdiff.Diff, r *Renderer) {
	parent := b.anchor.Parent()

	var reclaimed []Content
	for li := range diff.Removes {
		c, ok := b.arena.remove(li)
		if !ok {
			panic(errors.New("PB105").
				With("pattern", b.elemInfo.Pattern).
				With("id", li.ID()))
		}
		for _, n := range c.Nodes() {
			n.Detach()
		}
		c.Inactivate()
		reclaimed = append(reclaimed, c)
	}
	if len(reclaimed) > 0 {
		b.pool.Release(reclaimed)
		b.stats.addReclaimed(int64(len(reclaimed)))
	}

	// With every survivor gone this degenerates to the all-new mount.
	if diff.IsAllNew() {
		b.bindContents = nil
		b.mountAllNew(diff, r)
	} else {
		contents := make([]Content, len(diff.NewIndexes))
		prev := b.anchor
		for i, li := range diff.NewIndexes {
			var c Content
			if diff.Adds.Has(li) {
				c = b.acquireContent()
				c.Activate(b.elementRef(li))
				b.arena.store(li, c)
				c.ApplyChange(r)
				b.mountAfter(parent, c, prev)
			} else {
				var ok bool
				c, ok = b.arena.lookup(li)
				if !ok {
					panic(errors.New("PB105").
						With("pattern", b.elemInfo.Pattern).
						With("id", li.ID()))
				}
				if !b.follows(c, prev) {
					b.mountAfter(parent, c, prev)
					b.stats.addReorders(1)
				}
			}
			contents[i] = c
			if nodes := c.Nodes(); len(nodes) > 0 {
				prev = nodes[len(nodes)-1]
			}
		}
		b.bindContents = contents
	}

	for li := range diff.Overwrites {
		c, ok := b.arena.lookup(li)
		if !ok {
			panic(errors.New("PB105").
				With("pattern", b.elemInfo.Pattern).
				With("id", li.ID()))
		}
		c.ApplyChange(r)
		b.stats.addOverwrites(1)
	}

	if r != nil {
		for li := range diff.Changes {
			for _, dep := range b.registry.BindingsForIndex(li) {
				if dep == Binding(b) {
					continue
				}
				r.Apply(dep)
			}
		}
	}
}

// follows reports whether c's first node already sits right after prev,
// ignoring blank text between them.
func (b *LoopBinding) follows(c Content, prev *vtree.Node) bool {
	nodes := c.Nodes()
	if len(nodes) == 0 {
		return true
	}
	next := prev.NextSibling()
	for next != nil && next.IsBlankText() {
		next = next.NextSibling()
	}
	return next == nodes[0]
}

// mountAfter splices c's nodes right after prev.
func (b *LoopBinding) mountAfter(parent *vtree.Node, c Content, prev *vtree.Node) {
	if parent == nil {
		return
	}
	for _, n := range c.Nodes() {
		parent.InsertAfter(n, prev)
		prev = n
	}
}

// acquireContent takes a pooled content or mints a fresh one.
func (b *LoopBinding) acquireContent() Content {
	if c := b.pool.Acquire(); c != nil {
		b.stats.addPoolHits(1)
		return c
	}
	b.stats.addMinted(1)
	return b.factory()
}

// elementRef returns the canonical element ref for a slot identity.
func (b *LoopBinding) elementRef(li *pathbind.ListIndex) *pathbind.StatePropertyRef {
	return b.engine.Refs().GetRef(b.elemInfo, li)
}
