package binding

import (
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
)

// Renderer fans a flushed batch out to the registered bindings. For each
// changed ref it visits the bindings under every affected path, plus the
// element-level bindings sharing the ref's list-slot identity.
//
// A binding is applied at most once per batch; the loop reconciler also
// consults the applied set when it fans out to dependent bindings after a
// reorder, so a view is never rendered twice for one flush.
type Renderer struct {
	engine   *pathbind.Engine
	registry *Registry

	rendered map[Binding]struct{}
}

// NewRenderer creates a renderer over the engine's registry and installs
// it on the engine.
func NewRenderer(engine *pathbind.Engine, registry *Registry) *Renderer {
	r := &Renderer{engine: engine, registry: registry}
	engine.SetRenderer(r)
	return r
}

// Engine returns the owning engine.
func (r *Renderer) Engine() *pathbind.Engine {
	return r.engine
}

// Registry returns the binding registry.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Render implements pathbind.Renderer.
func (r *Renderer) Render(refs []*pathbind.StatePropertyRef, completion *pathbind.Completion) {
	r.rendered = make(map[Binding]struct{}, len(refs))

	for _, ref := range refs {
		for _, path := range r.engine.Updater().AffectedPaths(ref.Pattern()) {
			for _, b := range r.registry.BindingsFor(path) {
				if skipsForeignSlot(b, ref) {
					continue
				}
				r.Apply(b)
			}
		}
		if ref.ListIndex != nil {
			for _, b := range r.registry.BindingsForIndex(ref.ListIndex) {
				r.Apply(b)
			}
		}
	}
	_ = completion // resolved by the scheduler when the batch terminates
}

// skipsForeignSlot reports whether b binds a list slot outside the one a
// slot-scoped change targets. Element patterns register one binding per
// slot under the same path, so a write to one element must not fan out to
// its untouched siblings. Pattern-level bindings carry no slot identity
// and always apply.
func skipsForeignSlot(b Binding, ref *pathbind.StatePropertyRef) bool {
	if ref.ListIndex == nil {
		return false
	}
	bi := b.Ref().ListIndex
	return bi != nil && !bi.Within(ref.ListIndex)
}

// IsRendered reports whether b was already applied in this batch.
func (r *Renderer) IsRendered(b Binding) bool {
	_, ok := r.rendered[b]
	return ok
}

// Apply runs b's change once per batch, skipping non-renderable bindings.
func (r *Renderer) Apply(b Binding) {
	if !b.Renderable() || r.IsRendered(b) {
		return
	}
	if r.rendered == nil {
		r.rendered = make(map[Binding]struct{})
	}
	r.rendered[b] = struct{}{}
	b.ApplyChange(r)
}
