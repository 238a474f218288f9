package binding

import "github.com/pathbind-dev/pathbind/pkg/pathbind"

// Binding is one live connection between a state-property ref and a view.
type Binding interface {
	// Ref returns the bound state-property ref.
	Ref() *pathbind.StatePropertyRef

	// Renderable reports whether the binding currently accepts changes.
	// Bindings inside inactive (pooled) content report false.
	Renderable() bool

	// ApplyChange re-reads the bound value and updates the view.
	ApplyChange(r *Renderer)

	// AssignValue pushes a view-originated value into the binding's node.
	// Bindings without a meaningful assignment target return PB203.
	AssignValue(value any) error
}

// Registry indexes live bindings by path pattern and, for element-level
// bindings, by list-slot identity, so a flushed batch can fan out to the
// exact views it touches.
type Registry struct {
	byPath  map[string][]Binding
	byIndex map[*pathbind.ListIndex][]Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPath:  make(map[string][]Binding),
		byIndex: make(map[*pathbind.ListIndex][]Binding),
	}
}

// Register adds b to the indexes.
func (g *Registry) Register(b Binding) {
	ref := b.Ref()
	g.byPath[ref.Pattern()] = append(g.byPath[ref.Pattern()], b)
	if ref.ListIndex != nil {
		g.byIndex[ref.ListIndex] = append(g.byIndex[ref.ListIndex], b)
	}
}

// Unregister removes b from the indexes.
func (g *Registry) Unregister(b Binding) {
	ref := b.Ref()
	g.byPath[ref.Pattern()] = removeBinding(g.byPath[ref.Pattern()], b)
	if len(g.byPath[ref.Pattern()]) == 0 {
		delete(g.byPath, ref.Pattern())
	}
	if ref.ListIndex != nil {
		g.byIndex[ref.ListIndex] = removeBinding(g.byIndex[ref.ListIndex], b)
		if len(g.byIndex[ref.ListIndex]) == 0 {
			delete(g.byIndex, ref.ListIndex)
		}
	}
}

// BindingsFor returns the bindings registered under a path pattern.
func (g *Registry) BindingsFor(pattern string) []Binding {
	return g.byPath[pattern]
}

// BindingsForIndex returns the bindings registered under a list-slot
// identity, across all patterns.
func (g *Registry) BindingsForIndex(li *pathbind.ListIndex) []Binding {
	return g.byIndex[li]
}

func removeBinding(list []Binding, b Binding) []Binding {
	for i, cur := range list {
		if cur == b {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
