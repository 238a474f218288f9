package binding

import (
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

// Content is one pooled view fragment bound to a single list element.
// Lifecycle: minted by a ContentFactory, activated against an element ref,
// mounted, and on unmount inactivated and returned to the pool for reuse.
type Content interface {
	// Nodes returns the fragment's top-level nodes in visual order.
	Nodes() []*vtree.Node

	// Ref returns the element ref this content currently renders,
	// nil while pooled.
	Ref() *pathbind.StatePropertyRef

	// Activate binds the content to an element ref.
	Activate(ref *pathbind.StatePropertyRef)

	// Inactivate unbinds the content before it returns to the pool.
	Inactivate()

	// ApplyChange re-renders the content in place.
	ApplyChange(r *Renderer)
}

// ContentFactory mints a fresh content fragment.
type ContentFactory func() Content

// BindContent is the default Content implementation: a node fragment plus
// a render callback invoked for in-place overwrites.
type BindContent struct {
	nodes  []*vtree.Node
	ref    *pathbind.StatePropertyRef
	render func(c *BindContent, r *Renderer)
}

// NewBindContent creates a content over the given top-level nodes.
// render may be nil for static fragments.
func NewBindContent(nodes []*vtree.Node, render func(c *BindContent, r *Renderer)) *BindContent {
	return &BindContent{nodes: nodes, render: render}
}

// Nodes implements Content.
func (c *BindContent) Nodes() []*vtree.Node {
	return c.nodes
}

// Ref implements Content.
func (c *BindContent) Ref() *pathbind.StatePropertyRef {
	return c.ref
}

// Activate implements Content.
func (c *BindContent) Activate(ref *pathbind.StatePropertyRef) {
	c.ref = ref
}

// Inactivate implements Content.
func (c *BindContent) Inactivate() {
	c.ref = nil
}

// ApplyChange implements Content.
func (c *BindContent) ApplyChange(r *Renderer) {
	if c.render != nil {
		c.render(c, r)
	}
}
