package binding

import (
	"context"
	"fmt"

	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

// BindMode controls the direction and lifetime of a property binding.
type BindMode int

const (
	// ModeOneWay pushes state changes into the view.
	ModeOneWay BindMode = iota
	// ModeTwoWay additionally writes view changes back to state.
	ModeTwoWay
	// ModeOneTime renders once and never updates again.
	ModeOneTime
)

var decoratorModes = map[string]BindMode{
	"oneway":  ModeOneWay,
	"twoway":  ModeTwoWay,
	"onetime": ModeOneTime,
}

// ParseDecorators resolves a decorator list to a bind mode. More than one
// mode decorator on the same binding is the PB202 usage error.
func ParseDecorators(decorators []string) (BindMode, error) {
	mode := ModeOneWay
	seen := ""
	for _, d := range decorators {
		m, ok := decoratorModes[d]
		if !ok {
			return ModeOneWay, errors.Newf(errors.CategoryUsage, "unknown binding decorator %q", d)
		}
		if seen != "" {
			return ModeOneWay, errors.New("PB202").
				With("decorator", d).
				With("conflictsWith", seen)
		}
		seen = d
		mode = m
	}
	return mode, nil
}

// TextBinding renders a state property as a text node's content.
type TextBinding struct {
	engine *pathbind.Engine
	node   *vtree.Node
	ref    *pathbind.StatePropertyRef
	mode   BindMode

	renderable bool
	renderedAt int
}

// NewTextBinding creates a text binding and registers it.
func NewTextBinding(engine *pathbind.Engine, registry *Registry, node *vtree.Node, ref *pathbind.StatePropertyRef, decorators ...string) (*TextBinding, error) {
	mode, err := ParseDecorators(decorators)
	if err != nil {
		return nil, err
	}
	b := &TextBinding{
		engine:     engine,
		node:       node,
		ref:        ref,
		mode:       mode,
		renderable: true,
	}
	registry.Register(b)
	return b, nil
}

// Ref implements Binding.
func (b *TextBinding) Ref() *pathbind.StatePropertyRef {
	return b.ref
}

// Renderable implements Binding.
func (b *TextBinding) Renderable() bool {
	if b.mode == ModeOneTime && b.renderedAt > 0 {
		return false
	}
	return b.renderable
}

// SetRenderable toggles whether the binding accepts changes.
func (b *TextBinding) SetRenderable(v bool) {
	b.renderable = v
}

// ApplyChange implements Binding.
func (b *TextBinding) ApplyChange(r *Renderer) {
	rs := b.engine.CreateReadonlyState()
	b.node.Text = stringify(rs.Get(b.ref))
	b.renderedAt++
}

// AssignValue implements Binding. Text nodes are not input surfaces, so
// view-originated assignment is unsupported.
func (b *TextBinding) AssignValue(value any) error {
	return errors.New("PB203").
		With("pattern", b.ref.Pattern()).
		With("kind", "text")
}

// AttrBinding renders a state property as an element attribute.
type AttrBinding struct {
	engine *pathbind.Engine
	node   *vtree.Node
	attr   string
	ref    *pathbind.StatePropertyRef
	mode   BindMode

	renderable bool
	renderedAt int
}

// NewAttrBinding creates an attribute binding and registers it.
func NewAttrBinding(engine *pathbind.Engine, registry *Registry, node *vtree.Node, attr string, ref *pathbind.StatePropertyRef, decorators ...string) (*AttrBinding, error) {
	mode, err := ParseDecorators(decorators)
	if err != nil {
		return nil, err
	}
	b := &AttrBinding{
		engine:     engine,
		node:       node,
		attr:       attr,
		ref:        ref,
		mode:       mode,
		renderable: true,
	}
	registry.Register(b)
	return b, nil
}

// Ref implements Binding.
func (b *AttrBinding) Ref() *pathbind.StatePropertyRef {
	return b.ref
}

// Renderable implements Binding.
func (b *AttrBinding) Renderable() bool {
	if b.mode == ModeOneTime && b.renderedAt > 0 {
		return false
	}
	return b.renderable
}

// SetRenderable toggles whether the binding accepts changes.
func (b *AttrBinding) SetRenderable(v bool) {
	b.renderable = v
}

// ApplyChange implements Binding.
func (b *AttrBinding) ApplyChange(r *Renderer) {
	rs := b.engine.CreateReadonlyState()
	b.node.SetAttr(b.attr, stringify(rs.Get(b.ref)))
	b.renderedAt++
}

// AssignValue implements Binding. Under ModeTwoWay the value writes back
// to state through the scheduler; one-way attribute bindings reject it.
func (b *AttrBinding) AssignValue(value any) error {
	if b.mode != ModeTwoWay {
		return errors.New("PB203").
			With("pattern", b.ref.Pattern()).
			With("kind", "attr")
	}
	err := b.engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.Set(b.ref, value)
	})
	if be, ok := err.(*errors.BindError); ok && be.Code == "PB301" {
		be.With("pattern", b.ref.Pattern()).With("attr", b.attr)
	}
	return err
}

// EventBinding invokes a declared method member when its event fires.
// It never renders; registration keeps it discoverable for teardown.
type EventBinding struct {
	engine *pathbind.Engine
	node   *vtree.Node
	event  string
	method string
	ref    *pathbind.StatePropertyRef
}

// NewEventBinding creates an event binding and registers it.
func NewEventBinding(engine *pathbind.Engine, registry *Registry, node *vtree.Node, event, method string) *EventBinding {
	b := &EventBinding{
		engine: engine,
		node:   node,
		event:  event,
		method: method,
		ref:    engine.Refs().GetRefByPattern(method, nil),
	}
	registry.Register(b)
	return b
}

// Ref implements Binding.
func (b *EventBinding) Ref() *pathbind.StatePropertyRef {
	return b.ref
}

// Renderable implements Binding: event bindings never render.
func (b *EventBinding) Renderable() bool {
	return false
}

// ApplyChange implements Binding; nothing to render.
func (b *EventBinding) ApplyChange(r *Renderer) {}

// AssignValue implements Binding.
func (b *EventBinding) AssignValue(value any) error {
	return errors.New("PB203").With("name", b.method).With("kind", "event")
}

// Trigger fires the bound method inside an update. A missing or
// non-callable member surfaces as PB201 underneath the PB301 wrapper,
// which carries the event and method names for diagnostics.
func (b *EventBinding) Trigger(ctx context.Context, args ...any) error {
	err := b.engine.Update(ctx, func(ws *pathbind.WritableState) error {
		_, err := ws.Call(b.method, args...)
		return err
	})
	if be, ok := err.(*errors.BindError); ok && be.Code == "PB301" {
		be.With("event", b.event).With("method", b.method)
	}
	return err
}

// stringify renders a bound value for the view; nil becomes empty.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
