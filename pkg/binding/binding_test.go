package binding

import (
	"context"
	"fmt"
	"testing"

	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/listdiff"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

type listFixture struct {
	engine   *pathbind.Engine
	registry *Registry
	renderer *Renderer
	stats    *ReconcilerStats
	ul       *vtree.Node
	anchor   *vtree.Node
	loop     *LoopBinding
}

func newListFixture(t *testing.T) *listFixture {
	t.Helper()

	typ := pathbind.NewStateType("TodoList")
	engine := pathbind.NewEngine(typ,
		pathbind.WithListPaths("items"),
		pathbind.WithTemplatePaths("title"),
		pathbind.WithInitialData(map[string]any{
			"items": []any{},
			"title": "",
		}),
	)
	registry := NewRegistry()
	renderer := NewRenderer(engine, registry)

	doc := vtree.NewDocument()
	ul := vtree.NewElement("ul")
	anchor := vtree.NewComment("for:items")
	doc.AppendChild(ul)
	ul.AppendChild(anchor)

	stats := &ReconcilerStats{}
	loop := NewLoopBinding(engine, registry, anchor, "items", itemFactory(engine), stats)

	return &listFixture{
		engine:   engine,
		registry: registry,
		renderer: renderer,
		stats:    stats,
		ul:       ul,
		anchor:   anchor,
		loop:     loop,
	}
}

// itemFactory mints an <li> whose text tracks the bound element value.
func itemFactory(engine *pathbind.Engine) ContentFactory {
	return func() Content {
		li := vtree.NewElement("li")
		txt := vtree.NewText("")
		li.AppendChild(txt)
		return NewBindContent([]*vtree.Node{li}, func(c *BindContent, r *Renderer) {
			rs := engine.CreateReadonlyState()
			if v := rs.Get(c.Ref()); v == nil {
				txt.Text = ""
			} else {
				txt.Text = fmt.Sprint(v)
			}
		})
	}
}

func (f *listFixture) setItems(t *testing.T, items ...any) {
	t.Helper()
	err := f.engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.SetPath("items", items)
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
}

// itemTexts returns the rendered text of each mounted <li> in order.
func (f *listFixture) itemTexts() []string {
	var out []string
	for _, child := range f.ul.Children() {
		if child.Kind != vtree.KindElement || child.Tag != "li" {
			continue
		}
		if kids := child.Children(); len(kids) > 0 {
			out = append(out, kids[0].Text)
		}
	}
	return out
}

func expectPanicCode(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %s panic, got none", code)
		}
		err, ok := r.(error)
		if !ok || !errors.IsCode(err, code) {
			t.Fatalf("expected %s panic, got %v", code, r)
		}
	}()
	fn()
}

func TestLoopMountsAndRenders(t *testing.T) {
	f := newListFixture(t)
	f.setItems(t, "a", "b", "c")

	if got := f.ul.ChildCount(); got != 4 {
		t.Fatalf("expected anchor + 3 items, got %d children", got)
	}
	texts := f.itemTexts()
	if len(texts) != 3 || texts[0] != "a" || texts[1] != "b" || texts[2] != "c" {
		t.Errorf("unexpected item texts: %v", texts)
	}
	if snap := f.stats.Snapshot(); snap.Minted != 3 || snap.FastBulkAppends != 1 {
		t.Errorf("expected 3 minted via one bulk append, got %+v", snap)
	}
}

func TestPoolConservation(t *testing.T) {
	f := newListFixture(t)

	f.setItems(t, "a", "b", "c")
	if f.loop.PoolSize() != 0 {
		t.Fatalf("pool should be empty while everything is mounted, got %d", f.loop.PoolSize())
	}

	f.setItems(t)
	if got := f.ul.ChildCount(); got != 1 {
		t.Fatalf("expected only the anchor after remove-all, got %d children", got)
	}
	if f.loop.PoolSize() != 3 {
		t.Fatalf("expected 3 pooled contents, got %d", f.loop.PoolSize())
	}

	f.setItems(t, "x", "y")
	if f.loop.PoolSize() != 1 {
		t.Errorf("expected 1 content left in the pool, got %d", f.loop.PoolSize())
	}
	snap := f.stats.Snapshot()
	if snap.Minted != 3 {
		t.Errorf("re-adding should reuse pooled contents, minted=%d", snap.Minted)
	}
	if snap.PoolHits != 2 {
		t.Errorf("expected 2 pool hits, got %d", snap.PoolHits)
	}
	if snap.FastClears != 1 {
		t.Errorf("expected 1 fast clear, got %d", snap.FastClears)
	}
	texts := f.itemTexts()
	if len(texts) != 2 || texts[0] != "x" || texts[1] != "y" {
		t.Errorf("unexpected item texts after reuse: %v", texts)
	}
}

func TestClearSparesForeignSiblings(t *testing.T) {
	f := newListFixture(t)
	static := vtree.NewElement("p")
	f.ul.AppendChild(static)

	f.setItems(t, "a", "b")
	f.setItems(t)

	if static.Parent() != f.ul {
		t.Error("foreign sibling should survive a remove-all")
	}
	if f.anchor.Parent() != f.ul {
		t.Error("anchor should survive a remove-all")
	}
	if texts := f.itemTexts(); len(texts) != 0 {
		t.Errorf("expected no items, got %v", texts)
	}
	if f.loop.PoolSize() != 2 {
		t.Errorf("expected 2 pooled contents, got %d", f.loop.PoolSize())
	}
}

func TestReorderPreservesNodes(t *testing.T) {
	f := newListFixture(t)
	f.setItems(t, "a", "b", "c")

	before := make(map[string]*vtree.Node)
	for _, c := range f.loop.BindContents() {
		node := c.Nodes()[0]
		before[node.Children()[0].Text] = node
	}

	f.setItems(t, "c", "a", "b")

	texts := f.itemTexts()
	if len(texts) != 3 || texts[0] != "c" || texts[1] != "a" || texts[2] != "b" {
		t.Fatalf("unexpected order after reorder: %v", texts)
	}
	for i, c := range f.loop.BindContents() {
		node := c.Nodes()[0]
		if before[texts[i]] != node {
			t.Errorf("element %q should keep its node across a reorder", texts[i])
		}
	}
	snap := f.stats.Snapshot()
	if snap.Minted != 3 {
		t.Errorf("a pure reorder should mint nothing, minted=%d", snap.Minted)
	}
	if snap.Reorders == 0 {
		t.Error("expected at least one recorded reorder")
	}
}

func TestOverwriteRerendersInPlace(t *testing.T) {
	f := newListFixture(t)
	f.setItems(t, "a", "b")

	// Write the element value behind the loop's back, then reconcile an
	// identity-stable diff with the slot marked dirty.
	err := f.engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		ref := ws.Ref("items.*", f.loop.lastIndexes[1])
		return ws.SetRaw(ref, "B")
	})
	if err != nil {
		t.Fatalf("element write failed: %v", err)
	}

	old := append([]any(nil), f.loop.lastValues...)
	diff := listdiff.Compare(old, f.loop.lastIndexes, old, nil)
	diff.MarkOverwrite(f.loop.lastIndexes[1])
	f.loop.Reconcile(diff, f.renderer)

	texts := f.itemTexts()
	if len(texts) != 2 || texts[1] != "B" {
		t.Errorf("expected overwritten slot to re-render, got %v", texts)
	}
	if texts[0] != "a" {
		t.Errorf("untouched slot should keep its text, got %q", texts[0])
	}
	if snap := f.stats.Snapshot(); snap.Overwrites != 1 {
		t.Errorf("expected 1 overwrite, got %d", snap.Overwrites)
	}
}

func TestNilDiffIsFatal(t *testing.T) {
	f := newListFixture(t)
	expectPanicCode(t, "PB104", func() {
		f.loop.Reconcile(nil, f.renderer)
	})
}

func TestLoopRejectsAssignValue(t *testing.T) {
	f := newListFixture(t)
	err := f.loop.AssignValue("nope")
	if !errors.IsCode(err, "PB203") {
		t.Errorf("expected PB203, got %v", err)
	}
}

func TestTextBindingThroughBatch(t *testing.T) {
	f := newListFixture(t)
	node := vtree.NewText("")
	ref := f.engine.Refs().GetRefByPattern("title", nil)

	tb, err := NewTextBinding(f.engine, f.registry, node, ref)
	if err != nil {
		t.Fatalf("NewTextBinding: %v", err)
	}

	err = f.engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.SetPath("title", "hello")
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if node.Text != "hello" {
		t.Errorf("expected text %q, got %q", "hello", node.Text)
	}

	if e := tb.AssignValue("x"); !errors.IsCode(e, "PB203") {
		t.Errorf("text bindings should reject assignValue, got %v", e)
	}
}

func TestOneTimeBindingRendersOnce(t *testing.T) {
	f := newListFixture(t)
	node := vtree.NewText("")
	ref := f.engine.Refs().GetRefByPattern("title", nil)

	if _, err := NewTextBinding(f.engine, f.registry, node, ref, "onetime"); err != nil {
		t.Fatalf("NewTextBinding: %v", err)
	}

	update := func(v string) {
		err := f.engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
			return ws.SetPath("title", v)
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	update("first")
	update("second")
	if node.Text != "first" {
		t.Errorf("onetime binding should keep its first render, got %q", node.Text)
	}
}

func TestParseDecorators(t *testing.T) {
	if _, err := ParseDecorators([]string{"twoway"}); err != nil {
		t.Errorf("single decorator should parse, got %v", err)
	}
	if _, err := ParseDecorators([]string{"oneway", "twoway"}); !errors.IsCode(err, "PB202") {
		t.Errorf("conflicting decorators should be PB202, got %v", err)
	}
	if _, err := ParseDecorators([]string{"bogus"}); err == nil {
		t.Error("unknown decorator should error")
	}
}

func TestPoolBulkRelease(t *testing.T) {
	var p ContentPool
	first := make([]Content, 3)
	for i := range first {
		first[i] = NewBindContent(nil, nil)
	}
	p.Release(first)
	if p.Size() != 3 || p.HighWater() != 3 {
		t.Fatalf("expected size 3, got size=%d high=%d", p.Size(), p.HighWater())
	}

	big := make([]Content, bulkConcatThreshold)
	for i := range big {
		big[i] = NewBindContent(nil, nil)
	}
	p.Release(big)
	if p.Size() != 3+bulkConcatThreshold {
		t.Fatalf("bulk release lost contents: %d", p.Size())
	}

	for i := 0; i < 3+bulkConcatThreshold; i++ {
		if p.Acquire() == nil {
			t.Fatalf("pool ran dry at %d", i)
		}
	}
	if p.Acquire() != nil {
		t.Error("empty pool should return nil")
	}
	if p.HighWater() != 3+bulkConcatThreshold {
		t.Errorf("high water should persist after drain, got %d", p.HighWater())
	}
}

func TestArenaGenerations(t *testing.T) {
	var a contentArena
	li := pathbind.NewListIndex(nil, 0)
	c1 := NewBindContent(nil, nil)

	a.store(li, c1)
	if got, ok := a.lookup(li); !ok || got != c1 {
		t.Fatal("lookup should find stored content")
	}

	removed, ok := a.remove(li)
	if !ok || removed != c1 {
		t.Fatal("remove should return the stored content")
	}
	if _, ok := a.lookup(li); ok {
		t.Error("lookup after remove should miss")
	}

	// Slot reuse must not resurrect the old identity's content.
	li2 := pathbind.NewListIndex(nil, 1)
	c2 := NewBindContent(nil, nil)
	a.store(li2, c2)
	li.SetArenaHandle(0, 1) // forge the stale handle
	if _, ok := a.lookup(li); ok {
		t.Error("stale generation must not resolve to reused slot content")
	}
	if got, ok := a.lookup(li2); !ok || got != c2 {
		t.Error("current handle should still resolve")
	}
}

func TestElementWriteSkipsSiblingSlots(t *testing.T) {
	typ := pathbind.NewStateType("TodoList")
	engine := pathbind.NewEngine(typ,
		pathbind.WithListPaths("items"),
		pathbind.WithInitialData(map[string]any{"items": []any{"a", "b"}}),
	)
	registry := NewRegistry()
	NewRenderer(engine, registry)

	li0 := pathbind.NewListIndex(nil, 0)
	li1 := pathbind.NewListIndex(nil, 1)
	ref0 := engine.Refs().GetRefByPattern("items.*", li0)
	ref1 := engine.Refs().GetRefByPattern("items.*", li1)

	t0 := vtree.NewText("")
	t1 := vtree.NewText("")
	b0, err := NewTextBinding(engine, registry, t0, ref0)
	if err != nil {
		t.Fatalf("binding failed: %v", err)
	}
	b1, err := NewTextBinding(engine, registry, t1, ref1)
	if err != nil {
		t.Fatalf("binding failed: %v", err)
	}

	err = engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.Set(ref0, "A")
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if b0.renderedAt != 1 || t0.Text != "A" {
		t.Errorf("written slot should render once, got renders=%d text=%q", b0.renderedAt, t0.Text)
	}
	if b1.renderedAt != 0 || t1.Text != "" {
		t.Errorf("untouched sibling slot must not re-render, got renders=%d text=%q", b1.renderedAt, t1.Text)
	}
}

func TestTriggerErrorCarriesEventContext(t *testing.T) {
	typ := pathbind.NewStateType("Form")
	typ.Method("Submit", func(ws *pathbind.WritableState, args ...any) (any, error) {
		return nil, errors.Newf(errors.CategoryUsage, "validation failed")
	})
	engine := pathbind.NewEngine(typ, pathbind.WithTemplatePaths("title"))
	registry := NewRegistry()

	btn := vtree.NewElement("button")
	eb := NewEventBinding(engine, registry, btn, "click", "Submit")

	err := eb.Trigger(context.Background())
	be, ok := err.(*errors.BindError)
	if !ok || be.Code != "PB301" {
		t.Fatalf("expected PB301, got %v", err)
	}
	if be.Context["event"] != "click" || be.Context["method"] != "Submit" {
		t.Errorf("wrapper should carry event context, got %v", be.Context)
	}
}

func TestTwoWayAssignErrorCarriesContext(t *testing.T) {
	typ := pathbind.NewStateType("Form")
	typ.Setter("title", func(ws *pathbind.WritableState, ref *pathbind.StatePropertyRef, value any) error {
		return errors.Newf(errors.CategoryUsage, "rejected")
	})
	engine := pathbind.NewEngine(typ, pathbind.WithTemplatePaths("title"))
	registry := NewRegistry()

	input := vtree.NewElement("input")
	ab, err := NewAttrBinding(engine, registry, input, "value",
		engine.Refs().GetRefByPattern("title", nil), "twoway")
	if err != nil {
		t.Fatalf("binding failed: %v", err)
	}

	err = ab.AssignValue("x")
	be, ok := err.(*errors.BindError)
	if !ok || be.Code != "PB301" {
		t.Fatalf("expected PB301, got %v", err)
	}
	if be.Context["pattern"] != "title" || be.Context["attr"] != "value" {
		t.Errorf("wrapper should carry the binding target, got %v", be.Context)
	}
}
