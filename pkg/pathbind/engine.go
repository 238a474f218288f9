package pathbind

import "context"

// Engine ties one component instance's reactive machinery together: the
// state type's registration table, the path manager, the backing data,
// the ref store, and the updater running on a cooperative task loop.
type Engine struct {
	typ      *StateType
	manager  *PathManager
	loop     *TaskLoop
	refs     *RefStore
	updater  *Updater
	activity *UpdateActivityTracker
	eval     *evalStack
	renderer Renderer
	metrics  *Metrics

	data map[string]any

	templatePaths []string
	listPaths     []string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTemplatePaths seeds the path manager with the state paths the
// component's templates reference.
func WithTemplatePaths(paths ...string) EngineOption {
	return func(e *Engine) {
		e.templatePaths = append(e.templatePaths, paths...)
	}
}

// WithListPaths seeds the path manager with the loop-binding paths.
func WithListPaths(paths ...string) EngineOption {
	return func(e *Engine) {
		e.listPaths = append(e.listPaths, paths...)
	}
}

// WithRenderer sets the renderer invoked per flushed batch.
func WithRenderer(r Renderer) EngineOption {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithMetrics attaches scheduler metrics.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithInitialData sets the backing state data.
func WithInitialData(data map[string]any) EngineOption {
	return func(e *Engine) {
		e.data = data
	}
}

// NewEngine creates the reactive engine for one component instance.
func NewEngine(typ *StateType, opts ...EngineOption) *Engine {
	e := &Engine{
		typ:      typ,
		loop:     NewTaskLoop(),
		refs:     NewRefStore(),
		activity: NewUpdateActivityTracker(),
		data:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.manager = NewPathManager(typ, e.templatePaths, e.listPaths)
	e.eval = newEvalStack(e.manager)
	e.updater = newUpdater(e)
	return e
}

// Type returns the state type.
func (e *Engine) Type() *StateType {
	return e.typ
}

// Manager returns the path manager.
func (e *Engine) Manager() *PathManager {
	return e.manager
}

// Updater returns the scheduler.
func (e *Engine) Updater() *Updater {
	return e.updater
}

// Loop returns the cooperative task loop.
func (e *Engine) Loop() *TaskLoop {
	return e.loop
}

// Refs returns the ref store.
func (e *Engine) Refs() *RefStore {
	return e.refs
}

// Activity returns the update activity tracker.
func (e *Engine) Activity() *UpdateActivityTracker {
	return e.activity
}

// SetRenderer replaces the renderer. Intended for wiring during setup,
// before any updates run.
func (e *Engine) SetRenderer(r Renderer) {
	e.renderer = r
}

// CreateReadonlyState returns a read-only view over the engine state.
func (e *Engine) CreateReadonlyState() *ReadonlyState {
	return &ReadonlyState{engine: e}
}

// writableState builds the writable view handed to update callbacks.
func (e *Engine) writableState(loopCtx *LoopContext) *WritableState {
	return &WritableState{ReadonlyState{engine: e, loopCtx: loopCtx}}
}

// Update runs fn with a writable state at the top level of the task loop.
func (e *Engine) Update(ctx context.Context, fn func(ws *WritableState) error) error {
	return e.updater.Update(ctx, nil, fn)
}

// Connect invokes the connected lifecycle hook, if declared.
func (e *Engine) Connect(ctx context.Context) error {
	if !e.typ.hasConnected || e.typ.connected == nil {
		return nil
	}
	return e.updater.Update(ctx, nil, func(ws *WritableState) error {
		e.typ.connected(ws)
		return nil
	})
}

// Disconnect invokes the disconnected lifecycle hook, if declared.
func (e *Engine) Disconnect(ctx context.Context) error {
	if !e.typ.hasDisconnected || e.typ.disconnected == nil {
		return nil
	}
	return e.updater.Update(ctx, nil, func(ws *WritableState) error {
		e.typ.disconnected(ws)
		return nil
	})
}
