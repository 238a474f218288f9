package inspector

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pathbind-dev/pathbind/pkg/binding"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
)

// Inspector serves snapshots of one or more registered engines.
type Inspector struct {
	cfg    *Config
	stream *BatchStream

	mu      sync.RWMutex
	engines map[string]*pathbind.Engine
	loops   map[string]*binding.LoopBinding
	stats   map[string]*binding.ReconcilerStats
}

// New creates an inspector. A nil cfg takes the defaults.
func New(cfg *Config) *Inspector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Inspector{
		cfg:     cfg,
		stream:  NewBatchStream(cfg.Stream),
		engines: make(map[string]*pathbind.Engine),
		loops:   make(map[string]*binding.LoopBinding),
		stats:   make(map[string]*binding.ReconcilerStats),
	}
}

// Stream returns the batch stream for direct notification wiring.
func (in *Inspector) Stream() *BatchStream {
	return in.stream
}

// RegisterEngine exposes an engine under name.
func (in *Inspector) RegisterEngine(name string, e *pathbind.Engine) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.engines[name] = e
}

// RegisterLoop exposes a loop binding's pool and counters under name.
func (in *Inspector) RegisterLoop(name string, loop *binding.LoopBinding, stats *binding.ReconcilerStats) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.loops[name] = loop
	if stats != nil {
		in.stats[name] = stats
	}
}

// ObserveRenderer wraps a renderer so every flushed batch is mirrored to
// the stream before the wrapped renderer runs.
func (in *Inspector) ObserveRenderer(name string, next pathbind.Renderer) pathbind.Renderer {
	return pathbind.RenderFunc(func(refs []*pathbind.StatePropertyRef, completion *pathbind.Completion) {
		in.stream.NotifyBatch(name, refs)
		if next != nil {
			next.Render(refs, completion)
		}
	})
}

// Router builds the inspector's HTTP routes under the configured prefix.
func (in *Inspector) Router() http.Handler {
	r := chi.NewRouter()
	r.Route(in.cfg.PathPrefix, func(r chi.Router) {
		r.Get("/graph", in.handleGraph)
		r.Get("/pool", in.handlePool)
		r.Get("/activity", in.handleActivity)
		r.Get("/stream", in.stream.HandleWebSocket)
		if in.cfg.Metrics {
			r.Handle("/metrics", promhttp.Handler())
		}
	})
	return r
}

// ListenAndServe runs a standalone inspector server on the configured
// address. It blocks like http.ListenAndServe.
func (in *Inspector) ListenAndServe() error {
	return http.ListenAndServe(in.cfg.Addr, in.Router())
}

// PathSnapshot is the exported view of one registered path.
type PathSnapshot struct {
	Path        string   `json:"path"`
	IsList      bool     `json:"isList,omitempty"`
	IsElement   bool     `json:"isElement,omitempty"`
	HasGetter   bool     `json:"hasGetter,omitempty"`
	HasSetter   bool     `json:"hasSetter,omitempty"`
	HasFunc     bool     `json:"hasFunc,omitempty"`
	StaticDeps  []string `json:"staticDeps,omitempty"`
	DynamicDeps []string `json:"dynamicDeps,omitempty"`
}

// GraphSnapshot is the exported dependency graph of one engine.
type GraphSnapshot struct {
	Engine string         `json:"engine"`
	Paths  []PathSnapshot `json:"paths"`
}

func (in *Inspector) handleGraph(w http.ResponseWriter, r *http.Request) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]GraphSnapshot, 0, len(in.engines))
	for _, name := range sortedKeys(in.engines) {
		m := in.engines[name].Manager()
		snap := GraphSnapshot{Engine: name}
		for _, path := range m.Alls() {
			snap.Paths = append(snap.Paths, PathSnapshot{
				Path:        path,
				IsList:      m.IsList(path),
				IsElement:   m.IsElement(path),
				HasGetter:   m.HasGetter(path),
				HasSetter:   m.HasSetter(path),
				HasFunc:     m.HasFunc(path),
				StaticDeps:  m.StaticDependencies(path),
				DynamicDeps: m.DynamicDependencies(path),
			})
		}
		out = append(out, snap)
	}
	writeJSON(w, out)
}

// PoolSnapshot is the exported view of one loop binding's pool.
type PoolSnapshot struct {
	Loop    string                      `json:"loop"`
	Size    int                         `json:"size"`
	Mounted int                         `json:"mounted"`
	Stats   *binding.ReconcilerSnapshot `json:"stats,omitempty"`
}

func (in *Inspector) handlePool(w http.ResponseWriter, r *http.Request) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]PoolSnapshot, 0, len(in.loops))
	for _, name := range sortedKeys(in.loops) {
		loop := in.loops[name]
		snap := PoolSnapshot{
			Loop:    name,
			Size:    loop.PoolSize(),
			Mounted: len(loop.BindContents()),
		}
		if stats, ok := in.stats[name]; ok {
			s := stats.Snapshot()
			snap.Stats = &s
		}
		out = append(out, snap)
	}
	writeJSON(w, out)
}

// ActivitySnapshot is the exported scheduler state of one engine.
type ActivitySnapshot struct {
	Engine   string `json:"engine"`
	Updating bool   `json:"updating"`
	Version  uint64 `json:"version"`
	Revision uint64 `json:"revision"`
}

func (in *Inspector) handleActivity(w http.ResponseWriter, r *http.Request) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]ActivitySnapshot, 0, len(in.engines))
	for _, name := range sortedKeys(in.engines) {
		e := in.engines[name]
		out = append(out, ActivitySnapshot{
			Engine:   name,
			Updating: e.Activity().IsUpdating(),
			Version:  e.Updater().Version(),
			Revision: e.Updater().Revision(),
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
