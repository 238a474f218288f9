package inspector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/binding"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.PathPrefix != DefaultPathPrefix {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.IsCode(err, "PB401") {
		t.Errorf("expected PB401, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PathPrefix = "no-slash"
	if err := cfg.Validate(); !errors.IsCode(err, "PB401") {
		t.Errorf("prefix without leading slash should be PB401, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Addr = ""
	if err := cfg.Validate(); !errors.IsCode(err, "PB401") {
		t.Errorf("empty addr should be PB401, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Stream.ReadBufferSize = -1
	if err := cfg.Validate(); !errors.IsCode(err, "PB401") {
		t.Errorf("negative buffer should be PB401, got %v", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	body := "addr: 127.0.0.1:7000\npathPrefix: /debug\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7000" || cfg.PathPrefix != "/debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Stream.ReadBufferSize != 1024 {
		t.Errorf("unset fields should keep defaults, got %d", cfg.Stream.ReadBufferSize)
	}
}

func newInspectedEngine(t *testing.T) (*Inspector, *pathbind.Engine) {
	t.Helper()

	engine := pathbind.NewEngine(pathbind.NewStateType("TodoList"),
		pathbind.WithListPaths("items"),
		pathbind.WithTemplatePaths("title"),
		pathbind.WithInitialData(map[string]any{"items": []any{}, "title": ""}),
	)

	in := New(DefaultConfig())
	in.RegisterEngine("todo", engine)
	return in, engine
}

func TestGraphEndpoint(t *testing.T) {
	in, _ := newInspectedEngine(t)

	req := httptest.NewRequest("GET", DefaultPathPrefix+"/graph", nil)
	rec := httptest.NewRecorder()
	in.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var graphs []GraphSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &graphs); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(graphs) != 1 || graphs[0].Engine != "todo" {
		t.Fatalf("unexpected graphs: %+v", graphs)
	}

	paths := make(map[string]PathSnapshot)
	for _, p := range graphs[0].Paths {
		paths[p.Path] = p
	}
	if !paths["items"].IsList {
		t.Error("items should be reported as a list")
	}
	if !paths["items.*"].IsElement {
		t.Error("items.* should be reported as an element")
	}
	if _, ok := paths["title"]; !ok {
		t.Error("title should be in the graph")
	}
}

func TestPoolEndpoint(t *testing.T) {
	in, engine := newInspectedEngine(t)

	registry := binding.NewRegistry()
	_ = binding.NewRenderer(engine, registry)
	ul := vtree.NewElement("ul")
	anchor := vtree.NewComment("for:items")
	ul.AppendChild(anchor)

	stats := &binding.ReconcilerStats{}
	loop := binding.NewLoopBinding(engine, registry, anchor, "items", func() binding.Content {
		return binding.NewBindContent([]*vtree.Node{vtree.NewElement("li")}, nil)
	}, stats)
	in.RegisterLoop("items", loop, stats)

	err := engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.SetPath("items", []any{"a", "b"})
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	req := httptest.NewRequest("GET", DefaultPathPrefix+"/pool", nil)
	rec := httptest.NewRecorder()
	in.Router().ServeHTTP(rec, req)

	var pools []PoolSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &pools); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(pools) != 1 || pools[0].Mounted != 2 {
		t.Fatalf("unexpected pool snapshot: %+v", pools)
	}
	if pools[0].Stats == nil || pools[0].Stats.Minted != 2 {
		t.Errorf("expected 2 minted in stats, got %+v", pools[0].Stats)
	}
}

func TestActivityEndpoint(t *testing.T) {
	in, engine := newInspectedEngine(t)
	engine.Activity().Begin()
	defer engine.Activity().End()

	req := httptest.NewRequest("GET", DefaultPathPrefix+"/activity", nil)
	rec := httptest.NewRecorder()
	in.Router().ServeHTTP(rec, req)

	var acts []ActivitySnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &acts); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(acts) != 1 || !acts[0].Updating {
		t.Errorf("expected in-flight activity, got %+v", acts)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	in, _ := newInspectedEngine(t)

	req := httptest.NewRequest("GET", DefaultPathPrefix+"/metrics", nil)
	rec := httptest.NewRecorder()
	in.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("metrics endpoint should serve, got %d", rec.Code)
	}
}

func TestStreamBroadcastsBatches(t *testing.T) {
	in, _ := newInspectedEngine(t)

	srv := httptest.NewServer(in.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + DefaultPathPrefix + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Wait for the server side to register the subscriber.
	deadline := time.Now().Add(time.Second)
	for in.Stream().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	observed := in.ObserveRenderer("todo", nil)
	typ := pathbind.NewStateType("TodoList")
	engine := pathbind.NewEngine(typ,
		pathbind.WithTemplatePaths("title"),
		pathbind.WithInitialData(map[string]any{}),
		pathbind.WithRenderer(observed),
	)
	err = engine.Update(context.Background(), func(ws *pathbind.WritableState) error {
		return ws.SetPath("title", "hello")
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg BatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message: %v", err)
	}
	if msg.Engine != "todo" || msg.Count != 1 || msg.Paths[0] != "title" {
		t.Errorf("unexpected batch message: %+v", msg)
	}
}
