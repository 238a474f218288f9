package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathbind-dev/pathbind/pkg/binding"
	"github.com/pathbind-dev/pathbind/pkg/inspector"
	"github.com/pathbind-dev/pathbind/pkg/pathbind"
	"github.com/pathbind-dev/pathbind/pkg/vtree"
)

type profile struct {
	Name       string
	Iterations int
	ListSize   int
}

var profiles = map[string]profile{
	"fast": {
		Name:       "fast",
		Iterations: 2_000,
		ListSize:   20,
	},
	"standard": {
		Name:       "standard",
		Iterations: 10_000,
		ListSize:   50,
	},
	"stress": {
		Name:       "stress",
		Iterations: 50_000,
		ListSize:   200,
	},
}

type runConfig struct {
	Profile    string
	Iterations int
	ListSize   int
	Seed       int64
	JSONOutput string
	ServeAddr  string
}

type runResult struct {
	Profile       string                     `json:"profile"`
	Iterations    int                        `json:"iterations"`
	ListSize      int                        `json:"listSize"`
	Duration      string                     `json:"duration"`
	UpdatesPerSec float64                    `json:"updatesPerSec"`
	Batches       int64                      `json:"batches"`
	PoolSize      int                        `json:"poolSize"`
	PoolHighWater int                        `json:"poolHighWater"`
	Mounted       int                        `json:"mounted"`
	Reconciler    binding.ReconcilerSnapshot `json:"reconciler"`
}

func runCmd() *cobra.Command {
	cfg := runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic update storm",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := profiles[cfg.Profile]
			if !ok {
				return fmt.Errorf("unknown profile %q (fast, standard, stress)", cfg.Profile)
			}
			if cfg.Iterations == 0 {
				cfg.Iterations = p.Iterations
			}
			if cfg.ListSize == 0 {
				cfg.ListSize = p.ListSize
			}
			return runStorm(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Profile, "profile", "standard", "storm profile: fast, standard, stress")
	cmd.Flags().IntVar(&cfg.Iterations, "iterations", 0, "override the profile's update count")
	cmd.Flags().IntVar(&cfg.ListSize, "list-size", 0, "override the profile's target list size")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 1, "mutation sequence seed")
	cmd.Flags().StringVar(&cfg.JSONOutput, "json", "", "write the result as JSON to a file ('-' for stdout)")
	cmd.Flags().StringVar(&cfg.ServeAddr, "serve", "", "serve the inspector on this address while the storm runs")

	return cmd
}

func runStorm(cfg runConfig) error {
	typ := pathbind.NewStateType("Storm")
	engine := pathbind.NewEngine(typ,
		pathbind.WithListPaths("items"),
		pathbind.WithInitialData(map[string]any{"items": []any{}}),
	)

	registry := binding.NewRegistry()
	renderer := binding.NewRenderer(engine, registry)

	var batches atomic.Int64
	engine.SetRenderer(pathbind.RenderFunc(func(refs []*pathbind.StatePropertyRef, completion *pathbind.Completion) {
		batches.Add(1)
		renderer.Render(refs, completion)
	}))

	doc := vtree.NewDocument()
	ul := vtree.NewElement("ul")
	anchor := vtree.NewComment("for:items")
	doc.AppendChild(ul)
	ul.AppendChild(anchor)

	stats := &binding.ReconcilerStats{}
	loop := binding.NewLoopBinding(engine, registry, anchor, "items", stormItemFactory(engine), stats)

	if cfg.ServeAddr != "" {
		icfg := inspector.DefaultConfig()
		icfg.Addr = cfg.ServeAddr
		in := inspector.New(icfg)
		in.RegisterEngine("storm", engine)
		in.RegisterLoop("items", loop, stats)
		go func() {
			if err := in.ListenAndServe(); err != nil {
				fmt.Fprintf(os.Stderr, "inspector: %v\n", err)
			}
		}()
		fmt.Printf("inspector listening on %s%s\n", cfg.ServeAddr, icfg.PathPrefix)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	items := make([]any, 0, cfg.ListSize)
	next := 0

	ctx := context.Background()
	start := time.Now()

	for i := 0; i < cfg.Iterations; i++ {
		items, next = mutate(rng, items, next, cfg.ListSize)
		snapshot := append([]any(nil), items...)
		err := engine.Update(ctx, func(ws *pathbind.WritableState) error {
			return ws.SetPath("items", snapshot)
		})
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	result := runResult{
		Profile:       cfg.Profile,
		Iterations:    cfg.Iterations,
		ListSize:      cfg.ListSize,
		Duration:      elapsed.String(),
		UpdatesPerSec: float64(cfg.Iterations) / elapsed.Seconds(),
		Batches:       batches.Load(),
		PoolSize:      loop.PoolSize(),
		PoolHighWater: loop.PoolHighWater(),
		Mounted:       len(loop.BindContents()),
		Reconciler:    stats.Snapshot(),
	}

	printResult(result)
	return writeJSON(cfg.JSONOutput, result)
}

// mutate applies one randomized list operation: grow toward the target
// size, occasionally clear, otherwise shuffle, splice, or overwrite.
func mutate(rng *rand.Rand, items []any, next, target int) ([]any, int) {
	switch {
	case len(items) == 0 || len(items) < target/2:
		items = append(items, fmt.Sprintf("item-%d", next))
		next++
	case rng.Intn(100) == 0:
		items = items[:0]
	default:
		switch rng.Intn(4) {
		case 0: // append
			items = append(items, fmt.Sprintf("item-%d", next))
			next++
		case 1: // remove a random element
			i := rng.Intn(len(items))
			items = append(items[:i], items[i+1:]...)
		case 2: // rotate
			items = append(items[1:], items[0])
		case 3: // overwrite a random element
			i := rng.Intn(len(items))
			items[i] = fmt.Sprintf("item-%d", next)
			next++
		}
	}
	return items, next
}

func stormItemFactory(engine *pathbind.Engine) binding.ContentFactory {
	return func() binding.Content {
		li := vtree.NewElement("li")
		txt := vtree.NewText("")
		li.AppendChild(txt)
		return binding.NewBindContent([]*vtree.Node{li}, func(c *binding.BindContent, r *binding.Renderer) {
			rs := engine.CreateReadonlyState()
			if v := rs.Get(c.Ref()); v != nil {
				txt.Text = fmt.Sprint(v)
			} else {
				txt.Text = ""
			}
		})
	}
}

func printResult(r runResult) {
	fmt.Printf("\nprofile   %s (%d updates, target list size %d)\n", r.Profile, r.Iterations, r.ListSize)
	fmt.Printf("duration  %s (%.0f updates/s)\n", r.Duration, r.UpdatesPerSec)
	fmt.Printf("batches   %d\n", r.Batches)
	fmt.Printf("contents  minted=%d poolHits=%d reclaimed=%d\n",
		r.Reconciler.Minted, r.Reconciler.PoolHits, r.Reconciler.Reclaimed)
	fmt.Printf("paths     bulkAppend=%d fastClear=%d general=%d reorders=%d\n",
		r.Reconciler.FastBulkAppends, r.Reconciler.FastClears,
		r.Reconciler.GeneralPasses, r.Reconciler.Reorders)
	fmt.Printf("pool      size=%d highWater=%d mounted=%d\n",
		r.PoolSize, r.PoolHighWater, r.Mounted)
}

func writeJSON(path string, r runResult) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
