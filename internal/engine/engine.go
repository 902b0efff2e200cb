// Package engine sequences pipeline stages over a dataset layout. It owns
// the stage dependency graph, precondition checks, dispatch through the
// toolchain runner, and run-history recording.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/yarri-oss/gnnpipe/internal/dag"
	"github.com/yarri-oss/gnnpipe/internal/layout"
	"github.com/yarri-oss/gnnpipe/internal/stage"
	"github.com/yarri-oss/gnnpipe/internal/state"
	"github.com/yarri-oss/gnnpipe/internal/toolchain"
)

// Config assembles an engine.
type Config struct {
	Layout *layout.Layout
	Params stage.Params
	Runner *toolchain.Runner
	// Store records run history; nil disables recording.
	Store  state.Store
	Logger *slog.Logger
}

// Engine executes pipeline stages.
type Engine struct {
	layout *layout.Layout
	params stage.Params
	runner *toolchain.Runner
	store  state.Store
	logger *slog.Logger
	graph  *dag.Graph
}

// New creates an engine and builds the stage dependency graph.
func New(cfg Config) (*Engine, error) {
	if cfg.Layout == nil {
		return nil, fmt.Errorf("engine requires a dataset layout")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("engine requires a toolchain runner")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := dag.New()
	for _, s := range stage.All() {
		g.Add(s.Name)
	}
	for _, s := range stage.All() {
		for _, up := range s.Upstream {
			if err := g.Depend(s.Name, up); err != nil {
				return nil, fmt.Errorf("bad stage declaration: %w", err)
			}
		}
	}

	return &Engine{
		layout: cfg.Layout,
		params: cfg.Params,
		runner: cfg.Runner,
		store:  cfg.Store,
		logger: logger,
		graph:  g,
	}, nil
}

// Layout returns the dataset layout the engine operates on.
func (e *Engine) Layout() *layout.Layout {
	return e.layout
}

// Graph returns the stage dependency graph.
func (e *Engine) Graph() *dag.Graph {
	return e.graph
}

// PlanItem describes one stage's prospective invocation.
type PlanItem struct {
	Stage    string   `json:"stage"`
	Tool     string   `json:"tool"`
	Args     []string `json:"args"`
	Command  string   `json:"command"`
	Upstream []string `json:"upstream,omitempty"`
	Produces []string `json:"produces,omitempty"`
	// Ready is empty when the stage's preconditions hold, otherwise the
	// precondition failure message.
	Blocked string `json:"blocked,omitempty"`
}

// Plan returns every stage's assembled command line and precondition status
// in topological order, without dispatching anything.
func (e *Engine) Plan() ([]PlanItem, error) {
	order, err := e.graph.Sorted()
	if err != nil {
		return nil, err
	}

	items := make([]PlanItem, 0, len(order))
	for _, name := range order {
		s, err := stage.Get(name)
		if err != nil {
			return nil, err
		}
		args := s.Args(e.layout, e.params)
		item := PlanItem{
			Stage:    s.Name,
			Tool:     s.Tool,
			Args:     args,
			Command:  toolchain.CommandLine(s.Tool, args),
			Upstream: s.Upstream,
			Produces: s.Produces(e.layout),
		}
		if err := s.Check(e.layout); err != nil {
			item.Blocked = err.Error()
		}
		items = append(items, item)
	}
	return items, nil
}
