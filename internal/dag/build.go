package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/nodeid"
)

// Build constructs a complete, validated dependency graph from a model.
// Run steps that are not enabled for this invocation are left out, along
// with any edge pointing at them.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := New()

	// First pass: create nodes.
	for _, bin := range model.Binaries {
		graph.add(&node{id: bin.Address().String(), binary: bin})
	}
	disabled := make(map[nodeid.Address]bool)
	for _, run := range model.Runs {
		if !run.Enabled {
			disabled[run.Address()] = true
			continue
		}
		graph.add(&node{id: run.Address().String(), run: run})
	}
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link dependencies.
	link := func(to nodeid.Address, deps []nodeid.Address) error {
		for _, dep := range deps {
			if disabled[dep] {
				logger.Debug("Build: Ignoring dependency on disabled run step.", "node", to.String(), "dependency", dep.String())
				continue
			}
			if err := graph.AddEdge(dep.String(), to.String()); err != nil {
				return fmt.Errorf("%s: unknown reference to %s: %w", to, dep, err)
			}
		}
		return nil
	}
	for _, bin := range model.Binaries {
		if err := link(bin.Address(), bin.DependsOn); err != nil {
			return nil, err
		}
	}
	for _, run := range model.Runs {
		if !run.Enabled {
			continue
		}
		if err := link(run.Address(), run.DependsOn); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Node linking complete.")

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	return graph, nil
}

// Select narrows graph to the requested targets and their dependencies.
// With no targets the graph is returned unchanged.
func Select(graph *Graph, targets []nodeid.Address) (*Graph, error) {
	if len(targets) == 0 {
		return graph, nil
	}

	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.String())
	}
	sub, err := graph.Subgraph(ids...)
	if err != nil {
		return nil, fmt.Errorf("unknown target: %w", err)
	}
	return sub, nil
}
