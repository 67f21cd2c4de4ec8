package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/specialistvlad/cbuild/internal/buildlog"
	"github.com/specialistvlad/cbuild/internal/compdb"
	"github.com/specialistvlad/cbuild/internal/compile"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/dag"
	"github.com/specialistvlad/cbuild/internal/fsutil"
	"github.com/specialistvlad/cbuild/internal/inmemorystore"
	"github.com/specialistvlad/cbuild/internal/nodeid"
	"github.com/specialistvlad/cbuild/internal/nodestore"
	"github.com/specialistvlad/cbuild/internal/runner"
	"github.com/specialistvlad/cbuild/internal/toolchain"
)

// Run executes the configured action.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "action", a.config.Action)

	env := config.Env{
		Action:           a.config.Action,
		Release:          a.config.Release,
		DefaultToolChain: a.config.defaultToolChain(),
		HostOS:           toolchain.HostOS(),
		GOOS:             runtime.GOOS,
	}
	model, err := a.loader.Load(ctx, a.config.InputPath, env)
	if err != nil {
		a.logger.Error("Failed to load build script.", "path", a.config.InputPath, "error", err)
		return fmt.Errorf("failed to load build script: %w", err)
	}
	a.logger.Debug("Build script loaded.", "dir", model.Dir, "binaries", len(model.Binaries), "runs", len(model.Runs))

	if err := a.emitMessages(ctx, model); err != nil {
		return err
	}

	if a.config.Action == config.ActionGenDatabase {
		return a.generateDatabase(ctx, model)
	}
	return a.execute(ctx, model)
}

// emitMessages logs every active script message in declaration order. The
// first error-level message aborts the build with its text.
func (a *App) emitMessages(ctx context.Context, model *config.Model) error {
	for _, msg := range model.Messages {
		if !msg.Active {
			continue
		}
		a.logger.Log(ctx, messageLevel(msg.Level), msg.Text, "message", msg.Name)
		if msg.Fatal() {
			return errors.New(msg.Text)
		}
	}
	return nil
}

// execute builds the selected part of the graph and runs its run steps.
func (a *App) execute(ctx context.Context, model *config.Model) error {
	graph, err := dag.Build(ctx, model)
	if err != nil {
		a.logger.Error("Invalid dependency graph.", "error", err)
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	kind := nodeid.Binary
	if a.config.Action == config.ActionRun {
		kind = nodeid.Run
	}
	targets := make([]nodeid.Address, 0, len(a.config.Targets))
	for _, raw := range a.config.Targets {
		addr, err := nodeid.ParseTarget(raw, kind)
		if err != nil {
			return err
		}
		targets = append(targets, addr)
	}
	graph, err = dag.Select(graph, targets)
	if err != nil {
		a.logger.Error("Invalid target selection.", "targets", a.config.Targets, "error", err)
		return err
	}
	a.logger.Debug("Dependency graph built.", "node_count", graph.Len())
	for _, id := range graph.Nodes() {
		deps, err := graph.Dependencies(id)
		if err != nil {
			return err
		}
		a.logger.Debug("Graph node.", "node", id, "depends_on", deps)
	}

	if graph.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	log, err := buildlog.Open(fsutil.Resolve(model.Dir, filepath.Join(a.config.CacheDir, buildlog.FileName)))
	if err != nil {
		return err
	}
	defer log.Close()

	handler := &nodeHandler{
		builder: compile.New(compile.Options{
			Dir:         model.Dir,
			CacheDir:    a.config.CacheDir,
			Jobs:        a.config.Jobs,
			FullRebuild: a.config.FullRebuild,
			Log:         log,
			Stdout:      a.outW,
			Stderr:      a.errW,
		}),
		runner: runner.New(model.Dir, a.outW, a.errW),
	}

	a.logger.Info("🚀 Starting build...", "nodes", graph.Len(), "jobs", a.config.Jobs)
	store := inmemorystore.New()
	exec := dag.NewExecutor(graph, a.config.Jobs, handler, store)
	if err := exec.Run(ctx); err != nil {
		a.reportIncomplete(ctx, graph, store)
		return err
	}
	a.logger.Info("🏁 Build finished.")
	return nil
}

// reportIncomplete logs every node that failed or was skipped, along with
// the nodes that were waiting on it.
func (a *App) reportIncomplete(ctx context.Context, graph *dag.Graph, store nodestore.Store) {
	for _, id := range graph.Nodes() {
		addr, err := nodeid.Parse(id)
		if err != nil {
			continue
		}
		status, err := store.GetStatus(ctx, addr)
		if err != nil || (status != nodestore.StatusFailed && status != nodestore.StatusSkipped) {
			continue
		}
		nodeErr, err := store.GetError(ctx, addr)
		if err != nil {
			continue
		}
		dependents, err := graph.Dependents(id)
		if err != nil {
			continue
		}
		a.logger.Warn("Node did not complete.", "node", id, "status", status.String(), "error", nodeErr, "dependents", dependents)
	}
}

// generateDatabase writes compile_commands.json for every binary without
// compiling anything.
func (a *App) generateDatabase(ctx context.Context, model *config.Model) error {
	builder := compile.New(compile.Options{Dir: model.Dir, CacheDir: a.config.CacheDir})

	plans := make([]*compile.Plan, 0, len(model.Binaries))
	for _, bin := range model.Binaries {
		plan, err := builder.Plan(bin)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}

	entries := compdb.Generate(model.Dir, plans)
	path := fsutil.Resolve(model.Dir, a.config.DatabasePath)
	if err := compdb.WriteFile(path, entries); err != nil {
		return err
	}
	a.logger.Info("Compilation database written.", "path", path, "entries", len(entries))
	return nil
}
