package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/nodeid"
	"github.com/specialistvlad/cbuild/internal/nodestore"
)

// Handler performs the work behind a node.
type Handler interface {
	// BuildBinary builds bin and returns the path of its artifact.
	BuildBinary(ctx context.Context, bin *config.Binary) (string, error)
	// RunStep executes a run step whose dependencies have completed.
	RunStep(ctx context.Context, run *config.Run) error
}

// Executor runs a graph with a fixed pool of workers.
type Executor struct {
	graph      *Graph
	numWorkers int
	handler    Handler
	store      nodestore.Store

	wg sync.WaitGroup

	mu       sync.Mutex
	failed   []string
	rootErr  error
	tasks    map[string]*task
	finished atomic.Int32
}

// task is the per-run state of a node.
type task struct {
	node     *node
	addr     nodeid.Address
	depCount atomic.Int32
	skipOnce sync.Once
}

// NewExecutor creates an executor for graph. numWorkers below one is
// treated as one.
func NewExecutor(graph *Graph, numWorkers int, handler Handler, store nodestore.Store) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Executor{
		graph:      graph,
		numWorkers: numWorkers,
		handler:    handler,
		store:      store,
	}
}

// Run executes the entire graph concurrently and returns an error if any node fails.
// It respects the cancellation signal from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	ids := e.graph.Nodes()
	e.tasks = make(map[string]*task, len(ids))
	for _, id := range ids {
		addr, err := nodeid.Parse(id)
		if err != nil {
			return fmt.Errorf("internal error: %w", err)
		}
		t := &task{node: e.graph.nodes[id], addr: addr}
		t.depCount.Store(int32(len(t.node.deps)))
		e.tasks[id] = t
		if err := e.store.SetStatus(ctx, addr, nodestore.StatusPending); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}

	readyChan := make(chan *task, len(ids))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, id := range ids {
		if t := e.tasks[id]; t.depCount.Load() == 0 {
			logger.Debug("Found root node.", "nodeID", id)
			readyChan <- t
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(ids))
	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes completed.", "finished", e.finished.Load())

	if e.rootErr != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(e.failed, ", "), e.rootErr)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("execution interrupted: %w", err)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *task, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", t.node.id)

		if ctx.Err() != nil {
			t.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node execution.")
				e.setState(ctx, t, nodestore.StatusSkipped, ctx.Err())
				e.skipDependents(ctx, t)
				e.wg.Done()
			})
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		e.setState(ctx, t, nodestore.StatusRunning, nil)
		output, err := e.execute(ctx, t)

		if err != nil {
			if ctx.Err() != nil {
				// Interrupted by an earlier failure or by the caller.
				workerLogger.Debug("Node interrupted.", "error", err)
				e.setState(ctx, t, nodestore.StatusSkipped, err)
			} else {
				workerLogger.Error("Node execution failed.", "error", err)
				e.setState(ctx, t, nodestore.StatusFailed, err)
				e.recordFailure(t.node.id, err)
				cancel()
			}
			e.skipDependents(ctx, t)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		if err := e.store.SetOutput(ctx, t.addr, output); err != nil {
			workerLogger.Warn("Failed to store node output.", "error", err)
		}
		e.setState(ctx, t, nodestore.StatusDone, nil)
		e.finished.Add(1)

		for _, id := range sortedKeys(t.node.dependents) {
			dependent := e.tasks[id]
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", id)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents recursively marks all downstream nodes as skipped and decrements the WaitGroup.
func (e *Executor) skipDependents(ctx context.Context, t *task) {
	logger := ctxlog.FromContext(ctx)
	for _, id := range sortedKeys(t.node.dependents) {
		dependent := e.tasks[id]
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", id, "dependency", t.node.id)
			e.setState(ctx, dependent, nodestore.StatusSkipped, fmt.Errorf("skipped due to upstream failure of '%s'", t.node.id))
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}

func (e *Executor) recordFailure(id string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, id)
	if e.rootErr == nil {
		e.rootErr = err
	}
}

func (e *Executor) setState(ctx context.Context, t *task, status nodestore.Status, nodeErr error) {
	// Store writes must land even after the run context is cancelled.
	ctx = context.WithoutCancel(ctx)
	_ = e.store.SetStatus(ctx, t.addr, status)
	if nodeErr != nil {
		_ = e.store.SetError(ctx, t.addr, nodeErr)
	}
}

// execute dispatches a node to the handler.
func (e *Executor) execute(ctx context.Context, t *task) (any, error) {
	switch {
	case t.node.binary != nil:
		return e.handler.BuildBinary(ctx, t.node.binary)
	case t.node.run != nil:
		run, err := e.awaitBinary(ctx, t)
		if err != nil {
			return nil, err
		}
		return true, e.handler.RunStep(ctx, run)
	default:
		return nil, errors.New("internal error: node has no work attached")
	}
}

// awaitBinary resolves the program of a run step against the artifacts its
// binary dependencies produced. A run whose program is not one of them is
// passed through unchanged.
func (e *Executor) awaitBinary(ctx context.Context, t *task) (*config.Run, error) {
	run := t.node.run
	for _, id := range sortedKeys(t.node.deps) {
		dep := e.tasks[id]
		if dep.node.binary == nil || dep.node.binary.Artifact != run.Binary {
			continue
		}
		output, err := e.store.GetOutput(ctx, dep.addr)
		if err != nil {
			return nil, err
		}
		artifact, ok := output.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %s finished without an artifact", t.node.id, id)
		}
		resolved := *run
		resolved.Binary = artifact
		return &resolved, nil
	}
	return run, nil
}
