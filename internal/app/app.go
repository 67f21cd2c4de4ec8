package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/specialistvlad/cbuild/internal/compile"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/runner"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
}

// NewApp is the constructor for the main application. Logs and the standard
// output of launched programs go to outW; their standard error goes to errW.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	logger.Debug("Logger configured successfully.", "level", appConfig.LogLevel, "format", appConfig.LogFormat)

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: appConfig,
		loader: loader,
	}
}

// nodeHandler connects graph nodes to the builder and the runner.
type nodeHandler struct {
	builder *compile.Builder
	runner  *runner.Runner
	// Run steps never overlap so their output stays readable.
	runMu sync.Mutex
}

func (h *nodeHandler) BuildBinary(ctx context.Context, bin *config.Binary) (string, error) {
	return h.builder.Build(ctx, bin)
}

func (h *nodeHandler) RunStep(ctx context.Context, run *config.Run) error {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.runner.Run(ctxlog.With(ctx, "node", run.Address().String()), run)
}
