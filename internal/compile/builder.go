package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/specialistvlad/cbuild/internal/buildlog"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/fsutil"
	"github.com/specialistvlad/cbuild/internal/toolchain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Options configures a Builder.
type Options struct {
	// Dir is the script directory; relative paths resolve against it and
	// tool chain processes run in it.
	Dir string
	// CacheDir holds object files. Relative to Dir unless absolute.
	CacheDir string
	// Jobs bounds concurrent tool chain processes. Zero means one per CPU.
	Jobs int
	// FullRebuild ignores every up-to-date check.
	FullRebuild bool
	// Log is optional; without it command changes go unnoticed.
	Log *buildlog.Log

	Stdout io.Writer
	Stderr io.Writer
}

// Builder compiles and links binaries. A single Builder is shared by every
// binary of a build so that they draw from the same job pool.
type Builder struct {
	opts Options
	jobs *semaphore.Weighted
}

// New creates a Builder.
func New(opts Options) *Builder {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Builder{opts: opts, jobs: semaphore.NewWeighted(int64(opts.Jobs))}
}

// Build compiles every stale unit of bin and links the artifact when needed.
// It returns the artifact path as declared in the model.
func (b *Builder) Build(ctx context.Context, bin *config.Binary) (string, error) {
	logger := ctxlog.FromContext(ctx).With("binary", bin.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	plan, err := b.Plan(bin)
	if err != nil {
		return "", err
	}
	logger.Debug("Binary planned.", "units", len(plan.Units), "artifact", plan.Artifact)

	if err := b.compileAll(ctx, plan); err != nil {
		return "", err
	}
	if err := b.link(ctx, plan); err != nil {
		return "", err
	}
	return plan.Artifact, nil
}

func (b *Builder) compileAll(ctx context.Context, plan *Plan) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, u := range plan.Units {
		g.Go(func() error {
			return b.compile(gctx, u)
		})
	}
	return g.Wait()
}

func (b *Builder) compile(ctx context.Context, u *Unit) error {
	logger := ctxlog.FromContext(ctx)

	stale, reason, err := b.unitStale(u)
	if err != nil {
		return err
	}
	if !stale {
		logger.Debug("Object is up to date.", "source", u.Source)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path(u.Object)), 0o755); err != nil {
		return fmt.Errorf("creating object directory for %s: %w", u.Source, err)
	}

	if err := b.jobs.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.jobs.Release(1)

	logger.Info("[Compiling]: " + u.Source)
	logger.Debug("Compile command.", "command", u.Command.String(), "reason", reason)
	if err := b.exec(ctx, u.Command); err != nil {
		return fmt.Errorf("failed to compile `%s`; compilation aborted: %w", u.Source, err)
	}
	return b.record(u.Object, u.Command)
}

func (b *Builder) link(ctx context.Context, plan *Plan) error {
	logger := ctxlog.FromContext(ctx)

	stale, reason, err := b.linkStale(plan)
	if err != nil {
		return err
	}
	if !stale {
		logger.Info(fmt.Sprintf("%s is up to date", plan.Artifact))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path(plan.Artifact)), 0o755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", plan.Artifact, err)
	}

	if err := b.jobs.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.jobs.Release(1)

	logger.Info("[Linking]: " + plan.Artifact)
	logger.Debug("Link command.", "command", plan.Link.String(), "reason", reason)
	if plan.Binary.Type == toolchain.StaticLib {
		// Archivers update in place; members of removed sources would survive.
		if err := os.Remove(b.path(plan.Artifact)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing previous archive %s: %w", plan.Artifact, err)
		}
	}
	if err := b.exec(ctx, plan.Link); err != nil {
		return fmt.Errorf("failed to link `%s`; compilation aborted: %w", plan.Artifact, err)
	}
	return b.record(plan.Artifact, plan.Link)
}

func (b *Builder) exec(ctx context.Context, c toolchain.Command) error {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = b.opts.Dir
	cmd.Stdout = b.opts.Stdout
	cmd.Stderr = b.opts.Stderr
	return cmd.Run()
}

// record stores the command that produced output in the build log.
func (b *Builder) record(output string, c toolchain.Command) error {
	if b.opts.Log == nil {
		return nil
	}
	info, err := os.Stat(b.path(output))
	if err != nil {
		return fmt.Errorf("tool chain reported success but %s is missing: %w", output, err)
	}
	return b.opts.Log.Record(b.logKey(output), buildlog.Entry{
		Hash:  buildlog.Fingerprint(c.Argv()),
		Mtime: info.ModTime().UnixNano(),
	})
}

// path resolves a model path against the script directory.
func (b *Builder) path(p string) string {
	return fsutil.Resolve(b.opts.Dir, p)
}

// logKey is the key an output is recorded under. Absolute paths keep the
// log valid when cbuild is started from another working directory.
func (b *Builder) logKey(output string) string {
	return filepath.Clean(b.path(output))
}
