package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/specialistvlad/cbuild/internal/fsutil"
)

const maxLineSize = 1 << 20

var prefixColor = color.New(color.FgCyan, color.Bold)

// Runner launches run steps from the script directory.
type Runner struct {
	dir    string
	stdout io.Writer
	stderr io.Writer
	mu     sync.Mutex
}

// New creates a Runner. dir is the script directory.
func New(dir string, stdout, stderr io.Writer) *Runner {
	return &Runner{dir: dir, stdout: stdout, stderr: stderr}
}

// Run executes one run step and waits for it. A non-zero exit is an error
// unless the step allows failure; a program that cannot be started always is.
func (r *Runner) Run(ctx context.Context, run *config.Run) error {
	logger := ctxlog.FromContext(ctx).With("run", run.Name)

	bin, err := filepath.Abs(fsutil.Resolve(r.dir, run.Binary))
	if err != nil {
		return fmt.Errorf("run %q: resolving %s: %w", run.Name, run.Binary, err)
	}
	logger.Info("Running: " + display(append([]string{bin}, run.Args...)))

	cmd := exec.CommandContext(ctx, bin, run.Args...)
	cmd.Dir = r.dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("run %q: %w", run.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("run %q: %w", run.Name, err)
	}

	if err := cmd.Start(); err != nil {
		logger.Error("Failed to start program.", "binary", bin, "error", err)
		return fmt.Errorf("run %q: failed to start %s: %w", run.Name, run.Binary, err)
	}

	prefix := prefixColor.Sprintf("[%s]:", run.Binary) + " "
	var wg sync.WaitGroup
	wg.Add(2)
	go r.forward(logger, &wg, stdout, r.stdout, prefix)
	go r.forward(logger, &wg, stderr, r.stderr, prefix)
	wg.Wait()

	err = cmd.Wait()
	if err == nil {
		logger.Debug("Program exited successfully.")
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && run.AllowFailure {
		logger.Warn("Program failed; failure is allowed.", "exit_code", exitErr.ExitCode())
		return nil
	}
	return fmt.Errorf("run %q: %s: %w", run.Name, run.Binary, err)
}

// forward copies src to dst one line at a time, prefixing each line. If a
// line cannot be split off, the rest of the stream is copied unprefixed.
func (r *Runner) forward(logger *slog.Logger, wg *sync.WaitGroup, src io.Reader, dst io.Writer, prefix string) {
	defer wg.Done()

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		r.mu.Lock()
		fmt.Fprintf(dst, "%s%s\n", prefix, scanner.Text())
		r.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("Program output is no longer prefixed.", "error", err)
		r.mu.Lock()
		_, _ = io.Copy(dst, src)
		r.mu.Unlock()
		return
	}
	// Keep the pipe drained so the child never blocks on a full buffer.
	_, _ = io.Copy(io.Discard, src)
}

// display renders argv as a comma separated list of quoted strings.
func display(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = strconv.Quote(a)
	}
	return strings.Join(quoted, ", ")
}
