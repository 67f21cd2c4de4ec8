package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/cbuild/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a debug-level text logger writing to w.
// With CBUILD_TEST_LOGS=true the output is also echoed to the test log once
// the test finishes.
func Context(t *testing.T, w io.Writer) context.Context {
	t.Helper()

	buf := &SafeBuffer{}
	handler := slog.NewTextHandler(io.MultiWriter(w, buf), &slog.HandlerOptions{Level: ctxlog.LevelTrace})
	t.Cleanup(func() {
		if os.Getenv("CBUILD_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), slog.New(handler))
}

// WriteFiles creates every file of files below root. Keys are slash
// separated relative paths; parent directories are created as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
