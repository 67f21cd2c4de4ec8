package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/specialistvlad/cbuild/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ShouldExit(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(out, errOut, []string{"--help"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(out, errOut, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "this-is-not-a-valid-flag")
}

func TestRun_FailureSummary(t *testing.T) {
	color.NoColor = true
	script := writeScript(t, `
binary "app" {
  tool_chain = "gcc"
  opt_level  = "debug"
  files      = ["src"]
  // Missing closing brace here
`)

	t.Run("quiet", func(t *testing.T) {
		out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
		err := run(out, errOut, []string{"-i", script, "build"})

		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.Contains(t, errOut.String(), "build failed (rerun with --verbose for details)")
		assert.NotContains(t, errOut.String(), "failed to load build script")
	})

	t.Run("verbose", func(t *testing.T) {
		out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
		err := run(out, errOut, []string{"-i", script, "--verbose", "build"})

		require.Error(t, err)
		assert.Contains(t, errOut.String(), "build failed: failed to load build script")
	})
}

func TestRun_MissingScript(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(out, errOut, []string{"-i", filepath.Join(t.TempDir(), "absent.hcl"), "--verbose"})

	require.Error(t, err)
	assert.Contains(t, errOut.String(), "error accessing build script")
}
