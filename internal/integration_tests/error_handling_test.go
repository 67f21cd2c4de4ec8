package integration_tests

import (
	"fmt"
	"testing"

	"github.com/specialistvlad/cbuild/internal/app"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: a failing compile skips every binary that depends on it.
func TestErrorHandling_FailingBinarySkipsDependents(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": `
binary "core" {
  tool_chain = ` + fakeChain + `
  opt_level  = "debug"
  type       = "staticlib"
  files      = ["core/core.c"]
  output     = "out/core"

  args {
    custom = ["` + testutil.FailFlag + `"]
  }
}

binary "app" {
  tool_chain = ` + fakeChain + `
  opt_level  = "debug"
  files      = ["src/main.c"]
  libraries  = [binary.core.output]
  output     = "out/app"
}
`,
		"core/core.c": "int core;",
		"src/main.c":  "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "execution failed for binary.core")
	assert.Contains(t, res.Err.Error(), "failed to compile `core/core.c`")
	assert.NotContains(t, res.Err.Error(), "binary.app")

	assert.Equal(t, -1, indexOf(p.Fake.Invocations(t), "src/main.c"), "dependent must not be compiled")
	assert.Contains(t, res.LogOutput, "fake tool chain: forced failure")
	assert.NotContains(t, res.LogOutput, "Build finished.")
}

// Test for: a script that does not parse never reaches the tool chain.
func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": `binary "app" {`,
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to load build script")
	assert.Empty(t, p.Fake.Invocations(t))
}

// Test for: a dependency cycle is rejected before anything runs.
func TestErrorHandling_CycleIsRejected(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": `
binary "a" {
  tool_chain = ` + fakeChain + `
  opt_level  = "debug"
  files      = ["a.c"]
  output     = "out/a"
  depends_on = [binary.b]
}

binary "b" {
  tool_chain = ` + fakeChain + `
  opt_level  = "debug"
  files      = ["b.c"]
  output     = "out/b"
  depends_on = [binary.a]
}
`,
		"a.c": "int a;",
		"b.c": "int b;",
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "cycle detected")
	assert.Empty(t, p.Fake.Invocations(t))
}

// Test for: an active error-level message aborts the build with its text.
func TestErrorHandling_FatalMessage(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": `
message "unsupported" {
  text = "this project does not build on ${host_os()}"
  when = host_os() != "plan9"
}
`,
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "this project does not build on")
}

// Test for: a failing run step fails the invocation unless allowed to.
func TestErrorHandling_RunStepFailure(t *testing.T) {
	const script = `
binary "app" {
  tool_chain = ` + fakeChain + `
  opt_level  = "debug"
  files      = ["src/main.c"]
  output     = "out/app"
}

run "broken" {
  binary        = "out/missing"
  allow_failure = %s
  depends_on    = [binary.app]
}
`
	for _, allow := range []string{"true", "false"} {
		t.Run("allow_failure="+allow, func(t *testing.T) {
			p := newProject(t, map[string]string{
				"build.hcl":  fmt.Sprintf(script, allow),
				"src/main.c": "int main(void) { return 0; }",
			})

			res := p.run(t, app.Config{Action: config.ActionRun})
			// A program that cannot be started is an error either way.
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), "execution failed for run.broken")
			assert.True(t, p.exists("out/app"))
		})
	}
}
