package integration_tests

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/cbuild/internal/app"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runScript = `
binary "app" {
  tool_chain = ` + fakeChain + `
  opt_level  = default_opt_level()
  files      = ["src"]
  output     = "out/app"
}

run "first" {
  binary = binary.app.output
  args   = ["one", default_opt_level()]
}

run "second" {
  binary     = binary.app.output
  args       = ["two"]
  depends_on = [run.first]
}

run "windows_only" {
  binary = binary.app.output
  args   = ["three"]
  when   = host_os() == "windows"
}
`

// runLines returns the prefixed program output lines in order.
func runLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "[out/app]: ") {
			lines = append(lines, line)
		}
	}
	return lines
}

// Test for: run steps execute in dependency order and skip when disabled.
func TestHclFeatures_RunSteps(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl":  runScript,
		"src/main.c": "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionRun, Release: true})
	require.NoError(t, res.Err)

	expected := []string{
		"[out/app]: ran one release",
		"[out/app]: ran two",
	}
	if diff := cmp.Diff(expected, runLines(res.LogOutput)); diff != "" {
		t.Errorf("run output mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, res.LogOutput, `Running: \"`)
}

// Test for: the build action compiles but never launches run steps.
func TestHclFeatures_BuildDoesNotRun(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl":  runScript,
		"src/main.c": "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.NoError(t, res.Err)
	assert.True(t, p.exists("out/app"))
	assert.Empty(t, runLines(res.LogOutput))
}

// Test for: an explicit when enables a run step under the build action.
func TestHclFeatures_WhenOverridesBuildAction(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": runScript + `
run "post_build" {
  binary = binary.app.output
  args   = ["post"]
  when   = true
}
`,
		"src/main.c": "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"[out/app]: ran post"}, runLines(res.LogOutput))
}

// Test for: naming a run target pulls in only its own dependencies.
func TestHclFeatures_RunTarget(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl":  runScript,
		"src/main.c": "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionRun, Targets: []string{"first"}})
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"[out/app]: ran one debug"}, runLines(res.LogOutput))
}

// Test for: non-fatal messages are logged and the build continues.
func TestHclFeatures_Messages(t *testing.T) {
	p := newProject(t, map[string]string{
		"build.hcl": runScript + `
message "note" {
  text  = "configured for ${host_os()}"
  level = 3
}

message "hidden" {
  text = "never shown"
  when = false
}
`,
		"src/main.c": "int main(void) { return 0; }",
	})

	res := p.run(t, app.Config{Action: config.ActionBuild})
	require.NoError(t, res.Err)
	assert.Contains(t, res.LogOutput, "configured for")
	assert.NotContains(t, res.LogOutput, "never shown")
}
