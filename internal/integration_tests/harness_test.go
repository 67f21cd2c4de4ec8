package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/specialistvlad/cbuild/internal/app"
	"github.com/specialistvlad/cbuild/internal/hcl_adapter"
	"github.com/specialistvlad/cbuild/internal/testutil"
	"github.com/stretchr/testify/require"
)

// ccPlaceholder is replaced with the fake tool chain path in every file.
const ccPlaceholder = "__CC__"

// fakeChain is the tool_chain expression scripts use to reach the fake.
const fakeChain = `{ compiler = "__CC__", linker = "__CC__" }`

// project is a temporary source tree with a build script in it.
type project struct {
	Dir  string
	Fake *testutil.FakeToolChain
}

// harnessResult holds the outcomes of one invocation against a project.
type harnessResult struct {
	LogOutput string
	Err       error
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	color.NoColor = true

	p := &project{Dir: t.TempDir(), Fake: testutil.NewFakeToolChain(t)}
	rendered := make(map[string]string, len(files))
	for name, content := range files {
		rendered[name] = strings.ReplaceAll(content, ccPlaceholder, p.Fake.Path)
	}
	testutil.WriteFiles(t, p.Dir, rendered)
	return p
}

// run executes the app against the project's build.hcl with cfg.
func (p *project) run(t *testing.T, cfg app.Config) *harnessResult {
	t.Helper()

	cfg.InputPath = filepath.Join(p.Dir, "build.hcl")
	if cfg.Jobs == 0 {
		cfg.Jobs = 4
	}
	cfg.LogLevel = "debug"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	runErr := app.NewApp(logBuffer, logBuffer, appConfig, hcl_adapter.NewLoader()).Run(context.Background())

	if os.Getenv("CBUILD_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &harnessResult{LogOutput: logBuffer.String(), Err: runErr}
}

// exists reports whether rel exists below the project directory.
func (p *project) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.Dir, filepath.FromSlash(rel)))
	return err == nil
}

// indexOf returns the position of the first invocation containing substr.
func indexOf(invocations []string, substr string) int {
	for i, inv := range invocations {
		if strings.Contains(inv, substr) {
			return i
		}
	}
	return -1
}
