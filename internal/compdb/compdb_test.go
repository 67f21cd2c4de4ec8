package compdb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/cbuild/internal/compile"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/testutil"
	"github.com/specialistvlad/cbuild/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndWrite(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"src/main.c": "",
		"src/util.c": "",
	})

	b := compile.New(compile.Options{Dir: dir, CacheDir: ".cbuild"})
	plan, err := b.Plan(&config.Binary{
		Name:      "app",
		ToolChain: toolchain.ToolChain{Kind: toolchain.Clang},
		OptLevel:  toolchain.OptRelease,
		Type:      toolchain.Executable,
		Files:     []string{"src"},
		SrcDir:    "src",
		Includes:  []string{"include"},
		Artifact:  "app",
	})
	require.NoError(t, err)

	entries := Generate(dir, []*compile.Plan{plan})
	require.Len(t, entries, 2)
	assert.Equal(t, dir, entries[0].Directory)
	assert.Equal(t, filepath.Join("src", "main.c"), entries[0].File)
	assert.Equal(t, filepath.Join(".cbuild", "obj", "app", "main.o"), entries[0].Output)
	assert.Equal(t, "clang", entries[0].Arguments[0])
	assert.Contains(t, entries[0].Arguments, "-O2")

	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, WriteFile(path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, filepath.Join("src", "util.c"), decoded[1]["file"])

	// No temporary files are left behind.
	matches, err := filepath.Glob(filepath.Join(dir, ".compile_commands.json.*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGenerate_Empty(t *testing.T) {
	entries := Generate("/tmp", nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
