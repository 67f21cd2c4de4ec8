package dag

import (
	"io"
	"testing"

	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/nodeid"
	"github.com/specialistvlad/cbuild/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *config.Model {
	return &config.Model{
		Binaries: []*config.Binary{
			{Name: "core", Artifact: "out/libcore.a"},
			{Name: "app", Artifact: "out/app", DependsOn: []nodeid.Address{nodeid.NewBinary("core")}},
			{Name: "tool", Artifact: "out/tool"},
		},
		Runs: []*config.Run{
			{Name: "app", Binary: "out/app", Enabled: true, DependsOn: []nodeid.Address{nodeid.NewBinary("app")}},
			{Name: "lint", Binary: "out/tool", Enabled: false, DependsOn: []nodeid.Address{nodeid.NewBinary("tool")}},
			{Name: "after", Binary: "out/tool", Enabled: true, DependsOn: []nodeid.Address{nodeid.NewRun("lint"), nodeid.NewBinary("tool")}},
		},
	}
}

func TestBuild(t *testing.T) {
	ctx := testutil.Context(t, io.Discard)

	g, err := Build(ctx, testModel())
	require.NoError(t, err)
	assert.Equal(t, []string{"binary.app", "binary.core", "binary.tool", "run.after", "run.app"}, g.Nodes())

	deps, err := g.Dependencies("run.after")
	require.NoError(t, err)
	assert.Equal(t, []string{"binary.tool"}, deps, "edges to disabled run steps are dropped")

	deps, err = g.Dependencies("binary.app")
	require.NoError(t, err)
	assert.Equal(t, []string{"binary.core"}, deps)
}

func TestBuild_Errors(t *testing.T) {
	ctx := testutil.Context(t, io.Discard)

	t.Run("unknown reference", func(t *testing.T) {
		model := &config.Model{Binaries: []*config.Binary{
			{Name: "app", DependsOn: []nodeid.Address{nodeid.NewBinary("ghost")}},
		}}
		_, err := Build(ctx, model)
		assert.ErrorContains(t, err, "unknown reference to binary.ghost")
	})

	t.Run("cycle", func(t *testing.T) {
		model := &config.Model{Binaries: []*config.Binary{
			{Name: "a", DependsOn: []nodeid.Address{nodeid.NewBinary("b")}},
			{Name: "b", DependsOn: []nodeid.Address{nodeid.NewBinary("a")}},
		}}
		_, err := Build(ctx, model)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("self reference", func(t *testing.T) {
		model := &config.Model{Binaries: []*config.Binary{
			{Name: "a", DependsOn: []nodeid.Address{nodeid.NewBinary("a")}},
		}}
		_, err := Build(ctx, model)
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestSelect(t *testing.T) {
	ctx := testutil.Context(t, io.Discard)
	g, err := Build(ctx, testModel())
	require.NoError(t, err)

	all, err := Select(g, nil)
	require.NoError(t, err)
	assert.Same(t, g, all)

	sub, err := Select(g, []nodeid.Address{nodeid.NewRun("app")})
	require.NoError(t, err)
	assert.Equal(t, []string{"binary.app", "binary.core", "run.app"}, sub.Nodes())

	_, err = Select(g, []nodeid.Address{nodeid.NewBinary("nope")})
	assert.ErrorContains(t, err, "unknown target")
}
