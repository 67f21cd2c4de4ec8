package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChain builds a graph from "from->to" pairs.
func newChain(t *testing.T, ids []string, edges ...[2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		g.add(&node{id: id})
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAdd(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.Len())

	g.add(&node{id: "binary.core"})
	g.add(&node{id: "binary.core"}) // idempotent
	g.add(&node{id: "binary.app"})

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"binary.app", "binary.core"}, g.Nodes())
	assert.NotNil(t, g.nodes["binary.core"].deps)
	assert.NotNil(t, g.nodes["binary.core"].dependents)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := newChain(t, []string{"binary.core", "binary.app", "run.app"},
			[2]string{"binary.core", "binary.app"},
			[2]string{"binary.app", "run.app"},
		)

		deps, err := g.Dependencies("binary.app")
		require.NoError(t, err)
		assert.Equal(t, []string{"binary.core"}, deps)

		dependents, err := g.Dependents("binary.app")
		require.NoError(t, err)
		assert.Equal(t, []string{"run.app"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := newChain(t, []string{"binary.a", "binary.b"})

		assert.ErrorContains(t, g.AddEdge("binary.x", "binary.a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("binary.a", "binary.x"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("binary.a", "binary.a"), "self-referential edge")

		_, err := g.Dependencies("binary.x")
		assert.Error(t, err)
		_, err = g.Dependents("binary.x")
		assert.Error(t, err)
	})
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name    string
		ids     []string
		edges   [][2]string
		wantErr bool
	}{
		{name: "empty graph"},
		{name: "no edges", ids: []string{"a", "b", "c"}},
		{
			name:  "diamond",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
		},
		{
			name:    "direct cycle",
			ids:     []string{"a", "b"},
			edges:   [][2]string{{"a", "b"}, {"b", "a"}},
			wantErr: true,
		},
		{
			name:    "long cycle",
			ids:     []string{"a", "b", "c", "d"},
			edges:   [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			wantErr: true,
		},
		{
			name:    "cycle in a disjoint component",
			ids:     []string{"a", "b", "x", "y", "z"},
			edges:   [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newChain(t, tc.ids, tc.edges...)
			err := g.DetectCycles()
			if tc.wantErr {
				assert.ErrorContains(t, err, "cycle detected")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubgraph(t *testing.T) {
	g := newChain(t, []string{"core", "net", "app", "tool", "run"},
		[2]string{"core", "net"},
		[2]string{"net", "app"},
		[2]string{"core", "tool"},
		[2]string{"app", "run"},
	)

	sub, err := g.Subgraph("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "core", "net"}, sub.Nodes())

	// Edges inside the selection survive, edges leaving it do not.
	dependents, err := sub.Dependents("core")
	require.NoError(t, err)
	assert.Equal(t, []string{"net"}, dependents)

	// The original graph is untouched.
	assert.Equal(t, 5, g.Len())

	_, err = g.Subgraph("missing")
	assert.ErrorContains(t, err, "node not found")
}
