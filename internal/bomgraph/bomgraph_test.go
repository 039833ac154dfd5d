package bomgraph

import (
	"context"
	"errors"
	"testing"

	"go-bom-graph/internal/model"
	"go-bom-graph/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memGraph is a fixture source; ids double as part numbers.
type memGraph struct {
	edges      map[string][]Edge
	partCalls  map[string]int
	childCalls map[string]int
}

func newMemGraph() *memGraph {
	return &memGraph{
		edges:      map[string][]Edge{},
		partCalls:  map[string]int{},
		childCalls: map[string]int{},
	}
}

func (g *memGraph) link(parent, child string, qty int) *memGraph {
	g.edges[parent] = append(g.edges[parent], Edge{ChildID: child, Quantity: qty})
	return g
}

func (g *memGraph) Part(_ context.Context, id string) (model.PartSummary, error) {
	g.partCalls[id]++
	return model.PartSummary{ID: id, PartNumber: id, Name: "Part " + id}, nil
}

func (g *memGraph) Children(_ context.Context, id string) ([]Edge, error) {
	g.childCalls[id]++
	return g.edges[id], nil
}

func (g *memGraph) neighbors(ctx context.Context, id string) ([]string, error) {
	ids := []string{}
	for _, e := range g.edges[id] {
		ids = append(ids, e.ChildID)
	}
	return ids, nil
}

func TestReachable(t *testing.T) {
	g := newMemGraph().link("A", "B", 1).link("B", "C", 1).link("X", "A", 1)
	ctx := context.Background()

	ok, err := Reachable(ctx, "A", "C", g.neighbors)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Reachable(ctx, "C", "A", g.neighbors)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Reachable(ctx, "A", "A", g.neighbors)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReachableTerminatesOnCorruptCycle(t *testing.T) {
	g := newMemGraph().link("A", "B", 1).link("B", "C", 1).link("C", "A", 1)

	ok, err := Reachable(context.Background(), "A", "Z", g.neighbors)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWouldCreateCycle(t *testing.T) {
	g := newMemGraph().link("A", "B", 2).link("B", "C", 1)
	ctx := context.Background()

	cycle, err := WouldCreateCycle(ctx, "C", "A", g.neighbors)
	require.NoError(t, err)
	assert.True(t, cycle, "C->A closes A->B->C->A")

	cycle, err = WouldCreateCycle(ctx, "A", "C", g.neighbors)
	require.NoError(t, err)
	assert.False(t, cycle, "a shortcut edge is not a cycle")
}

func TestReachablePropagatesNeighborError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Reachable(context.Background(), "A", "B", func(context.Context, string) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestExpandRespectsDepth(t *testing.T) {
	g := newMemGraph().link("A", "B", 2).link("B", "C", 3)

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 1, NodeLimit: 80})
	require.NoError(t, err)

	assert.Equal(t, 2, tree.NodeCount)
	assert.Equal(t, 1, tree.RequestedDepth)
	assert.Nil(t, tree.Root.QuantityFromParent)
	assert.True(t, tree.Root.HasChildren)
	require.Len(t, tree.Root.Children, 1)

	b := tree.Root.Children[0]
	require.NotNil(t, b.QuantityFromParent)
	assert.Equal(t, 2, *b.QuantityFromParent)
	assert.True(t, b.HasChildren, "B has children even though they were not expanded")
	assert.Empty(t, b.Children)
	assert.NotNil(t, b.Children)
}

func TestExpandDepthZeroReturnsRootOnly(t *testing.T) {
	g := newMemGraph().link("A", "B", 1)

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 0, NodeLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, tree.NodeCount)
	assert.True(t, tree.Root.HasChildren)
	assert.Empty(t, tree.Root.Children)
}

func TestExpandNodeLimitAbortsWholeTree(t *testing.T) {
	g := newMemGraph().link("A", "B", 1)

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 1, NodeLimit: 1})
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.True(t, apperror.Is(err, apperror.KindLimitExceeded))
	assert.Equal(t, "BOM expansion exceeded node limit of 1. Reduce depth or load incrementally.", err.Error())
}

func TestExpandSkipsAncestorBackEdges(t *testing.T) {
	// corrupt data: A->B->A
	g := newMemGraph().link("A", "B", 1).link("B", "A", 1)

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 5, NodeLimit: 80})
	require.NoError(t, err)
	assert.Equal(t, 2, tree.NodeCount)
	require.Len(t, tree.Root.Children, 1)
	assert.Empty(t, tree.Root.Children[0].Children)
	assert.True(t, tree.Root.Children[0].HasChildren)
}

func TestExpandSharedSubassemblyAppearsTwiceAndIsCached(t *testing.T) {
	g := newMemGraph().
		link("A", "B", 1).
		link("A", "C", 1).
		link("B", "D", 4).
		link("C", "D", 5)

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 5, NodeLimit: 80})
	require.NoError(t, err)

	assert.Equal(t, 5, tree.NodeCount)
	require.Len(t, tree.Root.Children, 2)
	assert.Equal(t, "D", tree.Root.Children[0].Children[0].Part.ID)
	assert.Equal(t, 4, *tree.Root.Children[0].Children[0].QuantityFromParent)
	assert.Equal(t, 5, *tree.Root.Children[1].Children[0].QuantityFromParent)
	assert.Equal(t, 1, g.partCalls["D"])
	assert.Equal(t, 1, g.childCalls["D"])
}

func TestExpandNodeCountNeverExceedsLimit(t *testing.T) {
	g := newMemGraph()
	for _, child := range []string{"B", "C", "D"} {
		g.link("A", child, 1)
	}

	tree, err := Expand(context.Background(), g, "A", Limits{Depth: 1, NodeLimit: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, tree.NodeCount)

	_, err = Expand(context.Background(), g, "A", Limits{Depth: 1, NodeLimit: 3})
	assert.True(t, apperror.Is(err, apperror.KindLimitExceeded))
}

func TestParseLimits(t *testing.T) {
	cases := []struct {
		name      string
		depth     string
		nodeLimit string
		want      Limits
		wantErr   string
	}{
		{name: "defaults", want: Limits{Depth: 1, NodeLimit: 80}},
		{name: "all", depth: "ALL", want: Limits{Depth: 5, NodeLimit: 80}},
		{name: "explicit", depth: "3", nodeLimit: "10", want: Limits{Depth: 3, NodeLimit: 10}},
		{name: "zero depth", depth: "0", want: Limits{Depth: 0, NodeLimit: 80}},
		{name: "too deep", depth: "6", wantErr: "Expand limit exceeded. Maximum supported depth is 5."},
		{name: "negative depth", depth: "-1", wantErr: "Depth must be a non-negative integer."},
		{name: "garbage depth", depth: "deep", wantErr: "Depth must be a non-negative integer."},
		{name: "zero limit", nodeLimit: "0", wantErr: "Node limit must be a positive integer."},
		{name: "fractional limit", nodeLimit: "1.5", wantErr: "Node limit must be a positive integer."},
		{name: "limit too high", nodeLimit: "81", wantErr: "Node limit cannot exceed 80."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLimits(tc.depth, tc.nodeLimit)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.KindValidation))
				assert.Equal(t, tc.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
