package graph

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func addNode(t *testing.T, e *Engine, name string) *model.Node {
	t.Helper()
	n, err := e.AddNode(context.Background(), model.Node{Type: "concept", Name: name})
	require.NoError(t, err)
	return n
}

func TestAddNode(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	n, err := e.AddNode(ctx, model.Node{Type: "concept", Name: "connection pooling"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, model.DefaultNamespace, n.Namespace)
	assert.False(t, n.CreatedAt.IsZero())

	got, err := e.Node(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "connection pooling", got.Name)
}

func TestAddNodeValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AddNode(ctx, model.Node{Name: "no type"})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.AddNode(ctx, model.Node{Type: "concept"})
	assert.True(t, fault.IsInvalidArgument(err))
}

func TestAddNodeAutoLinks(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "postgres connection pooling")
	b := addNode(t, e, "postgres replication lag")

	edges, err := e.Edges(ctx, b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, edges, "nodes sharing terms should be auto-linked")

	found := false
	for _, edge := range edges {
		if edge.Type == RelatedEdgeType && edge.SourceID == b.ID && edge.TargetID == a.ID {
			found = true
			assert.InDelta(t, autoLinkWeight, edge.Weight, 1e-9)
		}
	}
	assert.True(t, found, "expected a related-to edge from the newer node")
}

func TestConnect(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "alpha")
	b := addNode(t, e, "beta")

	edge, err := e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "depends-on", Weight: 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, edge.Weight, 1e-9)

	// Same triple overwrites rather than duplicating.
	_, err = e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "depends-on", Weight: 0.2})
	require.NoError(t, err)

	edges, err := e.store.GetEdges(ctx, store.EdgeFilter{SourceID: a.ID, Type: "depends-on"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.InDelta(t, 0.2, edges[0].Weight, 1e-9)
}

func TestConnectValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "alpha")
	b := addNode(t, e, "beta")

	_, err := e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: ""})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: a.ID, Type: "self"})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "w", Weight: 1.5})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: "ghost", Type: "depends-on"})
	assert.True(t, fault.IsNotFound(err))

	// Deleted endpoints are not connectable.
	require.NoError(t, e.RemoveNode(ctx, b.ID))
	_, err = e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "depends-on"})
	assert.True(t, fault.IsNotFound(err))
}

func TestConnectDefaultWeight(t *testing.T) {
	e := newTestEngine(t)
	a := addNode(t, e, "alpha")
	b := addNode(t, e, "beta")

	edge, err := e.Connect(context.Background(), model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "depends-on"})
	require.NoError(t, err)
	assert.InDelta(t, model.DefaultEdgeWeight, edge.Weight, 1e-9)
}

func TestRemoveAndRestorePreservesEdges(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "alpha")
	b := addNode(t, e, "beta")
	_, err := e.Connect(ctx, model.Edge{SourceID: a.ID, TargetID: b.ID, Type: "depends-on"})
	require.NoError(t, err)

	require.NoError(t, e.RemoveNode(ctx, b.ID))
	_, err = e.Node(ctx, b.ID)
	assert.True(t, fault.IsNotFound(err))

	require.NoError(t, e.RestoreNode(ctx, b.ID))
	edges, err := e.Edges(ctx, b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, edges, "edges should survive delete and restore")
}

func TestQueryClampsLimit(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		addNode(t, e, "node")
	}

	hits, err := e.Query(ctx, store.NodeQuery{})
	require.NoError(t, err)
	assert.Len(t, hits, 10, "default limit is 10")

	hits, err = e.Query(ctx, store.NodeQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestTraverseBFS(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "a")
	b := addNode(t, e, "b")
	c := addNode(t, e, "c")
	d := addNode(t, e, "d")

	mustConnect(t, e, a.ID, b.ID, "next")
	mustConnect(t, e, b.ID, c.ID, "next")
	mustConnect(t, e, c.ID, d.ID, "next")

	hops, err := e.Traverse(ctx, a.ID, TraversalOptions{Depth: 2, EdgeType: "next"})
	require.NoError(t, err)

	depths := map[string]int{}
	for _, h := range hops {
		depths[h.Node.ID] = h.Depth
	}
	assert.Equal(t, 0, depths[a.ID])
	assert.Equal(t, 1, depths[b.ID])
	assert.Equal(t, 2, depths[c.ID])
	_, beyond := depths[d.ID]
	assert.False(t, beyond, "depth 2 must not reach d")
}

func TestTraverseFollowsBothDirections(t *testing.T) {
	e := newTestEngine(t)
	a := addNode(t, e, "a")
	b := addNode(t, e, "b")
	mustConnect(t, e, b.ID, a.ID, "points-at")

	hops, err := e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 1, EdgeType: "points-at"})
	require.NoError(t, err)
	require.Len(t, hops, 2, "incoming edges count as adjacency")
}

func TestTraverseCycle(t *testing.T) {
	e := newTestEngine(t)
	a := addNode(t, e, "a")
	b := addNode(t, e, "b")
	c := addNode(t, e, "c")

	mustConnect(t, e, a.ID, b.ID, "next")
	mustConnect(t, e, b.ID, c.ID, "next")
	mustConnect(t, e, c.ID, a.ID, "next")

	hops, err := e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 5, EdgeType: "next"})
	require.NoError(t, err)
	assert.Len(t, hops, 3, "a cycle terminates with each node visited once")
}

func TestTraverseDFSVisitsSameSet(t *testing.T) {
	e := newTestEngine(t)
	a := addNode(t, e, "a")
	b := addNode(t, e, "b")
	c := addNode(t, e, "c")
	mustConnect(t, e, a.ID, b.ID, "next")
	mustConnect(t, e, a.ID, c.ID, "next")

	bfs, err := e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 2, EdgeType: "next", Mode: ModeBFS})
	require.NoError(t, err)
	dfs, err := e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 2, EdgeType: "next", Mode: ModeDFS})
	require.NoError(t, err)
	assert.Equal(t, len(bfs), len(dfs))
}

func TestTraverseValidation(t *testing.T) {
	e := newTestEngine(t)
	a := addNode(t, e, "a")

	_, err := e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 6})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.Traverse(context.Background(), a.ID, TraversalOptions{Depth: 1, Mode: "spiral"})
	assert.True(t, fault.IsInvalidArgument(err))

	_, err = e.Traverse(context.Background(), "ghost", TraversalOptions{Depth: 1})
	assert.True(t, fault.IsNotFound(err))
}

func TestTraverseSkipsDeletedNeighbors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a := addNode(t, e, "a")
	b := addNode(t, e, "b")
	mustConnect(t, e, a.ID, b.ID, "next")
	require.NoError(t, e.RemoveNode(ctx, b.ID))

	hops, err := e.Traverse(ctx, a.ID, TraversalOptions{Depth: 1, EdgeType: "next"})
	require.NoError(t, err)
	assert.Len(t, hops, 1, "deleted neighbors are invisible to traversal")
}

func mustConnect(t *testing.T, e *Engine, src, dst, typ string) {
	t.Helper()
	_, err := e.Connect(context.Background(), model.Edge{SourceID: src, TargetID: dst, Type: typ})
	require.NoError(t, err)
}
