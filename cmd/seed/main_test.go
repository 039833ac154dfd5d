package main

import (
	"context"
	"testing"

	"go-bom-graph/internal/bomgraph"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/service"
	"go-bom-graph/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedBuildsDemoAssembly(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testdb.New(t))
	audit := service.NewAuditTrail()
	require.NoError(t, audit.Load(ctx, store))
	parts, err := service.NewPartService(ctx, store, audit, nil, nil, nil)
	require.NoError(t, err)
	bom := service.NewBomService(store, audit, nil, nil, nil)

	require.NoError(t, seed(ctx, parts, bom))

	all, err := parts.SearchParts(ctx, repository.PartFilter{})
	require.NoError(t, err)
	require.Len(t, all, len(demoParts))

	tree, err := service.NewTreeService(store, nil).GetTree(ctx, "PART-0001", bomgraph.Limits{Depth: bomgraph.MaxDepth, NodeLimit: bomgraph.MaxNodeLimit})
	require.NoError(t, err)
	assert.Equal(t, "Bicycle", tree.Root.Part.Name)
	require.Len(t, tree.Root.Children, 2)
	// bolt is reachable through frame and through wheel -> hub
	assert.Equal(t, 9, tree.NodeCount)
}
