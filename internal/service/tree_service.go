package service

import (
	"context"

	"go-bom-graph/internal/bomgraph"
	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/pkg/apperror"
	"go-bom-graph/pkg/metrics"
)

type TreeService interface {
	GetTree(ctx context.Context, rootID string, limits bomgraph.Limits) (*model.BomTreeResponse, error)
}

type treeService struct {
	store   repository.Store
	metrics *metrics.BomMetrics
}

func NewTreeService(store repository.Store, m *metrics.BomMetrics) TreeService {
	return &treeService{store: store, metrics: m}
}

// GetTree expands the BOM under rootID. It performs no writes and reads the
// live tables, so concurrent edits may be partially visible.
func (s *treeService) GetTree(ctx context.Context, rootID string, limits bomgraph.Limits) (*model.BomTreeResponse, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if _, err := requirePart(ctx, s.store, rootID); err != nil {
		return nil, err
	}

	tree, err := bomgraph.Expand(ctx, storeSource{store: s.store}, rootID, limits)
	if err != nil {
		if apperror.Is(err, apperror.KindLimitExceeded) {
			s.metrics.IncTreeLimitExceeded()
		}
		return nil, err
	}
	s.metrics.ObserveTree(tree.NodeCount)
	return tree, nil
}

// storeSource adapts the repositories to the expander's read interface.
type storeSource struct {
	store repository.Store
}

func (s storeSource) Part(ctx context.Context, id string) (model.PartSummary, error) {
	part, err := requirePart(ctx, s.store, id)
	if err != nil {
		return model.PartSummary{}, err
	}
	return part.Summary(), nil
}

func (s storeSource) Children(ctx context.Context, id string) ([]bomgraph.Edge, error) {
	links, err := s.store.Links().ChildLinks(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "loading child links")
	}
	edges := make([]bomgraph.Edge, 0, len(links))
	for _, link := range links {
		edges = append(edges, bomgraph.Edge{ChildID: link.ChildID, Quantity: link.Quantity})
	}
	return edges, nil
}
