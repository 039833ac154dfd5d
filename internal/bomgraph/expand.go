package bomgraph

import (
	"context"

	"go-bom-graph/internal/model"
	"go-bom-graph/pkg/apperror"
)

const (
	MaxDepth         = 5
	MaxNodeLimit     = 80
	DefaultDepth     = 1
	DefaultNodeLimit = MaxNodeLimit
)

// Edge is an outgoing link as seen by the expander.
type Edge struct {
	ChildID  string
	Quantity int
}

// Source is the read side the expander walks. Children must be returned in
// presentation order (child part number ascending).
type Source interface {
	Part(ctx context.Context, id string) (model.PartSummary, error)
	Children(ctx context.Context, id string) ([]Edge, error)
}

type Limits struct {
	Depth     int
	NodeLimit int
}

// Expand builds the tree below rootID. Exceeding the node limit aborts the
// whole expansion; a partial tree is never returned. Limits are assumed to be
// validated by the caller.
func Expand(ctx context.Context, src Source, rootID string, limits Limits) (*model.BomTreeResponse, error) {
	e := &expander{
		src:      newCachedSource(src),
		limits:   limits,
		ancestry: map[string]struct{}{rootID: {}},
	}

	root, err := e.visit(ctx, rootID, nil, 0)
	if err != nil {
		return nil, err
	}

	return &model.BomTreeResponse{
		Root:           root,
		RequestedDepth: limits.Depth,
		NodeLimit:      limits.NodeLimit,
		NodeCount:      e.count,
	}, nil
}

type expander struct {
	src      *cachedSource
	limits   Limits
	count    int
	ancestry map[string]struct{}
}

func (e *expander) visit(ctx context.Context, id string, quantity *int, depth int) (model.BomTreeNode, error) {
	if e.count >= e.limits.NodeLimit {
		return model.BomTreeNode{}, apperror.LimitExceeded(
			"BOM expansion exceeded node limit of %d. Reduce depth or load incrementally.", e.limits.NodeLimit)
	}
	if err := ctx.Err(); err != nil {
		return model.BomTreeNode{}, err
	}

	part, err := e.src.Part(ctx, id)
	if err != nil {
		return model.BomTreeNode{}, err
	}
	edges, err := e.src.Children(ctx, id)
	if err != nil {
		return model.BomTreeNode{}, err
	}
	e.count++

	node := model.BomTreeNode{
		Part:               part,
		QuantityFromParent: quantity,
		HasChildren:        len(edges) > 0,
		Children:           []model.BomTreeNode{},
	}
	if depth >= e.limits.Depth {
		return node, nil
	}

	for _, edge := range edges {
		// back-edge to an ancestor: only possible if the stored graph is corrupt
		if _, onPath := e.ancestry[edge.ChildID]; onPath {
			continue
		}
		qty := edge.Quantity
		e.ancestry[edge.ChildID] = struct{}{}
		child, err := e.visit(ctx, edge.ChildID, &qty, depth+1)
		delete(e.ancestry, edge.ChildID)
		if err != nil {
			return model.BomTreeNode{}, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// cachedSource memoizes part and child lookups for one expansion.
type cachedSource struct {
	src      Source
	parts    map[string]model.PartSummary
	children map[string][]Edge
}

func newCachedSource(src Source) *cachedSource {
	return &cachedSource{
		src:      src,
		parts:    make(map[string]model.PartSummary),
		children: make(map[string][]Edge),
	}
}

func (c *cachedSource) Part(ctx context.Context, id string) (model.PartSummary, error) {
	if part, ok := c.parts[id]; ok {
		return part, nil
	}
	part, err := c.src.Part(ctx, id)
	if err != nil {
		return model.PartSummary{}, err
	}
	c.parts[id] = part
	return part, nil
}

func (c *cachedSource) Children(ctx context.Context, id string) ([]Edge, error) {
	if edges, ok := c.children[id]; ok {
		return edges, nil
	}
	edges, err := c.src.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	c.children[id] = edges
	return edges, nil
}
