// Package bomgraph holds the storage-agnostic graph algorithms behind the BOM
// service: reachability for cycle prevention and bounded tree expansion.
package bomgraph

import "context"

// NeighborFunc returns the direct children of id.
type NeighborFunc func(ctx context.Context, id string) ([]string, error)

// Reachable reports whether target can be reached from start by following
// child edges. The walk uses an explicit stack and a visited set, so it
// terminates even if the stored graph already contains a cycle.
func Reachable(ctx context.Context, start, target string, neighbors NeighborFunc) (bool, error) {
	if start == target {
		return true, nil
	}

	visited := map[string]struct{}{start: {}}
	stack := []string{start}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, err := neighbors(ctx, current)
		if err != nil {
			return false, err
		}
		for _, id := range next {
			if id == target {
				return true, nil
			}
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			stack = append(stack, id)
		}
	}
	return false, nil
}

// WouldCreateCycle reports whether adding parent->child closes a cycle, i.e.
// whether parent is already reachable from child.
func WouldCreateCycle(ctx context.Context, parentID, childID string, neighbors NeighborFunc) (bool, error) {
	return Reachable(ctx, childID, parentID, neighbors)
}
