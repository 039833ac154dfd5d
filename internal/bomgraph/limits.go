package bomgraph

import (
	"strconv"
	"strings"

	"go-bom-graph/pkg/apperror"
)

// DepthAll is the caller shorthand for the deepest supported expansion.
const DepthAll = "all"

// ParseLimits resolves raw query values into validated limits. Empty values
// fall back to the defaults.
func ParseLimits(depthRaw, nodeLimitRaw string) (Limits, error) {
	limits := Limits{Depth: DefaultDepth, NodeLimit: DefaultNodeLimit}

	depthRaw = strings.TrimSpace(depthRaw)
	switch {
	case depthRaw == "":
	case strings.EqualFold(depthRaw, DepthAll):
		limits.Depth = MaxDepth
	default:
		depth, err := strconv.Atoi(depthRaw)
		if err != nil {
			return Limits{}, apperror.Validation("Depth must be a non-negative integer.")
		}
		limits.Depth = depth
	}

	nodeLimitRaw = strings.TrimSpace(nodeLimitRaw)
	if nodeLimitRaw != "" {
		nodeLimit, err := strconv.Atoi(nodeLimitRaw)
		if err != nil {
			return Limits{}, apperror.Validation("Node limit must be a positive integer.")
		}
		limits.NodeLimit = nodeLimit
	}

	if err := limits.Validate(); err != nil {
		return Limits{}, err
	}
	return limits, nil
}

func (l Limits) Validate() error {
	if l.Depth < 0 {
		return apperror.Validation("Depth must be a non-negative integer.")
	}
	if l.Depth > MaxDepth {
		return apperror.Validation("Expand limit exceeded. Maximum supported depth is %d.", MaxDepth)
	}
	if l.NodeLimit <= 0 {
		return apperror.Validation("Node limit must be a positive integer.")
	}
	if l.NodeLimit > MaxNodeLimit {
		return apperror.Validation("Node limit cannot exceed %d.", MaxNodeLimit)
	}
	return nil
}
