package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BomMetrics records graph mutations and tree expansions.
type BomMetrics struct {
	mutations       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	treeNodes       prometheus.Histogram
	treeLimitErrors prometheus.Counter
}

// NewBomMetrics registers the BOM metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewBomMetrics(reg prometheus.Registerer) *BomMetrics {
	if reg == nil {
		return &BomMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bom_mutations_total",
		Help: "Committed part and BOM link mutations by audit action.",
	}, []string{"action"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bom_link_rejections_total",
		Help: "BOM link mutations rejected by error kind.",
	}, []string{"kind"})
	treeNodes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bom_tree_nodes",
		Help:    "Nodes emitted per successful tree expansion.",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
	})
	treeLimitErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bom_tree_limit_exceeded_total",
		Help: "Tree expansions aborted by the node limit.",
	})
	reg.MustRegister(mutations, rejections, treeNodes, treeLimitErrors)
	return &BomMetrics{
		mutations:       mutations,
		rejections:      rejections,
		treeNodes:       treeNodes,
		treeLimitErrors: treeLimitErrors,
	}
}

// IncMutation counts a committed mutation for the given audit action.
func (m *BomMetrics) IncMutation(action string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncRejection counts a rejected link mutation (cycle, conflict, ...).
func (m *BomMetrics) IncRejection(kind string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveTree records the node count of a successful expansion.
func (m *BomMetrics) ObserveTree(nodeCount int) {
	if m == nil || m.treeNodes == nil {
		return
	}
	m.treeNodes.Observe(float64(nodeCount))
}

func (m *BomMetrics) IncTreeLimitExceeded() {
	if m == nil || m.treeLimitErrors == nil {
		return
	}
	m.treeLimitErrors.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
