package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"cartograph/internal/service/explorer"
)

// Explorer render Prometheus metrics.
var (
	RenderPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cartograph",
			Name:      "render_pass_duration_seconds",
			Help:      "Duration of a full filter/layout/diff render pass",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	VisibleNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cartograph",
			Name:      "visible_nodes",
			Help:      "Visible nodes per render pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cartograph",
			Name:      "transitions_total",
			Help:      "Elements started per transition phase",
		},
		[]string{"element", "phase"}, // element: node/link, phase: enter/update/exit
	)

	HierarchyRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cartograph",
			Name:      "hierarchy_rebuilds_total",
			Help:      "Render passes that rebuilt the hierarchy from a changed node list",
		},
	)

	OpenViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cartograph",
			Name:      "open_views",
			Help:      "Explorer views currently held in memory",
		},
	)
)

var explorerMetricsRegistered bool

// RegisterExplorerMetrics registers the explorer collectors. Must be called once from main.
func RegisterExplorerMetrics() {
	if explorerMetricsRegistered {
		return
	}
	prometheus.MustRegister(RenderPassDuration)
	prometheus.MustRegister(VisibleNodes)
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(HierarchyRebuildsTotal)
	prometheus.MustRegister(OpenViews)
	explorerMetricsRegistered = true
}

// ExplorerObserver feeds render pass stats into the collectors above
type ExplorerObserver struct{}

var _ explorer.ViewObserver = ExplorerObserver{}

func (ExplorerObserver) ObservePass(stats explorer.PassStats) {
	RenderPassDuration.Observe(stats.Duration.Seconds())
	VisibleNodes.Observe(float64(stats.Visible))
	if stats.Rebuilt {
		HierarchyRebuildsTotal.Inc()
	}
	addDiff("node", stats.Diff.Nodes)
	addDiff("link", stats.Diff.Links)
}

func (ExplorerObserver) SetOpenViews(n int) {
	OpenViews.Set(float64(n))
}

func addDiff(element string, d explorer.Diff) {
	if n := len(d.Entering); n > 0 {
		TransitionsTotal.WithLabelValues(element, "enter").Add(float64(n))
	}
	if n := len(d.Updating); n > 0 {
		TransitionsTotal.WithLabelValues(element, "update").Add(float64(n))
	}
	if n := len(d.Exiting); n > 0 {
		TransitionsTotal.WithLabelValues(element, "exit").Add(float64(n))
	}
}
