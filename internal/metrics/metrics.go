// Package metrics holds the Prometheus collectors of the feature engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topomap_cache_hits_total",
		Help: "Simplification cache hits by feature kind",
	}, []string{"kind"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topomap_cache_misses_total",
		Help: "Simplification cache misses by feature kind",
	}, []string{"kind"})
	CacheClearsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "topomap_cache_clears_total",
		Help: "Total number of per-layer cache clears",
	})
	LayerBuildDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topomap_layer_build_duration_ms",
		Help:    "Feature graph construction time per layer in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"layer"})
	FeaturesBuilt = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "topomap_features",
		Help: "Number of features per layer and kind",
	}, []string{"layer", "kind"})
	QueryResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topomap_query_results",
		Help:    "Number of features returned by a viewport query",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
	}, []string{"layer"})
)

func init() {
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CacheClearsTotal)
	prometheus.MustRegister(LayerBuildDurationMs)
	prometheus.MustRegister(FeaturesBuilt)
	prometheus.MustRegister(QueryResults)
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
