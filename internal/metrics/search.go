package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "search_requests_total",
			Help:      "Total number of catalog searches",
		},
		[]string{"kind", "outcome"}, // kind: query/browse, outcome: hit/empty/error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "search_duration_seconds",
			Help:      "Time spent ranking a query against the catalog index",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"kind"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "search_results",
			Help:      "Number of items matched per search before the limit is applied",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 500, 1000},
		},
	)

	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "suggest_requests_total",
			Help:      "Total number of title suggestion requests",
		},
		[]string{"outcome"},
	)

	CatalogSnapshotItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "catalogsearch",
			Name:      "catalog_snapshot_items",
			Help:      "Number of items in the currently published catalog snapshot",
		},
	)

	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "catalog_refresh_total",
			Help:      "Catalog snapshot refresh attempts",
		},
		[]string{"trigger", "status"}, // trigger: api/watch/startup/replace
	)

	CatalogFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Time spent fetching a catalog snapshot from its source",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search and catalog metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(CatalogSnapshotItems)
	prometheus.MustRegister(CatalogRefreshTotal)
	prometheus.MustRegister(CatalogFetchDuration)
	searchMetricsRegistered = true
}
