package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Catalog metrics
	CatalogQueries  *prometheus.CounterVec
	CatalogLatency  *prometheus.HistogramVec
	CatalogItems    *prometheus.GaugeVec
	CatalogReloads  *prometheus.CounterVec
	SnapshotVersion prometheus.Gauge

	// Memo cache metrics
	CacheLookups *prometheus.CounterVec

	// Broker metrics
	BrokerMessages *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CatalogQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queries_total",
			Help:      "Total number of catalog queries by catalog, operation and result",
		}, []string{"catalog", "operation", "result"}),
		CatalogLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_duration_seconds",
			Help:      "Time spent running the filter pipeline",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		}, []string{"catalog", "operation"}),
		CatalogItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items",
			Help:      "Number of items in each loaded catalog",
		}, []string{"catalog"}),
		CatalogReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reloads_total",
			Help:      "Total number of snapshot reloads by trigger and status",
		}, []string{"trigger", "status"}),
		SnapshotVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_version",
			Help:      "Version of the snapshot currently served",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_lookups_total",
			Help:      "Memoized result lookups by result",
		}, []string{"result"}),

		BrokerMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_messages_total",
			Help:      "Reload events published and received by status",
		}, []string{"direction", "status"}),
	}
}
