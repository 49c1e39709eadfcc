package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

const namespace = "service_atlas"

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Range queries executed, partitioned by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	queryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_seconds",
			Help:      "Range query latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend"},
	)

	rowsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_fetched_total",
			Help:      "Raw rows returned by backends.",
		},
		[]string{"backend"},
	)

	rowsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows discarded during normalization, partitioned by reason.",
		},
		[]string{"reason"},
	)

	unparsedValuesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unparsed_currency_rows_total",
			Help:      "Kept rows with at least one monetary value that could not be parsed.",
		},
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups, partitioned by cache and result.",
		},
		[]string{"cache", "result"},
	)
)

// Register attaches the collectors to reg. Collectors already registered
// are skipped.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		queriesTotal,
		queryDurationSeconds,
		rowsFetchedTotal,
		rowsDroppedTotal,
		unparsedValuesTotal,
		cacheRequestsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveQuery records one range query.
func ObserveQuery(backend string, duration time.Duration, outcome string, rows int) {
	queriesTotal.WithLabelValues(backend, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	queryDurationSeconds.WithLabelValues(backend).Observe(duration.Seconds())
	if rows > 0 {
		rowsFetchedTotal.WithLabelValues(backend).Add(float64(rows))
	}
}

// ObserveNormalize records the drop counters of one normalization pass.
func ObserveNormalize(stats domain.NormalizeStats) {
	if stats.DroppedTimestamp > 0 {
		rowsDroppedTotal.WithLabelValues("timestamp").Add(float64(stats.DroppedTimestamp))
	}
	if stats.OutOfRange > 0 {
		rowsDroppedTotal.WithLabelValues("out_of_range").Add(float64(stats.OutOfRange))
	}
	if stats.UnparsedCurrency > 0 {
		unparsedValuesTotal.Add(float64(stats.UnparsedCurrency))
	}
}

// ObserveCache records a cache hit or miss.
func ObserveCache(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequestsTotal.WithLabelValues(name, result).Inc()
}
