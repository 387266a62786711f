package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for load outcomes.
const (
	Ok        = "ok"
	Exhausted = "exhausted"
	Fail      = "fail"
)

// Collectors for the sync mediator and paging consumer.
var (
	MediatorLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holonet_mediator_loads_total",
		Help: "Cumulative number of mediator loads, by label, signal and outcome.",
	}, []string{"label", "signal", "outcome"})
	MediatorFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "holonet_mediator_fetch_seconds",
		Help:    "Latency of remote page fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"label"})
	MediatorItemsFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holonet_mediator_items_fetched_total",
		Help: "Cumulative number of remote items written to the cache.",
	}, []string{"label"})
	MediatorForcedRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holonet_mediator_forced_refresh_total",
		Help: "Cumulative number of first loads upgraded to a refresh by the staleness policy.",
	}, []string{"label"})
	PagerWindowReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holonet_pager_window_reads_total",
		Help: "Cumulative number of cached window reads served.",
	}, []string{"label"})
)

func init() {
	prometheus.MustRegister(
		MediatorLoadsTotal,
		MediatorFetchSeconds,
		MediatorItemsFetchedTotal,
		MediatorForcedRefreshTotal,
		PagerWindowReadsTotal,
	)
}
