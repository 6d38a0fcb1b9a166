package exchangerate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_rate_refresh_total",
		Help: "Rate table refreshes by result",
	}, []string{"result"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "exchange_rate_refresh_duration_seconds",
		Help:    "Time spent fetching a rate table",
		Buckets: prometheus.DefBuckets,
	})

	staleReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_rate_stale_reads_total",
		Help: "Reads served from an expired snapshot after a failed refresh",
	})

	currenciesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "exchange_rate_currencies",
		Help: "Number of currencies in the current snapshot",
	})

	mirrorLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_rate_mirror_lookups_total",
		Help: "Shared rate mirror lookups by result",
	}, []string{"result"})
)
