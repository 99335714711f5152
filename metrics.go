package replay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry       *prometheus.Registry
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	requests       *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry, cacheLen, indexLen func() int) *metrics {
	f := promauto.With(reg)
	m := &metrics{
		registry: reg,
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "replay_cache_hits_total",
			Help: "Replay lookups served from the record cache.",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "replay_cache_misses_total",
			Help: "Replay lookups that had to read the record store.",
		}),
		cacheEvictions: f.NewCounter(prometheus.CounterOpts{
			Name: "replay_cache_evictions_total",
			Help: "Records evicted from the record cache.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "replay_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "replay_cache_entries",
		Help: "Records currently held in the record cache.",
	}, func() float64 { return float64(cacheLen()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "replay_index_entries",
		Help: "Replays in the metadata index.",
	}, func() float64 { return float64(indexLen()) })

	return m
}
