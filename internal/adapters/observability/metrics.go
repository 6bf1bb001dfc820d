package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staysearch", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "staysearch", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staysearch", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
	StoreAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "staysearch", Name: "store_available", Help: "1 while the durable listing store is reachable."},
	)
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staysearch", Name: "searches_total", Help: "Listing searches by serving source and outcome. Concurrent identical mysql searches share one query and count once."},
		[]string{"source", "outcome"}, // source: mysql|memory|cache
	)
	SeedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staysearch", Name: "seed_events_total", Help: "Seeding attempts."},
		[]string{"target", "result"}, // target: mysql|memory; result: seeded|skipped|failed
	)
)

// Serve starts a standalone metrics listener when METRICS_ADDR is set.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CacheEvents, StoreAvailable, Searches, SeedEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func SetStoreAvailable(up bool) {
	if up {
		StoreAvailable.Set(1)
		return
	}
	StoreAvailable.Set(0)
}

func ObserveSearch(source string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Searches.WithLabelValues(source, outcome).Inc()
}

func ObserveSeed(target, result string) {
	SeedEvents.WithLabelValues(target, result).Inc()
}
