package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_attempts_total",
			Help: "Tentativas de GET no site de origem, por resultado",
		},
		[]string{"outcome"},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Latência de cada tentativa de GET no site de origem",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
	)

	PagesCrawled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_listing_pages_total",
			Help: "Páginas de listagem de produtos percorridas",
		},
	)

	SyncUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_units_total",
			Help: "Unidades de sincronização (marca, página, especificação) por estado final",
		},
		[]string{"unit", "state"},
	)

	Upserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_upserts_total",
			Help: "Upserts aplicados no repositório",
		},
		[]string{"entity"},
	)

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Leituras de cache por tier e resultado",
		},
		[]string{"tier", "result"},
	)

	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_job_runs_total",
			Help: "Execuções de jobs agendados",
		},
		[]string{"job", "outcome"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(FetchAttempts, FetchDuration, PagesCrawled, SyncUnits, Upserts, CacheRequests, JobRuns)
	})
}

func Start(port string) {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, mux)
}
