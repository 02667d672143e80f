// Package metrics provides Prometheus instrumentation for stockmirror.
//
// Wire it up once in internal/kernel:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockmirror"

// ─────────────────────────────────────────────
// HTTP metrics
// ─────────────────────────────────────────────

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Mirror metrics
// ─────────────────────────────────────────────

var (
	// RemoteQueryDuration tracks row-store latency by operation and table.
	RemoteQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "query_duration_seconds",
			Help:      "Duration of remote row-store queries in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1, 5},
		},
		[]string{"operation", "table"},
	)

	// RemoteRowsRejected counts remote rows no schema adapter accepted.
	RemoteRowsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_rows_rejected_total",
			Help:      "Remote rows rejected by the schema adapters.",
		},
		[]string{"collection"},
	)

	// CollectionLoads counts collection loads by where the data came from:
	// remote, local, seed or derived.
	CollectionLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "loads_total",
			Help:      "Collection loads by source.",
		},
		[]string{"collection", "source"},
	)

	// Mutations counts mutations by collection, operation and outcome.
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "mutations_total",
			Help:      "Mirror mutations by collection, operation and outcome.",
		},
		[]string{"collection", "op", "outcome"},
	)

	// RemoteBacked is 1 when the session reads from the remote row-store.
	RemoteBacked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "mirror",
		Name:      "remote_backed",
		Help:      "1 when the mirror is remote-backed, 0 when local-only.",
	})

	// LowStockProducts is refreshed by the low-stock sweep and after mutations.
	LowStockProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_products",
		Help:      "Products at or under their minimum stock.",
	})

	// Backups counts snapshot backups by status.
	Backups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Snapshot backups by status.",
		},
		[]string{"status"}, // "success" | "failed"
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the registry served on /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		RemoteQueryDuration,
		RemoteRowsRejected,
		CollectionLoads,
		Mutations,
		RemoteBacked,
		LowStockProducts,
		Backups,
	)
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working behind the recorder.
func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records duration, count and in-flight requests. The route label
// is chi's route pattern, so ids do not blow up cardinality.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := strconv.Itoa(rr.status)

			RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, status).Inc()
		})
	}
}

// Handler exposes the registry in the Prometheus text and OpenMetrics formats.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ─────────────────────────────────────────────
// Helpers for app code
// ─────────────────────────────────────────────

// ObserveRemoteQuery starts a timer for one row-store query:
//
//	defer metrics.ObserveRemoteQuery("select_all", "products")()
func ObserveRemoteQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		RemoteQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLoad counts one collection load from source.
func RecordLoad(collection, source string) {
	CollectionLoads.WithLabelValues(collection, source).Inc()
}

// RecordRejected adds n rejected remote rows for collection.
func RecordRejected(collection string, n int) {
	if n > 0 {
		RemoteRowsRejected.WithLabelValues(collection).Add(float64(n))
	}
}

// RecordMutation counts one mutation outcome.
func RecordMutation(collection, op, outcome string) {
	Mutations.WithLabelValues(collection, op, outcome).Inc()
}

// RecordBackup counts one backup attempt.
func RecordBackup(err error) {
	if err != nil {
		Backups.WithLabelValues("failed").Inc()
		return
	}
	Backups.WithLabelValues("success").Inc()
}

// SetRemoteBacked records the session's source decision.
func SetRemoteBacked(remote bool) {
	if remote {
		RemoteBacked.Set(1)
		return
	}
	RemoteBacked.Set(0)
}
