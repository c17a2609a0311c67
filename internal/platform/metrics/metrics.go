package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	TripsCreated      prometheus.Counter
	TripsArchived     prometheus.Counter
	ItineraryReorders prometheus.Counter
	ReorderConflicts  prometheus.Counter
	DocumentsReviewed *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TripsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_trips_created_total",
			Help: "Total number of trips created",
		}),
		TripsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_trips_archived_total",
			Help: "Total number of trips archived",
		}),
		ItineraryReorders: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_itinerary_reorders_total",
			Help: "Total number of itinerary reorder operations",
		}),
		ReorderConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_itinerary_reorder_conflicts_total",
			Help: "Reorders rejected because another session changed the list first",
		}),
		DocumentsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "triex_documents_reviewed_total",
			Help: "Passenger documents reviewed, by outcome",
		}, []string{"outcome"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_cache_hits_total",
			Help: "Read-cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "triex_cache_misses_total",
			Help: "Read-cache misses",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triex_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Latency is the HTTP middleware that feeds RequestDuration.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
