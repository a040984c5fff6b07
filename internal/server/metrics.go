package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Senticor-ai/project-sub002/internal/jsonld"
)

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	unknownTypes  *prometheus.CounterVec
	itemsByBucket *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gtd",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gtd",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		unknownTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gtd",
			Name:      "items_unknown_type_total",
			Help:      "Items served whose @type the codec does not recognise and decodes as an action.",
		}, []string{"type"}),
		itemsByBucket: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gtd",
			Name:      "items",
			Help:      "Live items per bucket as of the last bucket count.",
		}, []string{"bucket"}),
	}
	reg.MustRegister(m.requests, m.duration, m.unknownTypes, m.itemsByBucket)
	return m
}

// observeItem counts items whose type falls through to the action fallback.
func (m *metrics) observeItem(item map[string]any) {
	typ, _ := item["@type"].(string)
	if !jsonld.IsKnownType(jsonld.SchemaType(typ)) {
		m.unknownTypes.WithLabelValues(typ).Inc()
	}
}

func (m *metrics) observeBuckets(counts map[string]int) {
	m.itemsByBucket.Reset()
	for bucket, n := range counts {
		m.itemsByBucket.WithLabelValues(bucket).Set(float64(n))
	}
}

// instrument records metrics and a log line per request.
func (m *metrics) instrument(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
		})
	}
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
