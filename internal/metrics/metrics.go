// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "epropulse"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Searches           *prometheus.CounterVec
	Suggestions        prometheus.Counter
	SEOAnalyses        *prometheus.CounterVec
	ContactSubmissions *prometheus.CounterVec
	EditorSessions     prometheus.Gauge
	PostSaves          *prometheus.CounterVec
	ContentSync        *prometheus.CounterVec
}

// New registers every collector on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Catalogue searches by kind (posts, products).",
		}, []string{"kind"}),
		Suggestions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_suggestions_total",
			Help:      "Search suggestion requests.",
		}),
		SEOAnalyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seo_analyses_total",
			Help:      "SEO analyses, labelled by whether the result came from the memo.",
		}, []string{"cached"}),
		ContactSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		EditorSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editor_sessions_active",
			Help:      "Open authoring sessions.",
		}),
		PostSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_post_saves_total",
			Help:      "Editor persistence attempts by result.",
		}, []string{"result"}),
		ContentSync: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_sync_files_total",
			Help:      "Content directory files processed by action.",
		}, []string{"action"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSEO records one analysis.
func (m *Metrics) ObserveSEO(cached bool) {
	m.SEOAnalyses.WithLabelValues(strconv.FormatBool(cached)).Inc()
}

// ObserveSave records one editor persistence attempt.
func (m *Metrics) ObserveSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PostSaves.WithLabelValues(result).Inc()
}

// Middleware records request counts and latencies by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
