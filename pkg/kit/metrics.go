package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService   = "service"
	labelMethod    = "method"
	labelPath      = "path"
	labelStatus    = "status"
	labelOperation = "operation"
	labelOutcome   = "outcome"

	defaultStatusCode = http.StatusOK
)

type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelService, labelMethod, labelPath},
		),
	}

	reg.MustRegister(m.Requests, m.Latency)
	return m
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{
				ResponseWriter: w,
				status:         defaultStatusCode,
			}

			start := time.Now()
			next.ServeHTTP(sw, r)

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(sw.status)).
				Inc()
		})
	}
}

// ChiRoutePatternOrPath labels by route pattern so ids in the path do not
// explode label cardinality.
func ChiRoutePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if rp := rc.RoutePattern(); rp != "" {
			return rp
		}
	}
	return r.URL.Path
}

// ClientMetrics counts outbound calls to an upstream API.
type ClientMetrics struct {
	Calls   *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

func NewClientMetrics(reg prometheus.Registerer, upstream string) *ClientMetrics {
	m := &ClientMetrics{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "upstream_calls_total",
				Help:        "Calls made to an upstream API",
				ConstLabels: prometheus.Labels{"upstream": upstream},
			},
			[]string{labelOperation, labelOutcome},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "upstream_call_duration_seconds",
				Help:        "Upstream call latency",
				ConstLabels: prometheus.Labels{"upstream": upstream},
			},
			[]string{labelOperation},
		),
	}

	reg.MustRegister(m.Calls, m.Latency)
	return m
}

// Observe records one call. It is safe to call on a nil receiver.
func (m *ClientMetrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.Calls.WithLabelValues(op, outcome).Inc()
}
