package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics содержит коллекторы приложения и собственный реестр.
type Metrics struct {
	registry *prometheus.Registry

	httpLatency    *prometheus.HistogramVec
	postOperations *prometheus.CounterVec
	authAttempts   *prometheus.CounterVec
}

// New создает реестр и регистрирует в нём все коллекторы.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_requests_latency_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		postOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_post_operations_total",
				Help: "Post store operations by result.",
			},
			[]string{"op", "result"}, // create|update|delete, ok|invalid|forbidden|not_found|error
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_auth_attempts_total",
				Help: "Login attempts by result.",
			},
			[]string{"result"}, // ok|failed|error
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpLatency,
		m.postOperations,
		m.authAttempts,
	)
	return m
}

// Handler отдаёт метрики для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry нужен тестам для чтения значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePostOperation учитывает результат операции с постом.
func (m *Metrics) ObservePostOperation(op string, err error) {
	m.postOperations.WithLabelValues(op, Result(err)).Inc()
}

// ObserveAuthAttempt учитывает попытку входа.
func (m *Metrics) ObserveAuthAttempt(ok bool, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "failed"
	}
	m.authAttempts.WithLabelValues(result).Inc()
}

// Result переводит ошибку в значение метки result.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// HTTPMetrics измеряет длительность запросов по шаблону маршрута chi.
func (m *Metrics) HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.httpLatency.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if patt := rc.RoutePattern(); patt != "" {
			return patt
		}
	}
	return "unmatched"
}
