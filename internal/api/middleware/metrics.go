// metrics.go — Prometheus HTTP метрики консоли.
// Регистрирует метрики: rc_http_requests_total, rc_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rc_http_requests_total",
			Help: "Общее количество HTTP-запросов к консоли",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rc_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к консоли в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath заменяет идентификатор записи в пути на {id}
// для предотвращения взрывного роста кардинальности метрик.
// /customers/42/edit → /customers/{id}/edit
func normalizePath(path string) string {
	switch path {
	case "/", "/login", "/logout", "/set-language",
		"/health/live", "/health/ready", "/metrics",
		"/customers", "/customers/page", "/customers/filter", "/customers/sort",
		"/customers/new", "/customers/editor", "/customers/export.csv":
		return path
	}

	const prefix = "/customers/"
	if strings.HasPrefix(path, prefix) {
		rest := strings.TrimPrefix(path, prefix)
		id, suffix, _ := strings.Cut(rest, "/")
		if _, err := strconv.ParseInt(id, 10, 64); err == nil {
			switch suffix {
			case "edit", "delete":
				return prefix + "{id}/" + suffix
			case "":
				return prefix + "{id}"
			}
		}
		return prefix + "other"
	}

	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}
	return "other"
}
