// metrics.go — Prometheus-метрики запросов к удалённому API.
package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// apiRequestsTotal — количество запросов к API по операции и результату.
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rc_api_requests_total",
			Help: "Общее количество запросов Researchers Console к API справочника",
		},
		[]string{"operation", "status"},
	)

	// apiRequestDuration — длительность запросов к API.
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rc_api_request_duration_seconds",
			Help:    "Длительность запросов к API справочника в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
