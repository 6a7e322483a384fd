// Пакет service — фоновые сервисы консоли.
//
// dephealth.go — мониторинг удалённого API справочника через topologymetrics SDK.
// HTTP checker опрашивает публичный endpoint GET /faculties (не требует токена).
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceID — имя вершины графа консоли в метриках зависимостей.
const ServiceID = "researchers-console"

// apiDependencyName — имя зависимости удалённого API.
const apiDependencyName = "researchers-api"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга удалённого API.
// Метрики регистрируются в глобальном Prometheus registry.
//
// Параметры:
//   - group — имя группы в метриках (RC_DEPHEALTH_GROUP)
//   - apiURL — базовый URL API (RC_API_URL)
//   - checkInterval — интервал проверки (RC_DEPHEALTH_CHECK_INTERVAL)
func NewDephealthService(
	group string,
	apiURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(group, apiURL, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	group string,
	apiURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(group, apiURL, checkInterval, logger, dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(
	group string,
	apiURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	depOpts := []dephealth.DependencyOption{
		dephealth.FromURL(apiURL),
		dephealth.WithHTTPHealthPath(apiHealthPath(apiURL)),
		dephealth.CheckInterval(checkInterval),
		dephealth.Critical(true),
	}

	// TLS определяем из URL
	if parsed, err := url.Parse(apiURL); err == nil && parsed.Scheme == "https" {
		depOpts = append(depOpts, dephealth.WithHTTPTLSSkipVerify(false))
	}

	opts := make([]dephealth.Option, 0, 2+len(extraOpts))
	opts = append(opts,
		dephealth.WithLogger(logger),
		dephealth.HTTP(apiDependencyName, depOpts...),
	)
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(ServiceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг удалённого API запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг удалённого API остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady сообщает готовность удалённого API для readiness probe.
// До первой проверки статус — degraded.
func (ds *DephealthService) CheckReady() (status, message string) {
	return readiness(ds.Health())
}

// readiness сворачивает состояние зависимостей в статус ok/degraded/fail.
func readiness(health map[string]bool) (status, message string) {
	if len(health) == 0 {
		return "degraded", "проверка ещё не выполнялась"
	}
	for name, ok := range health {
		if !ok {
			return "fail", "недоступен: " + name
		}
	}
	return "ok", ""
}

// apiHealthPath возвращает путь probe: путь базового URL API + /faculties.
// http://host/api → /api/faculties
func apiHealthPath(apiURL string) string {
	path := "/"
	if parsed, err := url.Parse(apiURL); err == nil {
		path = parsed.Path
	}
	return strings.TrimRight(path, "/") + "/faculties"
}
