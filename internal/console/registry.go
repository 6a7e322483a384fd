package console

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrNotFound — консоль отсутствует в реестре (истекла, вытеснена или удалена).
var ErrNotFound = errors.New("консоль не найдена")

// Prometheus-метрики реестра консолей.
var (
	consolesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rc_consoles_active",
		Help: "Количество контекстов консоли в реестре.",
	})
	consolesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rc_consoles_created_total",
		Help: "Общее количество созданных контекстов консоли.",
	})
	consolesEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rc_consoles_evicted_total",
		Help: "Общее количество удалённых из реестра контекстов консоли (выход, TTL, вытеснение).",
	})
)

// Registry — реестр консолей сессий на LRU-кэше с TTL.
// Каждый экземпляр сервера хранит консоли в памяти; после рестарта
// консоль пересоздаётся из токена в cookie.
type Registry struct {
	cache  *expirable.LRU[string, *Console]
	bind   Binder
	opts   Options
	logger *slog.Logger
}

// NewRegistry создаёт реестр.
// maxSize — максимальное количество консолей, ttl — время жизни консоли после создания.
func NewRegistry(maxSize int, ttl time.Duration, bind Binder, opts Options, logger *slog.Logger) *Registry {
	r := &Registry{
		bind:   bind,
		opts:   opts,
		logger: logger.With(slog.String("component", "console_registry")),
	}
	r.cache = expirable.NewLRU[string, *Console](maxSize, r.onEvict, ttl)
	return r
}

// Create создаёт консоль для токена сессии и регистрирует её под новым UUID.
func (r *Registry) Create(token, email string) *Console {
	id := uuid.NewString()
	c := New(id, token, email, r.bind, r.opts, r.logger)
	r.cache.Add(id, c)

	consolesActive.Inc()
	consolesCreatedTotal.Inc()
	r.logger.Debug("Консоль создана", slog.String("console_id", id))
	return c
}

// Get возвращает консоль по идентификатору.
func (r *Registry) Get(id string) (*Console, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	c, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Remove удаляет консоль. Токен сессии консоли уничтожается.
func (r *Registry) Remove(id string) {
	r.cache.Remove(id)
}

// Len возвращает количество консолей в реестре.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// onEvict вызывается при удалении, истечении TTL или вытеснении.
func (r *Registry) onEvict(id string, c *Console) {
	c.Session().Clear()
	consolesActive.Dec()
	consolesEvictedTotal.Inc()
	r.logger.Debug("Консоль удалена из реестра", slog.String("console_id", id))
}
