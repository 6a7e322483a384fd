// Пакет server — HTTP-сервер консоли с graceful shutdown.
// Без TLS — TLS termination на reverse proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/imilos/researchers-console/internal/api/handlers"
	"github.com/imilos/researchers-console/internal/api/middleware"
	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/config"
	"github.com/imilos/researchers-console/internal/console"
	"github.com/imilos/researchers-console/internal/domain/model"
	"github.com/imilos/researchers-console/internal/session"
	uihandlers "github.com/imilos/researchers-console/internal/ui/handlers"
	"github.com/imilos/researchers-console/internal/ui/i18n"
	uimiddleware "github.com/imilos/researchers-console/internal/ui/middleware"
	"github.com/imilos/researchers-console/internal/ui/static"
)

// Components — обработчики и middleware, из которых собираются маршруты.
type Components struct {
	Health    *handlers.HealthHandler
	Auth      *uihandlers.AuthHandler
	Customers *uihandlers.CustomersHandler
	Session   *uimiddleware.SessionAuth
}

// Server — HTTP-сервер консоли.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// Build создаёт клиент API, менеджер cookie, реестр консолей и обработчики,
// после чего собирает сервер.
// apiChecker — readiness удалённого API (может быть nil).
func Build(cfg *config.Config, logger *slog.Logger, apiChecker handlers.ReadinessChecker) (*Server, error) {
	components, err := NewComponents(cfg, logger, apiChecker)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger, components), nil
}

// NewComponents создаёт компоненты консоли по конфигурации.
func NewComponents(cfg *config.Config, logger *slog.Logger, apiChecker handlers.ReadinessChecker) (Components, error) {
	httpClient, err := apiclient.NewHTTPClient(cfg.APICACertPath, cfg.APITimeout)
	if err != nil {
		return Components{}, err
	}
	api := apiclient.New(cfg.APIURL, httpClient, nil, logger)

	cookies, err := session.NewCookieManager(cfg.SessionSecret, cfg.SecureCookie, cfg.SessionMaxAge)
	if err != nil {
		return Components{}, fmt.Errorf("создание менеджера сессий: %w", err)
	}

	// Каждая консоль получает копию клиента со своим токеном
	bind := func(tokenProvider apiclient.TokenProvider) console.Directory {
		return api.WithTokenProvider(tokenProvider)
	}
	registry := console.NewRegistry(cfg.ConsoleCacheSize, cfg.ConsoleTTL, bind, console.Options{
		PageSize:  cfg.PageSize,
		NoticeTTL: cfg.NoticeTTL,
	}, logger)

	sessionAuth := uimiddleware.NewSessionAuth(cookies, registry, logger)
	links := model.ProfileLinks{
		ORCID:  cfg.ORCIDURL,
		Scopus: cfg.ScopusURL,
		ECRIS:  cfg.ECRISURL,
		Scidar: cfg.ScidarURL,
		UniKG:  cfg.UniKGURL,
	}

	return Components{
		Health:    handlers.NewHealthHandler(apiChecker),
		Auth:      uihandlers.NewAuthHandler(api, registry, cookies, sessionAuth, logger),
		Customers: uihandlers.NewCustomersHandler(sessionAuth, links, logger),
		Session:   sessionAuth,
	}, nil
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, c Components) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newRouter(logger, c),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Handler возвращает корневой обработчик (для тестов).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// newRouter собирает маршруты консоли.
func newRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Служебные endpoints — без сессии и i18n
	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, uimiddleware.HomePath, http.StatusFound)
		})
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		// Вход — только для гостей
		r.With(c.Session.GuestOnly()).Get("/login", c.Auth.HandleLoginPage)
		r.With(c.Session.GuestOnly()).Post("/login", c.Auth.HandleLogin)

		r.With(c.Session.RequireSession()).Post("/logout", c.Auth.HandleLogout)

		r.Route("/customers", func(r chi.Router) {
			r.Use(c.Session.RequireSession())

			r.Get("/", c.Customers.HandleList)
			r.Post("/page", c.Customers.HandlePage)
			r.Post("/filter", c.Customers.HandleFilter)
			r.Post("/sort", c.Customers.HandleSort)
			r.Get("/new", c.Customers.HandleNew)
			r.Post("/editor", c.Customers.HandleEditor)
			r.Get("/export.csv", c.Customers.HandleExport)
			r.Get("/{id}/edit", c.Customers.HandleEdit)
			r.Get("/{id}/delete", c.Customers.HandleDeletePrompt)
			r.Post("/{id}/delete", c.Customers.HandleDelete)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
