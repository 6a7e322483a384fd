// Пакет middleware — HTTP middleware консоли.
// auth.go — проверка сессии (cookie-based) и привязка контекста консоли к запросу.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/imilos/researchers-console/internal/console"
	"github.com/imilos/researchers-console/internal/session"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

// ContextKeyConsole — контекст консоли в контексте запроса.
const ContextKeyConsole contextKey = "console"

// Пути перенаправления.
const (
	LoginPath = "/login"
	HomePath  = "/customers"
)

// SessionAuth — middleware проверки сессии консоли.
// Извлекает сессию из зашифрованного cookie и находит консоль в реестре.
// Если консоль утеряна (рестарт, вытеснение), она пересоздаётся из токена cookie.
type SessionAuth struct {
	cookies  *session.CookieManager
	registry *console.Registry
	logger   *slog.Logger
}

// NewSessionAuth создаёт SessionAuth.
func NewSessionAuth(cookies *session.CookieManager, registry *console.Registry, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		cookies:  cookies,
		registry: registry,
		logger:   logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// RequireSession пропускает запрос только с действующей сессией,
// иначе перенаправляет на /login.
func (a *SessionAuth) RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Извлекаем сессию из cookie
			data, err := a.cookies.Get(r)
			if err != nil {
				a.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				a.cookies.Clear(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			if data == nil || data.Token == "" {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			// 2. Истёкший токен — сессия завершена
			if data.IsExpired() {
				a.logger.Info("Токен сессии истёк, redirect на login",
					slog.String("email", data.Email),
				)
				a.end(w, data.ConsoleID)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			// 3. Находим консоль или пересоздаём её из токена
			c, err := a.registry.Get(data.ConsoleID)
			if errors.Is(err, console.ErrNotFound) {
				c = a.registry.Create(data.Token, data.Email)
				data.ConsoleID = c.ID()
				if err := a.cookies.Set(w, data); err != nil {
					a.logger.Error("Ошибка обновления session cookie",
						slog.String("error", err.Error()),
					)
					a.end(w, c.ID())
					http.Redirect(w, r, LoginPath, http.StatusFound)
					return
				}
				a.logger.Debug("Консоль пересоздана из cookie",
					slog.String("console_id", c.ID()),
				)
			}

			// 4. Помещаем консоль в контекст
			ctx := context.WithValue(r.Context(), ContextKeyConsole, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestOnly перенаправляет пользователя с действующей сессией на /customers.
// Применяется к странице входа.
func (a *SessionAuth) GuestOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := a.cookies.Get(r)
			if err == nil && data != nil && data.Token != "" && !data.IsExpired() {
				http.Redirect(w, r, HomePath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EndSession завершает сессию: удаляет cookie и консоль из реестра
// (токен консоли уничтожается при удалении).
func (a *SessionAuth) EndSession(w http.ResponseWriter, c *console.Console) {
	id := ""
	if c != nil {
		id = c.ID()
	}
	a.end(w, id)
}

func (a *SessionAuth) end(w http.ResponseWriter, consoleID string) {
	a.cookies.Clear(w)
	if consoleID != "" {
		a.registry.Remove(consoleID)
	}
}

// ConsoleFromContext извлекает консоль из контекста запроса.
// Возвращает nil, если запрос не прошёл через RequireSession.
func ConsoleFromContext(ctx context.Context) *console.Console {
	c, ok := ctx.Value(ContextKeyConsole).(*console.Console)
	if !ok {
		return nil
	}
	return c
}
