// auth.go — вход по email и паролю (LDAP через удалённый API) и выход.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/console"
	"github.com/imilos/researchers-console/internal/session"
	"github.com/imilos/researchers-console/internal/ui/i18n"
	uimiddleware "github.com/imilos/researchers-console/internal/ui/middleware"
	"github.com/imilos/researchers-console/internal/ui/views"
)

// Authenticator — вход в удалённый API (реализуется apiclient.Client).
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler — обработчики входа и выхода.
type AuthHandler struct {
	api      Authenticator
	registry *console.Registry
	cookies  *session.CookieManager
	auth     *uimiddleware.SessionAuth
	logger   *slog.Logger
}

// NewAuthHandler создаёт AuthHandler.
func NewAuthHandler(
	api Authenticator,
	registry *console.Registry,
	cookies *session.CookieManager,
	auth *uimiddleware.SessionAuth,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		api:      api,
		registry: registry,
		cookies:  cookies,
		auth:     auth,
		logger:   logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleLoginPage — GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.LoginPage(views.LoginData{}), h.logger)
}

// HandleLogin — POST /login
// При успехе создаёт консоль сессии, устанавливает cookie и перенаправляет на /customers.
// Ошибка входа показывается на форме.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	token, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		h.logger.Info("Вход отклонён",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		render(w, r, http.StatusOK, views.LoginPage(views.LoginData{
			Email: email,
			Error: loginErrorMessage(r.Context(), err),
		}), h.logger)
		return
	}

	c := h.registry.Create(token, email)
	if err := h.cookies.Set(w, session.NewData(token, c.ID(), email)); err != nil {
		h.logger.Error("Ошибка установки session cookie",
			slog.String("error", err.Error()),
		)
		h.registry.Remove(c.ID())
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл",
		slog.String("email", email),
		slog.String("console_id", c.ID()),
	)
	seeOther(w, r, uimiddleware.HomePath)
}

// HandleLogout — POST /logout
// Завершает сессию в API. Ошибка авторизации тоже завершает локальную сессию,
// прочие ошибки показываются уведомлением.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	c := uimiddleware.ConsoleFromContext(r.Context())
	if c == nil {
		seeOther(w, r, uimiddleware.LoginPath)
		return
	}

	if _, err := c.Logout(r.Context()); err != nil && !apiclient.IsUnauthorized(err) {
		h.logger.Warn("Ошибка выхода из API",
			slog.String("console_id", c.ID()),
			slog.String("error", err.Error()),
		)
		c.NoticeError(err)
		seeOther(w, r, uimiddleware.HomePath)
		return
	}

	h.auth.EndSession(w, c)
	h.logger.Info("Пользователь вышел", slog.String("email", c.Email()))
	seeOther(w, r, uimiddleware.LoginPath)
}

// loginErrorMessage — сообщение API, иначе "Invalid credentials".
func loginErrorMessage(ctx context.Context, err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return i18n.T(ctx, "login.invalid")
}
