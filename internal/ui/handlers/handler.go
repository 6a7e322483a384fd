// Пакет handlers — HTTP-обработчики консоли.
// Действия пользователя — POST формы с последующим redirect (post/redirect/get).
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// render отрисовывает templ-компонент со статусом status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка отрисовки страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// seeOther — redirect после POST.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseID разбирает nullable-идентификатор из поля формы.
// Пустое или некорректное значение даёт nil.
func parseID(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
