package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/imilos/researchers-console/internal/ui/i18n"
)

// LoginData — данные страницы входа.
type LoginData struct {
	// Email — ранее введённый email (при ошибке входа).
	Email string
	// Error — сообщение об ошибке входа (пусто — нет ошибки).
	Error string
}

// LoginPage — страница входа по email и паролю (LDAP).
func LoginPage(data LoginData) templ.Component {
	return page(PageMeta{TitleKey: "login.title"}, fragment(func(ctx context.Context, h *html) {
		h.raw(`<div class="card login"><h1>`)
		h.text(i18n.T(ctx, "login.title"))
		h.raw(`</h1>`)

		if data.Error != "" {
			h.raw(`<p class="error-text" role="alert">`)
			h.text(data.Error)
			h.raw(`</p>`)
		}

		h.raw(`<form method="post" action="/login"><label>`)
		h.text(i18n.T(ctx, "login.email"))
		h.raw(`<input type="email" name="email" required autocomplete="username"`)
		h.attr("value", data.Email)
		h.raw(`></label><label>`)
		h.text(i18n.T(ctx, "login.password"))
		h.raw(`<input type="password" name="password" required autocomplete="current-password"></label>`)
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, "login.submit"))
		h.raw(`</button></form></div>`)
	}))
}
