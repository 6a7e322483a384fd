// language.go — обработчик переключения языка UI.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/imilos/researchers-console/internal/ui/i18n"
	uimiddleware "github.com/imilos/researchers-console/internal/ui/middleware"
)

// HandleSetLanguage обрабатывает POST /set-language.
// Устанавливает cookie "lang" и перенаправляет обратно.
// Параметр lang: "en" или "sr" (из формы или query).
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLang
	}

	// Cookie "lang" на 1 год
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	// Обратно на предыдущую страницу (Referer, только путь) или на /customers
	target := uimiddleware.HomePath
	if u, err := url.Parse(r.Header.Get("Referer")); err == nil && u.Path != "" {
		target = u.RequestURI()
	}
	seeOther(w, r, target)
}
