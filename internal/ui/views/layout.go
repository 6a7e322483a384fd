package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/imilos/researchers-console/internal/ui/i18n"
)

// PageMeta — общие данные страницы.
type PageMeta struct {
	// TitleKey — ключ перевода заголовка страницы.
	TitleKey string
	// UserEmail — email вошедшего пользователя (пусто на странице входа).
	UserEmail string
	// Notice — уведомление для показа (nil — нет).
	Notice *NoticeData
}

// NoticeData — данные баннера уведомления.
type NoticeData struct {
	Text    string
	IsError bool
	// RemainingMS — через сколько миллисекунд баннер скрывается на клиенте.
	RemainingMS int64
}

// Layout — общий layout страницы: head, верхняя панель, уведомление.
// Содержимое страницы передаётся дочерним компонентом (templ.WithChildren).
func Layout(meta PageMeta) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		lang := i18n.LangFromContext(ctx)
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", lang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(i18n.T(ctx, meta.TitleKey) + " · " + i18n.T(ctx, "app.title"))
		h.raw(`</title><link rel="stylesheet" href="/static/css/app.css"></head><body>`)

		h.raw(`<header class="topbar"><a href="/customers"><strong>`)
		h.text(i18n.T(ctx, "app.title"))
		h.raw(`</strong></a><div class="right">`)
		h.component(ctx, languageSwitcher(lang))
		if meta.UserEmail != "" {
			h.raw(`<a href="/customers">`)
			h.text(i18n.T(ctx, "nav.researchers"))
			h.raw(`</a><span>`)
			h.text(meta.UserEmail)
			h.raw(`</span><form class="inline" method="post" action="/logout"><button type="submit" class="link">`)
			h.text(i18n.T(ctx, "nav.logout"))
			h.raw(`</button></form>`)
		}
		h.raw(`</div></header>`)

		if meta.Notice != nil {
			h.component(ctx, notice(*meta.Notice))
		}

		h.raw(`<main>`)
		h.component(ctx, children)
		h.raw(`</main><script src="/static/js/app.js"></script></body></html>`)
	})
}

// page отрисовывает body внутри Layout(meta).
func page(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(meta).Render(templ.WithChildren(ctx, body), w)
	})
}

// languageSwitcher отрисовывает кнопки выбора языка.
func languageSwitcher(current string) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		h.raw(`<form class="inline" method="post" action="/set-language">`)
		for _, lang := range i18n.Languages {
			h.raw(`<button type="submit" name="lang" class="link"`)
			h.attr("value", lang)
			h.flag("disabled", lang == current)
			h.raw(`>`)
			h.text(i18n.T(ctx, "lang."+lang))
			h.raw(`</button> `)
		}
		h.raw(`</form>`)
	})
}

// notice отрисовывает баннер, который скрывается через RemainingMS.
func notice(n NoticeData) templ.Component {
	return fragment(func(ctx context.Context, h *html) {
		class := "notice"
		if n.IsError {
			class += " error"
		}
		h.raw(`<div role="status"`)
		h.attr("class", class)
		h.attr("data-notice-remaining", itoa64(n.RemainingMS))
		h.raw(`><span>`)
		h.text(n.Text)
		h.raw(`</span> <button type="button" class="link" data-notice-close`)
		h.attr("aria-label", i18n.T(ctx, "notice.close"))
		h.raw(`>×</button></div>`)
	})
}
