// Пакет views — HTML-компоненты консоли на templ.Component.
// Страница — Layout с дочерним компонентом (templ.WithChildren), фрагменты
// страницы — отдельные компоненты, собираемые через Render. Весь текст из данных
// экранируется templ.EscapeString, ссылки проходят templ.URL.
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// html — запись фрагментов HTML с запоминанием первой ошибки.
type html struct {
	w   io.Writer
	err error
}

// raw пишет разметку как есть.
func (h *html) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// text пишет экранированный текст.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr пишет атрибут name="value" с экранированием значения.
func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// flag пишет булев атрибут (checked, selected, disabled), если on.
func (h *html) flag(name string, on bool) {
	if on {
		h.raw(" ", name)
	}
}

// href пишет атрибут href; небезопасная схема заменяется templ.URL.
func (h *html) href(u string) {
	h.attr("href", string(templ.URL(u)))
}

// component отрисовывает вложенный компонент в тот же поток.
func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// fragment оборачивает функцию отрисовки в templ.Component.
func fragment(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

// idValue форматирует nullable-идентификатор для value атрибута ("" для nil).
func idValue(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}
