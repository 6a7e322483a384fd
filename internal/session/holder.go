// Пакет session — токен сессии API и зашифрованный session cookie консоли.
// Наличие cookie — единственный признак входа для маршрутов консоли.
package session

import (
	"context"
	"sync"
)

// Holder — потокобезопасное хранилище токена сессии одной консоли.
// Пустой токен означает, что сессии нет.
type Holder struct {
	mu    sync.RWMutex
	token string
}

// NewHolder создаёт хранилище с начальным токеном (может быть пустым).
func NewHolder(token string) *Holder {
	return &Holder{token: token}
}

// Token возвращает текущий токен. Сигнатура совместима с apiclient.TokenProvider.
func (h *Holder) Token(_ context.Context) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, nil
}

// Set заменяет токен (после login или при восстановлении из cookie).
func (h *Holder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Clear уничтожает токен (logout или отказ авторизации).
func (h *Holder) Clear() {
	h.Set("")
}

// Authenticated возвращает true, если токен задан.
func (h *Holder) Authenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token != ""
}
