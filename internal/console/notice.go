package console

import "time"

// DefaultNoticeTTL — время показа уведомления по умолчанию.
const DefaultNoticeTTL = 5 * time.Second

// Notice — временное уведомление (баннер) консоли.
// Новое уведомление заменяет предыдущее.
type Notice struct {
	Text      string
	IsError   bool
	ExpiresAt time.Time
}

// Visible проверяет, что уведомление ещё показывается в момент now.
func (n Notice) Visible(now time.Time) bool {
	return n.Text != "" && now.Before(n.ExpiresAt)
}

// Remaining возвращает оставшееся время показа (0, если истекло).
func (n Notice) Remaining(now time.Time) time.Duration {
	if !n.Visible(now) {
		return 0
	}
	return n.ExpiresAt.Sub(now)
}
