// errors.go — единый формат ошибок удалённого API.
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized — API отклонил токен сессии (HTTP 401).
var ErrUnauthorized = errors.New("требуется повторная аутентификация")

// APIError — ответ API с кодом, отличным от 2xx.
type APIError struct {
	// StatusCode — HTTP статус ответа.
	StatusCode int
	// Message — поле message из JSON-тела.
	Message string
	// Body — текст тела, если в нём нет JSON-поля message.
	Body string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("API вернул статус %d: %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("API вернул статус %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API вернул статус %d", e.StatusCode)
}

// Is позволяет сравнивать APIError с ErrUnauthorized через errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized проверяет, что ошибка означает недействительную сессию.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message возвращает текст, пригодный для показа пользователю.
// Для APIError — сообщение API или текст тела, иначе — текст ошибки.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Body != "" {
			return apiErr.Body
		}
	}
	return err.Error()
}

// maxErrorBody — сколько байт тела ошибки сохраняется в APIError.
const maxErrorBody = 512

// newAPIError разбирает тело ответа с ошибкой.
// JSON вида {"message": "..."} даёт Message, иначе сырой текст попадает в Body.
func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &APIError{StatusCode: statusCode, Message: payload.Message}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &APIError{StatusCode: statusCode, Body: text}
}
