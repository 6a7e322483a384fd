package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims — claims, которые консоль читает из токена API (если он JWT).
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Claims — сведения о пользователе, извлечённые из токена.
type Claims struct {
	Email     string
	ExpiresAt int64
}

// ParseClaims читает email и срок действия из токена без проверки подписи.
// Подпись проверяет удалённый API; консоль использует claims только для отображения
// и раннего выхода по истечении срока. Для непрозрачного (не JWT) токена
// возвращает пустые Claims и false.
func ParseClaims(token string) (Claims, bool) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}

	out := Claims{Email: claims.Email}
	if out.Email == "" && strings.Contains(claims.Subject, "@") {
		out.Email = claims.Subject
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, true
}

// NewData собирает Data после успешного входа.
// Email из формы используется, если токен не содержит email.
func NewData(token, consoleID, email string) *Data {
	data := &Data{Token: token, ConsoleID: consoleID, Email: email}
	if claims, ok := ParseClaims(token); ok {
		if claims.Email != "" {
			data.Email = claims.Email
		}
		data.ExpiresAt = claims.ExpiresAt
	}
	return data
}
