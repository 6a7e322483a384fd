// auth.go — вход (LDAP) и выход из сессии API.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// loginRequest — тело POST /loginldap.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // G117: JSON-маппинг формы входа
}

// loginResponse — ответ POST /loginldap.
type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// messageResponse — ответ, содержащий только сообщение API.
type messageResponse struct {
	Message string `json:"message"`
}

// Login выполняет вход по email и паролю (LDAP) и возвращает токен сессии.
// POST /loginldap — токен текущей сессии не передаётся.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	anonymous := c.WithTokenProvider(nil)

	var resp loginResponse
	err := anonymous.doJSON(ctx, "login", http.MethodPost, "/loginldap", nil,
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}

	if resp.Data.Token == "" {
		return "", fmt.Errorf("пустой token в ответе login")
	}
	return resp.Data.Token, nil
}

// Logout завершает сессию на стороне API и возвращает его сообщение.
// POST /logout
func (c *Client) Logout(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, "logout", http.MethodPost, "/logout", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
