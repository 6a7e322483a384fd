// Пакет apiclient — HTTP-клиент удалённого API справочника исследователей.
// Поддерживает TLS с кастомным CA (RC_API_CA_CERT_PATH) и bearer-авторизацию
// токеном текущей сессии. Клиент не повторяет запросы и ничего не кэширует.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// TokenProvider — функция, возвращающая bearer-токен текущей сессии.
// Пустая строка означает, что сессии нет и заголовок Authorization не передаётся.
type TokenProvider func(ctx context.Context) (string, error)

// Client — HTTP-клиент API справочника.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// NewHTTPClient создаёт *http.Client с таймаутом и, при необходимости, кастомным CA.
// caCertPath — путь к CA-сертификату (пустая строка — стандартный пул).
func NewHTTPClient(caCertPath string, timeout time.Duration) (*http.Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
	}

	return httpClient, nil
}

// New создаёт клиент API.
// baseURL — базовый URL API (например, http://researchers-api.unic.kg.ac.rs/api).
// httpClient — общий HTTP-клиент (nil — клиент с таймаутом 30s).
// tokenProvider — источник токена сессии (может быть nil для публичных запросов).
func New(baseURL string, httpClient *http.Client, tokenProvider TokenProvider, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "api_client")),
	}
}

// WithTokenProvider возвращает копию клиента, привязанную к другому источнику токена.
// HTTP-клиент (пул соединений) остаётся общим.
func (c *Client) WithTokenProvider(tokenProvider TokenProvider) *Client {
	clone := *c
	clone.tokenProvider = tokenProvider
	return &clone
}

// BaseURL возвращает базовый URL API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON выполняет запрос с JSON-телом и декодирует JSON-ответ в out (если out != nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s: %w", op, err)
	}
	return nil
}

// send выполняет запрос и возвращает ответ со статусом 2xx.
// Для остальных статусов тело читается и возвращается *APIError.
// Вызывающий обязан закрыть resp.Body.
func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	start := time.Now()
	status := "error"
	defer func() {
		apiRequestsTotal.WithLabelValues(op, status).Inc()
		apiRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("сериализация запроса %s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Авторизация токеном текущей сессии (если он есть)
	if c.tokenProvider != nil {
		token, err := c.tokenProvider(ctx)
		if err != nil {
			return nil, fmt.Errorf("получение токена сессии: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return nil, fmt.Errorf("запрос %s к %s: %w", op, c.baseURL, err)
	}
	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		apiErr := newAPIError(resp.StatusCode, errBody)
		c.logger.Debug("API вернул ошибку",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
			slog.String("body", apiErr.Body),
		)
		return nil, apiErr
	}

	return resp, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}
