package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/customers", "/customers"},
		{"/customers/export.csv", "/customers/export.csv"},
		{"/customers/42/edit", "/customers/{id}/edit"},
		{"/customers/7/delete", "/customers/{id}/delete"},
		{"/customers/7", "/customers/{id}"},
		{"/customers/abc/edit", "/customers/other"},
		{"/customers/7/unknown", "/customers/other"},
		{"/static/app.css", "/static/*"},
		{"/wp-admin.php", "other"},
		{"/health/ready", "/health/ready"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestRequestLogger проверяет уровень логирования по статус-коду.
func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"успех", "/customers", http.StatusOK, "level=INFO"},
		{"redirect", "/customers", http.StatusFound, "level=INFO"},
		{"клиентская ошибка", "/customers/9/edit", http.StatusNotFound, "level=WARN"},
		{"серверная ошибка", "/customers", http.StatusInternalServerError, "level=ERROR"},
		{"probe", "/health/live", http.StatusOK, "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("лог %q не содержит %q", out, tt.wantLevel)
			}
			if !strings.Contains(out, "bytes=4") {
				t.Errorf("лог не содержит размер ответа: %q", out)
			}
		})
	}
}

// TestMetricsMiddleware проверяет, что middleware не меняет ответ.
func TestMetricsMiddleware(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/5/edit", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("статус = %d, ожидается 418", rec.Code)
	}
}
