package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"RC_API_URL": "http://researchers-api.unic.kg.ac.rs/api/",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.APIURL != "http://researchers-api.unic.kg.ac.rs/api" {
		t.Errorf("APIURL = %q, ожидается без trailing slash", cfg.APIURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("APITimeout = %v, ожидается 30s", cfg.APITimeout)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize = %d, ожидается 5", cfg.PageSize)
	}
	if cfg.NoticeTTL != 5*time.Second {
		t.Errorf("NoticeTTL = %v, ожидается 5s", cfg.NoticeTTL)
	}
	if cfg.SessionMaxAge != 24*time.Hour {
		t.Errorf("SessionMaxAge = %v, ожидается 24h", cfg.SessionMaxAge)
	}
	if cfg.SecureCookie {
		t.Error("SecureCookie = true, ожидается false")
	}
	if cfg.ConsoleCacheSize != 1000 {
		t.Errorf("ConsoleCacheSize = %d, ожидается 1000", cfg.ConsoleCacheSize)
	}
	if cfg.ORCIDURL != "https://orcid.org/" {
		t.Errorf("ORCIDURL = %q", cfg.ORCIDURL)
	}
	if cfg.DephealthGroup != "researchers" {
		t.Errorf("DephealthGroup = %q, ожидается researchers", cfg.DephealthGroup)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["RC_PORT"] = "9090"
	envs["RC_LOG_LEVEL"] = "debug"
	envs["RC_LOG_FORMAT"] = "text"
	envs["RC_PAGE_SIZE"] = "10"
	envs["RC_NOTICE_TTL"] = "2s"
	envs["RC_SECURE_COOKIE"] = "true"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, ожидается 10", cfg.PageSize)
	}
	if cfg.NoticeTTL != 2*time.Second {
		t.Errorf("NoticeTTL = %v, ожидается 2s", cfg.NoticeTTL)
	}
	if !cfg.SecureCookie {
		t.Error("SecureCookie = false, ожидается true")
	}
}

func TestLoad_MissingAPIURL(t *testing.T) {
	t.Setenv("RC_API_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка при отсутствии RC_API_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"порт не число", "RC_PORT", "abc"},
		{"порт вне диапазона", "RC_PORT", "70000"},
		{"неизвестный уровень логов", "RC_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "RC_LOG_FORMAT", "xml"},
		{"API URL без схемы", "RC_API_URL", "researchers-api"},
		{"некорректный таймаут", "RC_API_TIMEOUT", "10"},
		{"размер страницы 0", "RC_PAGE_SIZE", "0"},
		{"размер страницы больше 100", "RC_PAGE_SIZE", "101"},
		{"некорректный secure cookie", "RC_SECURE_COOKIE", "maybe"},
		{"размер кэша консолей 0", "RC_CONSOLE_CACHE_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if err != nil {
			t.Errorf("parseLogLevel(%q) вернул ошибку: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, ожидается %v", tt.input, got, tt.want)
		}
	}
}
