// Пакет config — загрузка и валидация конфигурации Researchers Console
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Researchers Console.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера консоли
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Удалённый API справочника ---

	// Базовый URL API (например, http://researchers-api.unic.kg.ac.rs/api)
	APIURL string
	// Таймаут HTTP-запросов к API
	APITimeout time.Duration
	// Путь к CA-сертификату для TLS-соединений с API (опционально)
	APICACertPath string

	// --- Список ---

	// Размер страницы таблицы исследователей
	PageSize int
	// Время показа временного сообщения (баннера)
	NoticeTTL time.Duration

	// --- Сессии ---

	// Секрет для шифрования session cookie (пустой — случайный ключ)
	SessionSecret string
	// Максимальный возраст session cookie
	SessionMaxAge time.Duration
	// Использовать Secure flag для cookie
	SecureCookie bool
	// Максимальное количество консолей (сессий) в памяти
	ConsoleCacheSize int
	// Время жизни консоли в памяти с момента создания
	ConsoleTTL time.Duration

	// --- Ссылки на профили ---

	// Префикс ссылки ORCID
	ORCIDURL string
	// Префикс ссылки Scopus
	ScopusURL string
	// Префикс ссылки E-CRIS
	ECRISURL string
	// Префикс ссылки SCIDAR (по токену authorities)
	ScidarURL string
	// Префикс ссылки на страницу сотрудника университета
	UniKGURL string

	// --- topologymetrics ---

	// Имя группы зависимостей в метриках
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// RC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("RC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("RC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("RC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// RC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RC_LOG_LEVEL: %w", err)
	}

	// RC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("RC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Удалённый API ---

	// RC_API_URL — обязательный
	cfg.APIURL, err = getEnvRequired("RC_API_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if parsed, parseErr := url.Parse(cfg.APIURL); parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("RC_API_URL: некорректный URL %q", cfg.APIURL)
	}

	// RC_API_TIMEOUT — таймаут запросов к API (по умолчанию 30s)
	cfg.APITimeout, err = getEnvDuration("RC_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RC_API_TIMEOUT: %w", err)
	}

	// RC_API_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.APICACertPath = getEnvDefault("RC_API_CA_CERT_PATH", "")

	// --- Список ---

	// RC_PAGE_SIZE — размер страницы (по умолчанию 5)
	cfg.PageSize, err = getEnvInt("RC_PAGE_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("RC_PAGE_SIZE: %w", err)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return nil, fmt.Errorf("RC_PAGE_SIZE: значение %d вне допустимого диапазона 1-100", cfg.PageSize)
	}

	// RC_NOTICE_TTL — время показа баннера (по умолчанию 5s)
	cfg.NoticeTTL, err = getEnvDuration("RC_NOTICE_TTL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RC_NOTICE_TTL: %w", err)
	}

	// --- Сессии ---

	cfg.SessionSecret = getEnvDefault("RC_SESSION_SECRET", "")

	// RC_SESSION_MAX_AGE — возраст session cookie (по умолчанию 24h)
	cfg.SessionMaxAge, err = getEnvDuration("RC_SESSION_MAX_AGE", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RC_SESSION_MAX_AGE: %w", err)
	}

	// RC_SECURE_COOKIE — Secure flag (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("RC_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("RC_SECURE_COOKIE: %w", err)
	}

	// RC_CONSOLE_CACHE_SIZE — максимум консолей в памяти (по умолчанию 1000)
	cfg.ConsoleCacheSize, err = getEnvInt("RC_CONSOLE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("RC_CONSOLE_CACHE_SIZE: %w", err)
	}
	if cfg.ConsoleCacheSize < 1 {
		return nil, fmt.Errorf("RC_CONSOLE_CACHE_SIZE: значение %d должно быть положительным", cfg.ConsoleCacheSize)
	}

	// RC_CONSOLE_TTL — время жизни консоли (по умолчанию 12h)
	cfg.ConsoleTTL, err = getEnvDuration("RC_CONSOLE_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RC_CONSOLE_TTL: %w", err)
	}

	// --- Ссылки на профили ---

	cfg.ORCIDURL = getEnvDefault("RC_ORCID_URL", "https://orcid.org/")
	cfg.ScopusURL = getEnvDefault("RC_SCOPUS_URL", "https://www.scopus.com/authid/detail.uri?authorId=")
	cfg.ECRISURL = getEnvDefault("RC_ECRIS_URL", "https://cris.cobiss.net/e-cris/sr/sr_latn/researcher/code/")
	cfg.ScidarURL = getEnvDefault("RC_SCIDAR_URL", "https://scidar.kg.ac.rs/browse?type=author&authority=")
	cfg.UniKGURL = getEnvDefault("RC_UNIKG_URL", "https://www.kg.ac.rs/nastavnici_nastavnik.php?ib_je=")

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("RC_DEPHEALTH_GROUP", "researchers")

	// RC_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("RC_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RC_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// RC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("RC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
