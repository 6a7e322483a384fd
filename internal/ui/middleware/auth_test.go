package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/imilos/researchers-console/internal/apiclient"
	"github.com/imilos/researchers-console/internal/console"
	"github.com/imilos/researchers-console/internal/session"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupAuth(t *testing.T) (*SessionAuth, *session.CookieManager, *console.Registry) {
	t.Helper()
	cookies, err := session.NewCookieManager("test-secret", false, time.Hour)
	if err != nil {
		t.Fatalf("NewCookieManager() error: %v", err)
	}
	// Консоль в этих тестах не обращается к API
	bind := func(apiclient.TokenProvider) console.Directory { return nil }
	registry := console.NewRegistry(10, time.Hour, bind, console.Options{PageSize: 5}, testLogger())
	return NewSessionAuth(cookies, registry, testLogger()), cookies, registry
}

func requestWithSession(t *testing.T, cookies *session.CookieManager, data *session.Data) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	value, err := cookies.Encrypt(data)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	return req
}

// captureConsole — обработчик, запоминающий консоль из контекста.
func captureConsole(got **console.Console) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ConsoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestRequireSession_NoCookie(t *testing.T) {
	auth, _, _ := setupAuth(t)
	var got *console.Console

	rec := httptest.NewRecorder()
	auth.RequireSession()(captureConsole(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
		t.Errorf("ожидался redirect на %s, получено %d %q", LoginPath, rec.Code, rec.Header().Get("Location"))
	}
	if got != nil {
		t.Error("обработчик не должен вызываться без сессии")
	}
}

func TestRequireSession_CorruptCookie(t *testing.T) {
	auth, _, _ := setupAuth(t)
	var got *console.Console

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	auth.RequireSession()(captureConsole(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("статус = %d, ожидается 302", rec.Code)
	}
	c := sessionCookie(rec)
	if c == nil || c.MaxAge >= 0 {
		t.Error("повреждённый cookie должен быть очищен")
	}
}

func TestRequireSession_ExistingConsole(t *testing.T) {
	auth, cookies, registry := setupAuth(t)
	existing := registry.Create("tok", "ana@kg.ac.rs")

	var got *console.Console
	req := requestWithSession(t, cookies, &session.Data{Token: "tok", ConsoleID: existing.ID(), Email: "ana@kg.ac.rs"})
	rec := httptest.NewRecorder()
	auth.RequireSession()(captureConsole(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	if got != existing {
		t.Error("в контексте должна быть существующая консоль")
	}
	if sessionCookie(rec) != nil {
		t.Error("cookie не должен перезаписываться для существующей консоли")
	}
}

func TestRequireSession_RecreatesConsole(t *testing.T) {
	auth, cookies, registry := setupAuth(t)

	var got *console.Console
	req := requestWithSession(t, cookies, &session.Data{Token: "tok", ConsoleID: "lost", Email: "ana@kg.ac.rs"})
	rec := httptest.NewRecorder()
	auth.RequireSession()(captureConsole(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	if got == nil || got.ID() == "lost" {
		t.Fatal("консоль должна быть пересоздана под новым идентификатором")
	}
	if token, _ := got.Session().Token(req.Context()); token != "tok" {
		t.Errorf("токен пересозданной консоли = %q, ожидается tok", token)
	}
	if registry.Len() != 1 {
		t.Errorf("registry.Len() = %d, ожидается 1", registry.Len())
	}

	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("cookie должен быть перезаписан")
	}
	data, err := cookies.Decrypt(c.Value)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if data.ConsoleID != got.ID() {
		t.Errorf("ConsoleID в cookie = %q, ожидается %q", data.ConsoleID, got.ID())
	}
}

func TestRequireSession_ExpiredToken(t *testing.T) {
	auth, cookies, registry := setupAuth(t)
	existing := registry.Create("tok", "ana@kg.ac.rs")

	var got *console.Console
	req := requestWithSession(t, cookies, &session.Data{
		Token:     "tok",
		ConsoleID: existing.ID(),
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	rec := httptest.NewRecorder()
	auth.RequireSession()(captureConsole(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || !strings.HasSuffix(rec.Header().Get("Location"), LoginPath) {
		t.Errorf("истёкший токен — ожидался redirect на login, получено %d", rec.Code)
	}
	if registry.Len() != 0 {
		t.Error("консоль истёкшей сессии должна быть удалена")
	}
	if existing.Session().Authenticated() {
		t.Error("токен удалённой консоли должен быть уничтожен")
	}
}

func TestGuestOnly(t *testing.T) {
	auth, cookies, _ := setupAuth(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	auth.GuestOnly()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("гость: статус = %d, ожидается 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := requestWithSession(t, cookies, &session.Data{Token: "tok", ConsoleID: "x"})
	auth.GuestOnly()(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != HomePath {
		t.Errorf("вошедший пользователь: ожидался redirect на %s, получено %d", HomePath, rec.Code)
	}
}
