package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestHolder проверяет установку и очистку токена.
func TestHolder(t *testing.T) {
	h := NewHolder("")
	if h.Authenticated() {
		t.Error("пустой Holder не должен быть аутентифицирован")
	}

	h.Set("tok")
	got, err := h.Token(context.Background())
	if err != nil || got != "tok" {
		t.Errorf("Token() = %q, %v; ожидается tok", got, err)
	}
	if !h.Authenticated() {
		t.Error("после Set ожидается Authenticated() = true")
	}

	h.Clear()
	got, _ = h.Token(context.Background())
	if got != "" || h.Authenticated() {
		t.Errorf("после Clear токен должен быть пустым, получен %q", got)
	}
}

// TestCookieEncryptDecryptRoundTrip проверяет шифрование и дешифрование Data.
func TestCookieEncryptDecryptRoundTrip(t *testing.T) {
	m, err := NewCookieManager("", false, time.Hour)
	if err != nil {
		t.Fatalf("Ошибка создания CookieManager: %v", err)
	}

	original := &Data{Token: "1|abcdef", ConsoleID: "c-1", Email: "ana@kg.ac.rs", ExpiresAt: 1700000000}
	encrypted, err := m.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	decrypted, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}
	if *decrypted != *original {
		t.Errorf("Data: want %+v, got %+v", original, decrypted)
	}
}

// TestCookieWrongKey проверяет, что cookie с другим ключом не расшифровывается.
func TestCookieWrongKey(t *testing.T) {
	m1, _ := NewCookieManager("key-one", false, time.Hour)
	m2, _ := NewCookieManager("key-two", false, time.Hour)

	encrypted, err := m1.Encrypt(&Data{Token: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m2.Decrypt(encrypted); err == nil {
		t.Error("ожидалась ошибка дешифрования чужим ключом")
	}
	if _, err := m1.Decrypt("!!!not-base64"); err == nil {
		t.Error("ожидалась ошибка для некорректного base64")
	}
	if _, err := m1.Decrypt(""); err == nil {
		t.Error("ожидалась ошибка для пустого значения")
	}
}

// TestCookieSetGetClear проверяет полный цикл cookie через HTTP.
func TestCookieSetGetClear(t *testing.T) {
	m, _ := NewCookieManager("secret", true, 2*time.Hour)

	rec := httptest.NewRecorder()
	if err := m.Set(rec, &Data{Token: "tok", ConsoleID: "c"}); err != nil {
		t.Fatalf("Ошибка Set: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("ожидался 1 cookie, получено %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Path != "/" || !c.HttpOnly || !c.Secure || c.MaxAge != 7200 {
		t.Errorf("неожиданные атрибуты cookie: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.AddCookie(c)
	data, err := m.Get(req)
	if err != nil || data == nil || data.Token != "tok" {
		t.Fatalf("Get() = %+v, %v", data, err)
	}

	// Без cookie — nil, nil
	data, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	if data != nil || err != nil {
		t.Errorf("без cookie ожидается nil, nil; получено %+v, %v", data, err)
	}

	rec = httptest.NewRecorder()
	m.Clear(rec)
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Clear должен выставить MaxAge < 0: %+v", cleared)
	}
}

// TestParseClaims проверяет чтение claims из JWT и непрозрачного токена.
func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "42",
		"email": "ana@kg.ac.rs",
		"exp":   jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}

	claims, ok := ParseClaims(signed)
	if !ok {
		t.Fatal("ожидался разбор JWT")
	}
	if claims.Email != "ana@kg.ac.rs" || claims.ExpiresAt != exp.Unix() {
		t.Errorf("ParseClaims() = %+v", claims)
	}

	if _, ok := ParseClaims("17|plain-opaque-token"); ok {
		t.Error("непрозрачный токен не должен разбираться как JWT")
	}
}

// TestNewData проверяет заполнение данных сессии после входа.
func TestNewData(t *testing.T) {
	d := NewData("17|opaque", "console-1", "form@kg.ac.rs")
	if d.Email != "form@kg.ac.rs" || d.ExpiresAt != 0 || d.IsExpired() {
		t.Errorf("NewData для непрозрачного токена = %+v", d)
	}

	expired := &Data{ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	if !expired.IsExpired() {
		t.Error("ожидалось IsExpired() = true")
	}
}
