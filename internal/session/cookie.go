package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CookieName — имя cookie зашифрованной сессии консоли.
const CookieName = "researchers_session"

// Data — данные сессии, хранящиеся в зашифрованном cookie.
type Data struct {
	// Token — токен сессии удалённого API.
	Token string `json:"token"`
	// ConsoleID — идентификатор контекста консоли в реестре.
	ConsoleID string `json:"console_id"`
	// Email — email пользователя (из формы входа или claims токена).
	Email string `json:"email"`
	// ExpiresAt — срок действия токена (Unix timestamp, 0 — неизвестен).
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// IsExpired проверяет, истёк ли токен. Неизвестный срок не считается истёкшим.
func (d *Data) IsExpired() bool {
	return d.ExpiresAt > 0 && time.Now().Unix() >= d.ExpiresAt
}

// CookieManager шифрует Data в HTTP cookie через AES-256-GCM.
type CookieManager struct {
	gcm    cipher.AEAD
	secure bool
	maxAge time.Duration
}

// NewCookieManager создаёт менеджер cookie.
// key — base64 32-байтовый ключ или произвольная строка (хешируется SHA-256).
// Пустой key — случайный ключ, сессии не переживают рестарт.
func NewCookieManager(key string, secure bool, maxAge time.Duration) (*CookieManager, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			h := sha256.Sum256([]byte(key))
			keyBytes = h[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &CookieManager{gcm: gcm, secure: secure, maxAge: maxAge}, nil
}

// Encrypt шифрует Data и возвращает base64url-строку (nonce + ciphertext).
func (m *CookieManager) Encrypt(data *Data) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return base64.URLEncoding.EncodeToString(m.gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

// Decrypt дешифрует строку из cookie обратно в Data.
func (m *CookieManager) Decrypt(encrypted string) (*Data, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := m.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := m.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return &data, nil
}

// Set устанавливает зашифрованный cookie сессии.
func (m *CookieManager) Set(w http.ResponseWriter, data *Data) error {
	encrypted, err := m.Encrypt(data)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get извлекает Data из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (m *CookieManager) Get(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	return m.Decrypt(cookie.Value)
}

// Clear удаляет cookie сессии.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
