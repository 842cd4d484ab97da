// Package middleware содержит HTTP middleware сервиса расчёта оплаты.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
)

type contextKey string

const merchantIDKey contextKey = "merchantID"

const (
	authCookieName = "auth_token"
	bearerPrefix   = "Bearer "
)

// AuthMiddleware проверяет подписанный токен мерчанта.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт AuthMiddleware. При пустом секрете генерируется
// случайный ключ, и выданные ранее токены перестают действовать после рестарта.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware извлекает токен из заголовка Authorization или cookie и кладёт
// идентификатор мерчанта в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		merchantID, ok := a.ParseToken(token)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), merchantIDKey, merchantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// IssueToken возвращает подписанный токен вида "<id>.<hmac>".
func (a *AuthMiddleware) IssueToken(merchantID int64) string {
	id := strconv.FormatInt(merchantID, 10)
	return id + "." + a.sign(id)
}

// ParseToken проверяет подпись токена и возвращает идентификатор мерчанта.
func (a *AuthMiddleware) ParseToken(token string) (int64, bool) {
	id, signature, found := strings.Cut(token, ".")
	if !found || id == "" {
		return 0, false
	}

	if !hmac.Equal([]byte(signature), []byte(a.sign(id))) {
		return 0, false
	}

	merchantID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || merchantID <= 0 {
		return 0, false
	}

	return merchantID, true
}

func (a *AuthMiddleware) sign(id string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// GetMerchantIDFromContext извлекает идентификатор мерчанта из контекста запроса.
func GetMerchantIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(merchantIDKey).(int64)
	return id, ok
}

