package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telyourstory/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoSession() (http.Handler, *string, *string) {
	var userID, name string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ = r.Context().Value(UserIDKey).(string)
		name, _ = r.Context().Value(UserNameKey).(string)
		w.WriteHeader(http.StatusOK)
	})
	return h, &userID, &name
}

func TestRequireAuthResolvesSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, userID, name := echoSession()
	handler := RequireAuth(inner)

	token := signedToken(t, "test-secret", jwt.MapClaims{
		"sub":  "user-alice",
		"name": "Alice",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-alice", *userID)
	assert.Equal(t, "Alice", *name)
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, userID, _ := echoSession()
	handler := RequireAuth(inner)

	token := signedToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-ws",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-ws", *userID)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, _, _ := echoSession()
	handler := RequireAuth(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, _, _ := echoSession()
	handler := RequireAuth(inner)

	token := signedToken(t, "other-secret", jwt.MapClaims{
		"sub": "user-alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, _, _ := echoSession()
	handler := RequireAuth(inner)

	token := signedToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthPassesAnonymousThrough(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	inner, userID, _ := echoSession()
	handler := OptionalAuth(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, *userID, "anonymous request reaches the handler without a session")
}
