package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := tokens.Issue("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	username, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)

	t.Run("expired", func(t *testing.T) {
		past := NewTokenIssuer("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue("alice")
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		token, _, err := NewTokenIssuer("other", time.Hour).Issue("alice")
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, _, err := tokens.Issue("")
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.Error(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokenIssuer("secret", time.Hour)
	var seen string
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, _, err := tokens.Issue("bob")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "bob", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Ym9iOnB3")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, seen, 36)
}
