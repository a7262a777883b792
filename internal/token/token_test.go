package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)

	raw, err := svc.Issue("user-1", "alice123")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice123", claims.Username)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	clock := issuedAt
	svc := NewService("test-secret", ttl).WithClock(func() time.Time { return clock })

	raw, err := svc.Issue("user-1", "alice123")
	require.NoError(t, err)

	clock = issuedAt.Add(ttl - time.Second)
	_, err = svc.Verify(raw)
	assert.NoError(t, err, "token must be valid one second before expiry")

	clock = issuedAt.Add(ttl + time.Second)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)

	raw, err := svc.Issue("user-1", "alice123")
	require.NoError(t, err)

	_, err = svc.Verify(raw + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewService("other-secret", 15*time.Minute)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRequireMiddleware(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)

	var gotClaims Claims
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotClaims, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		Require(svc, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Token requerido","status":"error"}`, rec.Body.String())
		assert.False(t, called, "handler must not run without a token")
	})

	t.Run("invalid token", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		Require(svc, next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Token inválido","status":"error"}`, rec.Body.String())
		assert.False(t, called)
	})

	t.Run("expired token", func(t *testing.T) {
		clock := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		expiring := NewService("test-secret", time.Minute).WithClock(func() time.Time { return clock })
		raw, err := expiring.Issue("user-1", "alice123")
		require.NoError(t, err)
		clock = clock.Add(2 * time.Minute)

		called = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		Require(expiring, next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Token expirado","status":"error"}`, rec.Body.String())
		assert.False(t, called)
	})

	t.Run("valid token injects claims", func(t *testing.T) {
		raw, err := svc.Issue("user-1", "alice123")
		require.NoError(t, err)

		called = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		Require(svc, next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Equal(t, "alice123", gotClaims.Username)
		assert.Equal(t, "user-1", gotClaims.UserID)
	})
}
