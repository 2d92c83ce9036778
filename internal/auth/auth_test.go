package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &domain.User{ID: 42, Login: "anna", Role: domain.RoleAdmin}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Login: "anna", Role: domain.RoleAdmin}, id)
	assert.True(t, id.IsAdmin())
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &domain.User{ID: 1, Login: "bob", Role: domain.RoleUser}

	t.Run("expired token", func(t *testing.T) {
		old := NewTokenIssuer("test-secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(user)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("foreign secret", func(t *testing.T) {
		token, err := NewTokenIssuer("other-secret", time.Hour).Issue(user)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "Admin"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := CheckPassword(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	mw := NewMiddleware(issuer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var seen Identity
	ok := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	userToken, err := issuer.Issue(&domain.User{ID: 3, Login: "carl", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, err := issuer.Issue(&domain.User{ID: 4, Login: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		header  string
		status  int
	}{
		{"missing header", mw.Authenticate(ok), "", http.StatusUnauthorized},
		{"wrong scheme", mw.Authenticate(ok), "Basic abc", http.StatusUnauthorized},
		{"garbage token", mw.Authenticate(ok), "Bearer abc", http.StatusUnauthorized},
		{"valid user", mw.Authenticate(ok), "Bearer " + userToken, http.StatusNoContent},
		{"user on admin route", mw.RequireAdmin(ok), "Bearer " + userToken, http.StatusForbidden},
		{"admin on admin route", mw.RequireAdmin(ok), "Bearer " + adminToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			tt.handler(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, int64(4), seen.UserID)
}
