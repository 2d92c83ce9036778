package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

type Middleware struct {
	issuer *TokenIssuer
	logger *slog.Logger
}

func NewMiddleware(issuer *TokenIssuer, logger *slog.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			respond.FromError(w, m.logger, fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated), "")
			return
		}

		id, err := m.issuer.Verify(strings.TrimSpace(raw))
		if err != nil {
			respond.FromError(w, m.logger, err, "")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// RequireAdmin authenticates the caller and then requires the Admin role.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		if !id.IsAdmin() {
			respond.FromError(w, m.logger, fmt.Errorf("%w: admins only", domain.ErrForbidden), "")
			return
		}
		next(w, r)
	})
}
