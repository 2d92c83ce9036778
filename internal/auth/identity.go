package auth

import (
	"context"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Identity is the caller attached to a request by Authenticate.
type Identity struct {
	UserID int64
	Login  string
	Role   domain.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
