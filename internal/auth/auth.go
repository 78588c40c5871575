package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleOwner    Role = "owner"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleStaff, RoleOwner:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Principal is the authenticated caller as asserted by the external
// identity layer. This service never authenticates anyone itself.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// Allowed reports whether the subject role is one of the required roles.
// Owner is not implicitly allowed everywhere: every handler names the
// roles it accepts, so access rules stay greppable.
func Allowed(subject Role, required ...Role) bool {
	for _, r := range required {
		if subject == r {
			return true
		}
	}
	return false
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
