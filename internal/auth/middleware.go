package auth

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

// Middleware extracts the principal the identity layer put on the
// request. Requests without a valid principal are rejected before any
// handler runs.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.FromString(r.Header.Get(headerUserID))
		if err != nil || userID == uuid.Nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		role, err := ParseRole(r.Header.Get(headerRole))
		if err != nil {
			log.Warn().Err(err).Stringer("user_id", userID).Msg("Rejected request with invalid role claim")
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require wraps a handler with an explicit role list. The check runs
// before the handler, so failures cannot leave side effects.
func Require(next http.HandlerFunc, roles ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok || !Allowed(p.Role, roles...) {
			http.Error(w, "access denied", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
