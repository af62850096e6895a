package middleware

import (
	"context"
	"net/http"

	"github.com/dentalcore/backupd/internal/api/response"
	"github.com/dentalcore/backupd/internal/model"
)

// GetIdentity extracts the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey).(*Identity)
	return identity
}

// IsAdmin reports whether the identity carries the admin role.
func IsAdmin(identity *Identity) bool {
	return identity != nil && identity.Role == model.RoleAdmin
}

// RequireAdmin returns middleware that rejects non-admin keys. Destructive
// operations (restore, delete, tenant management, key management) sit behind
// it; read and backup-create paths do not.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(GetIdentity(r.Context())) {
				response.WriteError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
