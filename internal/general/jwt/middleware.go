package jwt

import (
	"encoding/json"
	"net/http"

	"ride-share/internal/domain/user"
)

// AuthMiddlewareFunc validates the bearer token and the caller's role.
// Wraps a plain http.HandlerFunc to keep compatibility with http.ServeMux.
func AuthMiddlewareFunc(mgr *Manager, allowedRoles ...user.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := FromAuthorization(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}

			claims, err := mgr.ParseAndValidate(tokenStr)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if len(allowedRoles) > 0 {
				if err := RoleAllowed(claims, allowedRoles...); err != nil {
					writeAuthError(w, http.StatusForbidden, "insufficient permissions")
					return
				}
			}

			next(w, r.WithContext(InjectClaims(r.Context(), claims)))
		}
	}
}

// RequireClaims fetches claims injected by the middleware. Handlers behind
// AuthMiddlewareFunc can assume they are present.
func RequireClaims(r *http.Request) *Claims {
	c, ok := FromContext(r.Context())
	if !ok {
		panic("jwt: claims missing from request context")
	}
	return c
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
