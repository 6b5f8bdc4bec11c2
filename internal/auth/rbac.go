package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization guards admin routes on permission names loaded into the
// request user's context.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func hasPermission(userPermissions []string, permission string) bool {
	for _, p := range userPermissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !hasPermission(user.Permissions, permission) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManageServices() func(http.Handler) http.Handler {
	return ra.Middleware(PermManageServices)
}

func (ra *RBACAuthorization) RequireManageOrders() func(http.Handler) http.Handler {
	return ra.Middleware(PermManageOrders)
}

func (ra *RBACAuthorization) RequirePayoutAffiliates() func(http.Handler) http.Handler {
	return ra.Middleware(PermPayoutAffiliates)
}
