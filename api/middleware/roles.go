package middleware

import (
	"net/http"

	"github.com/youscore/youscore-backend/api/responses"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
)

// RequireRole gates a route group on the role seeded by Auth. It
// assumes Auth already ran; an unauthenticated request has no role and
// is rejected.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor := RoleFromContext(r.Context()); actor != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
