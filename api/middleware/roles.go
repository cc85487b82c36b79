package middleware

import (
	"net/http"

	"github.com/minhnguyen-io/lenscraft-backend/api/responses"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

// RequireBackoffice rejects callers without a staff, manager, or admin role.
func RequireBackoffice(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseUserRole(RoleFromContext(r.Context()))
			if err != nil || !role.IsBackoffice() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "backoffice role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
