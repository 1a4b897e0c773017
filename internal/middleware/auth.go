package middleware

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/cafeteria-ledger/internal/auth"
	"github.com/josh-kwaku/cafeteria-ledger/internal/handler"
)

// Auth admits requests carrying a valid operator token. The operator's
// employee ID and role tier ride on the context for the audit trail and for
// scoping idempotency keys.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			switch {
			case r.Header.Get("Authorization") == "":
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			case !found || token == "":
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.Int64("ledger.operator_id", claims.EmployeeID),
				attribute.Int("ledger.operator_tier", claims.RoleTier),
			)
			ctx := auth.ContextWithEmployeeID(r.Context(), claims.EmployeeID)
			ctx = auth.ContextWithRoleTier(ctx, claims.RoleTier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
