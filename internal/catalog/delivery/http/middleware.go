package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	admindomain "github.com/aurelia-gems/storefront/internal/admin/domain"
	"github.com/aurelia-gems/storefront/pkg/auth"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

type contextKey string

const (
	IdentifierKey contextKey = "identifier"
	RoleKey       contextKey = "role"
)

// AdminMiddleware gates catalog mutations. The bearer token proves who
// is calling; the session machine stays the source of truth for
// lockout and timeout state, and every authenticated request counts as
// a tracked interaction that refreshes the inactivity clock.
func AdminMiddleware(tokens *auth.TokenManager, machine *admindomain.Machine) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   "Authorization header required",
				})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   "Invalid authorization header format",
				})
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Invalid admin token")
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   "Invalid token",
				})
				return
			}

			if err := machine.Check(r.Context()); err != nil {
				message := "Authentication required"
				if errors.Is(err, admindomain.ErrSessionExpired) {
					message = "Session expired, please sign in again"
				}
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   message,
				})
				return
			}

			if claims.Role != "admin" {
				respondJSON(w, http.StatusForbidden, Response{
					Success: false,
					Error:   "Admin access required",
				})
				return
			}

			machine.Touch(r.Context())

			ctx := context.WithValue(r.Context(), IdentifierKey, claims.Identifier)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
