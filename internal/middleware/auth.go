package middleware

import (
	"net/http"

	"clubsite-be/internal/auth"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/user"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	ParseToken(token string) (*user.CustomClaims, error)
}

// Authenticate puts the token's user on the request context when a valid
// token is present. Requests without one pass through anonymously.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("ignoring invalid token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Username, claims.Role, claims.Permissions)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission answers 401 for anonymous callers and 403 for users
// without the permission.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !utils.HasPermission(r.Context(), permission) {
				logger.FromCtx(r.Context()).Warn("permission denied",
					zap.String("permission", permission),
					zap.String("username", utils.GetUsernameFromContext(r.Context())),
				)
				utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
