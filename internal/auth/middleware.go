package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "appointments/internal/errors"

	"go.uber.org/zap"
)

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the principal set by AdminAuthMiddleware, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok
}

// AdminAuthMiddleware admits requests carrying a valid bearer token for an admin principal.
func AdminAuthMiddleware(tokens *TokenManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, apperrors.ErrUnauthorized("Unauthorized"))
				return
			}
			principal, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Debug("auth: rejected token", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, apperrors.ErrUnauthorized("Unauthorized"))
				return
			}
			if !principal.IsAdmin {
				writeError(w, apperrors.ErrForbidden("Admin access required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeError(w http.ResponseWriter, httpErr *apperrors.HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
