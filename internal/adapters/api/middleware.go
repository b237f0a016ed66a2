package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/poyrazK/authguard/internal/core/domain"
	"github.com/poyrazK/authguard/internal/core/ports"
	"github.com/poyrazK/authguard/internal/infrastructure/metrics"
)

type contextKey string

const (
	CtxAccountID contextKey = "account_id"
	CtxClaims    contextKey = "claims"
)

// TokenMiddleware authenticates requests with a Bearer token. The
// account is re-fetched so a token for a deleted account stops working
// even though token verification itself is stateless.
func TokenMiddleware(tokens ports.TokenService, repo ports.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized: missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				http.Error(w, "Unauthorized: invalid or expired token", http.StatusUnauthorized)
				return
			}

			account, err := repo.GetAccount(r.Context(), claims.ID)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if account == nil {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				http.Error(w, "Unauthorized: account no longer exists", http.StatusUnauthorized)
				return
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			ctx := context.WithValue(r.Context(), CtxAccountID, claims.ID)
			ctx = context.WithValue(ctx, CtxClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyMiddleware authenticates programmatic requests with an X-API-Key
// header. Validation is delegated to the key service, which handles
// revocation and lazy expiry.
func APIKeyMiddleware(keys ports.APIKeyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get("X-API-Key")
			if secret == "" {
				http.Error(w, "Unauthorized: missing API key", http.StatusUnauthorized)
				return
			}

			accountID, _, err := keys.Validate(r.Context(), secret)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidAPIKey) {
					http.Error(w, "Unauthorized: invalid or expired API key", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), CtxAccountID, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(CtxClaims).(*domain.TokenClaims)
			if !ok {
				http.Error(w, "Forbidden: role not found in context", http.StatusForbidden)
				return
			}

			allowed := false
			for _, role := range roles {
				if role == claims.Role {
					allowed = true
					break
				}
			}

			if !allowed {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
