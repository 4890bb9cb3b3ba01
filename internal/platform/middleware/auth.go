package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator validates bearer tokens for the auth middleware.
type JWTValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// JWTClaims are the claims the middleware propagates into the request context.
type JWTClaims struct {
	AccountID string
	Role      string
	TokenID   string
}

type contextKeyAccountID struct{}
type contextKeyRole struct{}
type contextKeyTokenID struct{}
type contextKeyActor struct{}

// actorHolder carries the authenticated account ID back to middleware
// installed above RequireAuth. Context values only flow downstream, so the
// audit middleware plants a holder before the auth layer runs and reads it
// after the handler returns.
type actorHolder struct {
	accountID string
}

var (
	ContextKeyAccountID = contextKeyAccountID{}
	ContextKeyRole      = contextKeyRole{}
	ContextKeyTokenID   = contextKeyTokenID{}
)

// GetAccountID retrieves the authenticated account ID from the context.
func GetAccountID(ctx context.Context) string {
	accountID, ok := ctx.Value(ContextKeyAccountID).(string)
	if !ok {
		return ""
	}
	return accountID
}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) string {
	role, ok := ctx.Value(ContextKeyRole).(string)
	if !ok {
		return ""
	}
	return role
}

// GetTokenID retrieves the JWT ID of the presented token, used for revocation.
func GetTokenID(ctx context.Context) string {
	tokenID, ok := ctx.Value(ContextKeyTokenID).(string)
	if !ok {
		return ""
	}
	return tokenID
}

// RequireAuth validates the Authorization header and stores the principal in
// the request context. Handlers and services re-check authorization
// themselves; this middleware only establishes who is calling.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if holder, ok := ctx.Value(contextKeyActor{}).(*actorHolder); ok {
				holder.accountID = claims.AccountID
			}

			ctx = context.WithValue(ctx, ContextKeyAccountID, claims.AccountID)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			ctx = context.WithValue(ctx, ContextKeyTokenID, claims.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
