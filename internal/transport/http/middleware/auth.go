package middleware

import (
	"context"
	"net/http"
	"strings"

	"rrhh/internal/auth"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// Actor reads the bearer token and attaches its user as the audit actor.
// Without a token the request proceeds as "system" unless required is set;
// a present but invalid token is always rejected.
func Actor(secret string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if required {
					api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClaims, claims)
	return requestctx.WithActor(ctx, claims.UserID)
}

func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims, ok
}
