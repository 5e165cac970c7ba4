package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"rrhh/internal/transport/http/api"
)

// RateLimit allows limit requests per window for each actor, falling back
// to the client IP for anonymous requests.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(actorOrIPKey),
		httprate.WithLimitHandler(rateLimited),
	)
}

func actorOrIPKey(r *http.Request) (string, error) {
	if claims, ok := GetClaims(r.Context()); ok {
		return "actor:" + claims.UserID, nil
	}
	return httprate.KeyByRealIP(r)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	slog.Warn("rate limit exceeded", "path", r.URL.Path, "method", r.Method)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
}
