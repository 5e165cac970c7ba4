package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
)

// NewLogger returns a JSON logger using the ECS field names.
func NewLogger(out io.Writer, env string) *slog.Logger {
	format := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		ReplaceAttr: format.ReplaceAttr,
	})).With(
		slog.String("app", "rrhh"),
		slog.String("env", env),
	)
}

// RequestLogger logs one line per request, skipping probes and scrapes.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(r *http.Request, status int) bool {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				return status < http.StatusBadRequest
			}
			return false
		},
	})
}
