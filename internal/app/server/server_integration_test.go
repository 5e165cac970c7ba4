package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/platform/config"
)

func TestServerAgainstDatabase(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Load()
	cfg.DatabaseURL = dbURL
	cfg.Environment = "test"
	cfg.RunMigrations = true
	cfg.MigrationsDir = "../../../migrations"

	app, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.DB.Close()

	for _, tc := range []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/v1/payroll/periods/1999-01/preview", http.StatusOK},
		{http.MethodGet, "/api/v1/payroll/periods/1999-01/settlements", http.StatusOK},
		{http.MethodGet, "/api/v1/payroll/periods/1999-01/register.pdf", http.StatusNotFound},
		{http.MethodGet, "/api/v1/attendance/metrics?year=1999&month=1", http.StatusOK},
		{http.MethodGet, "/api/v1/employees/00000000-0000-0000-0000-000000000000/vacation-balance", http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, "%s %s: %s", tc.method, tc.target, rec.Body.String())
	}
}
