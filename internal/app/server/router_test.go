package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/auth"
	"rrhh/internal/domain/leave"
	"rrhh/internal/platform/config"
	"rrhh/internal/platform/metrics"
)

const testSecret = "router-test-secret"

type fakeLeave struct {
	rejected []string
}

func (f *fakeLeave) ApproveLeave(context.Context, string) (leave.ApprovalResult, error) {
	return leave.ApprovalResult{}, nil
}

func (f *fakeLeave) RejectLeave(_ context.Context, id string) error {
	f.rejected = append(f.rejected, id)
	return nil
}

func (f *fakeLeave) CreateSanction(context.Context, leave.Sanction) (leave.SanctionResult, error) {
	return leave.SanctionResult{}, nil
}

func testConfig(env string) config.Config {
	return config.Config{
		Environment:        env,
		JWTSecret:          testSecret,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		CORSOrigins:        []string{"http://localhost:3000"},
		MetricsEnabled:     true,
	}
}

func testRouter(t *testing.T, env string, deps Dependencies) http.Handler {
	t.Helper()
	return NewRouter(testConfig(env), slog.New(slog.NewTextHandler(io.Discard, nil)), deps)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u-" + role, Name: role, Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func send(router http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProbes(t *testing.T) {
	collector := metrics.New()
	ready := errors.New("down")
	router := testRouter(t, "development", Dependencies{
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
		Ready:          func(context.Context) error { return ready },
	})

	rec := send(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = send(router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = nil
	rec = send(router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rrhh_")

	rec = send(router, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestDevelopmentAllowsAnonymousWrites(t *testing.T) {
	svc := &fakeLeave{}
	router := testRouter(t, "development", Dependencies{Leave: svc})

	rec := send(router, http.MethodPost, "/api/v1/leave-requests/lr1/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"lr1"}, svc.rejected)

	rec = send(router, http.MethodPost, "/api/v1/leave-requests/lr1/reject", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductionRequiresRoleForWrites(t *testing.T) {
	svc := &fakeLeave{}
	router := testRouter(t, "production", Dependencies{Leave: svc})

	rec := send(router, http.MethodPost, "/api/v1/leave-requests/lr1/reject", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(router, http.MethodPost, "/api/v1/leave-requests/lr1/reject", token(t, "viewer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.rejected)

	rec = send(router, http.MethodPost, "/api/v1/leave-requests/lr1/reject", token(t, auth.RoleHR))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"lr1"}, svc.rejected)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
