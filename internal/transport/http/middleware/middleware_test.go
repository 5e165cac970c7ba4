package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/auth"
	"rrhh/internal/requestctx"
)

const secret = "test-secret"

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := auth.GenerateToken(secret, auth.Claims{UserID: userID, Role: role}, time.Hour)
	require.NoError(t, err)
	return signed
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "req-42", seen)
}

func TestActorSetsAuditActor(t *testing.T) {
	var actor string
	handler := Actor(secret, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = requestctx.GetActor(r.Context())
		claims, ok := GetClaims(r.Context())
		if ok {
			assert.Equal(t, auth.RoleHR, claims.Role)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", auth.RoleHR))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u1", actor)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "system", actor)
}

func TestActorRejectsBadTokens(t *testing.T) {
	handler := Actor(secret, true)(http.HandlerFunc(noContent))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	Actor(secret, false)(http.HandlerFunc(noContent)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestRequireRole(t *testing.T) {
	handler := Actor(secret, false)(RequireRole(auth.RoleHR, auth.RoleAdmin)(http.HandlerFunc(noContent)))

	cases := []struct {
		bearer string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{token(t, "u1", "employee"), http.StatusForbidden},
		{token(t, "u2", auth.RoleHR), http.StatusNoContent},
		{token(t, "u3", auth.RoleAdmin), http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tc.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+tc.bearer)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code)
	}
}

func TestRateLimitKeysByActorBeforeIP(t *testing.T) {
	handler := Actor(secret, false)(RateLimit(1, time.Minute)(http.HandlerFunc(noContent)))
	bearer := token(t, "u1", auth.RoleHR)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods/2024-03/run", nil)
	first.Header.Set("Authorization", "Bearer "+bearer)
	first.RemoteAddr = "198.51.100.11:2222"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods/2024-03/run", nil)
	second.Header.Set("Authorization", "Bearer "+bearer)
	second.RemoteAddr = "198.51.100.12:3333"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")

	anonymous := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods/2024-03/run", nil)
	anonymous.RemoteAddr = "198.51.100.11:2222"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, anonymous)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type memoryIdempotency struct {
	mu    sync.Mutex
	saved map[string]StoredResponse
	hash  map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{saved: map[string]StoredResponse{}, hash: map[string]string{}}
}

func (m *memoryIdempotency) Check(_ context.Context, actor, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := actor + endpoint + key
	stored, ok := m.saved[id]
	if !ok {
		return StoredResponse{}, false, nil
	}
	if m.hash[id] != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (m *memoryIdempotency) Save(_ context.Context, actor, endpoint, key, requestHash string, response StoredResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := actor + endpoint + key
	m.saved[id] = response
	m.hash[id] = requestHash
	return nil
}

func TestIdempotencyReplaysSuccessfulResponse(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotency())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"run":1}}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods/2024-03/run", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{}`)
	assert.Equal(t, http.StatusCreated, first.Code)

	replay := send(`{}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	conflict := send(`{"other":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, conflict.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyIgnoresFailuresAndMissingKey(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotency())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"success":false}`, http.StatusConflict)
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, 3, calls)
}

func TestRequestHashDeterministic(t *testing.T) {
	assert.Equal(t, RequestHash([]byte("payload")), RequestHash([]byte("payload")))
	assert.NotEqual(t, RequestHash([]byte("payload")), RequestHash([]byte("other")))
}

type recordedRoute struct {
	method, route string
	status        int
}

type fakeRouteRecorder struct {
	routes []recordedRoute
}

func (f *fakeRouteRecorder) Record(method, route string, status int, _ time.Duration) {
	f.routes = append(f.routes, recordedRoute{method, route, status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	recorder := &fakeRouteRecorder{}
	router := chi.NewRouter()
	router.Use(Metrics(recorder))
	router.Get("/payroll/periods/{period}/settlements", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payroll/periods/2024-03/settlements", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, recorder.routes, 2)
	assert.Equal(t, recordedRoute{http.MethodGet, "/payroll/periods/{period}/settlements", http.StatusOK}, recorder.routes[0])
	assert.Equal(t, http.StatusNotFound, recorder.routes[1].status)
}

func TestSecureHeadersAndBodyLimit(t *testing.T) {
	handler := SecureHeaders(true)(BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789abcdef")))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
