package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/domain/leave"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/transport/http/api"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPeriodParam(t *testing.T) {
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "period", "2024-03")
	p, err := PeriodParam(r, "period")
	require.NoError(t, err)
	assert.Equal(t, payroll.Period{Year: 2024, Month: time.March}, p)

	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "period", "2024-13")
	_, err = PeriodParam(r, "period")
	require.ErrorIs(t, err, payroll.ErrValidation)
}

func TestYearParam(t *testing.T) {
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "year", "2024")
	year, err := YearParam(r, "year")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	for _, raw := range []string{"", "24x", "99999"} {
		r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "year", raw)
		_, err = YearParam(r, "year")
		require.ErrorIs(t, err, payroll.ErrValidation, raw)
	}
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Cause string `json:"cause"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"cause":"closing"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "closing", body.Cause)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeJSON(r, &body))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	require.ErrorIs(t, DecodeJSON(r, &body), payroll.ErrValidation)
}

func failStatus(t *testing.T, err error) (int, api.Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	FailError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), err)
	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestFailErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&payroll.ValidationError{Field: "period", Reason: "bad"}, http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("save: %w", &payroll.DuplicateSettlementError{EmployeeID: "e1", ExistingID: "s1"}), http.StatusConflict, "duplicate_settlement"},
		{payroll.ErrEmployeeNotFound, http.StatusNotFound, "not_found"},
		{leave.ErrLeaveNotFound, http.StatusNotFound, "not_found"},
		{leave.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{payroll.ErrNoDaysWorked, http.StatusUnprocessableEntity, "no_days_worked"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, env := failStatus(t, tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		require.NotNil(t, env.Error)
		assert.Equal(t, tc.code, env.Error.Code)
	}

	_, env := failStatus(t, errors.New("password=secret"))
	assert.Equal(t, "internal server error", env.Error.Message)
}
