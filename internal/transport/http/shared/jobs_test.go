package shared

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/platform/jobs"
	"rrhh/internal/requestctx"
)

type inlineRunner struct {
	ran    []string
	queued []jobs.Func
	full   bool
}

func (r *inlineRunner) RunNow(ctx context.Context, jobType string, run jobs.Func) (any, error) {
	r.ran = append(r.ran, jobType)
	return run(ctx)
}

func (r *inlineRunner) Enqueue(jobType string, run jobs.Func) bool {
	if r.full {
		return false
	}
	r.queued = append(r.queued, run)
	return true
}

func TestRunJobSync(t *testing.T) {
	runner := &inlineRunner{}
	rec := httptest.NewRecorder()
	RunJob(rec, httptest.NewRequest(http.MethodPost, "/run", nil), runner, jobs.JobOrdinaryPayroll, func(context.Context) (any, error) {
		return map[string]int{"generated": 2}, nil
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"generated":2}}`, rec.Body.String())
	assert.Equal(t, []string{jobs.JobOrdinaryPayroll}, runner.ran)

	rec = httptest.NewRecorder()
	RunJob(rec, httptest.NewRequest(http.MethodPost, "/run", nil), runner, jobs.JobOrdinaryPayroll, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunJobAsyncKeepsActor(t *testing.T) {
	runner := &inlineRunner{}
	req := httptest.NewRequest(http.MethodPost, "/run?async=true", nil)
	req = req.WithContext(requestctx.WithActor(req.Context(), "u7"))

	var actor string
	rec := httptest.NewRecorder()
	RunJob(rec, req, runner, jobs.JobAguinaldo, func(ctx context.Context) (any, error) {
		actor = requestctx.GetActor(ctx)
		return nil, nil
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, runner.queued, 1)
	assert.Empty(t, runner.ran)

	_, err := runner.queued[0](context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u7", actor)

	runner.full = true
	rec = httptest.NewRecorder()
	RunJob(rec, httptest.NewRequest(http.MethodPost, "/run?async=true", nil), runner, jobs.JobAguinaldo, func(context.Context) (any, error) { return nil, nil })
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
