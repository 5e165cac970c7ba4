package shared

import (
	"context"
	"net/http"

	"rrhh/internal/platform/jobs"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
)

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.Func) (any, error)
	Enqueue(jobType string, run jobs.Func) bool
}

// RunJob executes run as a recorded job run. With ?async=true the run is
// queued and answered with 202; the queued run keeps the caller as actor.
func RunJob(w http.ResponseWriter, r *http.Request, runner JobRunner, jobType string, run jobs.Func) {
	requestID := requestctx.GetRequestID(r.Context())
	if r.URL.Query().Get("async") == "true" {
		actor := requestctx.GetActor(r.Context())
		queued := runner.Enqueue(jobType, func(ctx context.Context) (any, error) {
			ctx = requestctx.WithRequestID(requestctx.WithActor(ctx, actor), requestID)
			return run(ctx)
		})
		if !queued {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", requestID)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: map[string]string{"status": "queued", "job": jobType}, RequestID: requestID})
		return
	}

	result, err := runner.RunNow(r.Context(), jobType, run)
	if err != nil {
		FailError(w, r, err)
		return
	}
	api.Success(w, result, requestID)
}
