package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	id string
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("unexpected scan arity")
	}
	*(dest[0].(*string)) = r.id
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	mu    sync.Mutex
	execs []execCall
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{id: "run-1"}
}

type fakeRecorder struct {
	finished map[string]string
}

func (r *fakeRecorder) JobFinished(job, status string) {
	r.finished[job] = status
}

func TestRunNowRecordsCompletedRun(t *testing.T) {
	db := &fakeDB{}
	rec := &fakeRecorder{finished: map[string]string{}}
	svc := New(db, rec)

	out, err := svc.RunNow(context.Background(), JobCloseDay, func(context.Context) (any, error) {
		return map[string]int{"created": 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"created": 3}, out)

	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "UPDATE job_runs"))
	assert.Equal(t, StatusCompleted, db.execs[0].args[0])
	assert.JSONEq(t, `{"created":3}`, string(db.execs[0].args[1].([]byte)))
	assert.Equal(t, "run-1", db.execs[0].args[2])
	assert.Equal(t, StatusCompleted, rec.finished[JobCloseDay])
}

func TestRunNowRecordsFailure(t *testing.T) {
	db := &fakeDB{}
	rec := &fakeRecorder{finished: map[string]string{}}
	svc := New(db, rec)

	_, err := svc.RunNow(context.Background(), JobAguinaldo, func(context.Context) (any, error) {
		return nil, errors.New("database unavailable")
	})
	require.Error(t, err)
	require.Len(t, db.execs, 1)
	assert.Equal(t, StatusFailed, db.execs[0].args[0])
	assert.Contains(t, string(db.execs[0].args[1].([]byte)), "database unavailable")
	assert.Equal(t, StatusFailed, rec.finished[JobAguinaldo])
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	svc := New(&fakeDB{}, nil)
	noop := func(context.Context) (any, error) { return nil, nil }
	for i := 0; i < defaultQueueCapacity; i++ {
		require.True(t, svc.Enqueue(JobVacationLedgers, noop))
	}
	assert.False(t, svc.Enqueue(JobVacationLedgers, noop))
}

func TestWorkerDrainsQueue(t *testing.T) {
	svc := New(&fakeDB{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	svc.Start(ctx)
	require.True(t, svc.Enqueue(JobOrdinaryPayroll, func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}))
	<-done
}
