package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/platform/jobs"
)

func TestPick(t *testing.T) {
	cases := []struct {
		job  string
		want string
	}{
		{"close-day", jobs.JobCloseDay},
		{"payroll-run", jobs.JobOrdinaryPayroll},
		{"aguinaldo", jobs.JobAguinaldo},
		{"vacation-ledgers", jobs.JobVacationLedgers},
	}
	for _, tc := range cases {
		jobType, fn, err := pick(tc.job, "2024-03", 2024, time.Time{}, "")
		require.NoError(t, err, tc.job)
		assert.Equal(t, tc.want, jobType)
		assert.NotNil(t, fn)
	}

	_, _, err := pick("payroll-run", "03/2024", 0, time.Time{}, "")
	assert.Error(t, err)

	_, _, err = pick("reindex", "", 0, time.Time{}, "")
	assert.ErrorContains(t, err, "unknown -job")
}
