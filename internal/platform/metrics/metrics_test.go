package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementCounters(t *testing.T) {
	c := New()
	c.SettlementGenerated("ordinary")
	c.SettlementGenerated("ordinary")
	c.SettlementSkipped("ordinary")
	c.SettlementFailed("aguinaldo")

	body := scrape(t, c)
	assert.Contains(t, body, `rrhh_settlements_total{kind="ordinary",outcome="generated"} 2`)
	assert.Contains(t, body, `rrhh_settlements_total{kind="ordinary",outcome="skipped"} 1`)
	assert.Contains(t, body, `rrhh_settlements_total{kind="aguinaldo",outcome="failed"} 1`)
}

func TestHandlerExposesRequestMetrics(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "/api/v1/payroll/periods/{period}/settlements", http.StatusOK, 20*time.Millisecond)
	c.Record(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `rrhh_http_requests_total{method="GET",route="/api/v1/payroll/periods/{period}/settlements",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
