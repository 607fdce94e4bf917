package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepulse/pkg/contracts/domain"
)

func TestObserveRun(t *testing.T) {
	m := New()

	m.ObserveRun(domain.JobIndicator, domain.RunSucceeded, 42, 3*time.Second)
	m.ObserveRun(domain.JobIndicator, domain.RunFailed, 0, time.Second)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.runsTotal.WithLabelValues("indicator", "succeeded")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.runsTotal.WithLabelValues("indicator", "failed")))
	assert.Equal(t, float64(42),
		testutil.ToFloat64(m.rowsProcessed.WithLabelValues("indicator")))
}

func TestObserveHTTP_StatusClasses(t *testing.T) {
	m := New()

	m.ObserveHTTP("GET", "/api/v1/runs", 200, 5*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/runs", 404, 5*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/runs", 500, 5*time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/runs", "2xx")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/runs", "4xx")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/runs", "5xx")))
}

func TestHandler_Scrape(t *testing.T) {
	m := New()
	m.ObserveUpload(domain.JobCustomsCountry)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tradepulse_uploads_total")
}
