package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.RunStarted()
	c.RunStarted()
	c.RunFinished("energy-plateau-detected", 400, 250)
	c.RunFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.started))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.active))
	assert.Equal(t, 400.0, testutil.ToFloat64(c.steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completed.WithLabelValues("energy-plateau-detected")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "spinodal_runs_started_total 2"))
}
