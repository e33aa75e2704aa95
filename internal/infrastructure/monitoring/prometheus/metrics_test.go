package prometheus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	require.NotNil(t, m)
	return m, c
}

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordValidation(m, "oxidation", true, 90)
	RecordTransform(m, "oxidation", time.Millisecond, nil)
	RecordCodecParse(m, "smiles", nil)
	m.RepairWarningsTotal.WithLabelValues("bond_order").Inc()
	m.HealthCheckStatus.WithLabelValues("postgres").Set(1)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `validations_total{category="oxidation",outcome="valid"} 1`)
	assert.Contains(t, out, `transforms_total{category="oxidation",status="ok"} 1`)
	assert.Contains(t, out, `codec_parses_total{format="smiles",status="ok"} 1`)
	assert.Contains(t, out, `repair_warnings_total{kind="bond_order"} 1`)
	assert.Contains(t, out, `health_check_status{component="postgres"} 1`)
}

func TestRecordValidation_InvalidOutcome(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordValidation(m, "reduction", false, 0)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `validations_total{category="reduction",outcome="invalid"} 1`)
}

func TestRecordTransform_ErrorStatus(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordTransform(m, "elimination", time.Millisecond, fmt.Errorf("no leaving group"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `transforms_total{category="elimination",status="error"} 1`)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/reactions/validate", 200, 5*time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `status_code="200"`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "verdict", true)
	RecordCacheAccess(m, "verdict", false)
	RecordCacheAccess(m, "verdict", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `cache_hits_total{cache="verdict"} 1`)
	assert.Contains(t, out, `cache_misses_total{cache="verdict"} 2`)
}
