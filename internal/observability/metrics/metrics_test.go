package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}
	return byName
}

func TestCountersCarryConstLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newMetrics(registry, Config{ServiceName: "gridadmin", Environment: "test"})

	m.IncJobRun("low_balance_sweep")
	m.IncJobRun("low_balance_sweep")
	m.IncJobError("low_balance_sweep")
	m.IncDispatch("LOW_BALANCE_ALERT", "delivered")
	m.IncDelivery("email", "failed")
	m.SetWSConnections(3)
	m.IncWSDropped()
	m.ObserveHTTP("/api/v1/consumers", "GET", 200, 12*time.Millisecond)

	families := gather(t, registry)

	runs := families["gridadmin_scheduler_job_runs_total"]
	require.NotNil(t, runs)
	require.Len(t, runs.GetMetric(), 1)
	assert.Equal(t, 2.0, runs.GetMetric()[0].GetCounter().GetValue())

	labels := map[string]string{}
	for _, pair := range runs.GetMetric()[0].GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	assert.Equal(t, "gridadmin", labels["service"])
	assert.Equal(t, "test", labels["env"])
	assert.Equal(t, "low_balance_sweep", labels["job"])

	gauge := families["gridadmin_ws_connections"]
	require.NotNil(t, gauge)
	assert.Equal(t, 3.0, gauge.GetMetric()[0].GetGauge().GetValue())

	http := families["gridadmin_http_requests_total"]
	require.NotNil(t, http)
	for _, pair := range http.GetMetric()[0].GetLabel() {
		if pair.GetName() == "status" {
			assert.Equal(t, "2xx", pair.GetValue())
		}
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.IncJobRun("x")
	m.IncJobError("x")
	m.IncDispatch("x", "y")
	m.IncDelivery("x", "y")
	m.SetWSConnections(1)
	m.IncWSDropped()
	m.ObserveHTTP("/", "GET", 500, time.Millisecond)
	m.ObserveJobDuration("x", time.Second)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}
