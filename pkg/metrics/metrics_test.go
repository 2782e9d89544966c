package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	start := time.Now()
	m.Resolved(start, OutcomeFound)
	m.Resolved(start, OutcomeFound)
	m.Resolved(start, OutcomeMissing)
	m.Diffed(start, 3, 0, 1)
	m.Published()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolves.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues(OutcomeMissing)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.diffChanges.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diffChanges.WithLabelValues("modified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publications))

	count, err := testutil.GatherAndCount(reg, "pkgreg_diff_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = New(reg)
	require.Error(t, err, "collectors cannot be registered twice")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Resolved(time.Now(), OutcomeError)
		m.Diffed(time.Now(), 1, 1, 1)
		m.Published()
	})
}
