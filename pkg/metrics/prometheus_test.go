package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordError("unknown_symbol")
	r.RecordError("unknown_symbol")
	r.RecordModelCall("ok")
	r.RecordCache("hit")
	r.RecordCache("miss")
	r.RecordForecast("7_day", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("unknown_symbol")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelCalls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))

	n, err := testutil.GatherAndCount(reg, "stockcast_forecast_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorderRegistersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
