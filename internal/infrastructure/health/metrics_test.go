package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = m
		}
	}
	return names
}

func TestRegisterMetrics_ObservesLastSnapshot(t *testing.T) {
	monitor := NewMonitor(nil, nil, config.HealthConfig{}, nil)
	monitor.Check(context.Background())

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.NoError(t, RegisterMetrics(provider.Meter("health-test"), monitor))

	names := collectMetricNames(t, reader)
	assert.Contains(t, names, "storefront.runtime.goroutines")
	assert.Contains(t, names, "storefront.runtime.heap_alloc_bytes")
	assert.Contains(t, names, "storefront.system.load1")
	assert.Contains(t, names, "storefront.db.active_connections")
	assert.Contains(t, names, "storefront.redis.ping_latency_ms")

	goroutines, ok := names["storefront.runtime.goroutines"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, goroutines.DataPoints, 1)
	assert.Greater(t, goroutines.DataPoints[0].Value, int64(0))
}

func TestRegisterMetrics_NoObservationsBeforeFirstCheck(t *testing.T) {
	monitor := NewMonitor(nil, nil, config.HealthConfig{}, nil)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.NoError(t, RegisterMetrics(provider.Meter("health-test"), monitor))

	names := collectMetricNames(t, reader)
	if m, ok := names["storefront.runtime.goroutines"]; ok {
		gauge, isGauge := m.Data.(metricdata.Gauge[int64])
		require.True(t, isGauge)
		assert.Empty(t, gauge.DataPoints)
	}
}
