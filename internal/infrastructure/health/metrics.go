package health

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// RegisterMetrics exposes the monitor's latest snapshot as observable
// gauges. The callback reads whatever snapshot the poll loop produced
// last, so exporting never triggers extra probes.
func RegisterMetrics(meter metric.Meter, monitor *Monitor) error {
	dbConns, err := meter.Int64ObservableGauge("storefront.db.active_connections",
		metric.WithDescription("Active Postgres connections"))
	if err != nil {
		return fmt.Errorf("create db connections gauge: %w", err)
	}
	redisLatency, err := meter.Float64ObservableGauge("storefront.redis.ping_latency_ms",
		metric.WithDescription("Redis ping round-trip latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("create redis latency gauge: %w", err)
	}
	heapInUse, err := meter.Int64ObservableGauge("storefront.runtime.heap_alloc_bytes",
		metric.WithDescription("Go heap in use"),
		metric.WithUnit("By"))
	if err != nil {
		return fmt.Errorf("create heap gauge: %w", err)
	}
	goroutines, err := meter.Int64ObservableGauge("storefront.runtime.goroutines",
		metric.WithDescription("Number of goroutines"))
	if err != nil {
		return fmt.Errorf("create goroutines gauge: %w", err)
	}
	load1, err := meter.Float64ObservableGauge("storefront.system.load1",
		metric.WithDescription("Host 1-minute load average"))
	if err != nil {
		return fmt.Errorf("create load gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		snapshot := monitor.Last()
		if snapshot == nil {
			return nil
		}
		o.ObserveInt64(dbConns, int64(snapshot.Database.ActiveConnections))
		o.ObserveFloat64(redisLatency, float64(snapshot.Redis.PingLatency.Microseconds())/1000)
		o.ObserveInt64(heapInUse, int64(snapshot.Runtime.HeapAllocBytes))
		o.ObserveInt64(goroutines, int64(snapshot.Runtime.Goroutines))
		o.ObserveFloat64(load1, snapshot.System.Load1)
		return nil
	}, dbConns, redisLatency, heapInUse, goroutines, load1)
	if err != nil {
		return fmt.Errorf("register health metrics callback: %w", err)
	}
	return nil
}
