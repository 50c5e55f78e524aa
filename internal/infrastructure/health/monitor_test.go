package health

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMonitor_UnhealthyWithoutDatabase(t *testing.T) {
	_, client := newTestRedis(t)
	monitor := NewMonitor(nil, client, config.HealthConfig{}, nil)

	snapshot := monitor.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, snapshot.Status)
	assert.False(t, snapshot.Database.Reachable)
	assert.True(t, snapshot.Redis.Reachable)
}

func TestMonitor_RedisStats(t *testing.T) {
	_, client := newTestRedis(t)
	monitor := NewMonitor(nil, client, config.HealthConfig{}, nil)

	snapshot := monitor.Check(context.Background())

	assert.True(t, snapshot.Redis.Reachable)
	assert.Greater(t, snapshot.Redis.PingLatency, time.Duration(0))
}

func TestMonitor_RedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	monitor := NewMonitor(nil, client, config.HealthConfig{}, nil)

	mr.Close()
	snapshot := monitor.Check(context.Background())

	assert.False(t, snapshot.Redis.Reachable)
}

func TestMonitor_RuntimeAndSystemStats(t *testing.T) {
	monitor := NewMonitor(nil, nil, config.HealthConfig{}, nil)

	snapshot := monitor.Check(context.Background())

	assert.Greater(t, snapshot.Runtime.Goroutines, 0)
	assert.Greater(t, snapshot.Runtime.HeapAllocBytes, uint64(0))
	assert.Greater(t, snapshot.System.CPUCount, 0)
}

func TestMonitor_LastReturnsMostRecentSnapshot(t *testing.T) {
	monitor := NewMonitor(nil, nil, config.HealthConfig{}, nil)

	assert.Nil(t, monitor.Last())

	first := monitor.Check(context.Background())
	assert.Equal(t, first, monitor.Last())
}

func TestMonitor_StartAndStop(t *testing.T) {
	_, client := newTestRedis(t)
	monitor := NewMonitor(nil, client, config.HealthConfig{Interval: 10 * time.Millisecond}, nil)

	monitor.Start(context.Background())

	require.Eventually(t, func() bool {
		return monitor.Last() != nil
	}, time.Second, 5*time.Millisecond)

	monitor.Stop()
}

func TestMonitor_HeapThresholdDegrades(t *testing.T) {
	// a 1-byte threshold always trips
	monitor := NewMonitor(nil, nil, config.HealthConfig{HeapWarnBytes: 1}, nil)

	snapshot := &Snapshot{
		Database: DatabaseStats{Reachable: true},
		Redis:    RedisStats{Reachable: true},
		Runtime:  readRuntimeStats(),
		System:   readSystemStats(),
	}

	assert.Equal(t, StatusDegraded, monitor.evaluate(snapshot))
}

func TestMonitor_HealthyEvaluation(t *testing.T) {
	monitor := NewMonitor(nil, nil, config.HealthConfig{
		DBConnWarnThreshold: 100,
		RedisLatencyWarn:    time.Second,
	}, nil)

	snapshot := &Snapshot{
		Database: DatabaseStats{Reachable: true, ActiveConnections: 5},
		Redis:    RedisStats{Reachable: true, PingLatency: time.Millisecond},
	}

	assert.Equal(t, StatusHealthy, monitor.evaluate(snapshot))
}
