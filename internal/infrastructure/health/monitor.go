package health

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

// Status is the aggregate health of the service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DatabaseStats reports connection pressure on Postgres
type DatabaseStats struct {
	Reachable         bool          `json:"reachable"`
	PingLatency       time.Duration `json:"ping_latency_ns"`
	ActiveConnections int           `json:"active_connections"`
	MaxConnections    int           `json:"max_connections"`
}

// RedisStats reports cache reachability and pool state
type RedisStats struct {
	Reachable   bool          `json:"reachable"`
	PingLatency time.Duration `json:"ping_latency_ns"`
	TotalConns  uint32        `json:"total_conns"`
	IdleConns   uint32        `json:"idle_conns"`
}

// RuntimeStats reports Go process memory and scheduling state
type RuntimeStats struct {
	Goroutines     int    `json:"goroutines"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64 `json:"heap_sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

// SystemStats reports host load and memory
type SystemStats struct {
	Load1             float64 `json:"load1"`
	Load5             float64 `json:"load5"`
	Load15            float64 `json:"load15"`
	CPUCount          int     `json:"cpu_count"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

// Snapshot is one full health reading
type Snapshot struct {
	Status    Status        `json:"status"`
	CheckedAt time.Time     `json:"checked_at"`
	Database  DatabaseStats `json:"database"`
	Redis     RedisStats    `json:"redis"`
	Runtime   RuntimeStats  `json:"runtime"`
	System    SystemStats   `json:"system"`
}

// Monitor periodically probes the database, Redis and the host, and keeps
// the latest snapshot for the health endpoint. Threshold breaches are
// logged as warnings rather than failing the check.
type Monitor struct {
	db     *gorm.DB
	redis  *redis.Client
	cfg    config.HealthConfig
	logger *zap.Logger

	mu   sync.RWMutex
	last *Snapshot

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor creates a health monitor
func NewMonitor(db *gorm.DB, redisClient *redis.Client, cfg config.HealthConfig, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		db:     db,
		redis:  redisClient,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start runs periodic checks until Stop is called
func (m *Monitor) Start(ctx context.Context) {
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		defer close(m.doneCh)

		// take an initial reading so the endpoint never serves empty data
		m.Check(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Check(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts periodic checks
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	<-m.doneCh
}

// Last returns the most recent snapshot, or nil before the first check
func (m *Monitor) Last() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Check takes a full health reading
func (m *Monitor) Check(ctx context.Context) *Snapshot {
	snapshot := &Snapshot{
		CheckedAt: time.Now(),
		Database:  m.checkDatabase(ctx),
		Redis:     m.checkRedis(ctx),
		Runtime:   readRuntimeStats(),
		System:    readSystemStats(),
	}
	snapshot.Status = m.evaluate(snapshot)

	m.mu.Lock()
	m.last = snapshot
	m.mu.Unlock()

	return snapshot
}

func (m *Monitor) checkDatabase(ctx context.Context) DatabaseStats {
	stats := DatabaseStats{}
	if m.db == nil {
		return stats
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		m.logger.Error("Health check could not access database handle", zap.Error(err))
		return stats
	}

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		m.logger.Warn("Database health ping failed", zap.Error(err))
		return stats
	}
	stats.Reachable = true
	stats.PingLatency = time.Since(start)

	// connection pressure; these queries only exist on Postgres so a
	// failure here is not treated as unhealthy
	var active int
	err = m.db.WithContext(ctx).
		Raw("SELECT count(*) FROM pg_stat_activity WHERE datname = current_database()").
		Scan(&active).Error
	if err == nil {
		stats.ActiveConnections = active
	}

	var maxConns int
	err = m.db.WithContext(ctx).
		Raw("SELECT setting::int FROM pg_settings WHERE name = 'max_connections'").
		Scan(&maxConns).Error
	if err == nil {
		stats.MaxConnections = maxConns
	}

	return stats
}

func (m *Monitor) checkRedis(ctx context.Context) RedisStats {
	stats := RedisStats{}
	if m.redis == nil {
		return stats
	}

	start := time.Now()
	if err := m.redis.Ping(ctx).Err(); err != nil {
		m.logger.Warn("Redis health ping failed", zap.Error(err))
		return stats
	}
	stats.Reachable = true
	stats.PingLatency = time.Since(start)

	pool := m.redis.PoolStats()
	stats.TotalConns = pool.TotalConns
	stats.IdleConns = pool.IdleConns

	return stats
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: memStats.HeapAlloc,
		HeapSysBytes:   memStats.HeapSys,
		NumGC:          memStats.NumGC,
	}
}

func readSystemStats() SystemStats {
	stats := SystemStats{CPUCount: runtime.NumCPU()}

	if avg, err := load.Avg(); err == nil {
		stats.Load1 = avg.Load1
		stats.Load5 = avg.Load5
		stats.Load15 = avg.Load15
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPercent = vm.UsedPercent
	}

	return stats
}

// evaluate derives the aggregate status and logs threshold breaches
func (m *Monitor) evaluate(s *Snapshot) Status {
	if !s.Database.Reachable {
		return StatusUnhealthy
	}

	status := StatusHealthy
	if !s.Redis.Reachable {
		status = StatusDegraded
	}

	if m.cfg.DBConnWarnThreshold > 0 && s.Database.ActiveConnections >= m.cfg.DBConnWarnThreshold {
		m.logger.Warn("Database connection count above threshold",
			zap.Int("active", s.Database.ActiveConnections),
			zap.Int("threshold", m.cfg.DBConnWarnThreshold))
		status = StatusDegraded
	}

	if m.cfg.RedisLatencyWarn > 0 && s.Redis.Reachable && s.Redis.PingLatency >= m.cfg.RedisLatencyWarn {
		m.logger.Warn("Redis ping latency above threshold",
			zap.Duration("latency", s.Redis.PingLatency),
			zap.Duration("threshold", m.cfg.RedisLatencyWarn))
		status = StatusDegraded
	}

	if m.cfg.HeapWarnBytes > 0 && s.Runtime.HeapAllocBytes >= m.cfg.HeapWarnBytes {
		m.logger.Warn("Heap allocation above threshold",
			zap.Uint64("heap_alloc", s.Runtime.HeapAllocBytes),
			zap.Uint64("threshold", m.cfg.HeapWarnBytes))
		status = StatusDegraded
	}

	if m.cfg.LoadWarnPerCPU > 0 && s.System.CPUCount > 0 {
		perCPU := s.System.Load1 / float64(s.System.CPUCount)
		if perCPU >= m.cfg.LoadWarnPerCPU {
			m.logger.Warn("System load above threshold",
				zap.Float64("load1_per_cpu", perCPU),
				zap.Float64("threshold", m.cfg.LoadWarnPerCPU))
			status = StatusDegraded
		}
	}

	return status
}
