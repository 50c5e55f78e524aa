// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SitemapRegenerator rebuilds the sitemap document
type SitemapRegenerator interface {
	Regenerate(ctx context.Context) (string, error)
}

// SitemapSchedulerConfig holds configuration for the sitemap scheduler
type SitemapSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval between sitemap regenerations
	Interval time.Duration

	// RegenerateTimeout is the maximum time for a regeneration run
	RegenerateTimeout time.Duration
}

// DefaultSitemapSchedulerConfig returns default configuration
func DefaultSitemapSchedulerConfig() SitemapSchedulerConfig {
	return SitemapSchedulerConfig{
		Enabled:           true,
		Interval:          6 * time.Hour,
		RegenerateTimeout: 2 * time.Minute,
	}
}

// SitemapScheduler regenerates the sitemap on a fixed interval so the
// cached document tracks catalog changes
type SitemapScheduler struct {
	service   SitemapRegenerator
	logger    *zap.Logger
	config    SitemapSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSitemapScheduler creates a new sitemap scheduler
func NewSitemapScheduler(service SitemapRegenerator, logger *zap.Logger, config SitemapSchedulerConfig) *SitemapScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSitemapSchedulerConfig().Interval
	}
	if config.RegenerateTimeout <= 0 {
		config.RegenerateTimeout = DefaultSitemapSchedulerConfig().RegenerateTimeout
	}
	return &SitemapScheduler{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start starts the regeneration loop. The first run happens immediately.
func (s *SitemapScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Sitemap scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Sitemap scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SitemapScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sitemap scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sitemap scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerImmediate forces a regeneration outside the schedule
func (s *SitemapScheduler) TriggerImmediate(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.regenerate(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *SitemapScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *SitemapScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.regenerate(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sitemap regeneration loop stopping")
			return
		case <-ticker.C:
			s.regenerate(ctx)
		}
	}
}

func (s *SitemapScheduler) regenerate(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RegenerateTimeout)
	defer cancel()

	if _, err := s.service.Regenerate(runCtx); err != nil {
		s.logger.Error("Sitemap regeneration failed", zap.Error(err))
	}
}
