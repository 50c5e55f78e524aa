package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRegenerator struct {
	calls atomic.Int32
}

func (c *countingRegenerator) Regenerate(ctx context.Context) (string, error) {
	c.calls.Add(1)
	return "<urlset/>", nil
}

func TestSitemapScheduler_RunsImmediatelyOnStart(t *testing.T) {
	regen := &countingRegenerator{}
	s := NewSitemapScheduler(regen, zap.NewNop(), SitemapSchedulerConfig{
		Enabled:  true,
		Interval: time.Hour,
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return regen.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, s.IsRunning())
}

func TestSitemapScheduler_DisabledDoesNotRun(t *testing.T) {
	regen := &countingRegenerator{}
	s := NewSitemapScheduler(regen, zap.NewNop(), SitemapSchedulerConfig{Enabled: false})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Equal(t, int32(0), regen.calls.Load())
}

func TestSitemapScheduler_TriggerImmediate(t *testing.T) {
	regen := &countingRegenerator{}
	s := NewSitemapScheduler(regen, zap.NewNop(), SitemapSchedulerConfig{
		Enabled:  true,
		Interval: time.Hour,
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.NoError(t, s.TriggerImmediate(context.Background()))
	require.Eventually(t, func() bool {
		return regen.calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestSitemapScheduler_TriggerWhenStopped(t *testing.T) {
	s := NewSitemapScheduler(&countingRegenerator{}, zap.NewNop(), DefaultSitemapSchedulerConfig())

	err := s.TriggerImmediate(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestSitemapScheduler_StopIsIdempotent(t *testing.T) {
	regen := &countingRegenerator{}
	s := NewSitemapScheduler(regen, zap.NewNop(), SitemapSchedulerConfig{
		Enabled:  true,
		Interval: time.Hour,
	})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}
