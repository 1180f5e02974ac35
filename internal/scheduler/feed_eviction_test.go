package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	mu      sync.Mutex
	calls   []time.Time
	evicted int
	left    int
}

func (f *fakeRegistry) EvictIdle(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.evicted
}

func (f *fakeRegistry) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.left
}

func TestFeedEvictionScheduler_Disabled(t *testing.T) {
	s := NewFeedEvictionScheduler(&fakeRegistry{}, "")

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestFeedEvictionScheduler_InvalidSchedule(t *testing.T) {
	s := NewFeedEvictionScheduler(&fakeRegistry{}, "not a schedule")

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestFeedEvictionScheduler_StartStop(t *testing.T) {
	s := NewFeedEvictionScheduler(&fakeRegistry{}, "*/5 * * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	// Starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestFeedEvictionScheduler_StopsWithContext(t *testing.T) {
	s := NewFeedEvictionScheduler(&fakeRegistry{}, "*/5 * * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestFeedEvictionScheduler_RunNow(t *testing.T) {
	registry := &fakeRegistry{evicted: 3, left: 1}
	s := NewFeedEvictionScheduler(registry, "*/5 * * * *")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, 3, s.RunNow())
	require.Len(t, registry.calls, 1)
	assert.Equal(t, fixed, registry.calls[0])
}

func TestCronHelpers(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/5 * * * *"))
	assert.Error(t, ValidateCronSchedule("*/5 * * *"))

	assert.Equal(t, "Every 5 minutes", GetCronDescription("*/5 * * * *"))
	assert.Equal(t, "Custom schedule: 1 2 3 4 5", GetCronDescription("1 2 3 4 5"))

	from := time.Date(2026, 1, 1, 10, 2, 0, 0, time.UTC)
	next, err := NextRunTime("*/5 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 10, 5, 0, 0, time.UTC), next)
}
