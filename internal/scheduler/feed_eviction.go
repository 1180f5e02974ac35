// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Evicter drops devices that have been idle for too long.
type Evicter interface {
	EvictIdle(now time.Time) int
	Len() int
}

// FeedEvictionScheduler periodically evicts idle devices from the feed
// registry, closing their feeds and change subscriptions.
type FeedEvictionScheduler struct {
	registry Evicter
	schedule string
	now      func() time.Time

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewFeedEvictionScheduler creates a new scheduler instance. An empty
// schedule disables it.
func NewFeedEvictionScheduler(registry Evicter, schedule string) *FeedEvictionScheduler {
	return &FeedEvictionScheduler{
		registry: registry,
		schedule: schedule,
		now:      time.Now,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler unless it is disabled.
func (s *FeedEvictionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("Feed eviction scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule eviction job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, s.now())
	log.Printf("Feed eviction scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, GetCronDescription(s.schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *FeedEvictionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Feed eviction scheduler: stopped")
}

// RunNow evicts idle devices immediately and returns how many were removed.
func (s *FeedEvictionScheduler) RunNow() int {
	evicted := s.registry.EvictIdle(s.now())
	if evicted > 0 {
		log.Printf("Feed eviction: removed %d idle devices, %d remaining", evicted, s.registry.Len())
	}
	return evicted
}

// IsRunning returns whether the scheduler is active
func (s *FeedEvictionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next eviction will occur
func (s *FeedEvictionScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
