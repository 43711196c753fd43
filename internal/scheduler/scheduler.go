package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/watch"
)

// Scheduler owns the three independent timers: the short-interval
// forecast poll, the once-daily morning summary, and the periodic cache
// sweep. The timers may fire concurrently; per-location serialization
// inside the engine keeps overlapping ticks from double-emitting.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *watch.Service
	cache     *forecast.GeoCache

	pollInterval  time.Duration
	summaryHour   int
	sweepInterval time.Duration
}

// New creates a Scheduler; jobs are registered on Start.
func New(service *watch.Service, cache *forecast.GeoCache, pollInterval time.Duration, summaryHour int, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		service:       service,
		cache:         cache,
		pollInterval:  pollInterval,
		summaryHour:   summaryHour,
		sweepInterval: sweepInterval,
	}
}

// Start registers the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.pollInterval).Do(func() {
		log.Println("scheduler: running forecast poll tick")
		if err := s.service.RunTick(context.Background()); err != nil {
			log.Printf("scheduler: poll tick failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule poll tick: %w", err)
	}

	at := fmt.Sprintf("%02d:00", s.summaryHour)
	_, err = s.scheduler.Every(1).Day().At(at).Do(func() {
		log.Println("scheduler: running morning summary")
		if err := s.service.RunMorningSummary(context.Background()); err != nil {
			log.Printf("scheduler: morning summary failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule morning summary: %w", err)
	}

	_, err = s.scheduler.Every(s.sweepInterval).Do(func() {
		if removed := s.cache.Sweep(); removed > 0 {
			log.Printf("scheduler: cache sweep removed %d entries", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
