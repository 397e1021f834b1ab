package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

// Warmer periodically rebuilds the conditions snapshot so the first client
// poll after cache expiry does not pay the upstream fan-out latency. When
// the cached snapshot is still fresh the job is a no-op.
type Warmer struct {
	scheduler *gocron.Scheduler
	service   *dashboard.Service
	interval  time.Duration
}

// New creates a Warmer. An interval <= 0 disables it.
func New(service *dashboard.Service, interval time.Duration) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
	}
}

// Start schedules the warm job and starts the underlying scheduler.
func (w *Warmer) Start() error {
	if w.interval <= 0 {
		log.Println("warmer: disabled; snapshots build on demand")
		return nil
	}

	seconds := int(w.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := w.scheduler.Every(seconds).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := w.service.GetState(ctx); err != nil {
			log.Printf("warmer: snapshot rebuild failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
