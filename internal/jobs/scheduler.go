package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work. The context carries the per-run timeout.
type Job func(ctx context.Context) error

// Scheduler runs registered jobs on cron schedules. Overlapping runs of the
// same job are skipped and panics are recovered.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
	}
}

// Register schedules job under name. spec accepts standard five-field cron
// expressions and descriptors such as "@every 5m".
func (s *Scheduler) Register(name, spec string, timeout time.Duration, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Printf("[Jobs] %s failed after %v: %v", name, time.Since(start), err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	log.Printf("[Jobs] Registered %s (%s)", name, spec)
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Println("[Jobs] Timed out waiting for running jobs")
	}
}
