package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/ignite/newsletter-dispatch/internal/pkg/distlock"
)

// Runner executes one dispatch run. Satisfied by *Dispatcher.
type Runner interface {
	RunOnce(ctx context.Context) (domain.RunSummary, error)
}

// SchedulerStats is a snapshot of the scheduler's atomic counters.
type SchedulerStats struct {
	RunsCompleted     int64
	RunsSkipped       int64
	EmailsSent        int64
	EmailsFailed      int64
	RecordingFailures int64
}

// Scheduler triggers dispatch runs on a cron cadence. Exactly one run
// is active at a time: a tick that fires while a run is still in flight
// is skipped, never queued. Stop lets an in-flight run drain.
type Scheduler struct {
	runner   Runner
	schedule cron.Schedule
	runLock  distlock.Lock // optional; nil means in-process only

	// Stats
	runActive         int32
	runsCompleted     int64
	runsSkipped       int64
	emailsSent        int64
	emailsFailed      int64
	recordingFailures int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewScheduler parses the cadence expression and builds a scheduler.
// An invalid expression is a construction error; callers treat it as
// fatal at startup.
func NewScheduler(runner Runner, cadence string) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cadence)
	if err != nil {
		return nil, fmt.Errorf("parse cadence %q: %w", cadence, err)
	}

	return &Scheduler{
		runner:   runner,
		schedule: schedule,
	}, nil
}

// SetRunLock sets an optional distributed lock held around each run so
// two processes never dispatch a batch concurrently. In-process
// non-overlap never depends on it.
func (s *Scheduler) SetRunLock(l distlock.Lock) {
	s.runLock = l
}

// Start launches the tick loop. The first run fires immediately, then
// runs follow the cadence.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting, next tick at %v", s.schedule.Next(time.Now()).Format(time.RFC3339))

	s.wg.Add(1)
	go s.tickLoop()

	return nil
}

// Stop halts future ticks and waits for an in-flight run to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Printf("[Scheduler] Stopping...")
	s.cancel()
	s.wg.Wait()

	stats := s.Stats()
	log.Printf("[Scheduler] Stopped. Runs: %d (skipped %d), Sent: %d, Failed: %d",
		stats.RunsCompleted, stats.RunsSkipped, stats.EmailsSent, stats.EmailsFailed)
}

// Stats returns a snapshot of the run counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		RunsCompleted:     atomic.LoadInt64(&s.runsCompleted),
		RunsSkipped:       atomic.LoadInt64(&s.runsSkipped),
		EmailsSent:        atomic.LoadInt64(&s.emailsSent),
		EmailsFailed:      atomic.LoadInt64(&s.emailsFailed),
		RecordingFailures: atomic.LoadInt64(&s.recordingFailures),
	}
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	// Immediate first run at startup.
	s.wg.Add(1)
	go s.triggerRun()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.wg.Add(1)
			go s.triggerRun()
		}
	}
}

// triggerRun guards a single run with the overlap flag and the optional
// distributed lock. The run itself gets a background context so a
// shutdown stops ticks without preempting the recipient loop.
func (s *Scheduler) triggerRun() {
	defer s.wg.Done()

	if !atomic.CompareAndSwapInt32(&s.runActive, 0, 1) {
		atomic.AddInt64(&s.runsSkipped, 1)
		log.Printf("[Scheduler] Previous run still in flight, skipping tick")
		return
	}
	defer atomic.StoreInt32(&s.runActive, 0)

	ctx := context.Background()

	if s.runLock != nil {
		ok, err := s.runLock.TryAcquire(ctx)
		if err != nil {
			log.Printf("[Scheduler] Run lock error: %v", err)
			return
		}
		if !ok {
			atomic.AddInt64(&s.runsSkipped, 1)
			log.Printf("[Scheduler] Run lock held elsewhere, skipping tick")
			return
		}
		defer func() {
			if err := s.runLock.Release(ctx); err != nil {
				log.Printf("[Scheduler] Run lock release error: %v", err)
			}
		}()
	}

	summary, err := s.runner.RunOnce(ctx)
	if err != nil {
		log.Printf("[Scheduler] Run failed: %v", err)
		return
	}

	atomic.AddInt64(&s.runsCompleted, 1)
	atomic.AddInt64(&s.emailsSent, int64(summary.SuccessCount))
	atomic.AddInt64(&s.emailsFailed, int64(summary.FailureCount))
	atomic.AddInt64(&s.recordingFailures, int64(summary.RecordingFailures))
}
