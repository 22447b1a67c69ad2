package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// fixedSchedule fires every interval, used to drive fast scheduler tests.
type fixedSchedule struct {
	interval time.Duration
}

func (s fixedSchedule) Next(t time.Time) time.Time {
	return t.Add(s.interval)
}

type countingRunner struct {
	runs       int64
	inFlight   int64
	maxFlight  int64
	runLatency time.Duration
	started    chan struct{}
	release    chan struct{}
}

func (r *countingRunner) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	cur := atomic.AddInt64(&r.inFlight, 1)
	defer atomic.AddInt64(&r.inFlight, -1)
	for {
		prev := atomic.LoadInt64(&r.maxFlight)
		if cur <= prev || atomic.CompareAndSwapInt64(&r.maxFlight, prev, cur) {
			break
		}
	}

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	if r.runLatency > 0 {
		time.Sleep(r.runLatency)
	}

	atomic.AddInt64(&r.runs, 1)
	return domain.RunSummary{TotalRecipients: 1, SuccessCount: 1}, nil
}

func TestNewSchedulerRejectsInvalidCadence(t *testing.T) {
	_, err := NewScheduler(&countingRunner{}, "not a cron expression")
	require.Error(t, err)

	_, err = NewScheduler(&countingRunner{}, "* * * * *")
	require.NoError(t, err)
}

func TestSchedulerRunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{started: make(chan struct{}, 1)}
	s, err := NewScheduler(runner, "* * * * *")
	require.NoError(t, err)
	// Push the first cron tick far away so only the startup run fires.
	s.schedule = fixedSchedule{interval: time.Hour}

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate run at startup")
	}
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	runner := &countingRunner{runLatency: 120 * time.Millisecond}
	s, err := NewScheduler(runner, "* * * * *")
	require.NoError(t, err)
	s.schedule = fixedSchedule{interval: 10 * time.Millisecond}

	require.NoError(t, s.Start())
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.EqualValues(t, 1, atomic.LoadInt64(&runner.maxFlight), "runs must never overlap")
	assert.Greater(t, s.Stats().RunsSkipped, int64(0), "overlapping ticks must be skipped")
	assert.LessOrEqual(t, atomic.LoadInt64(&runner.runs), int64(3))
}

func TestSchedulerStopDrainsInFlightRun(t *testing.T) {
	runner := &countingRunner{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s, err := NewScheduler(runner, "* * * * *")
	require.NoError(t, err)
	s.schedule = fixedSchedule{interval: time.Hour}

	require.NoError(t, s.Start())
	<-runner.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a run was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the run drained")
	}

	assert.EqualValues(t, 1, atomic.LoadInt64(&runner.runs))
	assert.EqualValues(t, 1, s.Stats().RunsCompleted)
}

func TestSchedulerStartTwiceFails(t *testing.T) {
	s, err := NewScheduler(&countingRunner{}, "* * * * *")
	require.NoError(t, err)
	s.schedule = fixedSchedule{interval: time.Hour}

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
}

type fakeLock struct {
	acquired bool
	held     bool
	releases int
}

func (f *fakeLock) TryAcquire(ctx context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

func TestSchedulerRunLockHeldElsewhereSkipsRun(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewScheduler(runner, "* * * * *")
	require.NoError(t, err)
	s.schedule = fixedSchedule{interval: time.Hour}
	s.SetRunLock(&fakeLock{held: true})

	require.NoError(t, s.Start())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.EqualValues(t, 0, atomic.LoadInt64(&runner.runs))
	assert.Greater(t, s.Stats().RunsSkipped, int64(0))
}

func TestSchedulerRunLockAcquiredAndReleased(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewScheduler(runner, "* * * * *")
	require.NoError(t, err)
	s.schedule = fixedSchedule{interval: time.Hour}

	lock := &fakeLock{}
	s.SetRunLock(lock)

	require.NoError(t, s.Start())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.True(t, lock.acquired)
	assert.Equal(t, 1, lock.releases)
	assert.EqualValues(t, 1, atomic.LoadInt64(&runner.runs))
}
