package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltmesh/gridadmin/internal/clock"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := New(Params{
		Log:     zap.NewNop(),
		Metrics: metrics.Default(),
		Clock:   clock.NewSystem(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.StopAll(ctx)
	})
	return s
}

func TestAddJobValidation(t *testing.T) {
	s := newTestScheduler(t)

	err := s.AddJob("", "@every 1m", func(ctx context.Context) error { return nil }, Options{})
	assert.ErrorIs(t, err, ErrInvalidName)

	err = s.AddJob("bad-spec", "not a cron spec", func(ctx context.Context) error { return nil }, Options{})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	err = s.AddJob("no-task", "@every 1m", nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	err = s.AddJob("tz", "0 2 * * *", func(ctx context.Context) error { return nil }, Options{
		Timezone: "Asia/Kolkata",
	})
	assert.NoError(t, err)

	err = s.AddJob("bad-tz", "0 2 * * *", func(ctx context.Context) error { return nil }, Options{
		Timezone: "Mars/Olympus",
	})
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestAddJobReplacesExistingName(t *testing.T) {
	s := newTestScheduler(t)

	var oldRuns, newRuns atomic.Int64
	require.NoError(t, s.AddJob("sweep", "@every 20ms", func(ctx context.Context) error {
		oldRuns.Add(1)
		return nil
	}, Options{}))

	require.NoError(t, s.AddJob("sweep", "@every 20ms", func(ctx context.Context) error {
		newRuns.Add(1)
		return nil
	}, Options{}))

	s.StartAll()
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int64(0), oldRuns.Load())
	assert.Greater(t, newRuns.Load(), int64(0))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "sweep", jobs[0].Name)
}

func TestAddJobAfterStartRunsImmediately(t *testing.T) {
	s := newTestScheduler(t)
	s.StartAll()

	var runs atomic.Int64
	require.NoError(t, s.AddJob("late", "@every 20ms", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, Options{}))

	time.Sleep(150 * time.Millisecond)
	assert.Greater(t, runs.Load(), int64(0))
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob("sweep", "@every 1m", func(ctx context.Context) error { return nil }, Options{}))
	assert.True(t, s.HasJob("sweep"))

	s.RemoveJob("sweep")
	assert.False(t, s.HasJob("sweep"))

	// Removing what is not there is a no-op.
	s.RemoveJob("never-registered")
}

func TestFailingJobStaysRegistered(t *testing.T) {
	s := newTestScheduler(t)

	var failures atomic.Int64
	var onError atomic.Int64
	require.NoError(t, s.AddJob("flaky", "@every 20ms", func(ctx context.Context) error {
		failures.Add(1)
		return errors.New("db unreachable")
	}, Options{
		OnError: func(err error, name string) {
			assert.Equal(t, "flaky", name)
			onError.Add(1)
		},
	}))

	s.StartAll()
	time.Sleep(150 * time.Millisecond)

	// The job kept its schedule after failing.
	assert.Greater(t, failures.Load(), int64(1))
	assert.Greater(t, onError.Load(), int64(1))
	assert.True(t, s.HasJob("flaky"))
}

func TestPanickingJobDoesNotDisturbOthers(t *testing.T) {
	s := newTestScheduler(t)

	var panics, healthy atomic.Int64
	var lastErr atomic.Value
	require.NoError(t, s.AddJob("exploding", "@every 20ms", func(ctx context.Context) error {
		panics.Add(1)
		panic("nil map write")
	}, Options{
		OnError: func(err error, name string) { lastErr.Store(err) },
	}))
	require.NoError(t, s.AddJob("steady", "@every 20ms", func(ctx context.Context) error {
		healthy.Add(1)
		return nil
	}, Options{}))

	s.StartAll()
	time.Sleep(150 * time.Millisecond)

	assert.Greater(t, panics.Load(), int64(1))
	assert.Greater(t, healthy.Load(), int64(1))

	err, ok := lastErr.Load().(error)
	require.True(t, ok)
	assert.Contains(t, err.Error(), "job panicked")
}

func TestDisabledJobNeverStarts(t *testing.T) {
	s := New(Params{
		Log:     zap.NewNop(),
		Metrics: metrics.Default(),
		Clock:   clock.NewSystem(),
		Config:  Config{DisabledJobs: []string{"sweep"}},
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.StopAll(ctx)
	})

	var runs atomic.Int64
	require.NoError(t, s.AddJob("sweep", "@every 20ms", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, Options{}))

	s.StartAll()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int64(0), runs.Load())
	assert.True(t, s.HasJob("sweep"))

	// Re-registering on a running scheduler must honor the disabled list too.
	require.NoError(t, s.AddJob("sweep", "@every 20ms", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, Options{}))
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int64(0), runs.Load())
	assert.True(t, s.HasJob("sweep"))
}

func TestStopAllWaitsForInFlightRun(t *testing.T) {
	s := newTestScheduler(t)

	release := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, s.AddJob("slow", "@every 20ms", func(ctx context.Context) error {
		<-release
		finished.Store(true)
		return nil
	}, Options{}))

	s.StartAll()
	time.Sleep(60 * time.Millisecond)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.StopAll(ctx)

	assert.True(t, finished.Load())
}
