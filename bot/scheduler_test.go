package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	s := NewScheduler(discardLogger())

	var fast, failing atomic.Int32
	s.Every("fast", 10*time.Millisecond, func(context.Context) error {
		fast.Add(1)
		return nil
	})
	s.Every("failing", 10*time.Millisecond, func(context.Context) error {
		failing.Add(1)
		return errors.New("boom")
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return fast.Load() >= 3 && failing.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := fast.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, fast.Load(), "no ticks after Stop")
}

func TestScheduler_RecoversFromPanics(t *testing.T) {
	s := NewScheduler(discardLogger())

	var calls atomic.Int32
	s.Every("panicky", 10*time.Millisecond, func(context.Context) error {
		if calls.Add(1) == 1 {
			panic("first tick explodes")
		}
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := NewScheduler(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	s.Add(Job{Name: "startup", Interval: time.Hour, RunAtStart: true, Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	s.Start(ctx)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
	assert.Equal(t, []string{"startup"}, s.Jobs())
}
