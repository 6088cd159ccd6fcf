package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsImmediatelyAndOnInterval(t *testing.T) {
	var passes int64
	s := New(20*time.Millisecond, func(ctx context.Context) (int64, error) {
		atomic.AddInt64(&passes, 1)
		return 0, nil
	})

	s.Start()
	time.Sleep(70 * time.Millisecond)
	s.Stop()

	// One immediate pass plus at least two ticks
	assert.GreaterOrEqual(t, atomic.LoadInt64(&passes), int64(3))
}

func TestSchedulerStopPreventsFurtherPasses(t *testing.T) {
	var passes int64
	s := New(10*time.Millisecond, func(ctx context.Context) (int64, error) {
		atomic.AddInt64(&passes, 1)
		return 0, nil
	})

	s.Start()
	s.Stop()

	settled := atomic.LoadInt64(&passes)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt64(&passes))
}

func TestSchedulerKeepsTickingAfterSweepError(t *testing.T) {
	var passes int64
	s := New(15*time.Millisecond, func(ctx context.Context) (int64, error) {
		atomic.AddInt64(&passes, 1)
		return 0, context.DeadlineExceeded
	})

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&passes), int64(2))
}
