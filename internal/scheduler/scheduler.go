package scheduler

import (
	"context"
	"time"

	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// SweepFunc is one maintenance pass; it reports how many rows it touched.
type SweepFunc func(ctx context.Context) (int64, error)

// Scheduler runs the exam status sweep on a fixed interval until stopped.
type Scheduler struct {
	interval time.Duration
	sweep    SweepFunc
	stop     chan struct{}
	done     chan struct{}
}

// New creates a scheduler for the given sweep function
func New(interval time.Duration, sweep SweepFunc) *Scheduler {
	return &Scheduler{
		interval: interval,
		sweep:    sweep,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. One pass runs immediately so a
// restart does not leave expired exams active for a full interval.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()

	logger.Info().Dur("interval", s.interval).Msg("Status sweep scheduler started")
}

// Stop signals the goroutine and waits for it to exit
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	logger.Info().Msg("Status sweep scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.sweep(ctx); err != nil {
		logger.Error().Err(err).Msg("Scheduled status sweep failed")
	}
}
