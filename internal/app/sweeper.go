package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository"
)

// Sweeper runs the lesson lifecycle housekeeping the booking engine itself
// stays out of: confirmed lessons whose window has elapsed are marked
// completed so they stop counting as busy time.
type Sweeper struct {
	lessons  *repository.LessonRepository
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSweeper creates a sweeper ticking at the given interval.
func NewSweeper(lessons *repository.LessonRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		lessons:  lessons,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting lesson sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop terminates the loop.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping lesson sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Lesson sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Lesson sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.lessons.CompletePast(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to complete past lessons", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Lessons completed", zap.Int64("count", n))
	}
}
