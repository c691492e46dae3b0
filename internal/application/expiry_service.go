package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/deskbooker/internal/booking"
)

// ExpiryLedger exposes the bulk completion write used by the sweeper.
type ExpiryLedger interface {
	CompleteExpired(ctx context.Context, before time.Time) (int, error)
}

// SweepSchedule controls when the background sweeper wakes up. Either a fixed
// interval or a daily wall-clock time may be set; when both are set the daily
// time wins.
type SweepSchedule struct {
	Interval     time.Duration
	DailyAt      time.Duration // offset from UTC midnight, e.g. 2h30m for 02:30
	DailyAtSet   bool
	InitialDelay time.Duration
}

// ExpiryService flips active reservations whose date has passed to completed.
// Reads treat such rows as completed already, so the sweep only reconciles the
// stored status and can run at any cadence without affecting correctness.
type ExpiryService struct {
	ledger   ExpiryLedger
	now      func() time.Time
	schedule SweepSchedule
	logger   *slog.Logger
}

// NewExpiryService wires dependencies for the expiry sweeper.
func NewExpiryService(ledger ExpiryLedger, now func() time.Time, schedule SweepSchedule, logger *slog.Logger) *ExpiryService {
	if now == nil {
		now = time.Now
	}
	if schedule.Interval <= 0 {
		schedule.Interval = time.Hour
	}
	return &ExpiryService{
		ledger:   ledger,
		now:      now,
		schedule: schedule,
		logger:   defaultLogger(logger),
	}
}

// SweepExpired completes every active reservation dated strictly before today
// and returns how many rows were updated. It is safe to call concurrently and
// repeatedly; a sweep that finds nothing to do is not an error.
func (s *ExpiryService) SweepExpired(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("ExpiryService is nil")
	}
	if s.ledger == nil {
		return 0, fmt.Errorf("expiry ledger not configured")
	}

	logger := serviceLogger(ctx, s.logger, "expiry", "sweep")

	today := booking.DateOf(s.now())
	count, err := s.ledger.CompleteExpired(ctx, today)
	if err != nil {
		logger.Error("expiry sweep failed", "error", err)
		return 0, err
	}
	if count > 0 {
		logger.Info("expired reservations completed", "count", count)
	}
	return count, nil
}

// Run executes the sweep on the configured schedule until the context is
// cancelled. Individual sweep failures are logged and the loop continues; the
// next wake-up retries.
func (s *ExpiryService) Run(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("ExpiryService is nil")
	}

	if s.schedule.InitialDelay > 0 {
		select {
		case <-time.After(s.schedule.InitialDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		if _, err := s.SweepExpired(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-time.After(s.untilNextSweep()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// untilNextSweep returns the wait before the next sweep. With a daily
// wall-clock schedule the wait targets the next occurrence of that UTC time;
// otherwise the fixed interval applies.
func (s *ExpiryService) untilNextSweep() time.Duration {
	if !s.schedule.DailyAtSet {
		return s.schedule.Interval
	}

	now := s.now().UTC()
	next := booking.DateOf(now).Add(s.schedule.DailyAt)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
