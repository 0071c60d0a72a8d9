package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"beam/pkg/domain"
)

// TrialStore is the slice of the store the sweeper needs.
type TrialStore interface {
	ExpireTrials(ctx context.Context, now time.Time) ([]domain.CompanyID, error)
}

// Sweeper periodically moves lapsed trials to past-due.
type Sweeper struct {
	store  TrialStore
	cron   *cron.Cron
	logger *slog.Logger
}

// NewSweeper schedules the sweep. Spec is a cron expression; the default
// "@hourly" is fine since trial periods are measured in days.
func NewSweeper(store TrialStore, spec string, logger *slog.Logger) (*Sweeper, error) {
	if spec == "" {
		spec = "@hourly"
	}
	s := &Sweeper{store: store, cron: cron.New(), logger: logger}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the schedule in its own goroutine.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one pass immediately. Exposed for tests and manual runs.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	expired, err := s.store.ExpireTrials(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "trial sweep failed", "error", err)
		return
	}
	for _, companyID := range expired {
		s.logger.InfoContext(ctx, "trial expired", "company_id", companyID)
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Sweep(ctx, time.Now())
}
