package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobService removes bookings older than the retention window on a cron schedule.
type JobService struct {
	bookings      *BookingService
	retentionDays int
	log           *zap.Logger
	now           func() time.Time

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewJobService(bookings *BookingService, retentionDays int, log *zap.Logger) *JobService {
	return &JobService{bookings: bookings, retentionDays: retentionDays, log: log, now: time.Now}
}

// PurgePastBookings deletes every booking dated before the given day.
func (s *JobService) PurgePastBookings(ctx context.Context, before time.Time) (int, error) {
	s.log.Info("job.retention: purging bookings", zap.String("before", before.Format("2006-01-02")))
	removed, err := s.bookings.PurgeBefore(ctx, before)
	if err != nil {
		return removed, fmt.Errorf("job.retention: purge failed: %w", err)
	}
	s.log.Info("job.retention: purge finished", zap.Int("removed", removed))
	return removed, nil
}

// Start schedules the purge. An invalid spec falls back to @daily. Start is a
// no-op when retention is disabled.
func (s *JobService) Start(ctx context.Context, spec string) {
	if s.retentionDays <= 0 {
		s.log.Info("job.retention: disabled")
		return
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		s.log.Warn("job.retention: invalid cron spec; falling back to @daily", zap.String("spec", spec), zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc("@daily", s.runOnce)
	}
	c.Start()
	s.cron = c
}

// Stop waits for a running purge to finish.
func (s *JobService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *JobService) runOnce() {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	if _, err := s.PurgePastBookings(s.runCtx, cutoff); err != nil {
		s.log.Error("job.retention: run failed", zap.Error(err))
	}
}
