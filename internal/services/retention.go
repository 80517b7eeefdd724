package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RunPruner deletes stored runs older than a cutoff
type RunPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionService prunes run history on a cron schedule
type RetentionService struct {
	pruner    RunPruner
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *logrus.Logger
	now       func() time.Time
}

func NewRetentionService(pruner RunPruner, retention time.Duration, schedule string, logger *logrus.Logger) *RetentionService {
	return &RetentionService{
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(cron.WithLogger(cron.PrintfLogger(logger))),
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the prune job and starts the scheduler
func (s *RetentionService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Prune(ctx); err != nil {
			s.logger.WithError(err).Error("Run history pruning failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule":  s.schedule,
		"retention": s.retention,
	}).Info("Run history retention started")
	return nil
}

// Stop halts the scheduler and waits for a running prune to finish
func (s *RetentionService) Stop() {
	<-s.cron.Stop().Done()
}

// Prune deletes runs older than the retention window
func (s *RetentionService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed": removed,
			"cutoff":  cutoff,
		}).Info("Pruned simulation run history")
	}
	return removed, nil
}
