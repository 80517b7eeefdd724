package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/draft-payout-sim/internal/models"
	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/roster"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
	"github.com/stitts-dev/draft-payout-sim/pkg/logger"
	"github.com/stitts-dev/draft-payout-sim/pkg/utils"
)

const cacheRetries = 3

// ProgressNotifier pushes messages to the websocket connections of a client
type ProgressNotifier interface {
	SendToClient(clientID string, message interface{})
}

// ProgressMessage is the websocket payload describing a running simulation
type ProgressMessage struct {
	Type                   string  `json:"type"`
	RunID                  string  `json:"run_id,omitempty"`
	Completed              int     `json:"completed"`
	Total                  int     `json:"total"`
	Progress               float64 `json:"progress"`
	EstimatedTimeRemaining float64 `json:"estimated_time_remaining_seconds"`
	Message                string  `json:"message,omitempty"`
}

// SimulationRequest is one draft upload to simulate
type SimulationRequest struct {
	Draft          roster.Table
	Overrides      []projections.Override
	NumSimulations int
	ClientID       string
}

// SimulationService runs the payout simulation for uploaded drafts and keeps
// completed results available by run ID.
type SimulationService struct {
	projections projections.Lookup
	cache       *CacheService
	store       RunStore
	notifier    ProgressNotifier
	config      *config.Config
	logger      *logrus.Logger
}

// NewSimulationService wires the simulation pipeline. cache, store and
// notifier may be nil.
func NewSimulationService(
	base projections.Lookup,
	cache *CacheService,
	store RunStore,
	notifier ProgressNotifier,
	cfg *config.Config,
	logger *logrus.Logger,
) *SimulationService {
	return &SimulationService{
		projections: base,
		cache:       cache,
		store:       store,
		notifier:    notifier,
		config:      cfg,
		logger:      logger,
	}
}

// Projections returns the base projection table
func (s *SimulationService) Projections() projections.Lookup {
	return s.projections
}

// Simulate normalizes the draft, applies overrides and runs the driver
func (s *SimulationService) Simulate(ctx context.Context, req SimulationRequest) (*models.RunResult, error) {
	if req.NumSimulations <= 0 {
		return nil, &simulator.InvalidSimulationCountError{Count: req.NumSimulations}
	}
	if s.config.MaxSimulations > 0 && req.NumSimulations > s.config.MaxSimulations {
		return nil, fmt.Errorf("%w: num_simulations %d exceeds the limit of %d",
			utils.ErrInvalidInput, req.NumSimulations, s.config.MaxSimulations)
	}

	rosters, err := roster.Normalize(req.Draft, s.config.RosterSlots)
	if err != nil {
		return nil, err
	}

	lookup := projections.Merge(s.projections, req.Overrides, s.config.DefaultStdDev)
	runID := uuid.New().String()
	log := logger.WithRunContext(s.logger, runID, req.NumSimulations, len(rosters))

	sim := simulator.NewSimulator(simulator.SimulationConfig{
		NumSimulations: req.NumSimulations,
		Workers:        s.config.SimulationWorkers,
		Seed:           s.config.SimulationSeed,
	}, lookup, s.logger)

	var progressChan chan simulator.SimulationProgress
	forwardDone := make(chan struct{})
	if req.ClientID != "" && s.notifier != nil {
		progressChan = make(chan simulator.SimulationProgress, 100)
		go s.forwardProgress(runID, req.ClientID, progressChan, forwardDone)
	} else {
		close(forwardDone)
	}

	result, err := sim.Run(ctx, rosters, progressChan)
	if progressChan != nil {
		close(progressChan)
	}
	<-forwardDone

	if err != nil {
		log.WithError(err).Warn("Simulation failed")
		s.notify(req.ClientID, ProgressMessage{
			Type:    "simulation_failed",
			RunID:   runID,
			Total:   req.NumSimulations,
			Message: err.Error(),
		})
		return nil, err
	}

	runResult := models.NewRunResult(runID, result, time.Now().UTC())

	if s.cache != nil {
		if err := s.cache.SetWithRetry(ctx, RunCacheKey(runID), runResult, s.config.ResultCacheTTL, cacheRetries); err != nil {
			log.WithError(err).Warn("Failed to cache simulation result")
		}
	}
	if s.store != nil {
		if err := s.store.Save(ctx, runResult); err != nil {
			log.WithError(err).Warn("Failed to record simulation run")
		}
	}

	s.notify(req.ClientID, ProgressMessage{
		Type:      "simulation_completed",
		RunID:     runID,
		Completed: req.NumSimulations,
		Total:     req.NumSimulations,
		Progress:  1,
		Message:   fmt.Sprintf("Simulation completed! Processed %d simulations in %v", req.NumSimulations, result.Duration),
	})

	log.WithFields(logrus.Fields{
		"workers":  result.Workers,
		"duration": result.Duration,
	}).Info("Simulation run completed successfully")

	return runResult, nil
}

// GetResult returns a completed run, checking the cache before the store
func (s *SimulationService) GetResult(ctx context.Context, id string) (*models.RunResult, error) {
	if s.cache != nil {
		var cached models.RunResult
		err := s.cache.Get(ctx, RunCacheKey(id), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WithError(err).WithField("run_id", id).Warn("Failed to read cached simulation result")
		}
	}

	if s.store == nil {
		return nil, ErrRunNotFound
	}

	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, RunCacheKey(id), result, s.config.ResultCacheTTL); err != nil {
			s.logger.WithError(err).WithField("run_id", id).Warn("Failed to cache simulation result")
		}
	}

	return result, nil
}

// ListRuns returns up to limit recent runs, newest first
func (s *SimulationService) ListRuns(ctx context.Context, limit int) ([]models.RunResult, error) {
	if s.store == nil {
		return []models.RunResult{}, nil
	}
	return s.store.List(ctx, limit)
}

func (s *SimulationService) forwardProgress(runID, clientID string, progressChan <-chan simulator.SimulationProgress, done chan<- struct{}) {
	defer close(done)

	for progress := range progressChan {
		s.notify(clientID, ProgressMessage{
			Type:                   "simulation_progress",
			RunID:                  runID,
			Completed:              progress.Completed,
			Total:                  progress.TotalSimulations,
			Progress:               float64(progress.Completed) / float64(progress.TotalSimulations),
			EstimatedTimeRemaining: progress.EstimatedTimeRemaining.Seconds(),
		})
	}
}

func (s *SimulationService) notify(clientID string, message ProgressMessage) {
	if clientID == "" || s.notifier == nil {
		return
	}
	s.notifier.SendToClient(clientID, message)
}
