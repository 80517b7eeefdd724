package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stitts-dev/draft-payout-sim/internal/models"
	"github.com/stitts-dev/draft-payout-sim/pkg/utils"
)

// ErrRunNotFound is returned when no completed run has the requested ID
var ErrRunNotFound = fmt.Errorf("simulation run %w", utils.ErrNotFound)

// RunStore keeps the history of completed runs
type RunStore interface {
	Save(ctx context.Context, run *models.RunResult) error
	Get(ctx context.Context, id string) (*models.RunResult, error)
	List(ctx context.Context, limit int) ([]models.RunResult, error)
}

// GormRunStore persists runs through gorm
type GormRunStore struct {
	db *gorm.DB
}

func NewGormRunStore(db *gorm.DB) *GormRunStore {
	return &GormRunStore{db: db}
}

// Migrate creates or updates the run history table
func (s *GormRunStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.SimulationRun{}); err != nil {
		return fmt.Errorf("failed to migrate simulation runs: %w", err)
	}
	return nil
}

// Drop removes the run history table
func (s *GormRunStore) Drop() error {
	if err := s.db.Migrator().DropTable(&models.SimulationRun{}); err != nil {
		return fmt.Errorf("failed to drop simulation runs: %w", err)
	}
	return nil
}

func (s *GormRunStore) Save(ctx context.Context, result *models.RunResult) error {
	run, err := result.ToRun()
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save simulation run: %w", err)
	}
	return nil
}

func (s *GormRunStore) Get(ctx context.Context, id string) (*models.RunResult, error) {
	var run models.SimulationRun
	if err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load simulation run: %w", err)
	}
	return run.ToResult()
}

// List returns the most recent runs first
func (s *GormRunStore) List(ctx context.Context, limit int) ([]models.RunResult, error) {
	var runs []models.SimulationRun
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list simulation runs: %w", err)
	}

	results := make([]models.RunResult, 0, len(runs))
	for i := range runs {
		result, err := runs[i].ToResult()
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// DeleteOlderThan removes runs created before cutoff and returns how many
// were removed
func (s *GormRunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SimulationRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune simulation runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
