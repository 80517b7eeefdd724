package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
)

// SimulationRun is the stored record of a completed payout simulation
type SimulationRun struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	NumSimulations int            `gorm:"not null" json:"num_simulations"`
	NumTeams       int            `gorm:"not null" json:"num_teams"`
	Workers        int            `json:"workers"`
	DurationMs     int64          `json:"duration_ms"`
	Results        datatypes.JSON `gorm:"not null" json:"results"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (SimulationRun) TableName() string {
	return "simulation_runs"
}

// RunResult is the API view of a completed run
type RunResult struct {
	ID             string                 `json:"id"`
	NumSimulations int                    `json:"num_simulations"`
	Workers        int                    `json:"workers"`
	DurationMs     int64                  `json:"duration_ms"`
	Teams          []simulator.TeamResult `json:"teams"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewRunResult wraps a simulator result under a run ID
func NewRunResult(id string, result *simulator.SimulationResult, createdAt time.Time) *RunResult {
	return &RunResult{
		ID:             id,
		NumSimulations: result.NumSimulations,
		Workers:        result.Workers,
		DurationMs:     result.Duration.Milliseconds(),
		Teams:          result.Teams,
		CreatedAt:      createdAt,
	}
}

// ToRun converts the result into its stored form
func (r *RunResult) ToRun() (*SimulationRun, error) {
	data, err := json.Marshal(r.Teams)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team results: %w", err)
	}

	return &SimulationRun{
		ID:             r.ID,
		NumSimulations: r.NumSimulations,
		NumTeams:       len(r.Teams),
		Workers:        r.Workers,
		DurationMs:     r.DurationMs,
		Results:        datatypes.JSON(data),
		CreatedAt:      r.CreatedAt,
	}, nil
}

// ToResult decodes a stored run
func (run *SimulationRun) ToResult() (*RunResult, error) {
	var teams []simulator.TeamResult
	if err := json.Unmarshal(run.Results, &teams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results for run %s: %w", run.ID, err)
	}

	return &RunResult{
		ID:             run.ID,
		NumSimulations: run.NumSimulations,
		Workers:        run.Workers,
		DurationMs:     run.DurationMs,
		Teams:          teams,
		CreatedAt:      run.CreatedAt,
	}, nil
}
