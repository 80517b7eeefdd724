package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/roster"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code string, message string, details ...string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInternal               = "INTERNAL_ERROR"
	ErrCodeSimulation             = "SIMULATION_ERROR"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeMalformedRoster        = "MALFORMED_ROSTER"
	ErrCodeMalformedProjection    = "MALFORMED_PROJECTION"
	ErrCodeUnknownPlayer          = "UNKNOWN_PLAYER"
	ErrCodeCovariance             = "COVARIANCE_ERROR"
	ErrCodeInvalidSimulationCount = "INVALID_SIMULATION_COUNT"
)

// FromSimulationError maps a simulation pipeline error onto an HTTP status
// and a distinguishable error code.
func FromSimulationError(err error) (int, *AppError) {
	var (
		rosterErr     *roster.MalformedRosterError
		projectionErr *projections.MalformedProjectionError
		unknownErr    *projections.UnknownPlayerError
		covErr        *simulator.CovarianceError
		countErr      *simulator.InvalidSimulationCountError
	)

	switch {
	case errors.As(err, &rosterErr):
		return http.StatusUnprocessableEntity, NewAppError(ErrCodeMalformedRoster, "Draft roster is malformed", err.Error())
	case errors.As(err, &projectionErr):
		return http.StatusUnprocessableEntity, NewAppError(ErrCodeMalformedProjection, "Projection override is malformed", err.Error())
	case errors.As(err, &unknownErr):
		return http.StatusUnprocessableEntity, NewAppError(ErrCodeUnknownPlayer, "Rostered player has no projection", err.Error())
	case errors.As(err, &covErr):
		return http.StatusUnprocessableEntity, NewAppError(ErrCodeCovariance, "Team covariance is not positive semi-definite", err.Error())
	case errors.As(err, &countErr):
		return http.StatusBadRequest, NewAppError(ErrCodeInvalidSimulationCount, "Invalid number of simulations", err.Error())
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, NewAppError(ErrCodeValidation, "Invalid request", err.Error())
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, NewAppError(ErrCodeNotFound, "Resource not found", err.Error())
	default:
		return http.StatusInternalServerError, NewAppError(ErrCodeSimulation, "Simulation failed", err.Error())
	}
}
