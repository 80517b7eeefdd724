package simulator

import (
	"fmt"
	"strconv"
	"strings"
)

// CovarianceError reports a team whose covariance matrix could not be
// Cholesky-factorized.
type CovarianceError struct {
	Team   string
	Reason string
}

func (e *CovarianceError) Error() string {
	return fmt.Sprintf("covariance for team %q is not positive semi-definite: %s", e.Team, e.Reason)
}

// InvalidSimulationCountError reports a trial count that is not a positive
// integer. Raw holds the input when it did not parse as an integer.
type InvalidSimulationCountError struct {
	Count int
	Raw   string
}

func (e *InvalidSimulationCountError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("number of simulations must be a positive integer, got %q", e.Raw)
	}
	return fmt.Sprintf("number of simulations must be a positive integer, got %d", e.Count)
}

// ParseSimulationCount parses a user-supplied trial count
func ParseSimulationCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InvalidSimulationCountError{Raw: raw}
	}
	if n <= 0 {
		return 0, &InvalidSimulationCountError{Count: n}
	}
	return n, nil
}
