package simulator

import (
	"gonum.org/v1/gonum/mat"
)

// Same-team correlation between a quarterback and his pass catchers or
// running back. This is a stacking heuristic, not a fitted model; every
// other pair (including cross-team pairs) is treated as independent.
const (
	corrQBWR = 0.35
	corrQBTE = 0.25
	corrQBRB = 0.10
)

// BuildCorrelation returns the K×K correlation matrix for one roster given
// its slot positions and real-world team affiliations.
func BuildCorrelation(positions, realTeams []string) *mat.SymDense {
	n := len(positions)
	corr := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			if realTeams[i] != realTeams[j] {
				continue
			}
			if c := teammateCorrelation(positions[i], positions[j]); c != 0 {
				corr.SetSym(i, j, c)
			}
		}
	}

	return corr
}

// teammateCorrelation is symmetric in its arguments.
func teammateCorrelation(pos1, pos2 string) float64 {
	if pos1 != "QB" {
		if pos2 != "QB" {
			return 0
		}
		pos1, pos2 = pos2, pos1
	}

	switch pos2 {
	case "WR":
		return corrQBWR
	case "TE":
		return corrQBTE
	case "RB":
		return corrQBRB
	default:
		return 0
	}
}
