package simulator

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// TeamSampler draws jointly correlated player scores for one roster. It is
// built once per run and is read-only afterwards, so workers share it.
type TeamSampler struct {
	team  string
	means []float64

	// active lists the slots with non-zero variance; the remaining slots
	// always score their mean.
	active []int
	lower  *mat.TriDense
}

// NewTeamSampler factorizes cov[i,j] = sd[i]*sd[j]*corr[i,j].
//
// Zero-variance slots are removed before the Cholesky factorization: their
// rows and columns of the covariance are identically zero, so the matrix is
// only semi-definite and the reduced block carries all the randomness.
func NewTeamSampler(team string, means, sds []float64, corr mat.Symmetric) (*TeamSampler, error) {
	n := len(means)
	if len(sds) != n || corr.SymmetricDim() != n {
		return nil, fmt.Errorf("team %q: %d means, %d standard deviations and a %d×%d correlation matrix",
			team, n, len(sds), corr.SymmetricDim(), corr.SymmetricDim())
	}

	s := &TeamSampler{
		team:  team,
		means: append([]float64(nil), means...),
	}

	for i, sd := range sds {
		switch {
		case math.IsNaN(sd) || math.IsInf(sd, 0) || sd < 0:
			return nil, &CovarianceError{Team: team, Reason: fmt.Sprintf("slot %d has invalid standard deviation %g", i+1, sd)}
		case sd > 0:
			s.active = append(s.active, i)
		}
	}

	m := len(s.active)
	if m == 0 {
		return s, nil
	}

	cov := mat.NewSymDense(m, nil)
	for a, i := range s.active {
		for b := a; b < m; b++ {
			j := s.active[b]
			cov.SetSym(a, b, sds[i]*sds[j]*corr.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, &CovarianceError{Team: team, Reason: "Cholesky factorization failed"}
	}

	s.lower = mat.NewTriDense(m, mat.Lower, nil)
	chol.LTo(s.lower)

	return s, nil
}

// Team returns the team identifier the sampler was built for.
func (s *TeamSampler) Team() string {
	return s.team
}

// Sample writes one draw of mean + L·z into out, which must have one entry
// per roster slot.
func (s *TeamSampler) Sample(rng *rand.Rand, out []float64) {
	copy(out, s.means)

	m := len(s.active)
	if m == 0 {
		return
	}

	z := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		z.SetVec(i, rng.NormFloat64())
	}

	var correlated mat.VecDense
	correlated.MulVec(s.lower, z)

	for a, i := range s.active {
		out[i] += correlated.AtVec(a)
	}
}

// SampleTotal returns the summed score of one draw.
func (s *TeamSampler) SampleTotal(rng *rand.Rand, scratch []float64) float64 {
	s.Sample(rng, scratch)
	total := 0.0
	for _, v := range scratch {
		total += v
	}
	return total
}

// Slots returns the roster size.
func (s *TeamSampler) Slots() int {
	return len(s.means)
}
