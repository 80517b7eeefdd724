package simulator

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestTeamSamplerZeroVariance(t *testing.T) {
	positions := []string{"QB", "WR", "RB"}
	realTeams := []string{"KC", "KC", "KC"}
	means := []float64{22.5, 15, 12}

	sampler, err := NewTeamSampler("Team A", means, []float64{0, 0, 0}, BuildCorrelation(positions, realTeams))
	require.NoError(t, err)
	assert.Equal(t, "Team A", sampler.Team())
	assert.Equal(t, 3, sampler.Slots())

	rng := rand.New(rand.NewSource(1))
	out := make([]float64, 3)
	for i := 0; i < 10; i++ {
		sampler.Sample(rng, out)
		assert.Equal(t, means, out)
	}
	assert.Equal(t, 49.5, sampler.SampleTotal(rng, out))
}

func TestTeamSamplerMixedVariance(t *testing.T) {
	positions := []string{"QB", "WR", "TE"}
	realTeams := []string{"KC", "KC", "KC"}
	means := []float64{20, 10, 8}

	sampler, err := NewTeamSampler("Team A", means, []float64{5, 0, 3}, BuildCorrelation(positions, realTeams))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	out := make([]float64, 3)
	for i := 0; i < 100; i++ {
		sampler.Sample(rng, out)
		assert.Equal(t, 10.0, out[1], "zero-variance slot must stay at its mean")
	}
}

func TestTeamSamplerMoments(t *testing.T) {
	positions := []string{"QB", "WR"}
	realTeams := []string{"BUF", "BUF"}

	sampler, err := NewTeamSampler("Team A", []float64{25, 14}, []float64{8, 6}, BuildCorrelation(positions, realTeams))
	require.NoError(t, err)

	const draws = 20000
	qb := make([]float64, draws)
	wr := make([]float64, draws)
	out := make([]float64, 2)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < draws; i++ {
		sampler.Sample(rng, out)
		qb[i], wr[i] = out[0], out[1]
	}

	assert.InDelta(t, 25, stat.Mean(qb, nil), 0.3)
	assert.InDelta(t, 14, stat.Mean(wr, nil), 0.3)
	assert.InDelta(t, 8, stat.StdDev(qb, nil), 0.3)
	assert.InDelta(t, 6, stat.StdDev(wr, nil), 0.3)
	assert.InDelta(t, corrQBWR, stat.Correlation(qb, wr, nil), 0.05)
}

func TestTeamSamplerCovarianceError(t *testing.T) {
	// Three quarterbacks and three receivers from one team give a correlation
	// matrix with a negative eigenvalue (1 - 3*0.35).
	positions := []string{"QB", "QB", "QB", "WR", "WR", "WR"}
	realTeams := []string{"KC", "KC", "KC", "KC", "KC", "KC"}
	means := []float64{20, 20, 20, 12, 12, 12}
	sds := []float64{6, 6, 6, 6, 6, 6}

	_, err := NewTeamSampler("Team A", means, sds, BuildCorrelation(positions, realTeams))
	require.Error(t, err)

	var covErr *CovarianceError
	require.True(t, errors.As(err, &covErr))
	assert.Equal(t, "Team A", covErr.Team)
}

func TestTeamSamplerInvalidInput(t *testing.T) {
	corr := BuildCorrelation([]string{"QB", "WR"}, []string{"KC", "KC"})

	_, err := NewTeamSampler("Team A", []float64{1, 2}, []float64{1, -1}, corr)
	var covErr *CovarianceError
	assert.True(t, errors.As(err, &covErr))

	_, err = NewTeamSampler("Team A", []float64{1, 2, 3}, []float64{1, 1, 1}, corr)
	assert.Error(t, err)
}
