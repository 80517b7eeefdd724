package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/roster"
)

// SimulationConfig represents configuration for a payout simulation
type SimulationConfig struct {
	NumSimulations int
	// Workers defaults to runtime.NumCPU() when zero.
	Workers int
	// Seed makes a run reproducible for a fixed worker count; zero seeds
	// from the clock.
	Seed    int64
	Payouts PayoutTable
}

// SimulationProgress represents progress of a simulation
type SimulationProgress struct {
	TotalSimulations       int           `json:"total_simulations"`
	Completed              int           `json:"completed"`
	StartTime              time.Time     `json:"start_time"`
	EstimatedTimeRemaining time.Duration `json:"estimated_time_remaining"`
}

// TeamResult is one team's expected payout.
type TeamResult struct {
	Team          string  `json:"team"`
	AveragePayout float64 `json:"average_payout"`
}

// SimulationResult holds one row per team, in draft discovery order.
type SimulationResult struct {
	Teams          []TeamResult  `json:"teams"`
	NumSimulations int           `json:"num_simulations"`
	Workers        int           `json:"workers"`
	Duration       time.Duration `json:"duration"`
}

// Simulator runs Monte Carlo payout simulations over draft rosters
type Simulator struct {
	config SimulationConfig
	lookup projections.Lookup
	logger *logrus.Logger
}

// NewSimulator creates a simulator over an immutable projection lookup
func NewSimulator(config SimulationConfig, lookup projections.Lookup, logger *logrus.Logger) *Simulator {
	if config.Payouts == nil {
		config.Payouts = DefaultPayoutTable
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Simulator{
		config: config,
		lookup: lookup,
		logger: logger,
	}
}

// Run simulates NumSimulations independent trials and returns each team's
// average payout. Any roster, projection or covariance error aborts the
// whole run; a partial average is never returned.
func (s *Simulator) Run(ctx context.Context, rosters []roster.Roster, progressChan chan<- SimulationProgress) (*SimulationResult, error) {
	n := s.config.NumSimulations
	if n <= 0 {
		return nil, &InvalidSimulationCountError{Count: n}
	}
	if len(rosters) == 0 {
		return nil, &roster.MalformedRosterError{Reason: "no teams to simulate"}
	}

	samplers, err := s.buildSamplers(rosters)
	if err != nil {
		return nil, err
	}

	numWorkers := runtime.NumCPU()
	if s.config.Workers > 0 {
		numWorkers = s.config.Workers
	}
	if numWorkers > n {
		numWorkers = n
	}

	log := s.logger.WithFields(logrus.Fields{
		"num_simulations": n,
		"num_teams":       len(rosters),
		"workers":         numWorkers,
	})
	log.Info("Starting payout simulation")

	startTime := time.Now()
	payouts := s.config.Payouts.byRank(len(rosters))
	reporter := newProgressReporter(n, startTime, progressChan)

	partials := make([][]float64, numWorkers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		w := w
		first, last := w*n/numWorkers, (w+1)*n/numWorkers
		g.Go(func() error {
			totals, err := s.simulationWorker(gctx, w, last-first, samplers, payouts, reporter)
			if err != nil {
				return err
			}
			partials[w] = totals
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Payout simulation aborted")
		return nil, err
	}

	// Merge worker accumulators
	totals := make([]float64, len(rosters))
	for _, partial := range partials {
		for i, v := range partial {
			totals[i] += v
		}
	}

	result := &SimulationResult{
		Teams:          make([]TeamResult, len(rosters)),
		NumSimulations: n,
		Workers:        numWorkers,
		Duration:       time.Since(startTime),
	}
	for i, r := range rosters {
		result.Teams[i] = TeamResult{
			Team:          r.Team,
			AveragePayout: totals[i] / float64(n),
		}
	}

	log.WithField("duration", result.Duration).Info("Payout simulation completed")

	return result, nil
}

// buildSamplers resolves projections and factorizes every team's covariance
// once; both depend only on the roster, not on the trial.
func (s *Simulator) buildSamplers(rosters []roster.Roster) ([]*TeamSampler, error) {
	samplers := make([]*TeamSampler, len(rosters))
	for i, r := range rosters {
		if len(r.Positions) != r.Len() || len(r.RealTeams) != r.Len() {
			return nil, &roster.MalformedRosterError{Team: r.Team, Reason: "players, positions and teams differ in length"}
		}
		if i > 0 && r.Len() != rosters[0].Len() {
			return nil, &roster.MalformedRosterError{
				Team:   r.Team,
				Reason: fmt.Sprintf("roster has %d slots, expected %d", r.Len(), rosters[0].Len()),
			}
		}

		means, sds, err := s.lookup.Resolve(r.Players)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", r.Team, err)
		}

		corr := BuildCorrelation(r.Positions, r.RealTeams)
		sampler, err := NewTeamSampler(r.Team, means, sds, corr)
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"team":  sampler.Team(),
			"slots": sampler.Slots(),
		}).Debug("Team covariance factorized")
		samplers[i] = sampler
	}
	return samplers, nil
}

func (s *Simulator) simulationWorker(
	ctx context.Context,
	worker int,
	trials int,
	samplers []*TeamSampler,
	payouts []float64,
	reporter *progressReporter,
) ([]float64, error) {
	// Create local RNG for this worker
	seed := s.config.Seed + int64(worker)
	if s.config.Seed == 0 {
		seed = time.Now().UnixNano() + int64(worker)
	}
	localRng := rand.New(rand.NewSource(seed))

	numTeams := len(samplers)
	totals := make([]float64, numTeams)
	scores := make([]float64, numTeams)
	ranks := make([]int, numTeams)
	order := make([]int, numTeams)
	scratch := make([]float64, samplers[0].Slots())

	for trial := 0; trial < trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i, sampler := range samplers {
			scores[i] = sampler.SampleTotal(localRng, scratch)
		}

		rankTeams(scores, order, ranks)
		for i, rank := range ranks {
			totals[i] += payouts[rank-1]
		}

		reporter.add(1)
	}

	s.logger.WithFields(logrus.Fields{
		"worker": worker,
		"trials": trials,
	}).Debug("Simulation worker finished")

	return totals, nil
}

// RankTeams assigns ranks 1..T by descending score. Exact ties keep draft
// discovery order: the first-discovered team gets the better rank, whatever
// its score history.
func RankTeams(scores []float64) []int {
	ranks := make([]int, len(scores))
	rankTeams(scores, make([]int, len(scores)), ranks)
	return ranks
}

func rankTeams(scores []float64, order, ranks []int) {
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for pos, team := range order {
		ranks[team] = pos + 1
	}
}

// progressReporter counts completed trials across workers and emits
// updates without ever blocking a worker.
type progressReporter struct {
	total     int
	step      int64
	startTime time.Time
	completed atomic.Int64
	ch        chan<- SimulationProgress
}

func newProgressReporter(total int, startTime time.Time, ch chan<- SimulationProgress) *progressReporter {
	step := int64(total / 100)
	if step < 1 {
		step = 1
	}
	return &progressReporter{total: total, step: step, startTime: startTime, ch: ch}
}

func (p *progressReporter) add(delta int64) {
	if p.ch == nil {
		return
	}
	done := p.completed.Add(delta)
	if done%p.step != 0 && done != int64(p.total) {
		return
	}

	var eta time.Duration
	if elapsed := time.Since(p.startTime); done > 0 {
		rate := float64(done) / elapsed.Seconds()
		eta = time.Duration(float64(int64(p.total)-done)/rate) * time.Second
	}

	select {
	case p.ch <- SimulationProgress{
		TotalSimulations:       p.total,
		Completed:              int(done),
		StartTime:              p.startTime,
		EstimatedTimeRemaining: eta,
	}:
	default:
		// Don't block if channel is full
	}
}
