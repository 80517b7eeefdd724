package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/roster"
	"github.com/stitts-dev/draft-payout-sim/internal/services"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
	"github.com/stitts-dev/draft-payout-sim/pkg/logger"
)

type options struct {
	draftPath       string
	projectionsPath string
	outPath         string
	numSimulations  string
	workers         int
	slots           int
	seed            int64
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.draftPath, "draft", "", "draft results CSV (required)")
	flag.StringVar(&opts.projectionsPath, "projections", "", "projection override CSV with player_name,proj[,projsd]")
	flag.StringVar(&opts.outPath, "out", "", "write Team,Average_Payout CSV here instead of stdout")
	flag.StringVarP(&opts.numSimulations, "simulations", "n", strconv.Itoa(cfg.DefaultSimulations), "number of simulations")
	flag.IntVar(&opts.workers, "workers", cfg.SimulationWorkers, "worker goroutines, 0 for one per CPU")
	flag.IntVar(&opts.slots, "slots", cfg.RosterSlots, "player slots per roster")
	flag.Int64Var(&opts.seed, "seed", cfg.SimulationSeed, "random seed, 0 seeds from the clock")
	flag.Parse()

	// Logs go to stderr so CSV on stdout stays clean
	log := logger.InitLogger(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
		Output:      os.Stderr,
	})

	if opts.draftPath == "" {
		fmt.Fprintln(os.Stderr, "--draft is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.WithError(err).Error("Simulation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log *logrus.Logger) error {
	numSimulations, err := simulator.ParseSimulationCount(opts.numSimulations)
	if err != nil {
		return err
	}

	draftFile, err := os.Open(opts.draftPath)
	if err != nil {
		return fmt.Errorf("failed to open draft: %w", err)
	}
	defer draftFile.Close()

	table, err := roster.ReadCSV(draftFile)
	if err != nil {
		return err
	}
	rosters, err := roster.Normalize(table, opts.slots)
	if err != nil {
		return err
	}

	base := projections.Defaults()
	if cfg.ProjectionsFile != "" {
		if base, err = projections.LoadFile(cfg.ProjectionsFile); err != nil {
			return err
		}
	}

	var overrides []projections.Override
	if opts.projectionsPath != "" {
		f, err := os.Open(opts.projectionsPath)
		if err != nil {
			return fmt.Errorf("failed to open projections: %w", err)
		}
		defer f.Close()

		if overrides, err = projections.ReadOverridesCSV(f); err != nil {
			return err
		}
	}
	lookup := projections.Merge(base, overrides, cfg.DefaultStdDev)

	sim := simulator.NewSimulator(simulator.SimulationConfig{
		NumSimulations: numSimulations,
		Workers:        opts.workers,
		Seed:           opts.seed,
	}, lookup, log)

	result, err := sim.Run(ctx, rosters, nil)
	if err != nil {
		return err
	}

	data, err := services.NewExportService().ResultsCSV(result.Teams)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	log.WithFields(logrus.Fields{
		"teams":    len(result.Teams),
		"duration": result.Duration,
	}).Info("Results written")

	return nil
}
