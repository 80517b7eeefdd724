package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts := options{
		draftPath: writeFile(t, dir, "draft.csv",
			"Team,Player_1_Name,Player_1_Position,Player_1_Team\n"+
				"Underdogs,Josh Allen,QB,BUF\n"+
				"Favorites,Jalen Hurts,QB,PHI\n"),
		projectionsPath: writeFile(t, dir, "proj.csv",
			"player_name,proj,projsd\nJosh Allen,10,0\nJalen Hurts,40,0\n"),
		outPath:        filepath.Join(dir, "projection_results.csv"),
		numSimulations: "20",
		workers:        2,
		slots:          1,
		seed:           5,
	}

	err := run(context.Background(), &config.Config{DefaultStdDev: 6}, opts, logger)
	require.NoError(t, err)

	data, err := os.ReadFile(opts.outPath)
	require.NoError(t, err)
	assert.Equal(t, "Team,Average_Payout\nUnderdogs,6000\nFavorites,20000\n", string(data))
}

func TestRunUnknownPlayer(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts := options{
		draftPath: writeFile(t, dir, "draft.csv",
			"Team,Player_1_Name,Player_1_Position,Player_1_Team\nSolo,Not A Player,QB,BUF\n"),
		outPath:        filepath.Join(dir, "out.csv"),
		numSimulations: "5",
		slots:          1,
	}

	err := run(context.Background(), &config.Config{DefaultStdDev: 6}, opts, logger)
	var unknown *projections.UnknownPlayerError
	require.True(t, errors.As(err, &unknown))

	_, statErr := os.Stat(opts.outPath)
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestRunInvalidSimulationCount(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	draftPath := writeFile(t, dir, "draft.csv",
		"Team,Player_1_Name,Player_1_Position,Player_1_Team\nSolo,Josh Allen,QB,BUF\n")

	for _, raw := range []string{"2.5", "lots", "0", "-4"} {
		t.Run(raw, func(t *testing.T) {
			opts := options{
				draftPath:      draftPath,
				outPath:        filepath.Join(dir, "out.csv"),
				numSimulations: raw,
				slots:          1,
			}

			err := run(context.Background(), &config.Config{DefaultStdDev: 6}, opts, logger)
			var countErr *simulator.InvalidSimulationCountError
			require.True(t, errors.As(err, &countErr))

			_, statErr := os.Stat(opts.outPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}
