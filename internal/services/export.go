package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
)

// ResultsFileName is the download name of an exported run
const ResultsFileName = "projection_results.csv"

var resultsHeader = []string{"Team", "Average_Payout"}

// ExportService renders simulation results for download
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ResultsCSV writes one Team,Average_Payout row per team in result order
func (s *ExportService) ResultsCSV(teams []simulator.TeamResult) ([]byte, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("no results to export")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultsHeader); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, team := range teams {
		row := []string{team.Team, strconv.FormatFloat(team.AveragePayout, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write result for team %s: %w", team.Team, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
