package projections

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Override CSV columns.
const (
	NameColumn   = "player_name"
	MeanColumn   = "proj"
	StdDevColumn = "projsd"
)

// MalformedProjectionError reports an unusable projection override row.
type MalformedProjectionError struct {
	Row    int
	Player string
	Reason string
}

func (e *MalformedProjectionError) Error() string {
	if e.Player != "" {
		return fmt.Sprintf("malformed projection at row %d (%s): %s", e.Row, e.Player, e.Reason)
	}
	if e.Row > 0 {
		return fmt.Sprintf("malformed projection at row %d: %s", e.Row, e.Reason)
	}
	return "malformed projection: " + e.Reason
}

// ReadOverridesCSV decodes an uploaded projection override table. The
// projsd column is optional; a blank cell means no standard deviation.
func ReadOverridesCSV(r io.Reader) ([]Override, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedProjectionError{Reason: "projections file is empty"}
		}
		return nil, fmt.Errorf("failed to read projections header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameIdx, ok := cols[NameColumn]
	if !ok {
		return nil, &MalformedProjectionError{Reason: "missing column " + NameColumn}
	}
	meanIdx, ok := cols[MeanColumn]
	if !ok {
		return nil, &MalformedProjectionError{Reason: "missing column " + MeanColumn}
	}
	sdIdx, hasSD := cols[StdDevColumn]

	var overrides []Override
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedProjectionError{Row: row, Reason: err.Error()}
		}

		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			return nil, &MalformedProjectionError{Row: row, Reason: "player name is empty"}
		}

		mean, err := strconv.ParseFloat(strings.TrimSpace(record[meanIdx]), 64)
		if err != nil || math.IsNaN(mean) || math.IsInf(mean, 0) {
			return nil, &MalformedProjectionError{Row: row, Player: name, Reason: "proj is not a number"}
		}

		o := Override{Name: name, Mean: mean}
		if hasSD {
			if raw := strings.TrimSpace(record[sdIdx]); raw != "" {
				sd, err := strconv.ParseFloat(raw, 64)
				if err != nil || math.IsNaN(sd) || math.IsInf(sd, 0) {
					return nil, &MalformedProjectionError{Row: row, Player: name, Reason: "projsd is not a number"}
				}
				if sd < 0 {
					return nil, &MalformedProjectionError{Row: row, Player: name, Reason: "projsd is negative"}
				}
				o.StdDev = &sd
			}
		}
		overrides = append(overrides, o)
	}

	return overrides, nil
}
