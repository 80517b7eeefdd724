// Package roster turns raw draft-result tables into fixed-shape team rosters.
package roster

import (
	"fmt"
	"strings"
)

// TeamColumn identifies the drafting team on each row.
const TeamColumn = "Team"

// DefaultSlots is the roster size of a standard best-ball draft.
const DefaultSlots = 6

// Table is a draft-results table as read from an upload: one header row and
// one row per team.
type Table struct {
	Header []string
	Rows   [][]string
}

// Roster holds one team's drafted players as parallel slices of length K.
type Roster struct {
	Team      string   `json:"team"`
	Players   []string `json:"players"`
	Positions []string `json:"positions"`
	RealTeams []string `json:"real_teams"`
}

// Len returns the number of player slots.
func (r Roster) Len() int {
	return len(r.Players)
}

// MalformedRosterError reports a draft table that does not fit the fixed
// slot layout.
type MalformedRosterError struct {
	Team   string
	Column string
	Reason string
}

func (e *MalformedRosterError) Error() string {
	switch {
	case e.Team != "" && e.Column != "":
		return fmt.Sprintf("malformed roster for team %q: column %s: %s", e.Team, e.Column, e.Reason)
	case e.Team != "":
		return fmt.Sprintf("malformed roster for team %q: %s", e.Team, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("malformed roster: column %s: %s", e.Column, e.Reason)
	default:
		return "malformed roster: " + e.Reason
	}
}

// NameColumn, PositionColumn and RealTeamColumn return the header names of
// 1-based slot i.
func NameColumn(i int) string     { return fmt.Sprintf("Player_%d_Name", i) }
func PositionColumn(i int) string { return fmt.Sprintf("Player_%d_Position", i) }
func RealTeamColumn(i int) string { return fmt.Sprintf("Player_%d_Team", i) }

// Normalize builds one Roster per distinct team, in order of first
// appearance. Only the first row of a repeated team is read.
func Normalize(table Table, slots int) ([]Roster, error) {
	if slots < 1 {
		return nil, &MalformedRosterError{Reason: fmt.Sprintf("slot count must be positive, got %d", slots)}
	}

	index := make(map[string]int, len(table.Header))
	for i, name := range table.Header {
		index[strings.TrimSpace(name)] = i
	}

	teamIdx, ok := index[TeamColumn]
	if !ok {
		return nil, &MalformedRosterError{Column: TeamColumn, Reason: "column is missing"}
	}

	type slotColumns struct{ name, position, realTeam int }
	columns := make([]slotColumns, slots)
	for i := 1; i <= slots; i++ {
		var sc slotColumns
		for _, col := range []struct {
			name string
			dst  *int
		}{
			{NameColumn(i), &sc.name},
			{PositionColumn(i), &sc.position},
			{RealTeamColumn(i), &sc.realTeam},
		} {
			idx, ok := index[col.name]
			if !ok {
				return nil, &MalformedRosterError{Column: col.name, Reason: "column is missing"}
			}
			*col.dst = idx
		}
		columns[i-1] = sc
	}

	// A populated slot beyond K means the team has more players than the layout allows.
	overflow := make([]string, 0, 3)
	for _, name := range []string{NameColumn(slots + 1), PositionColumn(slots + 1), RealTeamColumn(slots + 1)} {
		if _, ok := index[name]; ok {
			overflow = append(overflow, name)
		}
	}

	seen := make(map[string]bool)
	rosters := make([]Roster, 0)

	for rowNum, row := range table.Rows {
		if len(row) != len(table.Header) {
			return nil, &MalformedRosterError{
				Reason: fmt.Sprintf("row %d has %d cells, header has %d", rowNum+1, len(row), len(table.Header)),
			}
		}

		team := strings.TrimSpace(row[teamIdx])
		if team == "" {
			return nil, &MalformedRosterError{Column: TeamColumn, Reason: fmt.Sprintf("row %d has no team identifier", rowNum+1)}
		}
		if seen[team] {
			continue
		}
		seen[team] = true

		for _, name := range overflow {
			if strings.TrimSpace(row[index[name]]) != "" {
				return nil, &MalformedRosterError{Team: team, Column: name, Reason: fmt.Sprintf("team has more than %d player slots", slots)}
			}
		}

		r := Roster{
			Team:      team,
			Players:   make([]string, slots),
			Positions: make([]string, slots),
			RealTeams: make([]string, slots),
		}
		for i, sc := range columns {
			cells := []struct {
				column string
				value  string
				dst    *string
			}{
				{NameColumn(i + 1), row[sc.name], &r.Players[i]},
				{PositionColumn(i + 1), row[sc.position], &r.Positions[i]},
				{RealTeamColumn(i + 1), row[sc.realTeam], &r.RealTeams[i]},
			}
			for _, cell := range cells {
				v := strings.TrimSpace(cell.value)
				if v == "" {
					return nil, &MalformedRosterError{Team: team, Column: cell.column, Reason: "slot is empty"}
				}
				*cell.dst = v
			}
			r.Positions[i] = strings.ToUpper(r.Positions[i])
		}

		rosters = append(rosters, r)
	}

	if len(rosters) == 0 {
		return nil, &MalformedRosterError{Reason: "draft table has no teams"}
	}

	return rosters, nil
}
