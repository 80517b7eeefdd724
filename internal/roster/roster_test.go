package roster

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftCSV = `Team,Player_1_Name,Player_1_Position,Player_1_Team,Player_2_Name,Player_2_Position,Player_2_Team,Player_3_Name,Player_3_Position,Player_3_Team
Alpha,Josh Allen,QB,BUF,Khalil Shakir,WR,BUF,James Cook,RB,BUF
Bravo,Patrick Mahomes,qb,KC,Travis Kelce,TE,KC,Rashee Rice,WR,KC
Alpha,Ignored Player,QB,NYJ,Ignored Player,WR,NYJ,Ignored Player,RB,NYJ
Charlie,Jalen Hurts,QB,PHI,A.J. Brown,WR,PHI,Saquon Barkley,RB,PHI
`

func TestReadCSVAndNormalize(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(draftCSV))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 4)

	rosters, err := Normalize(table, 3)
	require.NoError(t, err)
	require.Len(t, rosters, 3)

	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, []string{rosters[0].Team, rosters[1].Team, rosters[2].Team})

	alpha := rosters[0]
	assert.Equal(t, 3, alpha.Len())
	assert.Equal(t, []string{"Josh Allen", "Khalil Shakir", "James Cook"}, alpha.Players)
	assert.Equal(t, []string{"QB", "WR", "RB"}, alpha.Positions)
	assert.Equal(t, []string{"BUF", "BUF", "BUF"}, alpha.RealTeams)

	// Position codes are upper-cased
	assert.Equal(t, "QB", rosters[1].Positions[0])
}

func TestNormalize_Errors(t *testing.T) {
	header := []string{"Team", "Player_1_Name", "Player_1_Position", "Player_1_Team", "Player_2_Name", "Player_2_Position", "Player_2_Team"}

	tests := []struct {
		name       string
		table      Table
		slots      int
		wantTeam   string
		wantColumn string
	}{
		{
			name:       "missing team column",
			table:      Table{Header: header[1:], Rows: [][]string{{"a", "QB", "BUF", "b", "WR", "BUF"}}},
			slots:      2,
			wantColumn: TeamColumn,
		},
		{
			name:       "missing slot column",
			table:      Table{Header: header, Rows: [][]string{{"Alpha", "a", "QB", "BUF", "b", "WR", "BUF"}}},
			slots:      3,
			wantColumn: "Player_3_Name",
		},
		{
			name:       "empty slot",
			table:      Table{Header: header, Rows: [][]string{{"Alpha", "a", "QB", "BUF", "", "WR", "BUF"}}},
			slots:      2,
			wantTeam:   "Alpha",
			wantColumn: "Player_2_Name",
		},
		{
			name:       "too many slots",
			table:      Table{Header: header, Rows: [][]string{{"Alpha", "a", "QB", "BUF", "b", "WR", "BUF"}}},
			slots:      1,
			wantTeam:   "Alpha",
			wantColumn: "Player_2_Name",
		},
		{
			name:  "ragged row",
			table: Table{Header: header, Rows: [][]string{{"Alpha", "a"}}},
			slots: 2,
		},
		{
			name:  "no teams",
			table: Table{Header: header},
			slots: 2,
		},
		{
			name:  "non-positive slot count",
			table: Table{Header: header},
			slots: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rosters, err := Normalize(tt.table, tt.slots)
			require.Error(t, err)
			assert.Nil(t, rosters)

			var malformed *MalformedRosterError
			require.True(t, errors.As(err, &malformed), "expected MalformedRosterError, got %T", err)
			assert.Equal(t, tt.wantTeam, malformed.Team)
			assert.Equal(t, tt.wantColumn, malformed.Column)
		})
	}
}

func TestNormalize_EmptyOverflowColumnIsAllowed(t *testing.T) {
	table := Table{
		Header: []string{"Team", "Player_1_Name", "Player_1_Position", "Player_1_Team", "Player_2_Name", "Player_2_Position", "Player_2_Team"},
		Rows:   [][]string{{"Alpha", "Josh Allen", "QB", "BUF", "", "", ""}},
	}

	rosters, err := Normalize(table, 1)
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	assert.Equal(t, []string{"Josh Allen"}, rosters[0].Players)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	var malformed *MalformedRosterError
	assert.True(t, errors.As(err, &malformed))

	_, err = ReadCSV(strings.NewReader("Team,Player_1_Name\nAlpha\n"))
	assert.True(t, errors.As(err, &malformed))
}

func TestReadCSV_SkipsBlankLinesAndBOM(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("\ufeffTeam,Player_1_Name,Player_1_Position,Player_1_Team\n,,,\nAlpha,Josh Allen,QB,BUF\n"))
	require.NoError(t, err)
	assert.Equal(t, "Team", table.Header[0])
	assert.Len(t, table.Rows, 1)
}
