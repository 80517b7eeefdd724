package projections

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDefaults(t *testing.T) {
	lookup := Defaults()
	assert.Equal(t, 116, lookup.Len())

	p, ok := lookup.Get("Christian McCaffrey")
	require.True(t, ok)
	assert.Equal(t, Projection{Mean: 30, StdDev: 9}, p)

	p, ok = lookup.Get("Ja'Marr Chase")
	require.True(t, ok)
	assert.Equal(t, Projection{Mean: 27, StdDev: 9}, p)

	p, ok = lookup.Get("Dalton Schultz")
	require.True(t, ok)
	assert.Equal(t, Projection{Mean: 6, StdDev: 3}, p)

	// Shared value, same contents on every call
	assert.Equal(t, lookup.Names(), Defaults().Names())
}

func TestMerge(t *testing.T) {
	base := NewLookup(map[string]Projection{
		"Josh Allen": {Mean: 22, StdDev: 7},
		"James Cook": {Mean: 14, StdDev: 5},
		"Tank Dell":  {Mean: 9, StdDev: 4},
	})

	merged := Merge(base, []Override{
		{Name: "Josh Allen", Mean: 25},                         // keeps base sd
		{Name: "James Cook", Mean: 12, StdDev: floatPtr(2)},    // full override
		{Name: "Rookie Newcomer", Mean: 8},                     // no base entry
		{Name: "Deep Sleeper", Mean: 3, StdDev: floatPtr(1.5)}, // override only
		{Name: "Tank Dell", Mean: 10},                          // replaced below
		{Name: "Tank Dell", Mean: 11, StdDev: floatPtr(0)},     // last wins
	}, DefaultStdDev)

	tests := []struct {
		name string
		want Projection
	}{
		{"Josh Allen", Projection{Mean: 25, StdDev: 7}},
		{"James Cook", Projection{Mean: 12, StdDev: 2}},
		{"Rookie Newcomer", Projection{Mean: 8, StdDev: DefaultStdDev}},
		{"Deep Sleeper", Projection{Mean: 3, StdDev: 1.5}},
		{"Tank Dell", Projection{Mean: 11, StdDev: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := merged.Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	// Base is untouched
	p, _ := base.Get("Josh Allen")
	assert.Equal(t, 22.0, p.Mean)
	_, ok := base.Get("Rookie Newcomer")
	assert.False(t, ok)
	assert.Equal(t, 3, base.Len())
	assert.Equal(t, 5, merged.Len())
}

func TestResolve(t *testing.T) {
	lookup := NewLookup(map[string]Projection{
		"A": {Mean: 10, StdDev: 1},
		"B": {Mean: 5, StdDev: 2},
	})

	means, sds, err := lookup.Resolve([]string{"B", "A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10, 5}, means)
	assert.Equal(t, []float64{2, 1, 2}, sds)

	_, _, err = lookup.Resolve([]string{"A", "Missing"})
	var unknown *UnknownPlayerError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Missing", unknown.Player)
}

func TestReadOverridesCSV(t *testing.T) {
	input := `player_name,proj,projsd
Josh Allen,24.5,6
Rookie Newcomer,8,
Deep Sleeper, 3.25 ,1.5
`
	overrides, err := ReadOverridesCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, overrides, 3)

	assert.Equal(t, "Josh Allen", overrides[0].Name)
	assert.Equal(t, 24.5, overrides[0].Mean)
	require.NotNil(t, overrides[0].StdDev)
	assert.Equal(t, 6.0, *overrides[0].StdDev)

	assert.Nil(t, overrides[1].StdDev)
	assert.Equal(t, 3.25, overrides[2].Mean)
}

func TestReadOverridesCSV_WithoutStdDevColumn(t *testing.T) {
	overrides, err := ReadOverridesCSV(strings.NewReader("player_name,proj\nJosh Allen,20\n"))
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Nil(t, overrides[0].StdDev)
}

func TestReadOverridesCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing name column", "name,proj\nJosh Allen,20\n"},
		{"missing proj column", "player_name,mean\nJosh Allen,20\n"},
		{"non-numeric proj", "player_name,proj\nJosh Allen,lots\n"},
		{"nan proj", "player_name,proj\nJosh Allen,NaN\n"},
		{"negative sd", "player_name,proj,projsd\nJosh Allen,20,-1\n"},
		{"blank name", "player_name,proj\n,20\n"},
		{"ragged row", "player_name,proj,projsd\nJosh Allen\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOverridesCSV(strings.NewReader(tt.input))
			var malformed *MalformedProjectionError
			assert.True(t, errors.As(err, &malformed), "expected MalformedProjectionError, got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`players:
  - name: "Josh Allen"
    mean: 24
    stddev: 7
`), 0o600))

	lookup, err := LoadFile(path)
	require.NoError(t, err)
	p, ok := lookup.Get("Josh Allen")
	require.True(t, ok)
	assert.Equal(t, Projection{Mean: 24, StdDev: 7}, p)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("players:\n  - name: \"Bad\"\n    mean: 1\n    stddev: -2\n"))
	var malformed *MalformedProjectionError
	assert.True(t, errors.As(err, &malformed))
}
