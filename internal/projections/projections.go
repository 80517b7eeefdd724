// Package projections holds per-player scoring projections and the merge of
// uploaded overrides onto the built-in table.
package projections

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultStdDev is used for an override that carries no standard deviation
// and whose player has no built-in entry.
const DefaultStdDev = 6.0

// Projection is a player's assumed scoring distribution.
type Projection struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// Lookup maps player names to projections. It is immutable once built and
// safe to share between goroutines.
type Lookup struct {
	entries map[string]Projection
}

// NewLookup copies entries into a new Lookup.
func NewLookup(entries map[string]Projection) Lookup {
	m := make(map[string]Projection, len(entries))
	for name, p := range entries {
		m[name] = p
	}
	return Lookup{entries: m}
}

// Get returns the projection for name.
func (l Lookup) Get(name string) (Projection, bool) {
	p, ok := l.entries[name]
	return p, ok
}

// Len returns the number of players in the lookup.
func (l Lookup) Len() int {
	return len(l.entries)
}

// Names returns all player names in sorted order.
func (l Lookup) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of the underlying table.
func (l Lookup) Entries() map[string]Projection {
	m := make(map[string]Projection, len(l.entries))
	for name, p := range l.entries {
		m[name] = p
	}
	return m
}

// UnknownPlayerError reports a rostered player with no projection.
type UnknownPlayerError struct {
	Player string
}

func (e *UnknownPlayerError) Error() string {
	return fmt.Sprintf("no projection for player %q", e.Player)
}

// Resolve returns parallel mean and standard deviation slices for names.
func (l Lookup) Resolve(names []string) (means, sds []float64, err error) {
	means = make([]float64, len(names))
	sds = make([]float64, len(names))
	for i, name := range names {
		p, ok := l.entries[name]
		if !ok {
			return nil, nil, &UnknownPlayerError{Player: name}
		}
		means[i] = p.Mean
		sds[i] = p.StdDev
	}
	return means, sds, nil
}

// Override replaces or adds one player's projection. A nil StdDev falls back
// to the base entry, then to the fallback constant.
type Override struct {
	Name   string
	Mean   float64
	StdDev *float64
}

// Merge applies overrides to base and returns a new Lookup; base is not
// modified. When a name repeats, the last override wins.
func Merge(base Lookup, overrides []Override, fallbackStdDev float64) Lookup {
	merged := base.Entries()
	for _, o := range overrides {
		sd := fallbackStdDev
		if o.StdDev != nil {
			sd = *o.StdDev
		} else if p, ok := base.entries[o.Name]; ok {
			sd = p.StdDev
		}
		merged[o.Name] = Projection{Mean: o.Mean, StdDev: sd}
	}
	return Lookup{entries: merged}
}

//go:embed default_projections.yaml
var defaultProjectionsYAML []byte

type projectionFile struct {
	Players []struct {
		Name       string `yaml:"name"`
		Projection `yaml:",inline"`
	} `yaml:"players"`
}

var (
	defaultsOnce sync.Once
	defaults     Lookup
	defaultsErr  error
)

// Defaults returns the built-in projection table.
func Defaults() Lookup {
	defaultsOnce.Do(func() {
		defaults, defaultsErr = Parse(defaultProjectionsYAML)
	})
	if defaultsErr != nil {
		panic(fmt.Sprintf("projections: embedded table is invalid: %v", defaultsErr))
	}
	return defaults
}

// LoadFile reads a projection table in the built-in YAML layout.
func LoadFile(path string) (Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to read projections file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML projection table.
func Parse(data []byte) (Lookup, error) {
	var file projectionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Lookup{}, fmt.Errorf("failed to decode projections: %w", err)
	}

	entries := make(map[string]Projection, len(file.Players))
	for i, p := range file.Players {
		if p.Name == "" {
			return Lookup{}, &MalformedProjectionError{Row: i + 1, Reason: "player name is empty"}
		}
		if p.StdDev < 0 {
			return Lookup{}, &MalformedProjectionError{Row: i + 1, Player: p.Name, Reason: "standard deviation is negative"}
		}
		entries[p.Name] = p.Projection
	}
	return Lookup{entries: entries}, nil
}
