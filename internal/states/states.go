// Package states holds the registry of US states and the on-disk workspace
// layout shared by every pipeline stage.
package states

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed states.yaml
var registryYAML []byte

// State identifies one state in the registry.
type State struct {
	Name string `yaml:"name"` // e.g. "Arizona"
	FIPS string `yaml:"fips"` // 2-digit FIPS code, zero-padded
	Abbr string `yaml:"abbr"` // lowercase 2-letter abbreviation
}

type registry struct {
	States map[string]State `yaml:"states"`
}

var states map[string]State

func init() {
	var reg registry
	if err := yaml.Unmarshal(registryYAML, &reg); err != nil {
		panic(fmt.Sprintf("states: bad embedded registry: %v", err))
	}
	states = reg.States
}

// Lookup returns the state for a 2-letter code (case-insensitive).
// Unknown codes get an error listing everything available.
func Lookup(code string) (State, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	st, ok := states[code]
	if !ok {
		return State{}, fmt.Errorf("state code %q not found; available: %s", code, strings.Join(Codes(), ", "))
	}
	return st, nil
}

// Codes returns all registered state codes, sorted.
func Codes() []string {
	out := make([]string, 0, len(states))
	for c := range states {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
