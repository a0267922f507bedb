package states

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Workspace resolves the directory and file conventions every stage shares.
// All inputs live under <Base>/inputs and all stage outputs under
// <Base>/outputs/<state>.
type Workspace struct {
	Base       string
	State      State
	ACSYear    int
	CensusYear int
}

// NewWorkspace builds a workspace for a state. base defaults to the current
// directory when empty.
func NewWorkspace(base string, st State, acsYear, censusYear int) Workspace {
	if base == "" {
		base = "."
	}
	return Workspace{Base: base, State: st, ACSYear: acsYear, CensusYear: censusYear}
}

func (w Workspace) yearSuffix() string {
	s := fmt.Sprintf("%d", w.ACSYear)
	return s[len(s)-2:]
}

// YearSuffix is the 2-digit ACS year used in demographic column names.
func (w Workspace) YearSuffix() string { return w.yearSuffix() }

func (w Workspace) InputsDir() string  { return filepath.Join(w.Base, "inputs") }
func (w Workspace) OutputsDir() string { return filepath.Join(w.Base, "outputs", w.State.Abbr) }

func (w Workspace) TigerDir() string {
	return filepath.Join(w.InputsDir(), fmt.Sprintf("tiger_%d", w.CensusYear))
}

func (w Workspace) BGDir() string {
	return filepath.Join(w.TigerDir(), w.State.Abbr+"_bg")
}

func (w Workspace) BGShapefile() string {
	return filepath.Join(w.BGDir(), fmt.Sprintf("tl_%d_%s_bg.shp", w.CensusYear, w.State.FIPS))
}

func (w Workspace) TabblockDir() string {
	return filepath.Join(w.TigerDir(), w.State.Abbr+"_tabblock20")
}

func (w Workspace) ACSDir() string {
	return filepath.Join(w.InputsDir(), fmt.Sprintf("acs_%d", w.ACSYear), w.State.Abbr)
}

func (w Workspace) CVAPFile() string {
	return filepath.Join(w.InputsDir(), "cvap", "CVAP_2019-2023_ACS_csv_files", "BlockGr.csv")
}

func (w Workspace) PrecinctsDir() string {
	return filepath.Join(w.InputsDir(), "precincts", w.State.Abbr)
}

func (w Workspace) PlansDir() string {
	return filepath.Join(w.InputsDir(), "plans", w.State.Abbr)
}

func (w Workspace) BGGeoJSON() string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_bg_all_data_%d.geojson", w.State.Abbr, w.ACSYear))
}

func (w Workspace) PrecinctGeoJSON() string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_precinct_all_pop_%d.geojson", w.State.Abbr, w.ACSYear))
}

func (w Workspace) DotsGeoJSON(dotUnit int) string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_dots_pop%s_unit%d.geojson", w.State.Abbr, w.yearSuffix(), dotUnit))
}

func (w Workspace) PlansJSON(planYear int) string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_plans_%d.json", w.State.Abbr, planYear))
}

func (w Workspace) AssignmentsJSON(planYear int) string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_assignments_%d.json", w.State.Abbr, planYear))
}

func (w Workspace) ComparisonPNG(planYear int) string {
	return filepath.Join(w.OutputsDir(), fmt.Sprintf("%s_comparison_%d.png", w.State.Abbr, planYear))
}

// ACSFile finds the race or income CSV, preferring the per-state directory
// and falling back to the flat layout older runs produced.
func (w Workspace) ACSFile(kind string) (string, error) {
	name := fmt.Sprintf("%s_bg_%s_%d.csv", w.State.Abbr, kind, w.ACSYear)

	newPath := filepath.Join(w.ACSDir(), name)
	if _, err := os.Stat(newPath); err == nil {
		return newPath, nil
	}

	oldPath := filepath.Join(w.InputsDir(), fmt.Sprintf("acs_%d", w.ACSYear), name)
	if _, err := os.Stat(oldPath); err == nil {
		log.Printf("[states] using ACS %s file from old location: %s", kind, oldPath)
		return oldPath, nil
	}

	return "", fmt.Errorf("ACS %s file not found for %s %d; searched %s and %s (run the fetch stage first)",
		kind, strings.ToUpper(w.State.Abbr), w.ACSYear, newPath, oldPath)
}

// FindShapefile returns the first .shp in dir, warning when more than one is
// present.
func FindShapefile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("shapefile directory %s: %w", dir, err)
	}

	var shps []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".shp") {
			shps = append(shps, e.Name())
		}
	}
	if len(shps) == 0 {
		return "", fmt.Errorf("no .shp files found in %s", dir)
	}
	if len(shps) > 1 {
		log.Printf("[states] multiple shapefiles in %s, using %s", dir, shps[0])
	}
	return filepath.Join(dir, shps[0]), nil
}

// PlanShapefiles locates the congressional and legislative plan shapefiles
// for a plan year. Either chamber may be absent; both absent is an error.
func (w Workspace) PlanShapefiles(planYear int) (map[string]string, error) {
	plans := map[string]string{}

	for chamber, dirSuffix := range map[string]string{
		"cong": fmt.Sprintf("%s_cong_adopted_%d", w.State.Abbr, planYear),
		"leg":  fmt.Sprintf("%s_sl_adopted_%d", w.State.Abbr, planYear),
	} {
		dir := filepath.Join(w.PlansDir(), dirSuffix)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		shp, err := FindShapefile(dir)
		if err != nil {
			continue
		}
		plans[chamber] = shp
	}

	if len(plans) == 0 {
		return nil, fmt.Errorf("no plan shapefiles found in %s; expected %s_cong_adopted_%d or %s_sl_adopted_%d",
			w.PlansDir(), w.State.Abbr, planYear, w.State.Abbr, planYear)
	}
	return plans, nil
}

// EnsureDirs creates the input/output directories a stage is about to write.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", d, err)
		}
	}
	return nil
}
