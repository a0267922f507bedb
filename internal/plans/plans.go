// Package plans loads adopted district plans and assigns each precinct to
// exactly one district per plan.
package plans

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the plan assignment stage for one state.
type Config struct {
	Workspace states.Workspace
	PlanYear  int
}

// Meta describes one plan, geometry-free.
type Meta struct {
	State        string `json:"state"`
	StateName    string `json:"state_name"`
	PlanID       string `json:"plan_id"`
	Chamber      string `json:"chamber"`
	Year         int    `json:"year"`
	Cycle        int    `json:"cycle"`
	Source       string `json:"source"`
	Name         string `json:"name"`
	NumDistricts int    `json:"num_districts"`
}

// Assignment maps one precinct to its district under one plan.
type Assignment struct {
	State      string `json:"state"`
	PlanID     string `json:"plan_id"`
	PrecinctID string `json:"precinct_id"`
	DistrictID int    `json:"district_id"`
}

// District identifier columns in priority order: the RDH convention first,
// then the TIGER names for congressional and legislative layers.
var districtColumns = []string{
	"DISTRICT",
	"CD119FP", "CD118FP", "CD117FP", "CD116FP", "CD115FP", "CD114FP", "CD113FP",
	"SLDLST", "SLDUST",
}

// districtColumn picks the district identifier column for a plan layer.
// When none of the known names is present, any column mentioning "dist"
// serves as a fallback.
func districtColumn(layer *geo.Layer) (string, error) {
	for _, col := range districtColumns {
		if layer.HasColumn(col) {
			return col, nil
		}
	}
	for _, col := range layer.Columns() {
		if strings.Contains(strings.ToLower(col), "dist") {
			progress.LogStage("assign", "using %q as the district column", col)
			return col, nil
		}
	}
	return "", fmt.Errorf("no district identifier column found; available columns: %v", layer.Columns())
}

// LoadPlan reads a plan shapefile and builds its metadata. chamber is CONG
// or SL.
func LoadPlan(path, chamber string, st states.State, planYear int) (*geo.Layer, Meta, error) {
	progress.LogStage("assign", "loading %s plan from %s", chamber, path)
	layer, err := geo.ReadShapefile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("load %s plan: %w", chamber, err)
	}

	col, err := districtColumn(layer)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%s plan %s: %w", chamber, path, err)
	}

	distinct := map[string]bool{}
	for _, attrs := range layer.Attrs {
		attrs["DISTRICT"] = geo.String(attrs, col)
		distinct[geo.String(attrs, "DISTRICT")] = true
	}

	abbr := strings.ToUpper(st.Abbr)
	meta := Meta{
		State:        abbr,
		StateName:    st.Name,
		PlanID:       fmt.Sprintf("%s_%s_ENACTED_%d", abbr, chamber, planYear),
		Chamber:      chamber,
		Year:         planYear,
		Cycle:        2020,
		Source:       "official adopted plan shapefile",
		Name:         fmt.Sprintf("%s %d Enacted %s Plan", st.Name, planYear, chamber),
		NumDistricts: len(distinct),
	}
	progress.LogStage("assign", "%s has %d districts", meta.PlanID, meta.NumDistricts)
	return layer, meta, nil
}

// BuildAssignments assigns every precinct to the district it mostly falls
// in. Precincts overlapping no district, and districts whose identifier is
// not numeric, are skipped with a log line.
func BuildAssignments(precincts, districts *geo.Layer, meta Meta) []Assignment {
	progress.LogStage("assign", "assigning %d precincts to %s", precincts.Len(), meta.PlanID)
	assignment := geo.Assign(precincts.Geoms, districts.Geoms)

	var out []Assignment
	unassigned := 0
	for i, attrs := range precincts.Attrs {
		d := assignment[i]
		if d < 0 {
			unassigned++
			continue
		}

		code := strings.TrimSpace(geo.String(districts.Attrs[d], "DISTRICT"))
		id, err := strconv.Atoi(code)
		if err != nil {
			progress.LogStage("assign", "skipping precinct %s: district code %q is not numeric",
				geo.String(attrs, "UNIQUE_ID"), code)
			continue
		}

		out = append(out, Assignment{
			State:      meta.State,
			PlanID:     meta.PlanID,
			PrecinctID: geo.String(attrs, "UNIQUE_ID"),
			DistrictID: id,
		})
	}
	if unassigned > 0 {
		progress.LogStage("assign", "%d precincts could not be assigned to a %s district", unassigned, meta.Chamber)
	}
	progress.LogStage("assign", "built %d assignments for %s", len(out), meta.PlanID)
	return out
}

// Run loads the precinct layer from the aggregation stage, assigns it
// against every adopted plan found for the plan year, and writes the plans
// and assignments JSON files.
func Run(cfg Config) error {
	ws := cfg.Workspace

	precincts, err := geo.ReadGeoJSON(ws.PrecinctGeoJSON())
	if err != nil {
		return fmt.Errorf("load precincts (run the aggregate stage first): %w", err)
	}
	if !precincts.HasColumn("UNIQUE_ID") {
		return fmt.Errorf("precinct layer %s has no UNIQUE_ID column", ws.PrecinctGeoJSON())
	}
	progress.LogStage("assign", "loaded %d precincts", precincts.Len())

	planFiles, err := ws.PlanShapefiles(cfg.PlanYear)
	if err != nil {
		return err
	}

	chambers := map[string]string{"cong": "CONG", "leg": "SL"}

	var allPlans []Meta
	var allAssignments []Assignment
	for _, key := range []string{"cong", "leg"} {
		path, ok := planFiles[key]
		if !ok {
			continue
		}
		layer, meta, err := LoadPlan(path, chambers[key], ws.State, cfg.PlanYear)
		if err != nil {
			progress.LogError("assign", "load "+chambers[key]+" plan", err)
			continue
		}
		allPlans = append(allPlans, meta)
		allAssignments = append(allAssignments, BuildAssignments(precincts, layer, meta)...)
	}

	if len(allPlans) == 0 {
		return fmt.Errorf("no plans could be processed for %s %d", ws.State.Abbr, cfg.PlanYear)
	}

	if err := states.EnsureDirs(ws.OutputsDir()); err != nil {
		return err
	}
	if err := writeJSON(ws.PlansJSON(cfg.PlanYear), allPlans); err != nil {
		return err
	}
	progress.LogWrite("assign", ws.PlansJSON(cfg.PlanYear), len(allPlans))

	if err := writeJSON(ws.AssignmentsJSON(cfg.PlanYear), allAssignments); err != nil {
		return err
	}
	progress.LogWrite("assign", ws.AssignmentsJSON(cfg.PlanYear), len(allAssignments))
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadPlans loads a plans JSON written by Run.
func ReadPlans(path string) ([]Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var plans []Meta
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return plans, nil
}

// ReadAssignments loads an assignments JSON written by Run.
func ReadAssignments(path string) ([]Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var assignments []Assignment
	if err := json.Unmarshal(data, &assignments); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return assignments, nil
}
