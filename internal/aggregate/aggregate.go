package aggregate

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/politech/processor/internal/cvap"
	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the aggregation stage for one state.
type Config struct {
	Workspace states.Workspace
}

// Precinct identity and district columns preserved when present.
var idColumns = []string{
	"UNIQUE_ID", "COUNTYFP", "COUNTY_NAM", "PRECINCTNA",
	"CONG_DIST", "SLDL_DIST", "SLDU_DIST",
}

// Election result columns follow the VEST convention: statewide races are
// G + two-digit year + race code (G24PREDHAR), district races are G + race
// code + two-digit district (GCON01DSHA).
var electionColRe = regexp.MustCompile(`^G(\d{2}[A-Z]|[A-Z]{3}\d{2})`)

// Comparison is one row of the source-vs-target conservation report.
type Comparison struct {
	Column  string
	Source  float64
	Target  float64
	Diff    float64
	PctDiff float64
}

// Run builds the enriched block-group GeoJSON and the precinct demographic
// GeoJSON for a state: ACS race and income plus CVAP merged onto block
// groups, then summed into precincts by largest geometric overlap.
func Run(cfg Config) error {
	ws := cfg.Workspace
	yy := ws.YearSuffix()

	if err := states.EnsureDirs(ws.OutputsDir()); err != nil {
		return err
	}

	bg, err := loadBlockGroups(ws)
	if err != nil {
		return err
	}

	precinctShp, err := states.FindShapefile(ws.PrecinctsDir())
	if err != nil {
		return fmt.Errorf("locate precinct shapefile: %w", err)
	}
	progress.LogStage("aggregate", "loading precincts from %s", precinctShp)
	precincts, err := geo.ReadShapefile(precinctShp)
	if err != nil {
		return fmt.Errorf("load precincts: %w", err)
	}
	progress.LogStage("aggregate", "loaded %d precincts", precincts.Len())
	if !precincts.HasColumn("UNIQUE_ID") {
		return fmt.Errorf("precinct shapefile %s has no UNIQUE_ID column", precinctShp)
	}

	progress.LogStage("aggregate", "assigning %d block groups to precincts", bg.Len())
	assignment := geo.Assign(bg.Geoms, precincts.Geoms)

	families := []struct {
		label string
		file  string
		cols  []string
	}{
		{"population by race", "population", PopColumns(yy)},
		{"CVAP by race", "cvap", CVAPColumns(yy)},
		{"household income", "income", IncomeColumns(yy)},
	}
	for _, fam := range families {
		comp := sumIntoTargets(bg, precincts, assignment, fam.cols)
		logComparison(fam.label, comp)
		path := filepath.Join(ws.OutputsDir(), fmt.Sprintf("%s_%s_comparison_%d.csv", ws.State.Abbr, fam.file, ws.ACSYear))
		if err := writeComparison(path, comp); err != nil {
			return err
		}
	}

	// Median income needs the bracket midpoint interpolation we do not do
	// yet, so it ships as an explicit zero rather than a missing column.
	for _, attrs := range precincts.Attrs {
		attrs["MEDN_INC"+yy] = 0.0
	}

	if err := geo.WriteGeoJSON(ws.BGGeoJSON(), bg); err != nil {
		return err
	}
	progress.LogWrite("aggregate", ws.BGGeoJSON(), bg.Len())

	slim := slimPrecincts(precincts, yy)
	if err := geo.WriteGeoJSON(ws.PrecinctGeoJSON(), slim); err != nil {
		return err
	}
	progress.LogWrite("aggregate", ws.PrecinctGeoJSON(), slim.Len())
	return nil
}

// loadBlockGroups reads the TIGER shapefile and merges ACS race, ACS
// income, and CVAP onto it, deriving the NHSP and TOT columns on each
// family. Missing table rows merge as zeros.
func loadBlockGroups(ws states.Workspace) (*geo.Layer, error) {
	yy := ws.YearSuffix()

	progress.LogStage("aggregate", "loading block groups from %s", ws.BGShapefile())
	bg, err := geo.ReadShapefile(ws.BGShapefile())
	if err != nil {
		return nil, fmt.Errorf("load block groups: %w", err)
	}
	progress.LogStage("aggregate", "loaded %d block groups", bg.Len())

	racePath, err := ws.ACSFile("race")
	if err != nil {
		return nil, err
	}
	race, err := ReadTable(racePath)
	if err != nil {
		return nil, err
	}

	incomePath, err := ws.ACSFile("income")
	if err != nil {
		return nil, err
	}
	income, err := ReadTable(incomePath)
	if err != nil {
		return nil, err
	}

	cvapByBG, err := cvap.Load(ws.CVAPFile(), ws.State.FIPS, yy)
	if err != nil {
		return nil, err
	}

	unmatched := 0
	for i, attrs := range bg.Attrs {
		geoid, err := geo.BGGeoID(attrs)
		if err != nil {
			return nil, fmt.Errorf("block group %d: %w", i, err)
		}
		attrs["GEOID"] = geoid

		matched := false
		for _, table := range []map[string]map[string]float64{race, income, cvapByBG} {
			if row, ok := table[geoid]; ok {
				matched = true
				for col, v := range row {
					attrs[col] = v
				}
			}
		}
		if !matched {
			unmatched++
		}

		deriveTotals(attrs, yy)
	}
	if unmatched > 0 {
		progress.LogStage("aggregate", "%d block groups had no ACS or CVAP match and carry zeros", unmatched)
	}

	return bg, nil
}

// deriveTotals fills NHSP and TOT on the population and CVAP families and
// the household total on income, overwriting whatever the source tables
// carried so the identities hold exactly.
func deriveTotals(attrs map[string]interface{}, yy string) {
	fill := func(cols []string) {
		for _, c := range cols {
			if _, ok := attrs[c]; !ok {
				attrs[c] = 0.0
			}
		}
	}
	fill(PopColumns(yy))
	fill(CVAPColumns(yy))
	fill(IncomeColumns(yy))

	var nhspPop float64
	for _, g := range nhspPopGroups {
		nhspPop += geo.Float(attrs, g+"_POP"+yy)
	}
	attrs["NHSP_POP"+yy] = nhspPop
	attrs["TOT_POP"+yy] = geo.Float(attrs, "HSP_POP"+yy) + nhspPop

	var nhspCVAP float64
	for _, g := range nhspCVAPGroups {
		nhspCVAP += geo.Float(attrs, g+"_CVAP"+yy)
	}
	attrs["NHSP_CVAP"+yy] = nhspCVAP
	attrs["TOT_CVAP"+yy] = geo.Float(attrs, "HSP_CVAP"+yy) + nhspCVAP

	var households float64
	for _, b := range incomeBrackets {
		households += geo.Float(attrs, b+yy)
	}
	attrs["TOT_HOUS"+yy] = households
}

// sumIntoTargets adds each source feature's columns to its assigned target
// and reports how well the totals survived the transfer. Sources assigned
// to no target drop out, which the comparison makes visible.
func sumIntoTargets(sources, targets *geo.Layer, assignment []int, cols []string) []Comparison {
	sums := make([]map[string]float64, targets.Len())
	for i := range sums {
		sums[i] = map[string]float64{}
	}

	sourceTotals := map[string]float64{}
	for i, attrs := range sources.Attrs {
		t := assignment[i]
		for _, col := range cols {
			v := geo.Float(attrs, col)
			sourceTotals[col] += v
			if t >= 0 {
				sums[t][col] += v
			}
		}
	}

	targetTotals := map[string]float64{}
	for i, attrs := range targets.Attrs {
		for _, col := range cols {
			v := math.Round(sums[i][col])
			attrs[col] = v
			targetTotals[col] += v
		}
	}

	comp := make([]Comparison, 0, len(cols))
	for _, col := range cols {
		c := Comparison{
			Column: col,
			Source: sourceTotals[col],
			Target: targetTotals[col],
		}
		c.Diff = c.Target - c.Source
		if c.Source != 0 {
			c.PctDiff = c.Diff / c.Source * 100
		}
		comp = append(comp, c)
	}
	return comp
}

func logComparison(label string, comp []Comparison) {
	var total float64
	for _, c := range comp {
		progress.LogStage("aggregate", "%s: %s source=%.0f target=%.0f diff=%.0f (%.4f%%)",
			label, c.Column, c.Source, c.Target, c.Diff, c.PctDiff)
		total += c.Diff
	}
	progress.LogStage("aggregate", "%s: total difference %.0f", label, total)
}

func writeComparison(path string, comp []Comparison) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{{"variable", "source_bg", "target_precinct", "difference", "pct_difference"}}
	for _, c := range comp {
		records = append(records, []string{
			c.Column,
			strconv.FormatFloat(c.Source, 'f', 0, 64),
			strconv.FormatFloat(c.Target, 'f', 0, 64),
			strconv.FormatFloat(c.Diff, 'f', 0, 64),
			strconv.FormatFloat(c.PctDiff, 'f', 8, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// slimPrecincts keeps the identity, election, demographic, and income
// columns and drops everything else the source shapefile carried.
func slimPrecincts(precincts *geo.Layer, yy string) *geo.Layer {
	keep := map[string]bool{}
	for _, c := range idColumns {
		keep[c] = true
	}
	for _, c := range PopColumns(yy) {
		keep[c] = true
	}
	for _, c := range CVAPColumns(yy) {
		keep[c] = true
	}
	for _, c := range IncomeColumns(yy) {
		keep[c] = true
	}
	keep["MEDN_INC"+yy] = true

	slim := &geo.Layer{Geoms: precincts.Geoms}
	for _, attrs := range precincts.Attrs {
		out := make(map[string]interface{}, len(attrs))
		for col, v := range attrs {
			if keep[col] || electionColRe.MatchString(col) {
				out[col] = v
			}
		}
		slim.Attrs = append(slim.Attrs, out)
	}
	return slim
}
