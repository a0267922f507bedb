package census

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// ACS table B03002: Hispanic-or-Latino origin by race. Every non-total
// variable here is a not-Hispanic count except B03002_012E.
var raceVars = []string{
	"B03002_001E",
	"B03002_003E",
	"B03002_004E",
	"B03002_005E",
	"B03002_006E",
	"B03002_007E",
	"B03002_008E",
	"B03002_009E",
	"B03002_012E",
}

var raceGroups = []struct {
	variable string
	prefix   string
}{
	{"B03002_003E", "WHT"},
	{"B03002_004E", "BLK"},
	{"B03002_005E", "AIA"},
	{"B03002_006E", "ASN"},
	{"B03002_007E", "HPI"},
	{"B03002_008E", "OTH"},
	{"B03002_009E", "2OM"},
}

// ACS table B19001: household income brackets.
var incomeVars = []struct {
	variable string
	column   string
}{
	{"B19001_001E", "TOT_HOUS"},
	{"B19001_002E", "LESS_10K"},
	{"B19001_003E", "10K_15K"},
	{"B19001_004E", "15K_20K"},
	{"B19001_005E", "20K_25K"},
	{"B19001_006E", "25K_30K"},
	{"B19001_007E", "30K_35K"},
	{"B19001_008E", "35K_40K"},
	{"B19001_009E", "40K_45K"},
	{"B19001_010E", "45K_50K"},
	{"B19001_011E", "50K_60K"},
	{"B19001_012E", "60K_75K"},
	{"B19001_013E", "75K_100K"},
	{"B19001_014E", "100_125K"},
	{"B19001_015E", "125_150K"},
	{"B19001_016E", "150_200K"},
	{"B19001_017E", "200K_MOR"},
}

// Counties lists the distinct county FIPS codes in a block-group layer.
func Counties(bg *geo.Layer) []string {
	seen := map[string]bool{}
	var counties []string
	for _, attrs := range bg.Attrs {
		c := geo.String(attrs, "COUNTYFP")
		if c == "" {
			c = geo.String(attrs, "COUNTYFP20")
		}
		if c != "" && !seen[c] {
			seen[c] = true
			counties = append(counties, c)
		}
	}
	sort.Strings(counties)
	return counties
}

func (c *Client) fetchAllCounties(ctx context.Context, year int, variables []string, stateFIPS string, counties []string) ([]map[string]string, error) {
	var rows []map[string]string
	for _, county := range counties {
		countyRows, err := c.BlockGroups(ctx, year, variables, stateFIPS, county)
		if err != nil {
			return nil, err
		}
		rows = append(rows, countyRows...)
	}
	return rows, nil
}

func acsFloat(row map[string]string, variable string) float64 {
	f, err := strconv.ParseFloat(row[variable], 64)
	if err != nil {
		return 0
	}
	return f
}

// bgGeoID extracts the 12-digit block-group GEOID from the API's GEO_ID,
// which arrives as 1500000US<geoid>.
func bgGeoID(row map[string]string) string {
	id := row["GEO_ID"]
	if len(id) > 12 {
		return id[len(id)-12:]
	}
	return id
}

// FetchRace pulls B03002 for every county in the block-group layer and
// writes the per-group population CSV. The file carries the seven
// race-by-group columns plus Hispanic, not-Hispanic, and total, all with the
// 2-digit ACS year suffix.
func (c *Client) FetchRace(ctx context.Context, ws states.Workspace, bg *geo.Layer) (string, error) {
	progress.LogStage("fetch", "fetching ACS %d race (B03002) for %s", ws.ACSYear, ws.State.Abbr)

	rows, err := c.fetchAllCounties(ctx, ws.ACSYear, raceVars, ws.State.FIPS, Counties(bg))
	if err != nil {
		return "", fmt.Errorf("fetch race data: %w", err)
	}

	yy := ws.YearSuffix()
	header := []string{"GEOID", "TOT_POP" + yy, "HSP_POP" + yy, "NHSP_POP" + yy}
	for _, g := range raceGroups {
		header = append(header, g.prefix+"_POP"+yy)
	}

	records := [][]string{header}
	for _, row := range rows {
		hsp := acsFloat(row, "B03002_012E")
		var nhsp float64
		groupCounts := make([]float64, len(raceGroups))
		for i, g := range raceGroups {
			groupCounts[i] = acsFloat(row, g.variable)
			nhsp += groupCounts[i]
		}

		rec := []string{
			bgGeoID(row),
			formatCount(hsp + nhsp),
			formatCount(hsp),
			formatCount(nhsp),
		}
		for _, v := range groupCounts {
			rec = append(rec, formatCount(v))
		}
		records = append(records, rec)
	}

	path := filepath.Join(ws.ACSDir(), fmt.Sprintf("%s_bg_race_%d.csv", ws.State.Abbr, ws.ACSYear))
	if err := writeCSV(path, records); err != nil {
		return "", err
	}
	progress.LogWrite("fetch", path, len(records)-1)
	return path, nil
}

// FetchIncome pulls B19001 household income brackets and writes the income
// CSV with year-suffixed bracket columns.
func (c *Client) FetchIncome(ctx context.Context, ws states.Workspace, bg *geo.Layer) (string, error) {
	progress.LogStage("fetch", "fetching ACS %d income (B19001) for %s", ws.ACSYear, ws.State.Abbr)

	vars := make([]string, len(incomeVars))
	for i, v := range incomeVars {
		vars[i] = v.variable
	}

	rows, err := c.fetchAllCounties(ctx, ws.ACSYear, vars, ws.State.FIPS, Counties(bg))
	if err != nil {
		return "", fmt.Errorf("fetch income data: %w", err)
	}

	yy := ws.YearSuffix()
	header := []string{"GEOID"}
	for _, v := range incomeVars {
		header = append(header, v.column+yy)
	}

	records := [][]string{header}
	for _, row := range rows {
		rec := []string{bgGeoID(row)}
		for _, v := range incomeVars {
			rec = append(rec, formatCount(acsFloat(row, v.variable)))
		}
		records = append(records, rec)
	}

	path := filepath.Join(ws.ACSDir(), fmt.Sprintf("%s_bg_income_%d.csv", ws.State.Abbr, ws.ACSYear))
	if err := writeCSV(path, records); err != nil {
		return "", err
	}
	progress.LogWrite("fetch", path, len(records)-1)
	return path, nil
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
