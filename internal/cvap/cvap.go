// Package cvap reads the Census Bureau's citizen-voting-age-population
// special tabulation, distributed as one national BlockGr.csv.
package cvap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/politech/processor/internal/progress"
)

// Line numbers in the CVAP special tab. Lines 8 through 12 are the
// multiracial categories and get combined into one two-or-more bucket.
var lineColumns = map[int]string{
	1:  "TOT_CVAP",
	13: "HSP_CVAP",
	7:  "WHT_CVAP",
	5:  "BLK_CVAP",
	3:  "AIA_CVAP",
	4:  "ASN_CVAP",
	6:  "HPI_CVAP",
}

// Columns lists the per-group CVAP column bases in their output order.
var Columns = []string{
	"TOT_CVAP", "HSP_CVAP", "WHT_CVAP", "BLK_CVAP",
	"AIA_CVAP", "ASN_CVAP", "HPI_CVAP", "2OM_CVAP",
}

// Load reads BlockGr.csv and pivots it to one record per block group,
// keeping only rows whose GEOID falls in stateFIPS. The file ships as
// latin-1 with geography names that are not valid UTF-8.
func Load(path, stateFIPS, yearSuffix string) (map[string]map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CVAP file %s (download the CVAP special tab first): %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read CVAP header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"geoid", "lnnumber", "cvap_est"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CVAP file %s missing column %q", path, required)
		}
	}

	out := map[string]map[string]float64{}
	rows := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CVAP row: %w", err)
		}
		rows++

		// geoid looks like 15000US040010001001; the BG GEOID is the
		// last 12 characters and the state FIPS the two before tract.
		raw := rec[col["geoid"]]
		if len(raw) < 12 {
			continue
		}
		geoid := raw[len(raw)-12:]
		if stateFIPS != "" && !strings.HasPrefix(geoid, stateFIPS) {
			continue
		}

		line, err := strconv.Atoi(strings.TrimSpace(rec[col["lnnumber"]]))
		if err != nil {
			continue
		}
		est, err := strconv.ParseFloat(strings.TrimSpace(rec[col["cvap_est"]]), 64)
		if err != nil {
			est = 0
		}

		bg := out[geoid]
		if bg == nil {
			bg = map[string]float64{}
			for _, c := range Columns {
				bg[c+yearSuffix] = 0
			}
			out[geoid] = bg
		}

		if name, ok := lineColumns[line]; ok {
			bg[name+yearSuffix] = est
		} else if line >= 8 && line <= 12 {
			bg["2OM_CVAP"+yearSuffix] += est
		}
	}

	progress.LogStage("aggregate", "CVAP: %d rows scanned, %d block groups kept for state %s", rows, len(out), stateFIPS)
	return out, nil
}
