package aggregate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadTable loads a GEOID-keyed CSV into a map of numeric columns. Blank
// and non-numeric cells read as 0.
func ReadTable(path string) (map[string]map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	header := records[0]
	geoidIdx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "GEOID") {
			geoidIdx = i
			break
		}
	}
	if geoidIdx < 0 {
		return nil, fmt.Errorf("%s has no GEOID column", path)
	}

	out := make(map[string]map[string]float64, len(records)-1)
	for _, rec := range records[1:] {
		if geoidIdx >= len(rec) {
			continue
		}
		row := make(map[string]float64, len(header)-1)
		for i, col := range header {
			if i == geoidIdx || i >= len(rec) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				v = 0
			}
			row[strings.TrimSpace(col)] = v
		}
		out[rec[geoidIdx]] = row
	}
	return out, nil
}
