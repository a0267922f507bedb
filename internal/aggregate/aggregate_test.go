package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
)

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.csv")
	csv := "GEOID,TOT_POP23,HSP_POP23\n040010001001,120,30\n040010001002,80,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got["040010001001"]["TOT_POP23"] != 120 {
		t.Errorf("TOT_POP23 = %v", got["040010001001"]["TOT_POP23"])
	}
	if got["040010001002"]["HSP_POP23"] != 0 {
		t.Errorf("blank cell should read as 0")
	}
}

func TestReadTableNoGEOID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTable(path); err == nil {
		t.Fatal("expected error for table without GEOID column")
	}
}

func TestDeriveTotals(t *testing.T) {
	attrs := map[string]interface{}{
		"HSP_POP23": 30.0,
		"WHT_POP23": 50.0,
		"BLK_POP23": 20.0,

		"HSP_CVAP23": 10.0,
		"WHT_CVAP23": 40.0,

		"LESS_10K23": 5.0,
		"10K_15K23":  7.0,
	}
	deriveTotals(attrs, "23")

	if got := geo.Float(attrs, "NHSP_POP23"); got != 70 {
		t.Errorf("NHSP_POP23 = %v, want 70", got)
	}
	if got := geo.Float(attrs, "TOT_POP23"); got != 100 {
		t.Errorf("TOT_POP23 = %v, want 100", got)
	}
	if got := geo.Float(attrs, "NHSP_CVAP23"); got != 40 {
		t.Errorf("NHSP_CVAP23 = %v, want 40", got)
	}
	if got := geo.Float(attrs, "TOT_CVAP23"); got != 50 {
		t.Errorf("TOT_CVAP23 = %v, want 50", got)
	}
	if got := geo.Float(attrs, "TOT_HOUS23"); got != 12 {
		t.Errorf("TOT_HOUS23 = %v, want 12", got)
	}
	// Unset groups default to zero rather than stay missing.
	if _, ok := attrs["ASN_POP23"]; !ok {
		t.Error("ASN_POP23 should be filled with 0")
	}
}

func sq(x, y, size float64) geom.T {
	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}); err != nil {
		panic(err)
	}
	return p
}

func TestSumIntoTargetsConservesAssigned(t *testing.T) {
	sources := &geo.Layer{
		Geoms: []geom.T{sq(0, 0, 1), sq(1, 0, 1), sq(10, 10, 1)},
		Attrs: []map[string]interface{}{
			{"TOT_POP23": 100.0},
			{"TOT_POP23": 50.0},
			{"TOT_POP23": 7.0},
		},
	}
	targets := &geo.Layer{
		Geoms: []geom.T{sq(0, 0, 2)},
		Attrs: []map[string]interface{}{{"UNIQUE_ID": "P1"}},
	}

	comp := sumIntoTargets(sources, targets, []int{0, 0, -1}, []string{"TOT_POP23"})

	if got := geo.Float(targets.Attrs[0], "TOT_POP23"); got != 150 {
		t.Errorf("precinct total = %v, want 150", got)
	}
	if len(comp) != 1 {
		t.Fatalf("got %d comparison rows", len(comp))
	}
	if comp[0].Source != 157 || comp[0].Target != 150 || comp[0].Diff != -7 {
		t.Errorf("comparison = %+v", comp[0])
	}
}

func TestSlimPrecinctsKeepsElectionColumns(t *testing.T) {
	precincts := &geo.Layer{
		Geoms: []geom.T{sq(0, 0, 1)},
		Attrs: []map[string]interface{}{{
			"UNIQUE_ID":  "P1",
			"TOT_POP23":  100.0,
			"G24PREDHAR": 40.0,
			"G24PRERTRU": 35.0,
			"GCON01DSHA": 38.0,
			"GCON01RSCH": 33.0,
			"SHAPE_AREA": 1.0,
			"NOTES":      "scratch",
		}},
	}

	slim := slimPrecincts(precincts, "23")
	attrs := slim.Attrs[0]

	for _, want := range []string{"UNIQUE_ID", "TOT_POP23", "G24PREDHAR", "G24PRERTRU", "GCON01DSHA", "GCON01RSCH"} {
		if _, ok := attrs[want]; !ok {
			t.Errorf("column %s should survive", want)
		}
	}
	for _, drop := range []string{"SHAPE_AREA", "NOTES"} {
		if _, ok := attrs[drop]; ok {
			t.Errorf("column %s should be dropped", drop)
		}
	}
}
