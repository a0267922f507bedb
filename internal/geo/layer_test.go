package geo_test

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
)

func TestReadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precincts.shp")

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatal(err)
	}
	w.SetFields([]shp.Field{
		shp.StringField("UNIQUE_ID", 20),
		shp.NumberField("TOT_POP23", 10),
	})

	// Outer rings wind clockwise in shapefiles.
	ring := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	w.Write((*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring})))
	if err := w.WriteAttribute(0, 0, "P-001"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAttribute(0, 1, 1234); err != nil {
		t.Fatal(err)
	}
	w.Close()

	layer, err := geo.ReadShapefile(path)
	if err != nil {
		t.Fatalf("ReadShapefile: %v", err)
	}
	if layer.Len() != 1 {
		t.Fatalf("got %d features, want 1", layer.Len())
	}
	if got := strings.TrimSpace(geo.String(layer.Attrs[0], "UNIQUE_ID")); got != "P-001" {
		t.Errorf("UNIQUE_ID = %q, want P-001", got)
	}
	if got := geo.Float(layer.Attrs[0], "TOT_POP23"); got != 1234 {
		t.Errorf("TOT_POP23 = %v, want 1234", got)
	}
	if a := geo.Area(layer.Geoms[0]); math.Abs(a-1) > 1e-9 {
		t.Errorf("area = %v, want 1", a)
	}
}

func TestBGGeoIDDirect(t *testing.T) {
	attrs := map[string]interface{}{"GEOID": "482015423001"}
	got, err := geo.BGGeoID(attrs)
	if err != nil {
		t.Fatalf("BGGeoID: %v", err)
	}
	if got != "482015423001" {
		t.Errorf("got %q, want 482015423001", got)
	}
}

func TestBGGeoIDFromComponents(t *testing.T) {
	attrs := map[string]interface{}{
		"STATEFP":  "48",
		"COUNTYFP": "201",
		"TRACTCE":  "542300",
		"BLKGRPCE": "1",
	}
	got, err := geo.BGGeoID(attrs)
	if err != nil {
		t.Fatalf("BGGeoID: %v", err)
	}
	if got != "482015423001" {
		t.Errorf("got %q, want 482015423001", got)
	}
}

func TestBGGeoIDPadsComponents(t *testing.T) {
	attrs := map[string]interface{}{
		"STATEFP20":  "6",
		"COUNTYFP20": "37",
		"TRACTCE20":  "101",
		"BLKGRPCE20": "2",
	}
	got, err := geo.BGGeoID(attrs)
	if err != nil {
		t.Fatalf("BGGeoID: %v", err)
	}
	if got != "060370001012" {
		t.Errorf("got %q, want 060370001012", got)
	}
}

func TestBGGeoIDMissing(t *testing.T) {
	if _, err := geo.BGGeoID(map[string]interface{}{"NAME": "x"}); err == nil {
		t.Fatal("expected error for attributes with no GEOID components")
	}
}

func TestFloat(t *testing.T) {
	attrs := map[string]interface{}{
		"a": 1.5,
		"b": " 42 ",
		"c": 7,
		"d": "not a number",
	}
	cases := []struct {
		col  string
		want float64
	}{
		{"a", 1.5},
		{"b", 42},
		{"c", 7},
		{"d", 0},
		{"missing", 0},
	}
	for _, tc := range cases {
		if got := geo.Float(attrs, tc.col); got != tc.want {
			t.Errorf("Float(%q) = %v, want %v", tc.col, got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	attrs := map[string]interface{}{"a": "hi", "b": 3}
	if got := geo.String(attrs, "a"); got != "hi" {
		t.Errorf("String(a) = %q", got)
	}
	if got := geo.String(attrs, "b"); got != "3" {
		t.Errorf("String(b) = %q", got)
	}
	if got := geo.String(attrs, "missing"); got != "" {
		t.Errorf("String(missing) = %q", got)
	}
}

func TestContains(t *testing.T) {
	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}); err != nil {
		t.Fatal(err)
	}

	if !geo.Contains(p, geom.Coord{2, 2}) {
		t.Error("point in shell should be contained")
	}
	if geo.Contains(p, geom.Coord{5, 5}) {
		t.Error("point in hole should not be contained")
	}
	if geo.Contains(p, geom.Coord{20, 20}) {
		t.Error("point outside should not be contained")
	}
}

func TestRepresentativePointInsideHole(t *testing.T) {
	// A polygon whose bbox center falls inside its hole.
	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{3, 3}, {7, 3}, {7, 7}, {3, 7}, {3, 3}},
	}); err != nil {
		t.Fatal(err)
	}

	c := geo.RepresentativePoint(p)
	if !geo.Contains(p, c) {
		t.Errorf("representative point %v not inside polygon", c)
	}
}
