package store

import (
	"encoding/json"
	"os"
	"testing"

	geom "github.com/twpayne/go-geom"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/politech/processor/internal/geo"
)

func TestRowIDsDeterministic(t *testing.T) {
	a := PrecinctRowID("KS", "P-001")
	b := PrecinctRowID("KS", "P-001")
	if a != b {
		t.Error("same precinct should always get the same row ID")
	}
	if PrecinctRowID("KS", "P-002") == a {
		t.Error("different precincts should get different row IDs")
	}
	if AssignmentRowID("KS_CONG_ENACTED_2022", "P-001") == a {
		t.Error("assignment and precinct namespaces should not collide")
	}
}

func TestPrecinctModel(t *testing.T) {
	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
	}}); err != nil {
		t.Fatal(err)
	}
	attrs := map[string]interface{}{
		"UNIQUE_ID":  "P-001",
		"COUNTYFP":   "001",
		"COUNTY_NAM": "Allen",
		"PRECINCTNA": "Allen 1",
		"TOT_POP23":  1234.0,
		"TOT_CVAP23": 900.0,
		"TOT_HOUS23": 400.0,
	}

	row, err := precinctModel("KS", "23", p, attrs)
	if err != nil {
		t.Fatalf("precinctModel: %v", err)
	}

	if row.State != "KS" || row.PrecinctID != "P-001" {
		t.Errorf("identity = %s/%s", row.State, row.PrecinctID)
	}
	if row.TotalPop != 1234 || row.TotalCVAP != 900 || row.Households != 400 {
		t.Errorf("rollups = %d/%d/%d", row.TotalPop, row.TotalCVAP, row.Households)
	}
	if row.ID != PrecinctRowID("KS", "P-001") {
		t.Error("row ID should be deterministic on state and precinct")
	}

	var g struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(row.Geometry, &g); err != nil {
		t.Fatalf("geometry is not valid JSON: %v", err)
	}
	if g.Type != "Polygon" {
		t.Errorf("geometry type = %q", g.Type)
	}

	var stored map[string]interface{}
	if err := json.Unmarshal(row.Attributes, &stored); err != nil {
		t.Fatalf("attributes are not valid JSON: %v", err)
	}
	if stored["UNIQUE_ID"] != "P-001" {
		t.Errorf("attributes blob = %v", stored)
	}
}

func TestLoadPrecinctsIntegration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping database integration test")
	}

	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Init(d); err != nil {
		t.Fatalf("Init: %v", err)
	}

	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
	}}); err != nil {
		t.Fatal(err)
	}
	layer := &geo.Layer{
		Geoms: []geom.T{p},
		Attrs: []map[string]interface{}{{
			"UNIQUE_ID": "TEST-P1",
			"TOT_POP23": 10.0,
		}},
	}

	if err := LoadPrecincts(d, "ZZ", "23", layer); err != nil {
		t.Fatalf("LoadPrecincts: %v", err)
	}
	// Loading twice must not duplicate rows.
	if err := LoadPrecincts(d, "ZZ", "23", layer); err != nil {
		t.Fatalf("second LoadPrecincts: %v", err)
	}

	var count int64
	if err := d.Model(&Precinct{}).Where("state = ?", "ZZ").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("precinct count = %d, want 1", count)
	}

	if err := d.Where("state = ?", "ZZ").Delete(&Precinct{}).Error; err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
