package geo_test

import (
	"path/filepath"
	"testing"

	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
)

func TestGeoJSONRoundTrip(t *testing.T) {
	layer := &geo.Layer{
		Geoms: []geom.T{square(-96.9, 38.1, 0.1)},
		Attrs: []map[string]interface{}{
			{"GEOID": "482015423001", "TOT_POP20": 1200.0},
		},
	}

	path := filepath.Join(t.TempDir(), "bg.geojson")
	if err := geo.WriteGeoJSON(path, layer); err != nil {
		t.Fatalf("WriteGeoJSON: %v", err)
	}

	got, err := geo.ReadGeoJSON(path)
	if err != nil {
		t.Fatalf("ReadGeoJSON: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("got %d features, want 1", got.Len())
	}
	if id := geo.String(got.Attrs[0], "GEOID"); id != "482015423001" {
		t.Errorf("GEOID = %q", id)
	}
	if pop := geo.Float(got.Attrs[0], "TOT_POP20"); pop != 1200 {
		t.Errorf("TOT_POP20 = %v", pop)
	}
	if geo.Area(got.Geoms[0]) == 0 {
		t.Error("geometry lost in round trip")
	}
}
