package states_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/politech/processor/internal/states"
)

func TestLookup(t *testing.T) {
	st, err := states.Lookup("az")
	if err != nil {
		t.Fatalf("Lookup(az) failed: %v", err)
	}
	if st.Name != "Arizona" || st.FIPS != "04" || st.Abbr != "az" {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := states.Lookup("ZZ")
	if err == nil {
		t.Fatal("expected error for unknown state code")
	}
	if !strings.Contains(err.Error(), "AZ") {
		t.Errorf("error should list available codes, got: %v", err)
	}
}

func TestCodesCount(t *testing.T) {
	codes := states.Codes()
	// 50 states + DC + PR
	if len(codes) != 52 {
		t.Errorf("expected 52 codes, got %d", len(codes))
	}
}

func TestWorkspacePaths(t *testing.T) {
	st, _ := states.Lookup("SC")
	w := states.NewWorkspace("/data", st, 2023, 2020)

	cases := []struct {
		got, want string
	}{
		{w.BGShapefile(), "/data/inputs/tiger_2020/sc_bg/tl_2020_45_bg.shp"},
		{w.TabblockDir(), "/data/inputs/tiger_2020/sc_tabblock20"},
		{w.BGGeoJSON(), "/data/outputs/sc/sc_bg_all_data_2023.geojson"},
		{w.PrecinctGeoJSON(), "/data/outputs/sc/sc_precinct_all_pop_2023.geojson"},
		{w.DotsGeoJSON(50), "/data/outputs/sc/sc_dots_pop23_unit50.geojson"},
		{w.PlansJSON(2022), "/data/outputs/sc/sc_plans_2022.json"},
		{w.AssignmentsJSON(2022), "/data/outputs/sc/sc_assignments_2022.json"},
	}
	for _, c := range cases {
		if filepath.ToSlash(c.got) != c.want {
			t.Errorf("got %s, want %s", c.got, c.want)
		}
	}

	if w.YearSuffix() != "23" {
		t.Errorf("year suffix: got %s, want 23", w.YearSuffix())
	}
}

func TestACSFileFallback(t *testing.T) {
	base := t.TempDir()
	st, _ := states.Lookup("AZ")
	w := states.NewWorkspace(base, st, 2023, 2020)

	// Old flat layout only.
	oldDir := filepath.Join(base, "inputs", "acs_2023")
	if err := os.MkdirAll(oldDir, 0o755); err != nil {
		t.Fatal(err)
	}
	oldFile := filepath.Join(oldDir, "az_bg_race_2023.csv")
	if err := os.WriteFile(oldFile, []byte("GEOID\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := w.ACSFile("race")
	if err != nil {
		t.Fatalf("ACSFile: %v", err)
	}
	if got != oldFile {
		t.Errorf("expected fallback to %s, got %s", oldFile, got)
	}

	// New per-state layout wins once present.
	if err := os.MkdirAll(w.ACSDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	newFile := filepath.Join(w.ACSDir(), "az_bg_race_2023.csv")
	if err := os.WriteFile(newFile, []byte("GEOID\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err = w.ACSFile("race")
	if err != nil {
		t.Fatalf("ACSFile: %v", err)
	}
	if got != newFile {
		t.Errorf("expected %s, got %s", newFile, got)
	}
}

func TestACSFileMissing(t *testing.T) {
	st, _ := states.Lookup("AZ")
	w := states.NewWorkspace(t.TempDir(), st, 2023, 2020)

	_, err := w.ACSFile("income")
	if err == nil {
		t.Fatal("expected error when no ACS file exists")
	}
	if !strings.Contains(err.Error(), "fetch stage") {
		t.Errorf("error should point at the fetch stage, got: %v", err)
	}
}

func TestFindShapefile(t *testing.T) {
	dir := t.TempDir()
	if _, err := states.FindShapefile(dir); err == nil {
		t.Error("expected error for empty directory")
	}

	if err := os.WriteFile(filepath.Join(dir, "precincts.shp"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "precincts.dbf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := states.FindShapefile(dir)
	if err != nil {
		t.Fatalf("FindShapefile: %v", err)
	}
	if filepath.Base(got) != "precincts.shp" {
		t.Errorf("got %s", got)
	}
}
