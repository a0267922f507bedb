package cvap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/politech/processor/internal/cvap"
)

func writeCVAP(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BlockGr.csv")
	header := "geoname,lntitle,geoid,lnnumber,cvap_est,cvap_moe\n"
	if err := os.WriteFile(path, []byte(header+rows), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPivot(t *testing.T) {
	path := writeCVAP(t, ""+
		"Block Group 1,Total,15000US040010001001,1,100,5\n"+
		"Block Group 1,Hispanic or Latino,15000US040010001001,13,30,5\n"+
		"Block Group 1,White Alone,15000US040010001001,7,50,5\n"+
		"Block Group 1,Black or African American Alone,15000US040010001001,5,10,5\n"+
		"Block Group 1,Remainder of Two or More Race Responses,15000US040010001001,12,4,5\n"+
		"Block Group 1,American Indian and White,15000US040010001001,8,6,5\n")

	got, err := cvap.Load(path, "04", "23")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	bg, ok := got["040010001001"]
	if !ok {
		t.Fatalf("block group missing; got keys %v", got)
	}

	want := map[string]float64{
		"TOT_CVAP23": 100,
		"HSP_CVAP23": 30,
		"WHT_CVAP23": 50,
		"BLK_CVAP23": 10,
		"AIA_CVAP23": 0,
		"2OM_CVAP23": 10, // lines 8 and 12 combined
	}
	for col, v := range want {
		if bg[col] != v {
			t.Errorf("%s = %v, want %v", col, bg[col], v)
		}
	}
}

func TestLoadFiltersState(t *testing.T) {
	path := writeCVAP(t, ""+
		"BG,Total,15000US040010001001,1,100,5\n"+
		"BG,Total,15000US060370001001,1,200,5\n")

	got, err := cvap.Load(path, "06", "23")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d block groups, want 1", len(got))
	}
	if _, ok := got["060370001001"]; !ok {
		t.Error("expected the California block group to survive the filter")
	}
}

func TestLoadToleratesLatin1(t *testing.T) {
	// 0xF1 is n-with-tilde in latin-1 and invalid UTF-8 on its own.
	path := writeCVAP(t, "Do\xf1a Ana,Total,15000US350130001001,1,40,5\n")

	got, err := cvap.Load(path, "35", "23")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["350130001001"]["TOT_CVAP23"] != 40 {
		t.Error("latin-1 row not parsed")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BlockGr.csv")
	if err := os.WriteFile(path, []byte("geoid,something\nx,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cvap.Load(path, "04", "23"); err == nil {
		t.Fatal("expected error for missing lnnumber column")
	}
}
