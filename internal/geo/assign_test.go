package geo_test

import (
	"testing"

	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
)

func square(minLon, minLat, size float64) geom.T {
	p := geom.NewPolygon(geom.XY)
	_, err := p.SetCoords([][]geom.Coord{{
		{minLon, minLat},
		{minLon + size, minLat},
		{minLon + size, minLat + size},
		{minLon, minLat + size},
		{minLon, minLat},
	}})
	if err != nil {
		panic(err)
	}
	return p
}

func TestAssignContainedSources(t *testing.T) {
	// Two side-by-side target cells near the projection's center, four
	// small sources fully inside one cell each.
	targets := []geom.T{
		square(-97.0, 38.0, 0.5),
		square(-96.5, 38.0, 0.5),
	}
	sources := []geom.T{
		square(-96.9, 38.1, 0.1),
		square(-96.7, 38.3, 0.1),
		square(-96.4, 38.1, 0.1),
		square(-96.2, 38.3, 0.1),
	}

	got := geo.Assign(sources, targets)
	want := []int{0, 0, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d assigned to %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAssignLargestOverlapWins(t *testing.T) {
	targets := []geom.T{
		square(-97.0, 38.0, 0.5),
		square(-96.5, 38.0, 0.5),
	}
	// Straddles the shared edge at -96.5 but sits mostly in the right cell.
	straddler := square(-96.6, 38.2, 0.3)

	got := geo.Assign([]geom.T{straddler}, targets)
	if got[0] != 1 {
		t.Errorf("straddling source assigned to %d, want 1", got[0])
	}
}

func TestAssignNoOverlap(t *testing.T) {
	targets := []geom.T{square(-97.0, 38.0, 0.5)}
	outside := square(-90.0, 30.0, 0.1)

	got := geo.Assign([]geom.T{outside}, targets)
	if got[0] != -1 {
		t.Errorf("disjoint source assigned to %d, want -1", got[0])
	}
}
