package dots

import (
	"math/rand"
	"testing"

	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
)

func TestCountDotsWhole(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := CountDots(150, 50, rng); got != 3 {
		t.Errorf("CountDots(150, 50) = %d, want 3", got)
	}
	if got := CountDots(0, 50, rng); got != 0 {
		t.Errorf("CountDots(0, 50) = %d, want 0", got)
	}
}

func TestCountDotsRandomRoundingIsUnbiased(t *testing.T) {
	// 25 people at 50 per dot is half a dot; over many draws the mean
	// should land near 0.5.
	rng := rand.New(rand.NewSource(7))
	total := 0
	const n = 10000
	for i := 0; i < n; i++ {
		total += CountDots(25, 50, rng)
	}
	mean := float64(total) / n
	if mean < 0.45 || mean > 0.55 {
		t.Errorf("mean dots = %v, want about 0.5", mean)
	}
}

func TestCountDotsDeterministic(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		if CountDots(33, 50, a) != CountDots(33, 50, b) {
			t.Fatal("same seed should produce identical dot counts")
		}
	}
}

func TestEnsurePresence(t *testing.T) {
	dotCounts := [][]int{
		{0, 0}, // populated, needs a dot
		{2, 0}, // already has dots
		{0, 0}, // unpopulated, stays empty
	}
	groupCounts := [][]float64{
		{10, 30},
		{100, 0},
		{0, 0},
	}
	totPop := []float64{40, 100, 0}

	rng := rand.New(rand.NewSource(1))
	fixed := EnsurePresence(dotCounts, groupCounts, totPop, rng)

	if fixed != 1 {
		t.Errorf("fixed = %d, want 1", fixed)
	}
	if dotCounts[0][1] != 1 || dotCounts[0][0] != 0 {
		t.Errorf("dot should go to the majority group, got %v", dotCounts[0])
	}
	if dotCounts[1][0] != 2 {
		t.Errorf("block group with dots should be untouched, got %v", dotCounts[1])
	}
	if dotCounts[2][0] != 0 || dotCounts[2][1] != 0 {
		t.Errorf("unpopulated block group should get no dot, got %v", dotCounts[2])
	}
}

func ring(x, y, size float64) geom.T {
	p := geom.NewPolygon(geom.XY)
	if _, err := p.SetCoords([][]geom.Coord{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}); err != nil {
		panic(err)
	}
	return p
}

func TestSamplePointInside(t *testing.T) {
	g := ring(-96.9, 38.1, 0.2)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		c := SamplePoint(g, rng)
		if !geo.Contains(g, c) {
			t.Fatalf("sampled point %v outside polygon", c)
		}
	}
}

func TestSamplePointDeterministic(t *testing.T) {
	g := ring(-96.9, 38.1, 0.2)
	a := SamplePoint(g, rand.New(rand.NewSource(42)))
	b := SamplePoint(g, rand.New(rand.NewSource(42)))
	if a[0] != b[0] || a[1] != b[1] {
		t.Errorf("same seed should place the same dot: %v vs %v", a, b)
	}
}

func TestSamplePointMultiPolygonFavorsLargeComponent(t *testing.T) {
	big := ring(-97.0, 38.0, 1.0).(*geom.Polygon)
	small := ring(-90.0, 30.0, 0.01).(*geom.Polygon)
	mp := geom.NewMultiPolygon(geom.XY)
	if err := mp.Push(big); err != nil {
		t.Fatal(err)
	}
	if err := mp.Push(small); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(3))
	inBig := 0
	const n = 200
	for i := 0; i < n; i++ {
		c := SamplePoint(mp, rng)
		if geo.Contains(big, c) {
			inBig++
		}
	}
	// The big component is ten thousand times larger; nearly every dot
	// should land there.
	if inBig < n*95/100 {
		t.Errorf("only %d of %d dots in the large component", inBig, n)
	}
}

func TestColor(t *testing.T) {
	if Color("hispanic") != "#e41a1c" {
		t.Errorf("hispanic color = %s", Color("hispanic"))
	}
	if Color("unknown") != "#999999" {
		t.Errorf("unknown group should default to gray")
	}
}
