// Package dots generates dot-density point layers from block-group
// demographics: one dot per N people, placed uniformly at random inside
// the block group it counts for.
package dots

import (
	"fmt"
	"math"
	"math/rand"

	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the dot generation stage for one state.
type Config struct {
	Workspace states.Workspace
	DotUnit   int
	Seed      int64
}

// Group is one dot-density population group.
type Group struct {
	Name   string
	Column string // column base, year suffix appended at runtime
	Color  string
}

// Groups lists the population groups rendered as dots, in a fixed order so
// a seed always produces the same layer.
var Groups = []Group{
	{"white", "WHT_POP", "#d9d9d9"},
	{"black", "BLK_POP", "#000000"},
	{"asian", "ASN_POP", "#377eb8"},
	{"hispanic", "HSP_POP", "#e41a1c"},
	{"native", "AIA_POP", "#4daf4a"},
	{"nhpi", "HPI_POP", "#ff7f00"},
	{"other", "OTH_POP", "#984ea3"},
	{"two_or_more", "2OM_POP", "#a65628"},
}

// Color returns the display color for a group name, defaulting to gray.
func Color(group string) string {
	for _, g := range Groups {
		if g.Name == group {
			return g.Color
		}
	}
	return "#999999"
}

// CountDots converts a population count to a dot count with random
// rounding: the fractional remainder becomes one extra dot with matching
// probability, so totals stay unbiased.
func CountDots(count float64, dotUnit int, rng *rand.Rand) int {
	if count <= 0 || dotUnit <= 0 {
		return 0
	}
	expected := count / float64(dotUnit)
	base := math.Floor(expected)
	n := int(base)
	if rng.Float64() < expected-base {
		n++
	}
	return n
}

// EnsurePresence gives every populated block group at least one dot. A
// block group whose dot counts all rounded to zero gets a single dot for
// its largest group, ties broken randomly.
func EnsurePresence(dotCounts [][]int, groupCounts [][]float64, totPop []float64, rng *rand.Rand) int {
	fixed := 0
	for i := range dotCounts {
		if totPop[i] <= 0 {
			continue
		}
		total := 0
		for _, n := range dotCounts[i] {
			total += n
		}
		if total > 0 {
			continue
		}

		max := 0.0
		var top []int
		for g, c := range groupCounts[i] {
			switch {
			case c > max:
				max = c
				top = []int{g}
			case c == max && c > 0:
				top = append(top, g)
			}
		}
		if max <= 0 {
			continue
		}
		dotCounts[i][top[rng.Intn(len(top))]]++
		fixed++
	}
	return fixed
}

// SamplePoint draws a uniform random point inside a polygonal geometry.
// Multipolygon components are chosen proportionally to their equal-area
// projected area. Rejection sampling gives up after 2000 tries and falls
// back to a guaranteed interior point.
func SamplePoint(g geom.T, rng *rand.Rand) geom.Coord {
	target := g
	if mp, ok := g.(*geom.MultiPolygon); ok && mp.NumPolygons() > 1 {
		target = pickComponent(mp, rng)
	}

	b := target.Bounds()
	if b == nil || b.Max(0) <= b.Min(0) || b.Max(1) <= b.Min(1) {
		return geo.RepresentativePoint(target)
	}

	for i := 0; i < 2000; i++ {
		c := geom.Coord{
			b.Min(0) + rng.Float64()*(b.Max(0)-b.Min(0)),
			b.Min(1) + rng.Float64()*(b.Max(1)-b.Min(1)),
		}
		if geo.Contains(target, c) {
			return c
		}
	}
	return geo.RepresentativePoint(target)
}

func pickComponent(mp *geom.MultiPolygon, rng *rand.Rand) geom.T {
	areas := make([]float64, mp.NumPolygons())
	var total float64
	for i := 0; i < mp.NumPolygons(); i++ {
		areas[i] = geo.Area(geo.Transform(mp.Polygon(i), geo.AlbersConus))
		total += areas[i]
	}
	if total <= 0 {
		return mp.Polygon(0)
	}

	r := rng.Float64() * total
	for i, a := range areas {
		r -= a
		if r <= 0 {
			return mp.Polygon(i)
		}
	}
	return mp.Polygon(mp.NumPolygons() - 1)
}

// Run reads the enriched block-group layer and writes the combined dot
// GeoJSON. The same seed always yields the same dots.
func Run(cfg Config) error {
	ws := cfg.Workspace
	yy := ws.YearSuffix()

	bg, err := geo.ReadGeoJSON(ws.BGGeoJSON())
	if err != nil {
		return fmt.Errorf("load block groups (run the aggregate stage first): %w", err)
	}
	if !bg.HasColumn("TOT_POP" + yy) {
		return fmt.Errorf("block-group layer %s has no TOT_POP%s column", ws.BGGeoJSON(), yy)
	}
	progress.LogStage("dots", "loaded %d block groups, dot unit %d, seed %d", bg.Len(), cfg.DotUnit, cfg.Seed)

	rng := rand.New(rand.NewSource(cfg.Seed))

	totPop := make([]float64, bg.Len())
	groupCounts := make([][]float64, bg.Len())
	dotCounts := make([][]int, bg.Len())
	for i, attrs := range bg.Attrs {
		totPop[i] = geo.Float(attrs, "TOT_POP"+yy)
		groupCounts[i] = make([]float64, len(Groups))
		dotCounts[i] = make([]int, len(Groups))
		for g, grp := range Groups {
			groupCounts[i][g] = geo.Float(attrs, grp.Column+yy)
			dotCounts[i][g] = CountDots(groupCounts[i][g], cfg.DotUnit, rng)
		}
	}

	if fixed := EnsurePresence(dotCounts, groupCounts, totPop, rng); fixed > 0 {
		progress.LogStage("dots", "presence rule added 1 dot to %d populated block groups", fixed)
	}

	out := &geo.Layer{}
	for i, attrs := range bg.Attrs {
		g := bg.Geoms[i]
		if g == nil || geo.Area(g) == 0 {
			continue
		}
		geoid := geo.String(attrs, "GEOID")

		for gi, grp := range Groups {
			for n := 0; n < dotCounts[i][gi]; n++ {
				c := SamplePoint(g, rng)
				out.Geoms = append(out.Geoms, geom.NewPointFlat(geom.XY, []float64{c[0], c[1]}))
				out.Attrs = append(out.Attrs, map[string]interface{}{
					"group":    grp.Name,
					"bg_geoid": geoid,
				})
			}
		}
	}

	if out.Len() == 0 {
		return fmt.Errorf("no dots generated; check demographic columns and dot unit %d", cfg.DotUnit)
	}

	if err := states.EnsureDirs(ws.OutputsDir()); err != nil {
		return err
	}
	path := ws.DotsGeoJSON(cfg.DotUnit)
	if err := geo.WriteGeoJSON(path, out); err != nil {
		return err
	}
	progress.LogWrite("dots", path, out.Len())
	return nil
}
