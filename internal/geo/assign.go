package geo

import (
	"github.com/engelsjk/polygol"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Assign maps each source polygon to the index of the target polygon with
// the largest intersection area, or -1 when a source overlaps no target.
// Geometries are expected in lon/lat; overlap areas are measured in the
// CONUS equal-area projection so the winner is not distorted by latitude.
func Assign(sources, targets []geom.T) []int {
	projTargets := make([]geom.T, len(targets))
	targetBounds := make([]*geom.Bounds, len(targets))
	targetGeoms := make([][][][][]float64, len(targets))
	for i, t := range targets {
		projTargets[i] = Transform(t, AlbersConus)
		targetBounds[i] = projTargets[i].Bounds()
		targetGeoms[i] = toPolygol(projTargets[i])
	}

	out := make([]int, len(sources))
	for i, s := range sources {
		ps := Transform(s, AlbersConus)
		pg := toPolygol(ps)
		bounds := ps.Bounds()

		best := -1
		bestArea := 0.0
		for j := range projTargets {
			if !boundsOverlap(bounds, targetBounds[j]) {
				continue
			}
			inter, err := polygol.Intersection(pg, targetGeoms[j])
			if err != nil {
				continue
			}
			a := polygolArea(inter)
			if a > bestArea {
				bestArea = a
				best = j
			}
		}
		out[i] = best
	}
	return out
}

func boundsOverlap(a, b *geom.Bounds) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Min(0) <= b.Max(0) && b.Min(0) <= a.Max(0) &&
		a.Min(1) <= b.Max(1) && b.Min(1) <= a.Max(1)
}

// toPolygol converts a polygonal geometry to polygol's multipolygon form:
// polygons -> rings -> points -> [x, y].
func toPolygol(g geom.T) [][][][]float64 {
	var polys []*geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		polys = []*geom.Polygon{t}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
	default:
		return nil
	}

	out := make([][][][]float64, 0, len(polys))
	for _, p := range polys {
		rings := make([][][]float64, 0, p.NumLinearRings())
		for r := 0; r < p.NumLinearRings(); r++ {
			lr := p.LinearRing(r)
			flat := lr.FlatCoords()
			stride := lr.Stride()
			ring := make([][]float64, 0, len(flat)/stride)
			for i := 0; i+1 < len(flat); i += stride {
				ring = append(ring, []float64{flat[i], flat[i+1]})
			}
			rings = append(rings, ring)
		}
		out = append(out, rings)
	}
	return out
}

func polygolArea(g [][][][]float64) float64 {
	var total float64
	for _, poly := range g {
		for ri, ring := range poly {
			var sum float64
			for i := 0; i < len(ring)-1; i++ {
				sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
			}
			a := sum / 2
			if a < 0 {
				a = -a
			}
			if ri == 0 {
				total += a
			} else {
				total -= a // hole
			}
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// Contains reports whether a lon/lat point falls inside a polygonal
// geometry, honoring holes.
func Contains(g geom.T, c geom.Coord) bool {
	var polys []*geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		polys = []*geom.Polygon{t}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
	default:
		return false
	}

	for _, p := range polys {
		if p.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(p.Layout(), c, p.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for r := 1; r < p.NumLinearRings(); r++ {
			if xy.IsPointInRing(p.Layout(), c, p.LinearRing(r).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// RepresentativePoint returns a point guaranteed to fall inside the
// geometry: the centroid when it is interior, otherwise a point found by
// scanning the horizontal line through the bbox center.
func RepresentativePoint(g geom.T) geom.Coord {
	b := g.Bounds()
	if b == nil {
		return geom.Coord{0, 0}
	}

	cx := (b.Min(0) + b.Max(0)) / 2
	cy := (b.Min(1) + b.Max(1)) / 2
	center := geom.Coord{cx, cy}
	if Contains(g, center) {
		return center
	}

	// Walk the center line from left to right until we land inside.
	const steps = 256
	width := b.Max(0) - b.Min(0)
	for i := 1; i < steps; i++ {
		x := b.Min(0) + width*float64(i)/steps
		c := geom.Coord{x, cy}
		if Contains(g, c) {
			return c
		}
	}
	return center
}
