package geo

import (
	"math"

	geom "github.com/twpayne/go-geom"
)

// Area and overlap math runs in a CONUS Albers equal-area projection (the
// EPSG:5070 parameters on a sphere, which is plenty for weighting), and
// plotting runs in Web Mercator.

const earthRadius = 6378137.0

var (
	albersN    float64
	albersC    float64
	albersRho0 float64
)

func init() {
	const (
		phi1 = 29.5 * math.Pi / 180
		phi2 = 45.5 * math.Pi / 180
		phi0 = 23.0 * math.Pi / 180
	)
	albersN = (math.Sin(phi1) + math.Sin(phi2)) / 2
	albersC = math.Cos(phi1)*math.Cos(phi1) + 2*albersN*math.Sin(phi1)
	albersRho0 = earthRadius / albersN * math.Sqrt(albersC-2*albersN*math.Sin(phi0))
}

// AlbersConus projects lon/lat degrees to equal-area meters.
func AlbersConus(lon, lat float64) (float64, float64) {
	const lon0 = -96.0 * math.Pi / 180
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	rho := earthRadius / albersN * math.Sqrt(albersC-2*albersN*math.Sin(phi))
	theta := albersN * (lam - lon0)

	return rho * math.Sin(theta), albersRho0 - rho*math.Cos(theta)
}

// WebMercator projects lon/lat degrees to EPSG:3857 meters.
func WebMercator(lon, lat float64) (float64, float64) {
	x := earthRadius * lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// Transform returns a copy of g with every coordinate mapped through f.
func Transform(g geom.T, f func(x, y float64) (float64, float64)) geom.T {
	switch t := g.(type) {
	case *geom.Point:
		flat := transformFlat(t.FlatCoords(), t.Stride(), f)
		return geom.NewPointFlat(t.Layout(), flat)
	case *geom.Polygon:
		flat := transformFlat(t.FlatCoords(), t.Stride(), f)
		return geom.NewPolygonFlat(t.Layout(), flat, t.Ends())
	case *geom.MultiPolygon:
		flat := transformFlat(t.FlatCoords(), t.Stride(), f)
		return geom.NewMultiPolygonFlat(t.Layout(), flat, t.Endss())
	default:
		return g
	}
}

func transformFlat(src []float64, stride int, f func(x, y float64) (float64, float64)) []float64 {
	flat := make([]float64, len(src))
	copy(flat, src)
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = f(flat[i], flat[i+1])
	}
	return flat
}

// Area returns the planar area of a polygonal geometry in the units of its
// coordinates (squared).
func Area(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return math.Abs(t.Area())
	case *geom.MultiPolygon:
		return math.Abs(t.Area())
	default:
		return 0
	}
}
