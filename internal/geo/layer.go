// Package geo holds the geometry layer model shared by the pipeline stages:
// shapefile/GeoJSON IO, GEOID construction, equal-area projection, and
// largest-overlap unit assignment.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	geom "github.com/twpayne/go-geom"
)

// Layer is a table of features: parallel geometry and attribute slices.
// Geometries are lon/lat (EPSG:4326) polygons or multipolygons unless a
// caller has explicitly projected them.
type Layer struct {
	Geoms []geom.T
	Attrs []map[string]interface{}
}

// Len returns the feature count.
func (l *Layer) Len() int { return len(l.Geoms) }

// Columns returns the set of attribute keys present on any feature.
func (l *Layer) Columns() []string {
	seen := map[string]bool{}
	var cols []string
	for _, attrs := range l.Attrs {
		for k := range attrs {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// HasColumn reports whether any feature carries the attribute.
func (l *Layer) HasColumn(name string) bool {
	for _, attrs := range l.Attrs {
		if _, ok := attrs[name]; ok {
			return true
		}
	}
	return false
}

// Float reads a numeric attribute, tolerating float64, int, and numeric
// strings. Missing or unparseable values read as 0.
func Float(attrs map[string]interface{}, col string) float64 {
	v, ok := attrs[col]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String reads a string attribute, rendering non-strings with %v.
func String(attrs map[string]interface{}, col string) string {
	v, ok := attrs[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ReadShapefile loads a .shp (with its .dbf attributes) into a Layer.
// Polygon parts are assembled by ring orientation: clockwise rings open a
// new polygon, counter-clockwise rings are holes in the preceding one.
func ReadShapefile(path string) (*Layer, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	fields := r.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(f.String())
	}

	layer := &Layer{}
	for r.Next() {
		n, shape := r.Shape()

		attrs := make(map[string]interface{}, len(names))
		for i, name := range names {
			attrs[name] = r.ReadAttribute(n, i)
		}

		g, err := shapeToGeom(shape)
		if err != nil {
			return nil, fmt.Errorf("feature %d in %s: %w", n, path, err)
		}

		layer.Geoms = append(layer.Geoms, g)
		layer.Attrs = append(layer.Attrs, attrs)
	}

	return layer, nil
}

func shapeToGeom(shape shp.Shape) (geom.T, error) {
	switch s := shape.(type) {
	case *shp.Polygon:
		return partsToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		pts := make([]shp.Point, len(s.Points))
		copy(pts, s.Points)
		return partsToMultiPolygon(s.Parts, pts)
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}), nil
	case *shp.Null:
		return geom.NewMultiPolygon(geom.XY), nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func partsToMultiPolygon(parts []int32, points []shp.Point) (geom.T, error) {
	mp := geom.NewMultiPolygon(geom.XY)

	var current [][]geom.Coord
	flush := func() error {
		if current == nil {
			return nil
		}
		p := geom.NewPolygon(geom.XY)
		if _, err := p.SetCoords(current); err != nil {
			return err
		}
		if err := mp.Push(p); err != nil {
			return err
		}
		current = nil
		return nil
	}

	for i := range parts {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if end-start < 4 {
			continue // degenerate ring
		}

		ring := make([]geom.Coord, 0, end-start)
		for _, pt := range points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}

		// Shapefile outer rings wind clockwise (negative shoelace area).
		if ringSignedArea(ring) <= 0 || current == nil {
			if err := flush(); err != nil {
				return nil, err
			}
			current = [][]geom.Coord{ring}
		} else {
			current = append(current, ring)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return mp, nil
}

func ringSignedArea(ring []geom.Coord) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return sum / 2
}

// BGGeoID builds the 12-digit block-group GEOID from TIGER attributes,
// accepting GEOID/GEOID20 directly or the component FIPS columns in either
// their bare or 2020-suffixed form.
func BGGeoID(attrs map[string]interface{}) (string, error) {
	for _, col := range []string{"GEOID", "GEOID20"} {
		if s := String(attrs, col); s != "" {
			return s, nil
		}
	}

	candidates := [][4]string{
		{"STATEFP20", "COUNTYFP20", "TRACTCE20", "BLKGRPCE20"},
		{"STATEFP", "COUNTYFP", "TRACTCE", "BLKGRPCE"},
	}
	widths := [4]int{2, 3, 6, 1}

	for _, cols := range candidates {
		vals := [4]string{}
		ok := true
		for i, col := range cols {
			v := String(attrs, col)
			if v == "" {
				ok = false
				break
			}
			vals[i] = zfill(v, widths[i])
		}
		if ok {
			return vals[0] + vals[1] + vals[2] + vals[3], nil
		}
	}

	return "", fmt.Errorf("could not construct block-group GEOID from attributes")
}

func zfill(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
