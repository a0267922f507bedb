package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// WriteGeoJSON writes a layer as a GeoJSON FeatureCollection.
func WriteGeoJSON(path string, layer *Layer) error {
	fc := geojson.FeatureCollection{}
	for i, g := range layer.Geoms {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   g,
			Properties: layer.Attrs[i],
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadGeoJSON loads a GeoJSON FeatureCollection into a Layer.
func ReadGeoJSON(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	layer := &Layer{}
	for _, f := range fc.Features {
		attrs := f.Properties
		if attrs == nil {
			attrs = map[string]interface{}{}
		}
		layer.Geoms = append(layer.Geoms, f.Geometry)
		layer.Attrs = append(layer.Attrs, attrs)
	}
	return layer, nil
}
