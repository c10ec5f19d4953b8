// Package area gates requests against an optional area-of-operation polygon.
package area

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Area is the area of operation. The zero-value (nil) Area contains every
// point, so a service without a configured polygon accepts all positions.
type Area struct {
	polygons []orb.Polygon
}

// Load reads a GeoJSON file holding the area polygon(s) in the working CRS.
// An empty filename yields an unbounded area.
func Load(filename string) (*Area, error) {
	if filename == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading area file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing area file: %w", err)
	}

	a := &Area{}
	for _, feature := range fc.Features {
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			a.polygons = append(a.polygons, g)
		case orb.MultiPolygon:
			a.polygons = append(a.polygons, g...)
		}
	}
	if len(a.polygons) == 0 {
		return nil, fmt.Errorf("area file %s contains no polygons", filename)
	}
	return a, nil
}

// Contains reports whether (x, y) lies inside the area. A nil Area contains
// everything.
func (a *Area) Contains(x, y float64) bool {
	if a == nil {
		return true
	}
	point := orb.Point{x, y}
	for _, polygon := range a.polygons {
		if planar.PolygonContains(polygon, point) {
			return true
		}
	}
	return false
}
