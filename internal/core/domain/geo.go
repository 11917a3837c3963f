package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nmoreno/fiestero/internal/pkg/geospatial"
)

// ErrMalformedGeometry marks a zone boundary that cannot be parsed.
// Matching skips such zones instead of failing the whole computation.
var ErrMalformedGeometry = errors.New("malformed zone geometry")

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ring is a linear ring of [lon, lat] positions in GeoJSON order.
type Ring = []geospatial.Position

// Geometry is a parsed Polygon or MultiPolygon boundary. Each polygon is a
// set of rings: the first is the outer boundary, the rest are holes.
type Geometry struct {
	polygons [][]Ring
}

// geometryDoc mirrors the GeoJSON geometry object stored for a zone.
type geometryDoc struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry parses a GeoJSON Polygon or MultiPolygon document.
// Anything else — bad JSON, unsupported type, empty or too-short rings —
// returns ErrMalformedGeometry.
func ParseGeometry(raw []byte) (*Geometry, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedGeometry)
	}

	var doc geometryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}

	switch doc.Type {
	case "Polygon":
		var rings []Ring
		if err := json.Unmarshal(doc.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("%w: polygon coordinates: %v", ErrMalformedGeometry, err)
		}
		if err := validateRings(rings); err != nil {
			return nil, err
		}
		return &Geometry{polygons: [][]Ring{rings}}, nil

	case "MultiPolygon":
		var polys [][]Ring
		if err := json.Unmarshal(doc.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("%w: multipolygon coordinates: %v", ErrMalformedGeometry, err)
		}
		if len(polys) == 0 {
			return nil, fmt.Errorf("%w: multipolygon with no polygons", ErrMalformedGeometry)
		}
		for _, rings := range polys {
			if err := validateRings(rings); err != nil {
				return nil, err
			}
		}
		return &Geometry{polygons: polys}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported type %q", ErrMalformedGeometry, doc.Type)
	}
}

func validateRings(rings []Ring) error {
	if len(rings) == 0 {
		return fmt.Errorf("%w: polygon with no rings", ErrMalformedGeometry)
	}
	for _, r := range rings {
		if len(r) < 3 {
			return fmt.Errorf("%w: ring with fewer than 3 positions", ErrMalformedGeometry)
		}
	}
	return nil
}

// Contains reports whether the point lies inside the geometry. A point is
// inside a polygon when it is inside the outer ring and not inside any hole;
// for a MultiPolygon, inside any member polygon.
func (g *Geometry) Contains(p GeoPoint) bool {
	for _, rings := range g.polygons {
		outer := rings[0]
		if !geospatial.InBoundingBox(p.Lon, p.Lat, outer) {
			continue
		}
		if !geospatial.PointInRing(p.Lon, p.Lat, outer) {
			continue
		}
		inHole := false
		for _, hole := range rings[1:] {
			if geospatial.PointInRing(p.Lon, p.Lat, hole) {
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
