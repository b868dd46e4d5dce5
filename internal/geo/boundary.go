// Package geo holds the city boundary geometry and the in-session spatial
// index over aggregated places.
package geo

import (
	"fmt"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// Polygon is the ordered, closed boundary of the serviceable city area.
// It is loaded once from configuration and never mutated.
type Polygon struct {
	vertices []types.Coordinate
}

// NewPolygon validates and wraps an ordered vertex list. The polygon is
// treated as implicitly closed (last vertex connects back to the first).
func NewPolygon(vertices []types.Coordinate) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("boundary polygon needs at least 3 vertices, got %d", len(vertices))
	}
	vs := make([]types.Coordinate, len(vertices))
	copy(vs, vertices)
	return &Polygon{vertices: vs}, nil
}

// Vertices returns a copy of the boundary's vertex list.
func (p *Polygon) Vertices() []types.Coordinate {
	vs := make([]types.Coordinate, len(p.vertices))
	copy(vs, p.vertices)
	return vs
}

// Contains classifies a coordinate with the even-odd ray-casting rule:
// a horizontal ray from the point crosses the boundary an odd number of
// times iff the point is inside. Points exactly on an edge or vertex get
// whatever the crossing arithmetic yields; boundary-inclusive
// classification is not guaranteed.
func (p *Polygon) Contains(pt types.Coordinate) bool {
	inside := false
	x, y := pt.Lng, pt.Lat

	for i, j := 0, len(p.vertices)-1; i < len(p.vertices); j, i = i, i+1 {
		xi, yi := p.vertices[i].Lng, p.vertices[i].Lat
		xj, yj := p.vertices[j].Lng, p.vertices[j].Lat

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the arithmetic mean of the vertices. Good enough for
// map centering at city scale; not an area-weighted centroid.
func (p *Polygon) Centroid() types.Coordinate {
	var lat, lng float64
	for _, v := range p.vertices {
		lat += v.Lat
		lng += v.Lng
	}
	n := float64(len(p.vertices))
	return types.Coordinate{Lat: lat / n, Lng: lng / n}
}
