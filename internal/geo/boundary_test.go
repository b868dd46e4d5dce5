package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

func unitSquare(t *testing.T) *Polygon {
	t.Helper()
	p, err := NewPolygon([]types.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 0},
	})
	require.NoError(t, err)
	return p
}

func TestNewPolygonRejectsTooFewVertices(t *testing.T) {
	_, err := NewPolygon([]types.Coordinate{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}})
	assert.Error(t, err)
}

func TestContainsUnitSquare(t *testing.T) {
	poly := unitSquare(t)

	tests := []struct {
		name   string
		point  types.Coordinate
		inside bool
	}{
		{"center", types.Coordinate{Lat: 0.5, Lng: 0.5}, true},
		{"far outside", types.Coordinate{Lat: 2, Lng: 2}, false},
		{"outside left", types.Coordinate{Lat: 0.5, Lng: -0.5}, false},
		{"outside below", types.Coordinate{Lat: -0.5, Lng: 0.5}, false},
		{"near corner inside", types.Coordinate{Lat: 0.001, Lng: 0.001}, true},
		{"negative quadrant", types.Coordinate{Lat: -1, Lng: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, poly.Contains(tt.point))
		})
	}
}

func TestContainsConcavePolygon(t *testing.T) {
	// A "U" shape: the notch between the prongs is outside.
	poly, err := NewPolygon([]types.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 3, Lng: 0},
		{Lat: 3, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 2},
		{Lat: 3, Lng: 2},
		{Lat: 3, Lng: 3},
		{Lat: 0, Lng: 3},
	})
	require.NoError(t, err)

	assert.True(t, poly.Contains(types.Coordinate{Lat: 0.5, Lng: 1.5}))
	assert.False(t, poly.Contains(types.Coordinate{Lat: 2, Lng: 1.5}))
	assert.True(t, poly.Contains(types.Coordinate{Lat: 2, Lng: 0.5}))
	assert.True(t, poly.Contains(types.Coordinate{Lat: 2, Lng: 2.5}))
}

func TestCentroidInsideForConvexBoundary(t *testing.T) {
	poly := unitSquare(t)
	c := poly.Centroid()
	assert.InDelta(t, 0.5, c.Lat, 1e-9)
	assert.InDelta(t, 0.5, c.Lng, 1e-9)
	assert.True(t, poly.Contains(c))
}
