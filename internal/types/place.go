package types

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate carries no location at all.
// The places provider omits the location field for a handful of results;
// those entries are unusable and get discarded during aggregation.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Place is a point of interest returned by the places provider.
// Rating of 0 means "no rating reported"; ranking treats it as lowest.
type Place struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"display_name"`
	Location        Coordinate `json:"location"`
	Types           []string   `json:"types,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	UserRatingCount int        `json:"user_rating_count,omitempty"`
}

// SearchGridPoint is one fixed search anchor used to tile the city for
// place discovery. Static configuration, never mutated at runtime.
type SearchGridPoint struct {
	Lat            float64 `json:"lat" mapstructure:"lat"`
	Lng            float64 `json:"lng" mapstructure:"lng"`
	RadiusMeters   float64 `json:"radius" mapstructure:"radius"`
	BoundaryFilter bool    `json:"boundary_filter" mapstructure:"boundaryFilter"`
}

// Center returns the grid point's anchor coordinate.
func (g SearchGridPoint) Center() Coordinate {
	return Coordinate{Lat: g.Lat, Lng: g.Lng}
}
