package geo

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

const (
	indexDimensions  = 2
	indexMinChildren = 25
	indexMaxChildren = 50

	earthRadiusKm = 6371.0
)

// spatialPlace wraps a place so it satisfies rtreego.Spatial.
type spatialPlace struct {
	place types.Place
	rect  *rtreego.Rect
}

func (sp *spatialPlace) Bounds() *rtreego.Rect {
	return sp.rect
}

// PlaceIndex is an R-tree over a session's aggregated places. It answers
// "what did we already fetch near this coordinate" without another call to
// the places provider.
type PlaceIndex struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	ids  map[string]struct{}
}

func NewPlaceIndex() *PlaceIndex {
	return &PlaceIndex{
		tree: rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren),
		ids:  make(map[string]struct{}),
	}
}

// Insert adds a place; entries already present by ID are skipped, as are
// places without a usable location.
func (idx *PlaceIndex) Insert(p types.Place) {
	if p.ID == "" || p.Location.IsZero() {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, seen := idx.ids[p.ID]; seen {
		return
	}
	rect, err := rtreego.NewRect(rtreego.Point{p.Location.Lat, p.Location.Lng}, []float64{1e-9, 1e-9})
	if err != nil {
		return
	}
	idx.tree.Insert(&spatialPlace{place: p, rect: rect})
	idx.ids[p.ID] = struct{}{}
}

// InsertAll indexes every place in the slice.
func (idx *PlaceIndex) InsertAll(places []types.Place) {
	for _, p := range places {
		idx.Insert(p)
	}
}

// Len reports the number of indexed places.
func (idx *PlaceIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Nearest returns up to n indexed places closest to center, nearest first.
func (idx *PlaceIndex) Nearest(center types.Coordinate, n int) []types.Place {
	if n <= 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := idx.tree.NearestNeighbors(n, rtreego.Point{center.Lat, center.Lng})
	places := make([]types.Place, 0, len(results))
	for _, r := range results {
		sp, ok := r.(*spatialPlace)
		if !ok {
			continue
		}
		places = append(places, sp.place)
	}
	return places
}

// WithinRadius returns all indexed places within radiusKm of center.
// The R-tree prefilters by bounding box; candidates are then checked with
// the haversine distance.
func (idx *PlaceIndex) WithinRadius(center types.Coordinate, radiusKm float64) []types.Place {
	if radiusKm <= 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	deg := (radiusKm / earthRadiusKm) * (180 / math.Pi)
	rect, err := rtreego.NewRect(
		rtreego.Point{center.Lat - deg, center.Lng - deg},
		[]float64{2 * deg, 2 * deg},
	)
	if err != nil {
		return nil
	}

	var places []types.Place
	for _, r := range idx.tree.SearchIntersect(rect) {
		sp, ok := r.(*spatialPlace)
		if !ok {
			continue
		}
		if HaversineKm(center, sp.place.Location) <= radiusKm {
			places = append(places, sp.place)
		}
	}
	return places
}

// HaversineKm is the great-circle distance between two coordinates in km.
// Used only by the spatial index; lodging scoring deliberately does not use
// it (see the itinerary assembler).
func HaversineKm(a, b types.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
