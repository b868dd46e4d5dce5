// Package places wraps the external places-search capability behind a small
// interface so the grid aggregator can be exercised without the real
// provider.
package places

import (
	"context"
	"errors"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// ErrNotReady signals that no places client has been configured yet.
// Callers degrade to an empty result set instead of failing the session.
var ErrNotReady = errors.New("places provider not ready")

type RankPreference string

const (
	RankByPopularity RankPreference = "POPULARITY"
	RankByDistance   RankPreference = "DISTANCE"
)

// DefaultResultCap is the per-call result cap the provider enforces.
const DefaultResultCap = 20

// SearchRequest describes one nearby-search call.
type SearchRequest struct {
	Center        types.Coordinate
	RadiusMeters  float64
	IncludedTypes []string
	MaxResults    int
	RankBy        RankPreference
}

// Client is the places-search capability. Implementations may return
// transport errors; a zero-result search returns an empty slice and nil.
type Client interface {
	SearchNearby(ctx context.Context, req SearchRequest) ([]types.Place, error)
}
