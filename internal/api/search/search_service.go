package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ZyrusAlvez/tourist-app-binan/app/observability/metrics"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/geo"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/places"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the grid search aggregator: it tiles the city with fixed grid
// points (or a single caller-supplied center for nearby mode), fans the
// searches out to the places provider, geofences, deduplicates and ranks.
type Service interface {
	// SearchCityWide covers the whole city via the configured grid and
	// ranks results by rating, best first. Returns places.ErrNotReady
	// alongside an empty slice when no provider is configured.
	SearchCityWide(ctx context.Context, includedTypes []string) ([]types.Place, error)
	// SearchNearby searches a single dynamic center, keeping the
	// provider's distance ordering.
	SearchNearby(ctx context.Context, includedTypes []string, center types.Coordinate, radiusMeters float64) ([]types.Place, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	client   places.Client
	boundary *geo.Polygon
	grid     []types.SearchGridPoint
	cache    *cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.AppMetrics
}

// NewServiceImpl wires the aggregator. client may be nil when the provider
// is not configured; searches then degrade to empty results.
func NewServiceImpl(client places.Client, boundary *geo.Polygon, grid []types.SearchGridPoint, resultCache *cache.Cache, cacheTTL time.Duration, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		client:   client,
		boundary: boundary,
		grid:     grid,
		cache:    resultCache,
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

func (s *ServiceImpl) SearchCityWide(ctx context.Context, includedTypes []string) ([]types.Place, error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "SearchCityWide", trace.WithAttributes(
		attribute.StringSlice("search.included_types", includedTypes),
		attribute.Int("search.grid_points", len(s.grid)),
	))
	defer span.End()

	if s.client == nil {
		s.logger.WarnContext(ctx, "Places provider not configured, returning empty result set")
		return []types.Place{}, places.ErrNotReady
	}

	cacheKey := cityWideCacheKey(includedTypes)
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			span.AddEvent("cache hit")
			return cached.([]types.Place), nil
		}
	}

	start := time.Now()

	// Grid points are independent, so the fetches run concurrently; a
	// failed point is logged and skipped, never aborting the aggregation.
	// Merging happens afterwards in grid order so first-occurrence-wins
	// dedup stays deterministic.
	perPoint := make([][]types.Place, len(s.grid))
	g, gctx := errgroup.WithContext(ctx)
	for i, point := range s.grid {
		g.Go(func() error {
			results, err := s.client.SearchNearby(gctx, places.SearchRequest{
				Center:        point.Center(),
				RadiusMeters:  point.RadiusMeters,
				IncludedTypes: includedTypes,
				MaxResults:    places.DefaultResultCap,
				RankBy:        places.RankByPopularity,
			})
			s.countSearch(ctx, err)
			if err != nil {
				s.logger.WarnContext(gctx, "Grid point search failed, skipping",
					slog.Float64("lat", point.Lat),
					slog.Float64("lng", point.Lng),
					slog.Any("error", err),
				)
				return nil
			}
			perPoint[i] = s.filterForPoint(results, point.BoundaryFilter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Goroutines swallow provider errors, so this only fires on
		// context cancellation.
		span.RecordError(err)
		return nil, fmt.Errorf("city-wide search aborted: %w", err)
	}

	merged := dedupeByID(perPoint)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Rating > merged[j].Rating
	})

	if s.metrics != nil {
		s.metrics.PlaceSearchDuration.Record(ctx, time.Since(start).Seconds())
	}
	if s.cache != nil {
		s.cache.Set(cacheKey, merged, s.cacheTTL)
	}

	span.SetAttributes(attribute.Int("search.results", len(merged)))
	span.SetStatus(codes.Ok, "city-wide search completed")
	return merged, nil
}

func (s *ServiceImpl) SearchNearby(ctx context.Context, includedTypes []string, center types.Coordinate, radiusMeters float64) ([]types.Place, error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "SearchNearby", trace.WithAttributes(
		attribute.StringSlice("search.included_types", includedTypes),
		attribute.Float64("search.radius_m", radiusMeters),
	))
	defer span.End()

	if s.client == nil {
		s.logger.WarnContext(ctx, "Places provider not configured, returning empty result set")
		return []types.Place{}, places.ErrNotReady
	}
	if radiusMeters <= 0 {
		radiusMeters = types.DefaultNearbyRadiusMeters
	}

	results, err := s.client.SearchNearby(ctx, places.SearchRequest{
		Center:        center,
		RadiusMeters:  radiusMeters,
		IncludedTypes: includedTypes,
		MaxResults:    places.DefaultResultCap,
		RankBy:        places.RankByDistance,
	})
	s.countSearch(ctx, err)
	if err != nil {
		// A failed nearby call degrades to "nothing found" rather than
		// surfacing a provider error into the conversation.
		s.logger.WarnContext(ctx, "Nearby search failed", slog.Any("error", err))
		span.RecordError(err)
		return []types.Place{}, nil
	}

	// Nearby results stay in the provider's distance order; only the
	// geofence and dedup invariants are applied.
	kept := s.filterForPoint(results, true)
	merged := dedupeByID([][]types.Place{kept})

	span.SetAttributes(attribute.Int("search.results", len(merged)))
	span.SetStatus(codes.Ok, "nearby search completed")
	return merged, nil
}

// filterForPoint drops places without a usable location and, when the
// boundary filter applies, places outside the city polygon.
func (s *ServiceImpl) filterForPoint(results []types.Place, boundaryFiltered bool) []types.Place {
	kept := make([]types.Place, 0, len(results))
	for _, p := range results {
		if p.Location.IsZero() {
			continue
		}
		if boundaryFiltered && s.boundary != nil && !s.boundary.Contains(p.Location) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// dedupeByID merges per-point result lists keeping the first occurrence of
// each place ID.
func dedupeByID(perPoint [][]types.Place) []types.Place {
	seen := make(map[string]struct{})
	var merged []types.Place
	for _, batch := range perPoint {
		for _, p := range batch {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}

func (s *ServiceImpl) countSearch(ctx context.Context, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.PlaceSearchesTotal.Add(ctx, 1)
	if err != nil {
		s.metrics.PlaceSearchErrorsTotal.Add(ctx, 1)
	}
}

func cityWideCacheKey(includedTypes []string) string {
	return "search_citywide:" + strings.Join(includedTypes, ",")
}
