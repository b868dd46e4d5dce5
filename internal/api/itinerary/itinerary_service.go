// Package itinerary assembles multi-day trip plans from aggregated place
// searches and the text-generation capability.
package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZyrusAlvez/tourist-app-binan/app/observability/metrics"
	generativeAI "github.com/ZyrusAlvez/tourist-app-binan/internal/api/generative_ai"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/search"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Generate runs the full assembly pipeline: per-category aggregation,
	// lodging selection, the sequential day loop and the final
	// mentioned-places filter. Fail-fast: any day generation error aborts
	// the whole run with no partial itinerary.
	Generate(ctx context.Context, prefs types.UserPreferences) (*types.TripPlan, error)
}

// Options tune assembly behavior.
type Options struct {
	// StrictNoRepeat retries a day's generation once when the plan
	// repeats an excluded place. Repeats are recorded as warnings either
	// way; the exclusion instruction alone cannot be trusted.
	StrictNoRepeat bool
}

type ServiceImpl struct {
	logger    *slog.Logger
	search    search.Service
	generator generativeAI.TextGenerator
	metrics   *metrics.AppMetrics
	opts      Options
}

func NewServiceImpl(searchService search.Service, generator generativeAI.TextGenerator, m *metrics.AppMetrics, opts Options, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		search:    searchService,
		generator: generator,
		metrics:   m,
		opts:      opts,
	}
}

func (s *ServiceImpl) Generate(ctx context.Context, prefs types.UserPreferences) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.Int("itinerary.days", prefs.Days),
		attribute.String("itinerary.transport", string(prefs.TransportMode)),
	))
	defer span.End()

	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preferences: %w", err)
	}

	start := time.Now()
	l := s.logger.With(slog.Int("days", prefs.Days))

	categories := sortedCategories(prefs.PlaceTypes)

	// Step 1: aggregate available places per category.
	available := make(map[string][]types.Place, len(categories))
	for _, cat := range categories {
		found, err := s.search.SearchCityWide(ctx, prefs.PlaceTypes[cat])
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("place search for category %q failed: %w", cat, err)
		}
		available[cat] = found
		l.DebugContext(ctx, "Aggregated category places", slog.String("category", cat), slog.Int("count", len(found)))
	}

	// Step 2: fix the lodging anchor for the whole trip.
	lodging := prefs.Lodging
	if lodging == nil {
		var others []types.Place
		for _, cat := range categories {
			if cat == types.LodgingCategory {
				continue
			}
			others = append(others, available[cat]...)
		}
		lodging = selectLodging(available[types.LodgingCategory], others)
	}
	if lodging != nil {
		span.SetAttributes(attribute.String("itinerary.lodging", lodging.DisplayName))
	}

	visitCategories := make([]string, 0, len(categories))
	for _, cat := range categories {
		if cat != types.LodgingCategory {
			visitCategories = append(visitCategories, cat)
		}
	}
	wantsFood := prefsIncludeFood(categories)

	// Step 3: the day loop. Strictly sequential; each day's exclusion
	// list is derived from everything generated so far, so days cannot
	// be produced in parallel.
	plans := make(map[int]string, prefs.Days)
	var warnings []string
	for day := 1; day <= prefs.Days; day++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("itinerary generation cancelled at day %d: %w", day, err)
		}

		visited := extractVisitedNames(plans)
		remaining := make(map[string][]types.Place, len(visitCategories))
		for _, cat := range visitCategories {
			var left []types.Place
			for _, p := range available[cat] {
				if !nameMentioned(p.DisplayName, visited) {
					left = append(left, p)
				}
			}
			remaining[cat] = left
		}

		prompt := dayPlanPrompt(day, prefs.Days, prefs.TransportMode, remaining, visitCategories, visited, lodging, wantsFood)
		plan, err := s.generateDay(ctx, prompt)
		if err != nil {
			l.ErrorContext(ctx, "Day plan generation failed, aborting itinerary",
				slog.Int("day", day), slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("failed to generate plan for day %d: %w", day, err)
		}

		if repeats := repeatedNames(plan, visited); len(repeats) > 0 {
			if s.metrics != nil {
				s.metrics.ItineraryRepeatViolations.Add(ctx, int64(len(repeats)))
			}
			if s.opts.StrictNoRepeat {
				l.WarnContext(ctx, "Day plan repeated excluded places, regenerating once",
					slog.Int("day", day), slog.Any("repeats", repeats))
				retry, err := s.generateDay(ctx, strengthenedDayPlanPrompt(prompt, repeats))
				if err != nil {
					return nil, fmt.Errorf("failed to regenerate plan for day %d: %w", day, err)
				}
				plan = retry
				repeats = repeatedNames(plan, visited)
			}
			if len(repeats) > 0 {
				warnings = append(warnings, fmt.Sprintf("day %d repeats already-visited places: %s", day, strings.Join(repeats, ", ")))
			}
		}

		plans[day] = plan
	}

	// Step 4: keep only the places the plans actually mention.
	mentioned := extractVisitedNames(plans)
	placesByCategory := make(map[string][]types.Place, len(categories))
	for _, cat := range visitCategories {
		kept := make([]types.Place, 0)
		for _, p := range available[cat] {
			if nameMentioned(p.DisplayName, mentioned) {
				kept = append(kept, p)
			}
		}
		placesByCategory[cat] = kept
	}
	if _, hasLodgingCat := prefs.PlaceTypes[types.LodgingCategory]; hasLodgingCat {
		// The lodging category collapses to the chosen anchor regardless
		// of whether any plan text names it.
		if lodging != nil {
			placesByCategory[types.LodgingCategory] = []types.Place{*lodging}
		} else {
			placesByCategory[types.LodgingCategory] = []types.Place{}
		}
	}

	if s.metrics != nil {
		s.metrics.ItineraryDuration.Record(ctx, time.Since(start).Seconds())
	}
	span.SetAttributes(attribute.Int("itinerary.warnings", len(warnings)))
	span.SetStatus(codes.Ok, "itinerary assembled")

	return &types.TripPlan{
		Itinerary:        plans,
		PlacesByCategory: placesByCategory,
		Lodging:          lodging,
		Warnings:         warnings,
	}, nil
}

func (s *ServiceImpl) generateDay(ctx context.Context, prompt string) (string, error) {
	if s.metrics != nil {
		s.metrics.LLMRequestsTotal.Add(ctx, 1)
	}
	plan, err := s.generator.Complete(ctx, plannerSystemPrompt, []types.ConversationTurn{
		{Role: types.RoleUser, Content: prompt, Timestamp: time.Now()},
	})
	if err != nil && s.metrics != nil {
		s.metrics.LLMRequestErrorsTotal.Add(ctx, 1)
	}
	return plan, err
}

func prefsIncludeFood(categories []string) bool {
	for _, cat := range categories {
		if cat == "Restaurants" || cat == "Coffee Shops" {
			return true
		}
	}
	return false
}
