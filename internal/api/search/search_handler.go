package search

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/places"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

type Handler struct {
	searchService Service
	logger        *slog.Logger
}

func NewHandler(searchService Service, logger *slog.Logger) *Handler {
	return &Handler{
		searchService: searchService,
		logger:        logger,
	}
}

// SearchRequest is the direct-search payload. Nearby mode requires a
// center; city-wide mode ignores it and uses the configured grid.
type SearchRequest struct {
	IncludedTypes []string          `json:"included_types"`
	Nearby        bool              `json:"nearby"`
	Center        *types.Coordinate `json:"center,omitempty"`
	RadiusMeters  float64           `json:"radius,omitempty"`
}

type SearchResponse struct {
	Places  []types.Place `json:"places"`
	Message string        `json:"message,omitempty"`
}

// Search handles POST /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SearchHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	var req SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid search request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IncludedTypes) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "included_types is required")
		return
	}
	for _, t := range req.IncludedTypes {
		if !types.IsSupportedPlaceType(t) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "unsupported place type: "+t)
			return
		}
	}

	var (
		results []types.Place
		err     error
	)
	if req.Nearby {
		if req.Center == nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "nearby search requires a center")
			return
		}
		results, err = h.searchService.SearchNearby(ctx, req.IncludedTypes, *req.Center, req.RadiusMeters)
	} else {
		results, err = h.searchService.SearchCityWide(ctx, req.IncludedTypes)
	}

	resp := SearchResponse{Places: results}
	switch {
	case errors.Is(err, places.ErrNotReady):
		resp.Message = "Place search is warming up, please try again in a moment."
	case err != nil:
		l.ErrorContext(ctx, "Search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Search failed, please try again")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
