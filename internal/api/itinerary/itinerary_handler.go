package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/auth"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateItineraryHandler(w http.ResponseWriter, r *http.Request)
	SaveItineraryHandler(w http.ResponseWriter, r *http.Request)
	GetItineraryHandler(w http.ResponseWriter, r *http.Request)
	GetUserItinerariesHandler(w http.ResponseWriter, r *http.Request)
	DeleteItineraryHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
	repo    Repository
}

func NewHandler(service Service, repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
		repo:    repo,
	}
}

// GenerateRequest is the payload for generating a fresh trip plan.
type GenerateRequest struct {
	Days       int                 `json:"days"`
	Transport  string              `json:"transportation_mode"`
	PlaceTypes map[string][]string `json:"place_types"`
	Lodging    *types.Place        `json:"lodging,omitempty"`
}

// GenerateItineraryHandler builds a trip plan. No authentication is
// required; only saving a plan needs an account.
func (h *HandlerImpl) GenerateItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateItineraryHandler"))

	var req GenerateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	transport, err := types.ParseTransportMode(req.Transport)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	prefs := types.UserPreferences{
		TransportMode: transport,
		Days:          req.Days,
		PlaceTypes:    req.PlaceTypes,
		Lodging:       req.Lodging,
	}
	if err := prefs.Validate(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("itinerary.days", prefs.Days))

	plan, err := h.service.Generate(ctx, prefs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Itinerary generation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

func (h *HandlerImpl) SaveItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "SaveItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SaveItineraryHandler"))

	userID, ok := h.requireUserID(w, r, span)
	if !ok {
		return
	}

	var req types.SaveItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Itinerary) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "itinerary must not be empty")
		return
	}

	saved, err := h.repo.SaveItinerary(ctx, userID, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save itinerary")
		return
	}

	span.SetAttributes(attribute.String("itinerary.id", saved.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, saved)
}

func (h *HandlerImpl) GetItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetItineraryHandler"))

	userID, ok := h.requireUserID(w, r, span)
	if !ok {
		return
	}
	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	saved, err := h.repo.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		if errors.Is(err, ErrItineraryNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

func (h *HandlerImpl) GetUserItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetUserItineraries")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetUserItinerariesHandler"))

	userID, ok := h.requireUserID(w, r, span)
	if !ok {
		return
	}

	itineraries, err := h.repo.GetUserItineraries(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	if itineraries == nil {
		itineraries = []*types.SavedItinerary{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itineraries)
}

func (h *HandlerImpl) DeleteItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "DeleteItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteItineraryHandler"))

	userID, ok := h.requireUserID(w, r, span)
	if !ok {
		return
	}
	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	if err := h.repo.DeleteItinerary(ctx, userID, itineraryID); err != nil {
		if errors.Is(err, ErrItineraryNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) requireUserID(w http.ResponseWriter, r *http.Request, span trace.Span) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		span.SetStatus(codes.Error, "Unauthorized")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
