package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateSessionHandler(w http.ResponseWriter, r *http.Request)
	ChoiceHandler(w http.ResponseWriter, r *http.Request)
	MessageHandler(w http.ResponseWriter, r *http.Request)
	TranscriptHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// MessageRequest is a free-text message, optionally carrying the visitor's
// location for nearby searches.
type MessageRequest struct {
	Text     string            `json:"text"`
	Location *types.Coordinate `json:"location,omitempty"`
}

func (h *HandlerImpl) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "CreateSession")
	defer span.End()

	reply := h.service.StartSession(ctx)
	span.SetStatus(codes.Ok, "Session created")
	api.WriteJSONResponse(w, r, http.StatusCreated, reply)
}

func (h *HandlerImpl) ChoiceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Choice")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ChoiceHandler"))

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var choice Choice
	if err := api.DecodeJSONBody(w, r, &choice); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.service.HandleChoice(ctx, sessionID, choice)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, reply)
}

func (h *HandlerImpl) MessageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Message")
	defer span.End()
	l := h.logger.With(slog.String("handler", "MessageHandler"))

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req MessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "text is required")
		return
	}

	reply, err := h.service.HandleMessage(ctx, sessionID, req.Text, req.Location)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, reply)
}

func (h *HandlerImpl) TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("ChatHandler").Start(r.Context(), "Transcript")
	defer span.End()
	l := h.logger.With(slog.String("handler", "TranscriptHandler"))

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	turns, state, err := h.service.Transcript(sessionID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"state":      state,
		"messages":   turns,
	})
}

func (h *HandlerImpl) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Session not found or expired")
		return
	}
	l.ErrorContext(r.Context(), "Chat service error", slog.Any("error", err))
	api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}
