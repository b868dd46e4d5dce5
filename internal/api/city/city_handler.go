// Package city serves the geometry of the covered city so a map client can
// draw the service boundary and center itself before any search happens.
package city

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/api"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/geo"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

type Handler struct {
	name     string
	boundary *geo.Polygon
	logger   *slog.Logger
}

func NewHandler(name string, boundary *geo.Polygon, logger *slog.Logger) *Handler {
	return &Handler{
		name:     name,
		boundary: boundary,
		logger:   logger,
	}
}

// InfoResponse describes the covered city: the boundary polygon for map
// rendering and its centroid for the initial camera position.
type InfoResponse struct {
	Name     string             `json:"name"`
	Boundary []types.Coordinate `json:"boundary"`
	Center   types.Coordinate   `json:"center"`
}

// Info handles GET /city.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("CityHandler").Start(r.Context(), "Info", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/city"),
	))
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, InfoResponse{
		Name:     h.name,
		Boundary: h.boundary.Vertices(),
		Center:   h.boundary.Centroid(),
	})
}
