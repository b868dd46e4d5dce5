package city

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/geo"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

func TestInfo(t *testing.T) {
	vertices := []types.Coordinate{
		{Lat: 14.0, Lng: 121.0},
		{Lat: 14.0, Lng: 121.2},
		{Lat: 14.2, Lng: 121.2},
		{Lat: 14.2, Lng: 121.0},
	}
	boundary, err := geo.NewPolygon(vertices)
	require.NoError(t, err)

	h := NewHandler("Binan, Laguna", boundary, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.Info(rec, httptest.NewRequest(http.MethodGet, "/city", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Binan, Laguna", resp.Name)
	assert.Equal(t, vertices, resp.Boundary)
	assert.InDelta(t, 14.1, resp.Center.Lat, 1e-9)
	assert.InDelta(t, 121.1, resp.Center.Lng, 1e-9)
}
