package places

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGoogleClientSearchNearby(t *testing.T) {
	var gotBody searchNearbyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, fieldMask, r.Header.Get("X-Goog-FieldMask"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[
			{"id":"p1","displayName":{"text":"Cafe Uno"},"location":{"latitude":14.3,"longitude":121.07},"types":["cafe"],"rating":4.4,"userRatingCount":120},
			{"id":"p2","displayName":{"text":"No Location"},"types":["cafe"]}
		]}`))
	}))
	defer srv.Close()

	client, err := NewGoogleClient("test-key", srv.URL, testLogger())
	require.NoError(t, err)

	results, err := client.SearchNearby(context.Background(), SearchRequest{
		Center:        types.Coordinate{Lat: 14.3, Lng: 121.07},
		RadiusMeters:  4000,
		IncludedTypes: []string{"cafe"},
		RankBy:        RankByPopularity,
	})
	require.NoError(t, err)

	// Entries without a location are unusable and dropped at the client.
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "Cafe Uno", results[0].DisplayName)
	assert.InDelta(t, 4.4, results[0].Rating, 1e-9)

	assert.Equal(t, DefaultResultCap, gotBody.MaxResultCount)
	assert.Equal(t, string(RankByPopularity), gotBody.RankPreference)
	assert.InDelta(t, 4000.0, gotBody.LocationRestriction.Circle.Radius, 1e-9)
}

func TestGoogleClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewGoogleClient("test-key", srv.URL, testLogger())
	require.NoError(t, err)

	_, err = client.SearchNearby(context.Background(), SearchRequest{IncludedTypes: []string{"cafe"}})
	assert.Error(t, err)
}

func TestNewGoogleClientRequiresKey(t *testing.T) {
	_, err := NewGoogleClient("", "", testLogger())
	assert.Error(t, err)
}
