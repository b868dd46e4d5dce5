package itinerary

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRepository(pool, testLogger()), pool
}

func TestSaveItinerary(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryID := uuid.New()
	createdAt := time.Now()
	req := types.SaveItineraryRequest{
		Title:         "Weekend in Binan",
		Days:          2,
		TransportMode: types.TransportModeWalk,
		Itinerary:     map[int]string{1: "Morning\n* Heritage Museum – exhibits\n"},
		Places: map[string][]types.Place{
			"Museums": {place("m1", "Heritage Museum", 14.331, 121.071, 4.5)},
		},
	}
	itineraryJSON, err := json.Marshal(req.Itinerary)
	require.NoError(t, err)
	placesJSON, err := json.Marshal(req.Places)
	require.NoError(t, err)

	pool.ExpectQuery("INSERT INTO itineraries").
		WithArgs(userID, req.Title, req.Days, req.TransportMode, itineraryJSON, placesJSON).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(itineraryID, createdAt))

	saved, err := repo.SaveItinerary(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, itineraryID, saved.ID)
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, req.Title, saved.Title)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestGetItinerary(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryID := uuid.New()
	itineraryJSON := []byte(`{"1":"Morning\n* Heritage Museum – exhibits\n"}`)
	placesJSON := []byte(`{"Museums":[{"id":"m1","display_name":"Heritage Museum","location":{"lat":14.331,"lng":121.071}}]}`)

	pool.ExpectQuery("SELECT id, user_id, title, days").
		WithArgs(itineraryID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "days", "transportation_mode", "itinerary", "places", "created_at"}).
			AddRow(itineraryID, userID, "Weekend in Binan", 2, types.TransportModeWalk, itineraryJSON, placesJSON, time.Now()))

	saved, err := repo.GetItinerary(context.Background(), userID, itineraryID)
	require.NoError(t, err)
	assert.Equal(t, "Weekend in Binan", saved.Title)
	assert.Contains(t, saved.Itinerary[1], "Heritage Museum")
	require.Len(t, saved.Places["Museums"], 1)
	assert.Equal(t, "m1", saved.Places["Museums"][0].ID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestGetItinerary_NotFound(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryID := uuid.New()
	pool.ExpectQuery("SELECT id, user_id, title, days").
		WithArgs(itineraryID, userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetItinerary(context.Background(), userID, itineraryID)
	assert.ErrorIs(t, err, ErrItineraryNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestGetUserItineraries(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryJSON := []byte(`{"1":"Day one"}`)
	placesJSON := []byte(`{}`)

	pool.ExpectQuery("SELECT id, user_id, title, days").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "days", "transportation_mode", "itinerary", "places", "created_at"}).
			AddRow(uuid.New(), userID, "First trip", 1, types.TransportModeDrive, itineraryJSON, placesJSON, time.Now()).
			AddRow(uuid.New(), userID, "Second trip", 3, types.TransportModeWalk, itineraryJSON, placesJSON, time.Now()))

	itineraries, err := repo.GetUserItineraries(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, itineraries, 2)
	assert.Equal(t, "First trip", itineraries[0].Title)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestDeleteItinerary(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryID := uuid.New()

	pool.ExpectExec("DELETE FROM itineraries").
		WithArgs(itineraryID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.DeleteItinerary(context.Background(), userID, itineraryID))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestDeleteItinerary_NotFound(t *testing.T) {
	repo, pool := newMockRepo(t)

	userID := uuid.New()
	itineraryID := uuid.New()

	pool.ExpectExec("DELETE FROM itineraries").
		WithArgs(itineraryID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteItinerary(context.Background(), userID, itineraryID)
	assert.ErrorIs(t, err, ErrItineraryNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}
