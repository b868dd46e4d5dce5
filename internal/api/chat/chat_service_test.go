package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/places"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchCityWide(ctx context.Context, includedTypes []string) ([]types.Place, error) {
	args := m.Called(ctx, includedTypes)
	result, _ := args.Get(0).([]types.Place)
	return result, args.Error(1)
}

func (m *MockSearchService) SearchNearby(ctx context.Context, includedTypes []string, center types.Coordinate, radiusMeters float64) ([]types.Place, error) {
	args := m.Called(ctx, includedTypes, center, radiusMeters)
	result, _ := args.Get(0).([]types.Place)
	return result, args.Error(1)
}

type stubIntentService struct {
	intent *types.Intent
}

func (s *stubIntentService) Identify(context.Context, string, []types.ConversationTurn) *types.Intent {
	return s.intent
}

type stubItineraryService struct {
	plan *types.TripPlan
	err  error
}

func (s *stubItineraryService) Generate(context.Context, types.UserPreferences) (*types.TripPlan, error) {
	return s.plan, s.err
}

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Complete(context.Context, string, []types.ConversationTurn) (string, error) {
	return s.reply, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func place(id, name string, lat, lng, rating float64) types.Place {
	return types.Place{
		ID:          id,
		DisplayName: name,
		Location:    types.Coordinate{Lat: lat, Lng: lng},
		Rating:      rating,
	}
}

func newTestService(searchSvc *MockSearchService, intentSvc *stubIntentService, itinSvc *stubItineraryService, gen *stubGenerator) *ServiceImpl {
	if intentSvc == nil {
		intentSvc = &stubIntentService{intent: &types.Intent{Type: types.IntentChat, Confidence: 0.9}}
	}
	if itinSvc == nil {
		itinSvc = &stubItineraryService{plan: &types.TripPlan{Itinerary: map[int]string{}}}
	}
	if gen == nil {
		gen = &stubGenerator{reply: "Hello!"}
	}
	return NewServiceImpl(NewStore(time.Minute), searchSvc, intentSvc, itinSvc, gen, testLogger())
}

// advanceToDone walks a session through the local path up to the done state.
func advanceToDone(t *testing.T, svc *ServiceImpl, sessionID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	reply, err := svc.HandleChoice(ctx, sessionID, Choice{Value: "local"})
	require.NoError(t, err)
	require.Equal(t, StateDays, reply.State)

	reply, err = svc.HandleChoice(ctx, sessionID, Choice{Days: 1})
	require.NoError(t, err)
	require.Equal(t, StatePreferences, reply.State)

	reply, err = svc.HandleChoice(ctx, sessionID, Choice{Transport: "walk", Categories: []string{"Museums"}})
	require.NoError(t, err)
	require.Equal(t, StateDone, reply.State)
}

func TestWizard_LocalPath(t *testing.T) {
	ctx := context.Background()
	itinSvc := &stubItineraryService{plan: &types.TripPlan{
		Itinerary: map[int]string{1: "Morning\n* Heritage Museum – exhibits\n", 2: "Morning\n* Old Town Gallery – art\n"},
		PlacesByCategory: map[string][]types.Place{
			"Museums": {place("m1", "Heritage Museum", 14.331, 121.071, 4.5)},
		},
	}}
	svc := newTestService(new(MockSearchService), nil, itinSvc, nil)

	start := svc.StartSession(ctx)
	require.Equal(t, StateInitial, start.State)
	require.Len(t, start.Messages, 1)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "local"})
	require.NoError(t, err)
	assert.Equal(t, StateDays, reply.State)

	reply, err = svc.HandleChoice(ctx, start.SessionID, Choice{Days: 2})
	require.NoError(t, err)
	assert.Equal(t, StatePreferences, reply.State)

	reply, err = svc.HandleChoice(ctx, start.SessionID, Choice{Transport: "walk", Categories: []string{"Museums"}})
	require.NoError(t, err)
	assert.Equal(t, StateDone, reply.State)
	// Two day turns plus the closing message.
	require.Len(t, reply.Messages, 3)
	assert.Contains(t, reply.Messages[0].Content, "Day 1")
	assert.Contains(t, reply.Messages[1].Content, "Day 2")
	require.Len(t, reply.Places, 1)
	assert.Equal(t, "m1", reply.Places[0].ID)
	assert.Len(t, reply.Itinerary, 2)

	turns, state, err := svc.Transcript(start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.NotEmpty(t, turns)
}

func TestWizard_TouristLodgingPick(t *testing.T) {
	ctx := context.Background()
	searchSvc := new(MockSearchService)
	hotels := []types.Place{
		place("h1", "Hotel Central", 14.33, 121.07, 4.2),
		place("h2", "Garden Inn", 14.34, 121.08, 3.9),
	}
	searchSvc.On("SearchCityWide", mock.Anything, types.PreferenceToPlaceTypes[types.LodgingCategory]).
		Return(hotels, nil)

	svc := newTestService(searchSvc, nil, nil, nil)
	start := svc.StartSession(ctx)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "tourist"})
	require.NoError(t, err)
	assert.Equal(t, StateLodging, reply.State)
	assert.Len(t, reply.Places, 2)
	assert.Contains(t, reply.Messages[0].Content, "Hotel Central")

	reply, err = svc.HandleChoice(ctx, start.SessionID, Choice{Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, StateDays, reply.State)
	require.NotNil(t, reply.Focus)
	assert.Equal(t, "h2", reply.Focus.ID)

	session, err := svc.store.Get(start.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session.Prefs.Lodging)
	assert.Equal(t, "h2", session.Prefs.Lodging.ID)
}

func TestWizard_TouristLodgingSkip(t *testing.T) {
	ctx := context.Background()
	searchSvc := new(MockSearchService)
	searchSvc.On("SearchCityWide", mock.Anything, mock.Anything).
		Return([]types.Place{place("h1", "Hotel Central", 14.33, 121.07, 4.2)}, nil)

	svc := newTestService(searchSvc, nil, nil, nil)
	start := svc.StartSession(ctx)

	_, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "tourist"})
	require.NoError(t, err)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "skip"})
	require.NoError(t, err)
	assert.Equal(t, StateDays, reply.State)

	session, err := svc.store.Get(start.SessionID)
	require.NoError(t, err)
	assert.Nil(t, session.Prefs.Lodging)
}

func TestWizard_LodgingSearchFailureDegrades(t *testing.T) {
	ctx := context.Background()
	searchSvc := new(MockSearchService)
	searchSvc.On("SearchCityWide", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider down"))

	svc := newTestService(searchSvc, nil, nil, nil)
	start := svc.StartSession(ctx)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "tourist"})
	require.NoError(t, err)
	// Never stuck: the wizard moves on without lodging options.
	assert.Equal(t, StateDays, reply.State)
	assert.Contains(t, reply.Messages[0].Content, "How many days")
}

func TestWizard_InvalidDaysReprompts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(new(MockSearchService), nil, nil, nil)
	start := svc.StartSession(ctx)

	_, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "local"})
	require.NoError(t, err)

	for _, days := range []int{0, 8, -1} {
		reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Days: days})
		require.NoError(t, err)
		assert.Equal(t, StateDays, reply.State)
		assert.Contains(t, reply.Messages[0].Content, "between 1 and 7")
	}
}

func TestWizard_FreeTextDayCount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(new(MockSearchService), nil, nil, nil)
	start := svc.StartSession(ctx)

	_, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "local"})
	require.NoError(t, err)

	reply, err := svc.HandleMessage(ctx, start.SessionID, " 3 ", nil)
	require.NoError(t, err)
	assert.Equal(t, StatePreferences, reply.State)
}

func TestWizard_UnknownCategoryReprompts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(new(MockSearchService), nil, nil, nil)
	start := svc.StartSession(ctx)

	_, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "local"})
	require.NoError(t, err)
	_, err = svc.HandleChoice(ctx, start.SessionID, Choice{Days: 2})
	require.NoError(t, err)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Transport: "walk", Categories: []string{"Nightlife"}})
	require.NoError(t, err)
	assert.Equal(t, StatePreferences, reply.State)
	assert.Contains(t, reply.Messages[0].Content, "Nightlife")
}

func TestWizard_ItineraryErrorStaysInPreferences(t *testing.T) {
	ctx := context.Background()
	itinSvc := &stubItineraryService{err: errors.New("model unavailable")}
	svc := newTestService(new(MockSearchService), nil, itinSvc, nil)
	start := svc.StartSession(ctx)

	_, err := svc.HandleChoice(ctx, start.SessionID, Choice{Value: "local"})
	require.NoError(t, err)
	_, err = svc.HandleChoice(ctx, start.SessionID, Choice{Days: 2})
	require.NoError(t, err)

	reply, err := svc.HandleChoice(ctx, start.SessionID, Choice{Transport: "walk", Categories: []string{"Museums"}})
	require.NoError(t, err)
	assert.Equal(t, StatePreferences, reply.State)
	assert.Contains(t, reply.Messages[0].Content, "Sorry, there was an error")
}

func TestFreeText_NearbyWithoutLocation(t *testing.T) {
	ctx := context.Background()
	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:          types.IntentSearchPlaces,
		Nearby:        true,
		IncludedTypes: []string{"cafe"},
		Radius:        types.DefaultNearbyRadiusMeters,
		Confidence:    0.9,
	}}
	svc := newTestService(new(MockSearchService), intentSvc, nil, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "coffee near me", nil)
	require.NoError(t, err)
	assert.True(t, reply.RequiresLocation)
	assert.Empty(t, reply.Places)
}

func TestFreeText_NearbySearch(t *testing.T) {
	ctx := context.Background()
	loc := types.Coordinate{Lat: 14.33, Lng: 121.07}
	results := []types.Place{
		place("c1", "Corner Cafe", 14.331, 121.071, 4.1),
		place("c2", "Roast House", 14.34, 121.08, 4.6),
	}

	searchSvc := new(MockSearchService)
	searchSvc.On("SearchNearby", mock.Anything, []string{"cafe"}, loc, float64(types.DefaultNearbyRadiusMeters)).
		Return(results, nil)

	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:          types.IntentSearchPlaces,
		Nearby:        true,
		IncludedTypes: []string{"cafe"},
		Confidence:    0.9,
	}}
	svc := newTestService(searchSvc, intentSvc, nil, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "coffee near me", &loc)
	require.NoError(t, err)
	assert.False(t, reply.RequiresLocation)
	assert.Len(t, reply.Places, 2)
	assert.Contains(t, reply.Messages[0].Content, "Corner Cafe")
	// Focus snaps to the closest indexed place.
	require.NotNil(t, reply.Focus)
	assert.Equal(t, "c1", reply.Focus.ID)
}

func TestFreeText_NearbyFallsBackToSessionMap(t *testing.T) {
	ctx := context.Background()
	loc := types.Coordinate{Lat: 14.33, Lng: 121.07}

	nearCafe := place("c1", "Corner Cafe", 14.331, 121.071, 4.1)
	nearCafe.Types = []string{"cafe"}
	museum := place("m1", "Heritage Museum", 14.3312, 121.0712, 4.5)
	museum.Types = []string{"museum"}
	farCafe := place("c2", "Roast House", 14.40, 121.15, 4.6)
	farCafe.Types = []string{"cafe"}

	itinSvc := &stubItineraryService{plan: &types.TripPlan{
		Itinerary: map[int]string{1: "Morning\n* Corner Cafe – espresso\n"},
		PlacesByCategory: map[string][]types.Place{
			"Coffee Shops": {nearCafe, farCafe},
			"Museums":      {museum},
		},
	}}

	searchSvc := new(MockSearchService)
	searchSvc.On("SearchNearby", mock.Anything, []string{"cafe"}, loc, float64(types.DefaultNearbyRadiusMeters)).
		Return([]types.Place{}, nil)

	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:          types.IntentSearchPlaces,
		Nearby:        true,
		IncludedTypes: []string{"cafe"},
		Confidence:    0.9,
	}}
	svc := newTestService(searchSvc, intentSvc, itinSvc, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	// The provider has nothing, so the session falls back to places already
	// on the map. Only the indexed cafe inside the radius qualifies: the
	// museum is the wrong kind and the far cafe is out of reach.
	reply, err := svc.HandleMessage(ctx, start.SessionID, "coffee near me", &loc)
	require.NoError(t, err)
	require.Len(t, reply.Places, 1)
	assert.Equal(t, "c1", reply.Places[0].ID)
	assert.Contains(t, reply.Messages[0].Content, "from earlier")
	assert.Contains(t, reply.Messages[0].Content, "Corner Cafe")
}

func TestFreeText_RecommendationCityWide(t *testing.T) {
	ctx := context.Background()
	searchSvc := new(MockSearchService)
	searchSvc.On("SearchCityWide", mock.Anything, []string{"restaurant"}).
		Return([]types.Place{place("r1", "Kusina Binan", 14.33, 121.07, 4.7)}, nil)

	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:          types.IntentRecommendation,
		IncludedTypes: []string{"restaurant"},
		Confidence:    0.8,
	}}
	svc := newTestService(searchSvc, intentSvc, nil, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "where should I eat?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Messages[0].Content, "you might enjoy")
	assert.Contains(t, reply.Messages[0].Content, "Kusina Binan")
}

func TestFreeText_ClarifyIntent(t *testing.T) {
	ctx := context.Background()
	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:                  types.IntentClarification,
		ClarificationQuestion: "What kind of place are you looking for?",
		Confidence:            0.1,
	}}
	svc := newTestService(new(MockSearchService), intentSvc, nil, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "hmm", nil)
	require.NoError(t, err)
	assert.Equal(t, "What kind of place are you looking for?", reply.Messages[0].Content)
}

func TestFreeText_ChatIntentDegradesOnGeneratorError(t *testing.T) {
	ctx := context.Background()
	intentSvc := &stubIntentService{intent: &types.Intent{Type: types.IntentChat, Confidence: 0.9}}
	gen := &stubGenerator{err: errors.New("model unavailable")}
	svc := newTestService(new(MockSearchService), intentSvc, nil, gen)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "tell me about Binan", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Messages[0].Content, "Sorry, there was an error")
}

func TestFreeText_ProviderNotReady(t *testing.T) {
	ctx := context.Background()
	searchSvc := new(MockSearchService)
	searchSvc.On("SearchCityWide", mock.Anything, []string{"cafe"}).
		Return([]types.Place{}, places.ErrNotReady)

	intentSvc := &stubIntentService{intent: &types.Intent{
		Type:          types.IntentSearchPlaces,
		IncludedTypes: []string{"cafe"},
		Confidence:    0.9,
	}}
	svc := newTestService(searchSvc, intentSvc, nil, nil)
	start := svc.StartSession(ctx)
	advanceToDone(t, svc, start.SessionID)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "any cafes?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Messages[0].Content, "warming up")
}

func TestSessionNotFound(t *testing.T) {
	svc := newTestService(new(MockSearchService), nil, nil, nil)

	_, err := svc.HandleChoice(context.Background(), uuid.New(), Choice{Value: "local"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.HandleMessage(context.Background(), uuid.New(), "hello", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.Transcript(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMessageBeforeDoneReprompts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(new(MockSearchService), nil, nil, nil)
	start := svc.StartSession(ctx)

	reply, err := svc.HandleMessage(ctx, start.SessionID, "show me cafes", nil)
	require.NoError(t, err)
	assert.Equal(t, StateInitial, reply.State)
	assert.Contains(t, reply.Messages[0].Content, "finish setting up")
}
