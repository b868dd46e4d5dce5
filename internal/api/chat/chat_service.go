package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/ZyrusAlvez/tourist-app-binan/internal/api/generative_ai"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/intent"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/itinerary"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/api/search"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/places"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

const (
	greeting = "Welcome to Biyaheng Binan! Are you visiting as a tourist or exploring as a local?"

	// friendlyError is the degraded reply for any internal failure. The
	// wizard never surfaces raw errors and never gets stuck; the visitor
	// can always retry with the same input.
	friendlyError = "Sorry, there was an error processing your request. Please try again."

	assistantSystemPrompt = "You are a helpful assistant for finding places in Binan, Laguna, Philippines. Help users discover cafes, restaurants, tourist attractions, parks, and museums. Keep responses concise and friendly."

	maxLodgingOptions = 5
	maxListedPlaces   = 10
)

// Choice is a structured wizard input, the API equivalent of a button tap.
type Choice struct {
	Value      string   `json:"value,omitempty"`
	Days       int      `json:"days,omitempty"`
	Transport  string   `json:"transportation_mode,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Reply is what a wizard interaction hands back to the client: the new
// assistant turns plus map payloads.
type Reply struct {
	SessionID uuid.UUID                `json:"session_id"`
	State     WizardState              `json:"state"`
	Messages  []types.ConversationTurn `json:"messages"`
	// Places carries the results to render as map markers, when any.
	Places []types.Place `json:"places,omitempty"`
	// Focus is the place the map should center on.
	Focus *types.Place `json:"focus,omitempty"`
	// RequiresLocation asks the client to resend the message with the
	// visitor's coordinates.
	RequiresLocation bool           `json:"requires_location,omitempty"`
	Itinerary        map[int]string `json:"itinerary,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	StartSession(ctx context.Context) *Reply
	HandleChoice(ctx context.Context, sessionID uuid.UUID, choice Choice) (*Reply, error)
	HandleMessage(ctx context.Context, sessionID uuid.UUID, text string, location *types.Coordinate) (*Reply, error)
	Transcript(sessionID uuid.UUID) ([]types.ConversationTurn, WizardState, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	store     *Store
	search    search.Service
	intent    intent.Service
	itinerary itinerary.Service
	generator generativeAI.TextGenerator
}

func NewServiceImpl(store *Store, searchService search.Service, intentService intent.Service, itineraryService itinerary.Service, generator generativeAI.TextGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		store:     store,
		search:    searchService,
		intent:    intentService,
		itinerary: itineraryService,
		generator: generator,
	}
}

func (s *ServiceImpl) StartSession(ctx context.Context) *Reply {
	_, span := otel.Tracer("ChatService").Start(ctx, "StartSession")
	defer span.End()

	session := s.store.Create()
	defer session.lock()()
	turn := session.appendTurn(types.RoleAssistant, greeting)
	span.SetAttributes(attribute.String("session.id", session.ID.String()))

	return &Reply{
		SessionID: session.ID,
		State:     session.State,
		Messages:  []types.ConversationTurn{turn},
	}
}

func (s *ServiceImpl) Transcript(sessionID uuid.UUID) ([]types.ConversationTurn, WizardState, error) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, "", err
	}
	defer session.lock()()
	turns := make([]types.ConversationTurn, len(session.Turns))
	copy(turns, session.Turns)
	return turns, session.State, nil
}

func (s *ServiceImpl) HandleChoice(ctx context.Context, sessionID uuid.UUID, choice Choice) (*Reply, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "HandleChoice", trace.WithAttributes(
		attribute.String("session.id", sessionID.String())))
	defer span.End()

	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.lock()()

	reply := &Reply{SessionID: session.ID}
	switch session.State {
	case StateInitial:
		s.handleInitialChoice(ctx, session, choice, reply)
	case StateLodging:
		s.handleLodgingChoice(session, choice, reply)
	case StateDays:
		s.handleDays(session, choice.Days, reply)
	case StatePreferences:
		s.handlePreferences(ctx, session, choice, reply)
	default:
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Your trip is already planned. Just ask me anything about places in Binan."))
	}

	reply.State = session.State
	span.SetAttributes(attribute.String("session.state", string(session.State)))
	return reply, nil
}

func (s *ServiceImpl) HandleMessage(ctx context.Context, sessionID uuid.UUID, text string, location *types.Coordinate) (*Reply, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "HandleMessage", trace.WithAttributes(
		attribute.String("session.id", sessionID.String())))
	defer span.End()

	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.lock()()

	history := make([]types.ConversationTurn, len(session.Turns))
	copy(history, session.Turns)
	session.appendTurn(types.RoleUser, text)

	reply := &Reply{SessionID: session.ID}
	switch session.State {
	case StateDays:
		days, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			days = 0
		}
		s.handleDays(session, days, reply)
	case StateDone:
		s.routeFreeText(ctx, session, text, history, location, reply)
	default:
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Let's finish setting up your trip first. Please pick one of the options above."))
	}

	reply.State = session.State
	span.SetAttributes(attribute.String("session.state", string(session.State)))
	return reply, nil
}

func (s *ServiceImpl) handleInitialChoice(ctx context.Context, session *Session, choice Choice, reply *Reply) {
	switch strings.ToLower(strings.TrimSpace(choice.Value)) {
	case "tourist":
		hotels, err := s.search.SearchCityWide(ctx, types.PreferenceToPlaceTypes[types.LodgingCategory])
		if err != nil || len(hotels) == 0 {
			if err != nil && !errors.Is(err, places.ErrNotReady) {
				s.logger.ErrorContext(ctx, "Lodging search failed", slog.Any("error", err))
			}
			// No options to offer; skip straight to trip length.
			session.State = StateDays
			reply.Messages = append(reply.Messages,
				session.appendTurn(types.RoleAssistant, "I couldn't load lodging options right now, we can pick accommodation later. How many days will you explore Binan? (1-7)"))
			return
		}
		if len(hotels) > maxLodgingOptions {
			hotels = hotels[:maxLodgingOptions]
		}
		session.LodgingOptions = hotels
		session.State = StateLodging

		var b strings.Builder
		b.WriteString("Great! Here are some places to stay:\n")
		for i, h := range hotels {
			if h.Rating > 0 {
				fmt.Fprintf(&b, "%d. %s (rating %.1f)\n", i+1, h.DisplayName, h.Rating)
			} else {
				fmt.Fprintf(&b, "%d. %s\n", i+1, h.DisplayName)
			}
		}
		b.WriteString("Reply with a number to pick one, or 'skip' to decide later.")
		reply.Messages = append(reply.Messages, session.appendTurn(types.RoleAssistant, b.String()))
		reply.Places = hotels
	case "local":
		session.State = StateDays
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "How many days will you explore Binan? (1-7)"))
	default:
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Are you visiting as a tourist or exploring as a local?"))
	}
}

func (s *ServiceImpl) handleLodgingChoice(session *Session, choice Choice, reply *Reply) {
	value := strings.ToLower(strings.TrimSpace(choice.Value))
	if value == "skip" {
		session.State = StateDays
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "No problem. How many days will you explore Binan? (1-7)"))
		return
	}
	pick, err := strconv.Atoi(value)
	if err != nil || pick < 1 || pick > len(session.LodgingOptions) {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, fmt.Sprintf("Please reply with a number between 1 and %d, or 'skip'.", len(session.LodgingOptions))))
		return
	}

	chosen := session.LodgingOptions[pick-1]
	session.Prefs.Lodging = &chosen
	session.Index.Insert(chosen)
	session.State = StateDays
	reply.Focus = &chosen
	reply.Messages = append(reply.Messages,
		session.appendTurn(types.RoleAssistant, fmt.Sprintf("%s it is. How many days will you explore Binan? (1-7)", chosen.DisplayName)))
}

func (s *ServiceImpl) handleDays(session *Session, days int, reply *Reply) {
	if days < types.MinTripDays || days > types.MaxTripDays {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, fmt.Sprintf("Please give me a number of days between %d and %d.", types.MinTripDays, types.MaxTripDays)))
		return
	}
	session.Prefs.Days = days
	session.State = StatePreferences
	reply.Messages = append(reply.Messages,
		session.appendTurn(types.RoleAssistant, "How will you get around (walk, bike, drive or transit), and what are you interested in? Pick from: "+strings.Join(categoryLabels(), ", ")+"."))
}

func (s *ServiceImpl) handlePreferences(ctx context.Context, session *Session, choice Choice, reply *Reply) {
	transport, err := types.ParseTransportMode(strings.ToLower(strings.TrimSpace(choice.Transport)))
	if err != nil {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Please choose how you'll get around: walk, bike, drive or transit."))
		return
	}
	if len(choice.Categories) == 0 {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Pick at least one interest from: "+strings.Join(categoryLabels(), ", ")+"."))
		return
	}

	placeTypes := make(map[string][]string, len(choice.Categories))
	for _, cat := range choice.Categories {
		tags, ok := types.PreferenceToPlaceTypes[cat]
		if !ok {
			reply.Messages = append(reply.Messages,
				session.appendTurn(types.RoleAssistant, fmt.Sprintf("I don't know the category %q. Pick from: %s.", cat, strings.Join(categoryLabels(), ", "))))
			return
		}
		placeTypes[cat] = tags
	}

	session.Prefs.TransportMode = transport
	session.Prefs.PlaceTypes = placeTypes

	plan, err := s.itinerary.Generate(ctx, session.Prefs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Itinerary generation failed in wizard", slog.Any("error", err))
		// Stay in preferences so the same input can be retried.
		reply.Messages = append(reply.Messages, session.appendTurn(types.RoleAssistant, friendlyError))
		return
	}

	session.State = StateDone
	for day := 1; day <= session.Prefs.Days; day++ {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, fmt.Sprintf("Day %d:\n%s", day, plan.Itinerary[day])))
	}
	reply.Messages = append(reply.Messages,
		session.appendTurn(types.RoleAssistant, "Your itinerary is ready! Ask me anything else about places in Binan."))

	var markers []types.Place
	for _, group := range plan.PlacesByCategory {
		markers = append(markers, group...)
	}
	session.Index.InsertAll(markers)
	reply.Places = markers
	reply.Focus = plan.Lodging
	reply.Itinerary = plan.Itinerary
	reply.Warnings = plan.Warnings
}

func (s *ServiceImpl) routeFreeText(ctx context.Context, session *Session, text string, history []types.ConversationTurn, location *types.Coordinate, reply *Reply) {
	classified := s.intent.Identify(ctx, text, history)

	switch classified.Type {
	case types.IntentClarification:
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, classified.ClarificationQuestion))

	case types.IntentChat:
		turns := session.Turns
		answer, err := s.generator.Complete(ctx, assistantSystemPrompt, turns)
		if err != nil {
			s.logger.WarnContext(ctx, "Chat completion failed", slog.Any("error", err))
			answer = friendlyError
		}
		reply.Messages = append(reply.Messages, session.appendTurn(types.RoleAssistant, answer))

	case types.IntentSearchPlaces, types.IntentRecommendation:
		s.runSearchIntent(ctx, session, classified, location, reply)

	default:
		reply.Messages = append(reply.Messages, session.appendTurn(types.RoleAssistant, friendlyError))
	}
}

func (s *ServiceImpl) runSearchIntent(ctx context.Context, session *Session, classified *types.Intent, location *types.Coordinate, reply *Reply) {
	if len(classified.IncludedTypes) == 0 {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "What kind of places are you looking for?"))
		return
	}
	if classified.Nearby && location == nil {
		reply.RequiresLocation = true
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "Share your location with me and I'll look for places nearby."))
		return
	}

	radius := classified.Radius
	if radius <= 0 {
		radius = types.DefaultNearbyRadiusMeters
	}

	var results []types.Place
	var err error
	if classified.Nearby {
		results, err = s.search.SearchNearby(ctx, classified.IncludedTypes, *location, radius)
	} else {
		results, err = s.search.SearchCityWide(ctx, classified.IncludedTypes)
	}
	if err != nil {
		if errors.Is(err, places.ErrNotReady) {
			reply.Messages = append(reply.Messages,
				session.appendTurn(types.RoleAssistant, "Place search is still warming up. Please try again in a moment."))
			return
		}
		s.logger.ErrorContext(ctx, "Search intent failed", slog.Any("error", err))
		reply.Messages = append(reply.Messages, session.appendTurn(types.RoleAssistant, friendlyError))
		return
	}
	fromIndex := false
	if classified.Nearby && len(results) == 0 {
		// The provider came up empty; places this session has already put on
		// the map may still be within reach. Index radii are in kilometers.
		indexed := session.Index.WithinRadius(*location, radius/1000)
		results = filterByPlaceTypes(indexed, classified.IncludedTypes)
		fromIndex = len(results) > 0
	}
	if len(results) == 0 {
		reply.Messages = append(reply.Messages,
			session.appendTurn(types.RoleAssistant, "I couldn't find any places matching that. Try something else?"))
		return
	}

	if len(results) > maxListedPlaces {
		results = results[:maxListedPlaces]
	}
	if !fromIndex {
		session.Index.InsertAll(results)
	}

	names := make([]string, len(results))
	for i, p := range results {
		names[i] = p.DisplayName
	}
	lead := "Here's what I found: "
	if classified.Type == types.IntentRecommendation {
		lead = "Based on ratings, you might enjoy: "
	}
	if fromIndex {
		lead = "Nothing new turned up, but these places from earlier are nearby: "
	}
	reply.Messages = append(reply.Messages,
		session.appendTurn(types.RoleAssistant, lead+strings.Join(names, ", ")+"."))
	reply.Places = results

	if location != nil {
		if nearest := session.Index.Nearest(*location, 1); len(nearest) > 0 {
			reply.Focus = &nearest[0]
		}
	}
	if reply.Focus == nil {
		reply.Focus = &results[0]
	}
}

// filterByPlaceTypes keeps candidates carrying at least one of the requested
// provider type tags. An empty tag list keeps everything.
func filterByPlaceTypes(candidates []types.Place, tags []string) []types.Place {
	if len(tags) == 0 {
		return candidates
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}
	var kept []types.Place
	for _, p := range candidates {
		for _, pt := range p.Types {
			if _, ok := wanted[pt]; ok {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

func categoryLabels() []string {
	labels := make([]string, 0, len(types.PreferenceToPlaceTypes))
	for label := range types.PreferenceToPlaceTypes {
		labels = append(labels, label)
	}
	// Deterministic prompt wording.
	sort.Strings(labels)
	return labels
}
