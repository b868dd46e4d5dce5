// Package chat drives the planning wizard: a short state machine that
// collects trip preferences over a conversation, then hands free-text
// messages to the intent classifier once the wizard is done.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/geo"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// WizardState is the wizard's position in the preference-collection flow.
type WizardState string

const (
	// StateInitial waits for the tourist/local choice.
	StateInitial WizardState = "initial"
	// StateLodging waits for a lodging pick (tourists only).
	StateLodging WizardState = "lodging"
	// StateDays waits for the trip length.
	StateDays WizardState = "days"
	// StatePreferences waits for transport mode and categories.
	StatePreferences WizardState = "preferences"
	// StateDone accepts open-ended chat routed through intent
	// classification.
	StateDone WizardState = "done"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one visitor's wizard run. All state is in-memory and expires
// with the session; nothing is persisted.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	// mu guards everything below. Handlers may race on the same session
	// when a client retries a request.
	mu sync.Mutex

	State WizardState
	Turns []types.ConversationTurn

	// Prefs is filled in step by step as the wizard advances.
	Prefs types.UserPreferences
	// LodgingOptions holds the hotel candidates shown during the lodging
	// step, so a numeric pick can be resolved later.
	LodgingOptions []types.Place
	// Index collects every place surfaced to this session, serving
	// map-focus lookups near the visitor's location.
	Index *geo.PlaceIndex
}

func (s *Session) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Session) appendTurn(role types.Role, content string) types.ConversationTurn {
	turn := types.ConversationTurn{Role: role, Content: content, Timestamp: time.Now()}
	s.Turns = append(s.Turns, turn)
	return turn
}

// Store keeps sessions in an expiring in-memory cache. Access renews the
// TTL so an active conversation never expires under the visitor.
type Store struct {
	sessions *cache.Cache
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: cache.New(ttl, 2*ttl),
		ttl:      ttl,
	}
}

func (st *Store) Create() *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		State:     StateInitial,
		Index:     geo.NewPlaceIndex(),
	}
	st.sessions.Set(s.ID.String(), s, st.ttl)
	return s
}

func (st *Store) Get(id uuid.UUID) (*Session, error) {
	v, ok := st.sessions.Get(id.String())
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	st.sessions.Set(id.String(), s, st.ttl)
	return s, nil
}
