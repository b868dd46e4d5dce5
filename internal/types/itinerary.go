package types

import (
	"time"

	"github.com/google/uuid"
)

// TripPlan is the output of the itinerary assembler: a textual plan per day
// plus the places the plans actually mention, grouped by category.
type TripPlan struct {
	// Itinerary maps day number (1..N, contiguous) to that day's plan text.
	Itinerary map[int]string `json:"itinerary"`
	// PlacesByCategory holds, per user-facing category, only the places
	// whose names appear in the generated plans. The lodging category is
	// collapsed to the single chosen lodging.
	PlacesByCategory map[string][]Place `json:"places_by_category"`
	// Lodging is the accommodation anchoring each day, when one was
	// available or preselected.
	Lodging *Place `json:"lodging,omitempty"`
	// Warnings lists soft invariant violations detected after generation,
	// e.g. a day plan repeating a place from an earlier day. The text is
	// kept as generated; callers decide how to surface these.
	Warnings []string `json:"warnings,omitempty"`
}

// SavedItinerary is a trip plan a user chose to keep.
type SavedItinerary struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Title         string             `json:"title"`
	Days          int                `json:"days"`
	TransportMode TransportMode      `json:"transportation_mode"`
	Itinerary     map[int]string     `json:"itinerary"`
	Places        map[string][]Place `json:"places"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaveItineraryRequest is the payload for persisting a generated plan.
type SaveItineraryRequest struct {
	Title         string             `json:"title"`
	Days          int                `json:"days"`
	TransportMode TransportMode      `json:"transportation_mode"`
	Itinerary     map[int]string     `json:"itinerary"`
	Places        map[string][]Place `json:"places"`
}
