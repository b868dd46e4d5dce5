package types

import "fmt"

type TransportMode string

const (
	TransportModeWalk    TransportMode = "walk"
	TransportModeBike    TransportMode = "bike"
	TransportModeDrive   TransportMode = "drive"
	TransportModeTransit TransportMode = "transit"
)

// ParseTransportMode validates a wizard transport choice.
func ParseTransportMode(s string) (TransportMode, error) {
	switch TransportMode(s) {
	case TransportModeWalk, TransportModeBike, TransportModeDrive, TransportModeTransit:
		return TransportMode(s), nil
	default:
		return "", fmt.Errorf("unknown transport mode %q", s)
	}
}

const (
	MinTripDays = 1
	MaxTripDays = 7
)

// LodgingCategory is the user-facing category whose places anchor each day
// of the trip instead of being scheduled as stops.
const LodgingCategory = "Hotels"

// UserPreferences captures everything the planning wizard collects.
// Built once per session and immutable afterwards.
type UserPreferences struct {
	TransportMode TransportMode `json:"transportation_mode"`
	Days          int           `json:"days"`
	// PlaceTypes maps a user-facing category label ("Museums") to the
	// provider place-type tags that category expands to.
	PlaceTypes map[string][]string `json:"place_types"`
	// Lodging is the accommodation the user picked during the wizard,
	// if any. When absent the assembler selects one itself from the
	// Hotels category.
	Lodging *Place `json:"lodging,omitempty"`
}

// Validate checks the bounds the wizard is supposed to have enforced.
func (p UserPreferences) Validate() error {
	if _, err := ParseTransportMode(string(p.TransportMode)); err != nil {
		return err
	}
	if p.Days < MinTripDays || p.Days > MaxTripDays {
		return fmt.Errorf("days must be between %d and %d, got %d", MinTripDays, MaxTripDays, p.Days)
	}
	if len(p.PlaceTypes) == 0 {
		return fmt.Errorf("at least one place category is required")
	}
	return nil
}

// PreferenceToPlaceTypes is the fixed category catalogue offered by the
// wizard, mapping each label to provider place-type tags.
var PreferenceToPlaceTypes = map[string][]string{
	"Hotels":           {"lodging", "campground"},
	"Restaurants":      {"restaurant"},
	"Museums":          {"museum", "art_gallery", "library"},
	"Coffee Shops":     {"cafe", "bakery"},
	"Shopping Centers": {"shopping_mall", "department_store", "clothing_store"},
	"Place of Worship": {"church", "mosque", "hindu_temple", "synagogue"},
	"Attractions":      {"tourist_attraction", "amusement_park", "zoo", "aquarium"},
	"Local Stops":      {"store", "convenience_store", "supermarket", "park", "shopping_mall"},
}
