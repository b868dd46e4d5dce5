package types

type IntentKind string

const (
	IntentSearchPlaces   IntentKind = "search_places"
	IntentRecommendation IntentKind = "recommendation"
	IntentChat           IntentKind = "chat"
	IntentClarification  IntentKind = "clarification"
)

// DefaultNearbyRadiusMeters is used when a nearby search intent does not
// name its own radius.
const DefaultNearbyRadiusMeters = 1000

// Intent is the structured classification of a free-text user message.
type Intent struct {
	Type                  IntentKind `json:"type"`
	Nearby                bool       `json:"nearby"`
	IncludedTypes         []string   `json:"includedTypes,omitempty"`
	Radius                float64    `json:"radius,omitempty"`
	ClarificationQuestion string     `json:"clarificationQuestion,omitempty"`
	Confidence            float64    `json:"confidence"`
}

// SupportedPlaceTypes is the closed vocabulary of provider place-type tags
// the intent classifier may emit. Any tag outside this list downgrades the
// whole classification to a clarification.
var SupportedPlaceTypes = []string{
	"accounting", "airport", "amusement_park", "aquarium", "art_gallery", "atm",
	"bakery", "bank", "bar", "beauty_salon", "bicycle_store", "book_store",
	"bowling_alley", "bus_station", "cafe", "campground", "car_dealer",
	"car_rental", "car_repair", "car_wash", "casino", "cemetery", "church",
	"city_hall", "clothing_store", "convenience_store", "courthouse", "dentist",
	"department_store", "doctor", "drugstore", "electrician", "electronics_store",
	"embassy", "fire_station", "florist", "funeral_home", "furniture_store",
	"gas_station", "gym", "hair_care", "hardware_store", "hindu_temple", "hospital",
	"insurance_agency", "jewelry_store", "laundry", "lawyer", "library",
	"light_rail_station", "liquor_store", "local_government_office", "locksmith",
	"lodging", "meal_delivery", "mosque", "movie_theater", "moving_company",
	"museum", "night_club", "painter", "park", "parking", "pet_store", "pharmacy",
	"physiotherapist", "plumber", "police", "post_office", "primary_school",
	"real_estate_agency", "restaurant", "roofing_contractor", "rv_park", "school",
	"shoe_store", "shopping_mall", "spa", "stadium", "storage", "store",
	"subway_station", "supermarket", "synagogue", "taxi_stand", "tourist_attraction",
	"train_station", "transit_station", "travel_agency", "university",
	"veterinary_care", "zoo",
}

var supportedPlaceTypeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SupportedPlaceTypes))
	for _, t := range SupportedPlaceTypes {
		m[t] = struct{}{}
	}
	return m
}()

// IsSupportedPlaceType reports whether tag belongs to the fixed vocabulary.
func IsSupportedPlaceType(tag string) bool {
	_, ok := supportedPlaceTypeSet[tag]
	return ok
}
