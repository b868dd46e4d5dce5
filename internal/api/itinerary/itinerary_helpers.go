package itinerary

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// Day plans list stops as "* <Place> – <note>" lines. The separator is an
// en dash by convention, but the model occasionally emits a hyphen or em
// dash; all three are accepted.
var stopLineRe = regexp.MustCompile(`(?m)^\s*\*\s+(.+?)\s+[–—-]\s+`)

// extractVisitedNames scans day plans in day order and collects the place
// names of every stop line, first mention wins, order preserved.
func extractVisitedNames(plans map[int]string) []string {
	days := make([]int, 0, len(plans))
	for d := range plans {
		days = append(days, d)
	}
	sort.Ints(days)

	seen := make(map[string]struct{})
	var names []string
	for _, d := range days {
		for _, m := range stopLineRe.FindAllStringSubmatch(plans[d], -1) {
			name := strings.TrimSpace(m[1])
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// nameMentioned reports whether a place display name matches one of the
// mentioned names. Matching is case-insensitive and exact; names longer
// than 5 characters additionally tolerate substring matches in either
// direction (plans often drop suffixes like "Binan Branch").
func nameMentioned(displayName string, mentions []string) bool {
	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return false
	}
	substringOK := utf8.RuneCountInString(name) > 5
	for _, m := range mentions {
		mention := strings.ToLower(strings.TrimSpace(m))
		if name == mention {
			return true
		}
		if substringOK && (strings.Contains(mention, name) || strings.Contains(name, mention)) {
			return true
		}
	}
	return false
}

// repeatedNames returns the names in plan that already appear in visited.
func repeatedNames(plan string, visited []string) []string {
	var repeats []string
	for _, m := range stopLineRe.FindAllStringSubmatch(plan, -1) {
		name := strings.TrimSpace(m[1])
		if nameMentioned(name, visited) {
			repeats = append(repeats, name)
		}
	}
	return repeats
}

// squaredDegreeDistance is the planar squared distance on raw lat/lng
// deltas, no geodesic correction and no square root. Only meaningful at
// city scale, and deliberately kept this way: lodging selection ranks by
// this score, and switching to haversine would change which hotel wins.
func squaredDegreeDistance(a, b types.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

// selectLodging picks the hotel minimizing the average squared distance to
// every place in the other categories. Deterministic: ties keep the
// earliest candidate.
func selectLodging(hotels, others []types.Place) *types.Place {
	if len(hotels) == 0 {
		return nil
	}
	bestIdx := 0
	bestScore := math.MaxFloat64
	for i, h := range hotels {
		var sum float64
		for _, p := range others {
			sum += squaredDegreeDistance(h.Location, p.Location)
		}
		score := sum
		if len(others) > 0 {
			score = sum / float64(len(others))
		}
		if score < bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return &hotels[bestIdx]
}

// sortedCategories returns the preference categories in a stable order so
// prompt construction and place aggregation are deterministic.
func sortedCategories(placeTypes map[string][]string) []string {
	cats := make([]string, 0, len(placeTypes))
	for c := range placeTypes {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
