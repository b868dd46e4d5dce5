package itinerary

import (
	"fmt"
	"strings"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

const plannerSystemPrompt = `You are a local travel planner for Binan, Laguna, Philippines. You write realistic one-day plans using ONLY the places provided to you. Keep descriptions short and practical.`

// dayPlanPrompt builds the generation request for one day of the trip.
// The exclusion list is an instruction only; the assembler re-checks the
// output because the model is not trusted to obey it.
func dayPlanPrompt(day, totalDays int, transport types.TransportMode, remaining map[string][]types.Place, categories []string, visited []string, lodging *types.Place, wantsFood bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create the plan for day %d of a %d-day trip around Binan.\n\n", day, totalDays)
	fmt.Fprintf(&b, "The visitor gets around by %s; keep distances and the number of stops realistic for that.\n\n", transport)

	b.WriteString("Places you may use, by category:\n")
	for _, cat := range categories {
		places := remaining[cat]
		if len(places) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, p := range places {
			if p.Rating > 0 {
				fmt.Fprintf(&b, "- %s (rating %.1f)\n", p.DisplayName, p.Rating)
			} else {
				fmt.Fprintf(&b, "- %s\n", p.DisplayName)
			}
		}
	}
	b.WriteString("\n")

	if len(visited) > 0 {
		fmt.Fprintf(&b, "Already visited on earlier days, do NOT include any of these again: %s.\n\n", strings.Join(visited, "; "))
	}
	if lodging != nil {
		fmt.Fprintf(&b, "The visitor stays at %s; start and end the day there, but do not list it as a stop.\n\n", lodging.DisplayName)
	}

	b.WriteString("Format the plan with exactly four time blocks titled Morning, Lunch, Afternoon and Evening. ")
	b.WriteString("Under each block list stops as lines of the form '* <Place> – <short note>'. ")
	b.WriteString("Plan 4 to 6 stops in total for the day and vary the start time from day to day. ")
	if !wantsFood {
		b.WriteString("No dining category was requested, so describe meals generically without naming specific establishments. ")
	}
	b.WriteString("Do not invent places that are not in the lists above.")

	return b.String()
}

// strengthenedDayPlanPrompt is the retry prompt used in strict mode when a
// generated plan repeated an excluded place.
func strengthenedDayPlanPrompt(base string, repeats []string) string {
	return base + fmt.Sprintf("\n\nIMPORTANT: your previous attempt reused %s. These places were already visited. Produce a new plan that does not mention them at all.",
		strings.Join(repeats, ", "))
}
