package schedule

import (
	"math"
	"sort"
	"time"

	"parishfinder/internal/domain/entity"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOption selects the result ordering.
type SortOption string

const (
	SortByDistance SortOption = "distance"
	SortByName     SortOption = "name"
	SortByNextMass SortOption = "nextMass"
)

// ParseSortOption maps a request parameter to a SortOption, defaulting to
// distance for anything unrecognized.
func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortByName:
		return SortByName
	case SortByNextMass:
		return SortByNextMass
	default:
		return SortByDistance
	}
}

// Sort returns a sorted copy of parishes by the given criterion. The input
// slice is not modified.
//
// Distance sorts ascending with missing distances last. Name uses
// locale-aware collation. Next-Mass sorts by minutes until the next
// qualifying Mass from now; parishes with no parsable upcoming Mass last.
func Sort(parishes []*entity.Parish, by SortOption, now time.Time) []*entity.Parish {
	sorted := make([]*entity.Parish, len(parishes))
	copy(sorted, parishes)

	switch by {
	case SortByName:
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(sorted, func(i, j int) bool {
			return collator.CompareString(sorted[i].Name, sorted[j].Name) < 0
		})

	case SortByNextMass:
		keys := make(map[*entity.Parish]float64, len(sorted))
		for _, p := range sorted {
			keys[p] = nextMassMinutes(p.Times, now)
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			return keys[sorted[i]] < keys[sorted[j]]
		})

	default: // SortByDistance
		sort.SliceStable(sorted, func(i, j int) bool {
			return distanceKey(sorted[i]) < distanceKey(sorted[j])
		})
	}

	return sorted
}

func distanceKey(p *entity.Parish) float64 {
	if p.Distance == nil {
		return math.Inf(1)
	}

	return *p.Distance
}
