package schedule

import (
	"testing"
	"time"

	"parishfinder/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func miles(v float64) *float64 { return &v }

// Wednesday 2025-06-18 10:00 local.
var wednesdayMorning = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func names(parishes []*entity.Parish) []string {
	out := make([]string, len(parishes))
	for i, p := range parishes {
		out[i] = p.Name
	}

	return out
}

func TestSort_ByDistance(t *testing.T) {
	parishes := []*entity.Parish{
		{Name: "B", Distance: miles(5)},
		{Name: "A", Distance: miles(2)},
	}

	sorted := Sort(parishes, SortByDistance, wednesdayMorning)
	assert.Equal(t, []string{"A", "B"}, names(sorted))
	// Input order untouched.
	assert.Equal(t, "B", parishes[0].Name)
}

func TestSort_MissingDistanceLast(t *testing.T) {
	parishes := []*entity.Parish{
		{Name: "unknown"},
		{Name: "near", Distance: miles(0.5)},
	}

	sorted := Sort(parishes, SortByDistance, wednesdayMorning)
	assert.Equal(t, []string{"near", "unknown"}, names(sorted))
}

func TestSort_ByName(t *testing.T) {
	parishes := []*entity.Parish{
		{Name: "B", Distance: miles(5)},
		{Name: "A", Distance: miles(2)},
	}

	sorted := Sort(parishes, SortByName, wednesdayMorning)
	assert.Equal(t, []string{"A", "B"}, names(sorted))
}

func TestSort_ByNextMass(t *testing.T) {
	soon := &entity.Parish{Name: "soon", Times: []entity.WorshipTime{
		{Day: "Wednesday", Time: "12:00 PM", Type: "Mass"},
	}}
	tomorrow := &entity.Parish{Name: "tomorrow", Times: []entity.WorshipTime{
		{Day: "Thursday", Time: "8:00 AM", Type: "Mass"},
	}}
	passed := &entity.Parish{Name: "sunday", Times: []entity.WorshipTime{
		// 9:00 AM Wednesday already passed at 10:00; next is Sunday.
		{Day: "Wednesday", Time: "9:00 AM", Type: "Mass"},
		{Day: "Sunday", Time: "9:00 AM", Type: "Mass"},
	}}
	none := &entity.Parish{Name: "none", Times: []entity.WorshipTime{
		{Day: "Saturday", Time: "3:00 PM", Type: "Confession"},
	}}
	unparsable := &entity.Parish{Name: "unparsable", Times: []entity.WorshipTime{
		{Day: "Wednesday", Time: "after sunset", Type: "Mass"},
	}}

	sorted := Sort([]*entity.Parish{none, passed, unparsable, tomorrow, soon}, SortByNextMass, wednesdayMorning)

	got := names(sorted)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"soon", "tomorrow", "sunday"}, got[:3])
	// No-Mass and unparsable entries sort last, original order kept.
	assert.ElementsMatch(t, []string{"none", "unparsable"}, got[3:])
}

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortByName, ParseSortOption("name"))
	assert.Equal(t, SortByNextMass, ParseSortOption("nextMass"))
	assert.Equal(t, SortByDistance, ParseSortOption("distance"))
	assert.Equal(t, SortByDistance, ParseSortOption(""))
	assert.Equal(t, SortByDistance, ParseSortOption("bogus"))
}
