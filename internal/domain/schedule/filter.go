// Package schedule refines search results: day and service-type filtering
// plus distance, name and next-Mass ordering. Everything here is pure;
// the current time is always passed in so tests can inject a clock.
package schedule

import (
	"strings"

	"parishfinder/internal/domain/entity"
)

// Filter keeps a parish iff at least one of its worship times matches both
// the day filter (exact match, or "All") and the service filter
// (case-insensitive substring on the type label, or "All"). "Confession"
// also matches entries labeled "Reconciliation".
func Filter(parishes []*entity.Parish, day, service string) []*entity.Parish {
	if isAll(day) && isAll(service) {
		return parishes
	}

	filtered := make([]*entity.Parish, 0, len(parishes))
	for _, parish := range parishes {
		if matchesAny(parish.Times, day, service) {
			filtered = append(filtered, parish)
		}
	}

	return filtered
}

func matchesAny(times []entity.WorshipTime, day, service string) bool {
	for _, wt := range times {
		if !isAll(day) && wt.Day != day {
			continue
		}
		if !isAll(service) && !matchesService(wt.Type, service) {
			continue
		}

		return true
	}

	return false
}

func matchesService(label, filter string) bool {
	t := strings.ToLower(label)
	f := strings.ToLower(filter)

	if strings.Contains(t, f) {
		return true
	}

	// Confession and Reconciliation name the same sacrament.
	return f == "confession" && strings.Contains(t, "reconciliation")
}

func isAll(filter string) bool {
	return filter == "" || strings.EqualFold(filter, entity.FilterAll)
}
