// Package entity contains the core business objects of the project.
package entity

// WorshipTime is one scheduled service instance at a parish.
// Time is free text as provided by the source; formats vary and are only
// interpreted when sorting by the next upcoming Mass.
type WorshipTime struct {
	Day      string `json:"day"`                // Day-of-week name, e.g. "Sunday".
	Time     string `json:"time"`               // Time of day as free text, e.g. "9:00 AM".
	Type     string `json:"type"`               // Service type label, e.g. "Mass", "Confession".
	Language string `json:"language,omitempty"` // Optional service language.
	Note     string `json:"note,omitempty"`     // Optional free-text note.
}

// Parish is a place-of-worship record with address, coordinates and an
// optional schedule. Records are created fresh per search and never
// mutated after construction.
//
// ID is unique only within a single source and query; no identity is
// guaranteed across sources.
type Parish struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	City      string        `json:"city"`
	State     string        `json:"state"`
	Zip       string        `json:"zip"`
	Country   string        `json:"country"`
	Phone     string        `json:"phone,omitempty"`
	URL       string        `json:"url,omitempty"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Distance  *float64      `json:"distance,omitempty"` // Miles from the query point; search-result context only.
	Times     []WorshipTime `json:"worshipTimes"`       // Source order, never re-sorted.
}

// Days of the week as used by day filters and schedule entries.
var DaysOfWeek = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Well-known service type labels. Matching is case-insensitive substring;
// "Confession" also matches entries labeled "Reconciliation".
const (
	ServiceMass       = "Mass"
	ServiceConfession = "Confession"
	ServiceAdoration  = "Adoration"

	// FilterAll disables a day or service filter.
	FilterAll = "All"
)
