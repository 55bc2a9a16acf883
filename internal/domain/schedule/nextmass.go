package schedule

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"parishfinder/internal/domain/entity"
)

// timePattern matches 12-hour "H:MM" times with an optional AM/PM marker.
// Free-text times vary by source; anything that does not match is treated
// as unknown and sorts last rather than failing the sort.
var timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(?i:(AM|PM))?`)

const minutesPerDay = 1440

// nextMassMinutes returns the number of minutes from now until the next
// Mass entry in times, scanning forward up to 7 days inclusive of today
// and excluding same-day times that have already passed. Returns +Inf
// when no qualifying entry parses.
func nextMassMinutes(times []entity.WorshipTime, now time.Time) float64 {
	currentDay := now.Weekday().String()
	currentMinutes := now.Hour()*60 + now.Minute()

	currentDayIdx := -1
	for i, day := range entity.DaysOfWeek {
		if day == currentDay {
			currentDayIdx = i

			break
		}
	}
	if currentDayIdx < 0 {
		return math.Inf(1)
	}

	var masses []entity.WorshipTime
	for _, wt := range times {
		if strings.Contains(strings.ToLower(wt.Type), "mass") {
			masses = append(masses, wt)
		}
	}

	for dayOffset := 0; dayOffset < 7; dayOffset++ {
		targetDay := entity.DaysOfWeek[(currentDayIdx+dayOffset)%7]

		for _, mass := range masses {
			if mass.Day != targetDay {
				continue
			}

			minutes, ok := parseClockMinutes(mass.Time)
			if !ok {
				continue
			}

			// Same-day times that have already passed do not count.
			if dayOffset == 0 && minutes <= currentMinutes {
				continue
			}

			return float64(dayOffset*minutesPerDay + minutes)
		}
	}

	return math.Inf(1)
}

// parseClockMinutes extracts minutes-since-midnight from free-text time
// like "9:00 AM", "12:15pm" or "17:30".
func parseClockMinutes(text string) (int, bool) {
	match := timePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}

	switch strings.ToUpper(match[3]) {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
