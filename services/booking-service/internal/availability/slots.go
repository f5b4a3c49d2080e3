// Package availability derives concrete bookable time slots from a tutor's
// recurring weekly pattern. All sessions are one hour; slots are hour-aligned.
package availability

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
)

// ResolveSlots expands avail for the weekday of date into "H:00" slot start
// times, sorted by hour with duplicates from overlapping ranges removed.
//
// Range boundaries are truncated to their hour component: "9:30-11:00" yields
// hours 9 and 10. That truncation is intentional; stored availability is
// hour-granular, and minute parts carried over from older records are dropped
// rather than rounded. Ranges that fail to parse, and ranges whose end hour
// is not after their start hour, contribute no slots.
//
// The function is pure and total: no availability for the day means an empty
// result, never an error.
func ResolveSlots(avail model.WeeklyAvailability, date time.Time) []string {
	ranges := avail[WeekdayName(date)]
	if len(ranges) == 0 {
		return nil
	}

	seen := map[int]bool{}
	var hours []int
	for _, timeRange := range ranges {
		startHour, endHour, ok := parseRangeHours(timeRange)
		if !ok {
			continue
		}
		for h := startHour; h < endHour; h++ {
			if !seen[h] {
				seen[h] = true
				hours = append(hours, h)
			}
		}
	}
	sort.Ints(hours)

	slots := make([]string, 0, len(hours))
	for _, h := range hours {
		slots = append(slots, strconv.Itoa(h)+":00")
	}
	return slots
}

// parseRangeHours extracts the hour components of a "start-end" range string.
func parseRangeHours(timeRange string) (startHour, endHour int, ok bool) {
	start, end, found := strings.Cut(timeRange, "-")
	if !found {
		return 0, 0, false
	}
	startHour, ok = parseHour(start)
	if !ok {
		return 0, 0, false
	}
	endHour, ok = parseHour(end)
	if !ok {
		return 0, 0, false
	}
	return startHour, endHour, true
}

func parseHour(clock string) (int, bool) {
	hh, _, _ := strings.Cut(strings.TrimSpace(clock), ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
