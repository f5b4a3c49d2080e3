package availability

import "time"

// weekdayNames is indexed by time.Weekday (Sunday = 0).
var weekdayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// WeekdayName returns the lowercase English weekday name for a date.
// It is computed from the calendar directly, never through locale-sensitive
// formatting, so every caller derives the same availability key on every
// runtime.
func WeekdayName(date time.Time) string {
	return weekdayNames[date.Weekday()]
}
