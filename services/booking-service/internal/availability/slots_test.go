package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/tutorme-app/tutorme/services/booking-service/internal/model"
)

// 2025-06-02 is a Monday.
var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestResolveSlots_SingleRange(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"9:00-12:00"}}

	got := ResolveSlots(avail, monday)
	want := []string{"9:00", "10:00", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveSlots_DayAbsent(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"9:00-12:00"}}
	tuesday := monday.AddDate(0, 0, 1)

	if got := ResolveSlots(avail, tuesday); len(got) != 0 {
		t.Fatalf("expected no slots on a day without availability, got %v", got)
	}
}

func TestResolveSlots_EndNotAfterStart(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"12:00-9:00", "10:00-10:00"}}

	if got := ResolveSlots(avail, monday); len(got) != 0 {
		t.Fatalf("expected no slots from inverted or empty ranges, got %v", got)
	}
}

func TestResolveSlots_UnparseableRangeSkipped(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"morning", "14:00-16:00", ""}}

	got := ResolveSlots(avail, monday)
	want := []string{"14:00", "15:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveSlots_MinutesTruncated(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"9:30-11:00"}}

	got := ResolveSlots(avail, monday)
	want := []string{"9:00", "10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected hour truncation %v, got %v", want, got)
	}
}

func TestResolveSlots_OverlappingRangesDeduplicated(t *testing.T) {
	avail := model.WeeklyAvailability{"monday": {"13:00-15:00", "9:00-11:00", "10:00-12:00"}}

	got := ResolveSlots(avail, monday)
	want := []string{"9:00", "10:00", "11:00", "13:00", "14:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected deduplicated sorted slots %v, got %v", want, got)
	}
}

func TestWeekdayName(t *testing.T) {
	names := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	for i, want := range names {
		date := monday.AddDate(0, 0, i)
		if got := WeekdayName(date); got != want {
			t.Fatalf("day %d: expected %q, got %q", i, want, got)
		}
	}
}
