package calendar

import (
	"reflect"
	"testing"
	"time"
)

func TestActiveServicesWeekdayWindow(t *testing.T) {
	loc := time.UTC
	weekday := Service{
		ID:        "WEEKDAY",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, loc),
	}
	weekday.Weekdays[time.Monday] = true
	weekday.Weekdays[time.Tuesday] = true
	weekday.Weekdays[time.Wednesday] = true
	weekday.Weekdays[time.Thursday] = true
	weekday.Weekdays[time.Friday] = true

	r := NewResolver([]Service{weekday}, loc)

	monday := time.Date(2026, 8, 3, 8, 0, 0, 0, loc) // a Monday
	active := r.ActiveServices(monday)
	if _, ok := active["WEEKDAY"]; !ok {
		t.Error("expected WEEKDAY service active on a Monday")
	}

	sunday := time.Date(2026, 8, 2, 8, 0, 0, 0, loc)
	active = r.ActiveServices(sunday)
	if _, ok := active["WEEKDAY"]; ok {
		t.Error("expected WEEKDAY service inactive on a Sunday")
	}
}

func TestActiveServicesExceptions(t *testing.T) {
	loc := time.UTC
	holiday := time.Date(2026, 8, 3, 0, 0, 0, 0, loc)

	weekday := Service{
		ID:        "WEEKDAY",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, loc),
		Removed:   map[time.Time]bool{holiday: true},
	}
	weekday.Weekdays[time.Monday] = true

	sunday := Service{
		ID:        "SUNDAY",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, loc),
		Added:     map[time.Time]bool{holiday: true},
	}

	r := NewResolver([]Service{weekday, sunday}, loc)
	active := r.ActiveServices(holiday)

	if _, ok := active["WEEKDAY"]; ok {
		t.Error("expected WEEKDAY removed by exception on the holiday")
	}
	if _, ok := active["SUNDAY"]; !ok {
		t.Error("expected SUNDAY added by exception on the holiday")
	}
}

func TestActiveServicesMemoized(t *testing.T) {
	r := NewResolver(nil, time.UTC)
	date := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	first := r.ActiveServices(date)
	second := r.ActiveServices(date)

	if len(first) != 0 || len(second) != 0 {
		t.Fatal("expected empty active sets with no configured services")
	}

	// Same backing map instance indicates the memo was hit rather than
	// recomputed.
	if reflect.ValueOf(first).Pointer() != reflect.ValueOf(second).Pointer() {
		t.Error("expected the second call to return the memoized map")
	}
}
