// Package calendar resolves, for a civil date, which GTFS service-ids run
// that day (spec §4.3).
package calendar

import (
	"sync"
	"time"
)

// Service is one row of calendar.txt plus its calendar_dates.txt
// exceptions.
type Service struct {
	ID        string
	Weekdays  [7]bool // index by time.Weekday
	StartDate time.Time
	EndDate   time.Time

	// Added/Removed are keyed by civil date at midnight in the resolver's
	// time zone.
	Added   map[time.Time]bool
	Removed map[time.Time]bool
}

// Resolver answers "which services run on date D" queries, memoized per
// date since the static index it reads is immutable between refreshes.
type Resolver struct {
	services []Service
	loc      *time.Location

	mu    sync.Mutex
	memo  map[time.Time]map[string]struct{}
}

// NewResolver builds a Resolver over a system's calendar rows.
func NewResolver(services []Service, loc *time.Location) *Resolver {
	return &Resolver{
		services: services,
		loc:      loc,
		memo:     make(map[time.Time]map[string]struct{}),
	}
}

// ActiveServices returns the set of service-ids active on the civil date
// date (time-of-day is ignored; date is normalized to midnight in the
// resolver's time zone before lookup/memoization).
func (r *Resolver) ActiveServices(date time.Time) map[string]struct{} {
	day := civilDay(date, r.loc)

	r.mu.Lock()
	if cached, ok := r.memo[day]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	active := make(map[string]struct{})
	weekday := day.Weekday()
	for _, svc := range r.services {
		inWindow := !day.Before(svc.StartDate) && !day.After(svc.EndDate)
		if inWindow && svc.Weekdays[weekday] {
			active[svc.ID] = struct{}{}
		}
		if svc.Removed[day] {
			delete(active, svc.ID)
		}
		if svc.Added[day] {
			active[svc.ID] = struct{}{}
		}
	}

	r.mu.Lock()
	r.memo[day] = active
	r.mu.Unlock()

	return active
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
