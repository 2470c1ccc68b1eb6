// Package static builds and serves the read-only, atomically-published
// Static Index: the in-memory cross-reference over each system's GTFS
// corpus that the departure and alert engines query (spec §3, §4.1).
package static

import (
	"github.com/jusunglee/transit-go/internal/calendar"
	"github.com/jusunglee/transit-go/internal/models"
)

// Index is an immutable snapshot of every system's static corpus, built by
// Load and swapped into place behind an atomic.Pointer by its owner. Every
// map is fully populated before Load returns; nothing mutates it after
// that.
type Index struct {
	Stops  map[string]*models.Stop  // namespaced stop id
	Routes map[string]*models.Route // namespaced route id
	Trips  map[string]*models.Trip  // raw trip id

	// StopTimes is keyed by original stop-id, then trip-id (spec §4.1
	// step 7). Lookups on the departure path iterate a platform's
	// original ids against the outer map.
	StopTimes map[string]map[string]models.StopTime

	ShortNameIndex    map[string]string // trip short-name -> trip id
	VehicleLabelIndex map[string]string // MNR vehicle label -> trip id

	Calendars map[models.System]*calendar.Resolver

	Feeds FeedURLs
}

// StationsMatching returns every stop with no parent of its own
// (LocationType is not consulted) whose name contains q (case-insensitive
// substring, empty q matches all) and, if system is non-empty, whose
// System equals it. The result order is not defined.
func (idx *Index) StationsMatching(q string, system models.System) []*models.Stop {
	var out []*models.Stop
	lowerQ := toLower(q)
	for _, s := range idx.Stops {
		if s.ParentID != "" {
			continue // platforms are not stations
		}
		if system != "" && s.System != system {
			continue
		}
		if lowerQ != "" && !containsFold(s.Name, lowerQ) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func containsFold(s, lowerSubstr string) bool {
	return indexOf(toLower(s), lowerSubstr) >= 0
}
