// Package departures implements the departure reconciliation engine:
// spec §4.4, the hardest single component in this system. It merges
// realtime trip updates from several independently-keyed feeds with the
// static schedule, resolving direction, destination, track, delay and
// status, and suppressing duplicates across the realtime/scheduled
// boundary.
package departures

import (
	"context"
	"sort"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/jusunglee/transit-go/internal/gtfsrt"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// Source filters which pass(es) contribute to a departures response.
type Source string

const (
	SourceBoth      Source = "both"
	SourceRealtime  Source = "realtime"
	SourceScheduled Source = "scheduled"
)

// Options controls a single Departures call (spec §4.4's public operation
// signature).
type Options struct {
	LimitMinutes *int
	Source       Source
}

// IndexProvider exposes the current Static Index snapshot. Implemented by
// pkg/transit.Service, which owns the atomic.Pointer[static.Index].
type IndexProvider interface {
	Index() *static.Index
}

// Engine is the departure reconciliation engine. It holds no per-request
// state; every call reads a fresh Index snapshot and fetches feeds fresh
// (subject to the Fetcher's own cache).
type Engine struct {
	indexes IndexProvider
	fetcher *gtfsrt.Fetcher
	loc     *time.Location
	now     func() time.Time
}

// NewEngine builds an Engine over the given index provider and feed
// fetcher.
func NewEngine(indexes IndexProvider, fetcher *gtfsrt.Fetcher, loc *time.Location) *Engine {
	return &Engine{indexes: indexes, fetcher: fetcher, loc: loc, now: time.Now}
}

type feedResult struct {
	system models.System
	trips  []gtfs.Trip
}

// Departures runs the full reconciliation pipeline for one station (spec
// §4.4).
func (e *Engine) Departures(ctx context.Context, stationID string, opts Options) ([]models.Departure, error) {
	idx := e.indexes.Index()
	if idx == nil {
		return nil, nil
	}

	station, ok := idx.Stops[stationID]
	if !ok {
		return nil, nil
	}

	platforms := platformSet(station)
	feedURLs := stringSetKeys(station.FeedURLs)

	if opts.Source == "" {
		opts.Source = SourceBoth
	}

	now := e.now().In(e.loc)
	var windowEnd *time.Time
	if opts.LimitMinutes != nil {
		end := now.Add(time.Duration(*opts.LimitMinutes) * time.Minute)
		windowEnd = &end
	}
	windowStart := now.Add(-60 * time.Second)

	var realtimeDepartures []models.Departure
	processed := make(map[string]struct{})

	if opts.Source != SourceScheduled {
		realtimeDepartures = e.realtimePass(ctx, idx, station, platforms, feedURLs, now, windowStart, windowEnd, processed)
	}

	runScheduled := opts.Source == SourceScheduled ||
		(opts.Source == SourceBoth && (station.System != models.SystemSubway || len(realtimeDepartures) == 0))

	var scheduledDepartures []models.Departure
	if runScheduled {
		scheduledDepartures = e.scheduledPass(idx, station, platforms, now, windowStart, windowEnd, processed)
	}

	all := append(realtimeDepartures, scheduledDepartures...)
	sortDepartures(all)
	return all, nil
}

func platformSet(station *models.Stop) []string {
	if len(station.ChildStopIDs) == 0 {
		return []string{station.OriginalID}
	}
	out := make([]string, 0, len(station.ChildStopIDs))
	for id := range station.ChildStopIDs {
		out = append(out, id)
	}
	return out
}

func stringSetKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortDepartures(deps []models.Departure) {
	sort.SliceStable(deps, func(i, j int) bool {
		ri, rj := deps[i].Direction.Rank(), deps[j].Direction.Rank()
		if ri != rj {
			return ri < rj
		}
		if deps[i].HasTime != deps[j].HasTime {
			return deps[i].HasTime // has-time entries sort before no-time entries
		}
		if !deps[i].HasTime {
			return false
		}
		return deps[i].ScheduledTime.Before(deps[j].ScheduledTime)
	})
}
