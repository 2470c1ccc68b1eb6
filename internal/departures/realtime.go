package departures

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

func (e *Engine) realtimePass(
	ctx context.Context,
	idx *static.Index,
	station *models.Stop,
	platforms []string,
	feedURLs []string,
	now, windowStart time.Time,
	windowEnd *time.Time,
	processed map[string]struct{},
) []models.Departure {
	results := e.fetchFeeds(ctx, idx, station.System, feedURLs)

	platformSet := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		platformSet[p] = struct{}{}
	}

	var out []models.Departure
	startWithHeadsign := station.System == models.SystemMNR

	for _, result := range results {
		for i := range result.trips {
			trip := result.trips[i]
			relevant := relevantUpdatesForPlatforms(trip, platformSet)
			if len(relevant) == 0 {
				continue
			}

			match := resolveStaticTrip(idx, station.System, trip)
			direction := resolveDirection(station.System, trip, match.staticTrip)
			destination, destRegion := destinationCascade(idx, station.System, trip, match.staticTrip, startWithHeadsign)

			maxSeq := tripMaxSequence(trip)

			for _, stu := range relevant {
				isMax := stu.StopSequence != nil && maxSeq != nil && *stu.StopSequence == *maxSeq
				obs, ok := resolveRelevantTime(station.System, stu, isMax)
				if !ok {
					continue
				}
				if obs.time.Before(windowStart) {
					continue
				}
				if windowEnd != nil && obs.time.After(*windowEnd) {
					continue
				}

				out = append(out, buildRealtimeDeparture(station.System, trip, match, direction, destination, destRegion, obs, now))
			}

			markProcessed(processed, trip.ID.ID, match)
		}
	}

	return out
}

func buildRealtimeDeparture(
	system models.System,
	trip gtfs.Trip,
	match tripMatch,
	direction models.Direction,
	destination, destRegion string,
	obs relevantObservation,
	now time.Time,
) models.Departure {
	routeID := trip.ID.RouteID
	peak := ""
	wheelchair := models.TristateUnknown
	bikes := models.TristateUnknown
	if match.staticTrip != nil {
		if routeID == "" {
			routeID = match.staticTrip.RouteID
		}
		peak = match.staticTrip.PeakLabel()
		wheelchair = match.staticTrip.WheelchairAccessible
		bikes = match.staticTrip.BikesAllowed
	}

	return models.Departure{
		TripID:               trip.ID.ID,
		RouteID:              routeID,
		System:               system,
		Direction:            direction,
		Destination:          destination,
		DestinationRegion:    destRegion,
		ScheduledTime:        obs.time,
		HasTime:              true,
		DelayMinutes:         obs.delayMinutes,
		Status:               deriveStatus(obs.delayMinutes, obs.time, now),
		IsTerminalArrival:    obs.isTerminalArrival,
		Track:                obs.track,
		Peak:                 peak,
		WheelchairAccessible: wheelchair,
		BikesAllowed:         bikes,
		Source:               "realtime",
	}
}

func relevantUpdatesForPlatforms(trip gtfs.Trip, platformSet map[string]struct{}) []*gtfs.StopTimeUpdate {
	var out []*gtfs.StopTimeUpdate
	for i := range trip.StopTimeUpdates {
		stu := &trip.StopTimeUpdates[i]
		if stu.StopID == nil {
			continue
		}
		if _, ok := platformSet[*stu.StopID]; ok {
			out = append(out, stu)
		}
	}
	return out
}

func tripMaxSequence(trip gtfs.Trip) *uint32 {
	var best *uint32
	for i := range trip.StopTimeUpdates {
		seq := trip.StopTimeUpdates[i].StopSequence
		if seq == nil {
			continue
		}
		if best == nil || *seq >= *best {
			best = seq
		}
	}
	return best
}

// fetchFeeds runs every feed URL fetch concurrently (spec §4.4, §5: "the N
// feed fetches run in parallel and complete before reconciliation").
func (e *Engine) fetchFeeds(ctx context.Context, idx *static.Index, fallbackSystem models.System, feedURLs []string) []feedResult {
	results := make([]feedResult, len(feedURLs))

	var wg sync.WaitGroup
	for i, url := range feedURLs {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			system, ok := idx.Feeds.SystemForFeedURL(url)
			if !ok {
				system = fallbackSystem
			}
			decoded := e.fetcher.FetchAndDecode(ctx, system, url, path.Base(url))
			if decoded == nil {
				return
			}
			results[i] = feedResult{system: system, trips: decoded.Trips}
		}(i, url)
	}
	wg.Wait()

	return results
}
