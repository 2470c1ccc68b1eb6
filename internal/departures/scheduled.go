package departures

import (
	"strconv"
	"strings"
	"time"

	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// scheduledPass implements spec §4.4's static-schedule backfill: runs
// always for LIRR/MNR, and for SUBWAY only when the caller decided the
// realtime pass came back empty (that decision is made by Engine.Departures).
func (e *Engine) scheduledPass(
	idx *static.Index,
	station *models.Stop,
	platforms []string,
	now, windowStart time.Time,
	windowEnd *time.Time,
	processed map[string]struct{},
) []models.Departure {
	resolver, ok := idx.Calendars[station.System]
	if !ok {
		return nil
	}
	active := resolver.ActiveServices(now)

	var out []models.Departure
	for _, platform := range platforms {
		byTrip, ok := idx.StopTimes[platform]
		if !ok {
			continue
		}
		for tripID, st := range byTrip {
			trip, ok := idx.Trips[tripID]
			if !ok || trip.System != station.System {
				continue
			}
			if isProcessed(processed, tripID, trip) {
				continue
			}
			if _, ok := active[trip.ServiceID]; !ok {
				continue
			}

			timeStr := st.ScheduledDeparture
			if timeStr == "" {
				timeStr = st.ScheduledArrival
			}
			if timeStr == "" {
				continue
			}

			instant, err := parseScheduledTime(timeStr, now, e.loc)
			if err != nil {
				continue // spec §7: a parse error skips only this candidate
			}
			if instant.Before(windowStart) {
				continue
			}
			if windowEnd != nil && instant.After(*windowEnd) {
				continue
			}

			destination, destRegion := scheduledDestinationCascade(idx, station.System, trip)

			externalTripID := tripID
			if station.System == models.SystemMNR && trip.ShortName != "" {
				externalTripID = trip.ShortName
			}

			out = append(out, models.Departure{
				TripID:               externalTripID,
				RouteID:              trip.RouteID,
				System:               station.System,
				Direction:            directionFromStaticID(trip),
				Destination:          destination,
				DestinationRegion:    destRegion,
				ScheduledTime:        instant,
				HasTime:              true,
				DelayMinutes:         nil,
				Status:               "Scheduled",
				IsTerminalArrival:    false,
				Track:                st.Track,
				Peak:                 trip.PeakLabel(),
				WheelchairAccessible: trip.WheelchairAccessible,
				BikesAllowed:         trip.BikesAllowed,
				Source:               "scheduled",
			})
		}
	}
	return out
}

// scheduledDestinationCascade is the realtime destinationCascade with its
// realtime-only step (last stop in the update) dropped and headsign always
// tried first, per spec §4.4's scheduled-pass rule.
func scheduledDestinationCascade(idx *static.Index, system models.System, trip *models.Trip) (string, string) {
	if trip.Headsign != "" {
		return trip.Headsign, ""
	}
	if trip.DestinationStopID != "" {
		if stop, ok := idx.Stops[models.Namespace(system, trip.DestinationStopID)]; ok && stop.Name != "" {
			return stop.Name, stop.Region
		}
	}
	if route, ok := idx.Routes[models.Namespace(system, trip.RouteID)]; ok && route.LongName != "" {
		return route.LongName, ""
	}
	return "", ""
}

// parseScheduledTime parses a GTFS "HH:MM:SS" scheduled time string
// relative to now's civil date in loc, handling the next-day rollover
// spec §3/§8 describes (HH may run 24-29).
func parseScheduledTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return time.Time{}, strconvSyntaxError(s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, err
	}

	year, month, day := now.In(loc).Date()
	base := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if h >= 24 {
		base = base.AddDate(0, 0, 1)
		h -= 24
	}
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
}

func strconvSyntaxError(s string) error {
	return &strconv.NumError{Func: "parseScheduledTime", Num: s, Err: strconv.ErrSyntax}
}
