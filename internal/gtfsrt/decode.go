// Package gtfsrt fetches and decodes upstream GTFS-Realtime feeds (spec
// §4.2). Decoding itself is delegated to github.com/jamespfennell/gtfs;
// this package is responsible for the process-wide cache, single-flight
// coordination, and the system-specific extension handling spec §6 calls
// out (NYCT for SUBWAY, the MTA-Railroad extension for LIRR/MNR).
package gtfsrt

import (
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/jamespfennell/gtfs/extensions/nycttrips"

	"github.com/jusunglee/transit-go/internal/models"
)

// Decoded is the union of what the departure and alert engines need out of
// one feed fetch: trip updates (with their track/direction already
// resolved where an extension applies) and alerts. A feed that fails to
// fetch or decode is represented as a nil *Decoded, never an error the
// caller must branch on (spec §4.2: "never throw").
type Decoded struct {
	System models.System
	Trips  []gtfs.Trip
	Alerts []gtfs.Alert
}

// decodeOptions builds the jamespfennell/gtfs ParseRealtimeOptions for a
// system: only SUBWAY carries a registered extension in this package,
// since the MTA-Railroad track/direction fields have no published Go
// binding (see railext.go).
func decodeOptions(system models.System, loc *time.Location) *gtfs.ParseRealtimeOptions {
	opts := &gtfs.ParseRealtimeOptions{Timezone: loc}
	if system == models.SystemSubway {
		opts.Extension = nycttrips.Extension(nycttrips.ExtensionOpts{})
	}
	return opts
}

// decode parses raw feed bytes for a system, additionally folding in
// LIRR/MNR track data recovered from the raw protobuf by railext.go since
// the gtfs library has no extension registered for it.
func decode(system models.System, body []byte, loc *time.Location) (*Decoded, error) {
	parsed, err := gtfs.ParseRealtime(body, decodeOptions(system, loc))
	if err != nil {
		return nil, err
	}

	d := &Decoded{System: system, Trips: parsed.Trips, Alerts: parsed.Alerts}

	if system == models.SystemLIRR || system == models.SystemMNR {
		tracks, err := extractRailTracks(body)
		if err == nil && len(tracks) > 0 {
			applyRailTracks(d, tracks)
		}
	}

	return d, nil
}

// applyRailTracks mutates each stop-time update's NyctTrack field (reused
// as the generic "track" carrier regardless of which extension produced
// it — the departure engine reads it the same way for every system) with
// the value recovered for (trip id, stop id) by extractRailTracks.
func applyRailTracks(d *Decoded, tracks map[railTrackKey]string) {
	for i := range d.Trips {
		trip := &d.Trips[i]
		for j := range trip.StopTimeUpdates {
			stu := &trip.StopTimeUpdates[j]
			if stu.StopID == nil {
				continue
			}
			track, ok := tracks[railTrackKey{tripID: trip.ID.ID, stopID: *stu.StopID}]
			if !ok {
				continue
			}
			t := track
			stu.NyctTrack = &t
		}
	}
}
