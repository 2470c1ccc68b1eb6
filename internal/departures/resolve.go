package departures

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// tripMatch is the outcome of resolving a realtime trip entity against the
// static corpus: which static trip (if any) it corresponds to, and the
// vehicle label it was matched by, if any. markProcessed derives the
// other identifier projections from it (spec §9: duplicate suppression
// must try every projection, not just the raw id).
type tripMatch struct {
	staticTrip    *models.Trip
	vehicleLabel  string // non-empty only when MNR matched via vehicle label
}

func zeroStripped(id string) string {
	stripped := strings.TrimLeft(id, "0")
	if stripped == "" {
		return "0"
	}
	return stripped
}

// resolveStaticTrip implements the per-system trip resolution cascade of
// spec §4.4.
func resolveStaticTrip(idx *static.Index, system models.System, trip gtfs.Trip) tripMatch {
	rawID := trip.ID.ID

	if system != models.SystemMNR {
		return tripMatch{staticTrip: idx.Trips[rawID]}
	}

	if label := trip.GetVehicle().GetID().Label; label != "" {
		if tripID, ok := idx.VehicleLabelIndex[label]; ok {
			if st, ok := idx.Trips[tripID]; ok {
				return tripMatch{staticTrip: st, vehicleLabel: label}
			}
		}
	}
	if tripID, ok := idx.ShortNameIndex[rawID]; ok {
		if st, ok := idx.Trips[tripID]; ok {
			return tripMatch{staticTrip: st}
		}
	}
	if st, ok := idx.Trips[zeroStripped(rawID)]; ok {
		return tripMatch{staticTrip: st}
	}
	return tripMatch{}
}

// markProcessed records every identifier projection a realtime trip could
// later be matched under, so the scheduled pass's set-membership test
// (isProcessed) can reject the static duplicate regardless of which
// projection it would otherwise be found by.
func markProcessed(processed map[string]struct{}, rawRealtimeID string, match tripMatch) {
	processed[rawRealtimeID] = struct{}{}
	processed[zeroStripped(rawRealtimeID)] = struct{}{}
	if match.vehicleLabel != "" {
		processed[match.vehicleLabel] = struct{}{}
	}
	if match.staticTrip != nil {
		processed[match.staticTrip.ID] = struct{}{}
		if match.staticTrip.System == models.SystemMNR && match.staticTrip.ShortName != "" {
			processed[match.staticTrip.ShortName] = struct{}{}
		}
	}
}

// isProcessed reports whether a static trip considered by the scheduled
// pass was already emitted by the realtime pass, under any projection.
func isProcessed(processed map[string]struct{}, tripID string, trip *models.Trip) bool {
	if _, ok := processed[tripID]; ok {
		return true
	}
	if _, ok := processed[zeroStripped(tripID)]; ok {
		return true
	}
	if trip != nil && trip.System == models.SystemMNR && trip.ShortName != "" {
		if _, ok := processed[trip.ShortName]; ok {
			return true
		}
	}
	return false
}

// resolveDirection implements spec §4.4's direction resolution: NYCT
// extension for SUBWAY, static direction_id for LIRR/MNR, with MNR's
// terminal-sequence inference as a last resort.
func resolveDirection(system models.System, trip gtfs.Trip, staticTrip *models.Trip) models.Direction {
	if system == models.SystemSubway {
		switch trip.ID.DirectionID {
		case gtfs.DirectionID_False:
			return models.DirectionNorth
		case gtfs.DirectionID_True:
			return models.DirectionSouth
		default:
			return models.DirectionUnknown
		}
	}

	if d := directionFromStaticID(staticTrip); d != models.DirectionUnknown {
		return d
	}

	if system == models.SystemMNR {
		return inferMNRDirectionFromSequence(trip)
	}
	return models.DirectionUnknown
}

func directionFromStaticID(trip *models.Trip) models.Direction {
	if trip == nil || trip.DirectionID == nil {
		return models.DirectionUnknown
	}
	if *trip.DirectionID == 0 {
		return models.DirectionOutbound
	}
	return models.DirectionInbound
}

// mnrTerminalStopID is MNR's shared downtown terminal (Grand Central).
const mnrTerminalStopID = "1"

func inferMNRDirectionFromSequence(trip gtfs.Trip) models.Direction {
	updates := trip.StopTimeUpdates
	if len(updates) == 0 {
		return models.DirectionUnknown
	}
	first, last := updates[0], updates[len(updates)-1]
	if last.StopID != nil && *last.StopID == mnrTerminalStopID {
		return models.DirectionInbound
	}
	if first.StopID != nil && *first.StopID == mnrTerminalStopID {
		return models.DirectionOutbound
	}
	return models.DirectionUnknown
}

// destinationCascade resolves a trip's rider-facing destination name and,
// if the chosen candidate was a stop, its region. Candidate order differs
// by system (spec §4.4, §9 Open Question: preserved as observed).
func destinationCascade(idx *static.Index, system models.System, trip gtfs.Trip, staticTrip *models.Trip, startWithHeadsign bool) (string, string) {
	type candidate func() (string, string, bool)

	headsign := func() (string, string, bool) {
		if staticTrip == nil || staticTrip.Headsign == "" {
			return "", "", false
		}
		return staticTrip.Headsign, "", true
	}
	staticDest := func() (string, string, bool) {
		if staticTrip == nil || staticTrip.DestinationStopID == "" {
			return "", "", false
		}
		stop, ok := idx.Stops[models.Namespace(system, staticTrip.DestinationStopID)]
		if !ok || stop.Name == "" {
			return "", "", false
		}
		return stop.Name, stop.Region, true
	}
	lastStopInUpdate := func() (string, string, bool) {
		stopID, ok := maxSequenceStopID(trip)
		if !ok {
			return "", "", false
		}
		stop, ok := idx.Stops[models.Namespace(system, stopID)]
		if !ok || stop.Name == "" {
			return "", "", false
		}
		return stop.Name, stop.Region, true
	}
	routeLongName := func() (string, string, bool) {
		routeID := trip.ID.RouteID
		if staticTrip != nil {
			routeID = staticTrip.RouteID
		}
		route, ok := idx.Routes[models.Namespace(system, routeID)]
		if !ok || route.LongName == "" {
			return "", "", false
		}
		return route.LongName, "", true
	}

	var order []candidate
	if startWithHeadsign {
		order = []candidate{headsign, staticDest, lastStopInUpdate, routeLongName}
	} else {
		order = []candidate{lastStopInUpdate, staticDest, headsign, routeLongName}
	}

	for _, c := range order {
		if name, region, ok := c(); ok {
			return name, region
		}
	}
	return "", ""
}

func maxSequenceStopID(trip gtfs.Trip) (string, bool) {
	var best *gtfs.StopTimeUpdate
	for i := range trip.StopTimeUpdates {
		stu := &trip.StopTimeUpdates[i]
		if stu.StopID == nil {
			continue
		}
		if best == nil || (stu.StopSequence != nil && (best.StopSequence == nil || *stu.StopSequence >= *best.StopSequence)) {
			best = stu
		}
	}
	if best == nil {
		return "", false
	}
	return *best.StopID, true
}

// relevantObservation is one platform-matching stop-time-update reduced to
// the fields the departure record needs.
type relevantObservation struct {
	time              time.Time
	isTerminalArrival bool
	delayMinutes      *int
	track             string
}

// resolveRelevantTime implements spec §4.4's "compute the relevant time"
// rule, which differs by system.
func resolveRelevantTime(system models.System, stu *gtfs.StopTimeUpdate, isMaxSequence bool) (relevantObservation, bool) {
	obs := relevantObservation{}
	if stu.NyctTrack != nil {
		obs.track = *stu.NyctTrack
	}

	if dep := stu.Departure; dep != nil && dep.Time != nil {
		obs.time = *dep.Time
		obs.delayMinutes = delayMinutes(dep.Delay)
		return obs, true
	}

	if system == models.SystemSubway {
		return relevantObservation{}, false
	}

	if arr := stu.Arrival; arr != nil && arr.Time != nil {
		obs.time = *arr.Time
		obs.delayMinutes = delayMinutes(arr.Delay)
		obs.isTerminalArrival = isMaxSequence || (stu.StopID != nil && *stu.StopID == mnrTerminalStopID)
		return obs, true
	}

	return relevantObservation{}, false
}

func delayMinutes(d *time.Duration) *int {
	if d == nil {
		return nil
	}
	minutes := int(math.Round(d.Minutes()))
	return &minutes
}

// deriveStatus implements spec §4.4's status derivation.
func deriveStatus(delayMin *int, relevantTime, now time.Time) string {
	if delayMin != nil {
		switch {
		case *delayMin > 1:
			return statusMinutes("Delayed", *delayMin)
		case *delayMin < -1:
			return statusMinutes("Early", -*delayMin)
		default:
			return "On Time"
		}
	}

	dt := relevantTime.Sub(now)
	switch {
	case dt >= 30*time.Second && dt < 120*time.Second:
		return "Approaching"
	case absDuration(dt) <= 30*time.Second:
		return "Due"
	default:
		return "Scheduled"
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func statusMinutes(label string, n int) string {
	return label + " " + strconv.Itoa(n) + " min"
}
