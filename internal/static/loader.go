package static

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jusunglee/transit-go/internal/calendar"
	"github.com/jusunglee/transit-go/internal/geo"
	"github.com/jusunglee/transit-go/internal/models"
)

const (
	stopsFile         = "stops.txt"
	routesFile        = "routes.txt"
	tripsFile         = "trips.txt"
	stopTimesFile     = "stop_times.txt"
	calendarFile      = "calendar.txt"
	calendarDatesFile = "calendar_dates.txt"
)

// systemTables holds one system's six raw tables, read in pass 1.
type systemTables struct {
	system        models.System
	stops         []stopRow
	routes        []routeRow
	trips         []tripRow
	stopTimes     []stopTimeRow
	calendars     []calendarRow
	calendarDates []calendarDateRow
}

// Load runs the nine ordered passes over the corpus rooted at root, one
// subdirectory per system named after its lowercased tag (e.g. root/lirr,
// root/mnr, root/subway). loc is the operational time zone used to parse
// calendar.txt's date window and calendar_dates.txt's exceptions. A
// failure anywhere aborts the whole load; the caller is expected to keep
// serving its previous Index on error (spec §4.1, §7).
func Load(root string, feeds FeedURLs, geoLookup *geo.Lookup, loc *time.Location) (*Index, error) {
	tables, err := loadAllTables(root)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		Stops:             make(map[string]*models.Stop),
		Routes:            make(map[string]*models.Route),
		Trips:             make(map[string]*models.Trip),
		StopTimes:         make(map[string]map[string]models.StopTime),
		ShortNameIndex:    make(map[string]string),
		VehicleLabelIndex: make(map[string]string),
		Calendars:         make(map[models.System]*calendar.Resolver),
		Feeds:             feeds,
	}

	// Pass 2: route map.
	for _, st := range tables {
		for _, row := range st.routes {
			id := strings.TrimSpace(row.RouteID)
			idx.Routes[models.Namespace(st.system, id)] = &models.Route{
				ID:         models.Namespace(st.system, id),
				OriginalID: id,
				Agency:     strings.TrimSpace(row.AgencyID),
				ShortName:  strings.TrimSpace(row.RouteShortName),
				LongName:   strings.TrimSpace(row.RouteLongName),
				RouteType:  parseIntDefault(row.RouteType, 0),
				Color:      strings.TrimSpace(row.RouteColor),
				TextColor:  strings.TrimSpace(row.RouteTextColor),
				System:     st.system,
			}
		}
	}

	// Pass 3: per-trip destination via max stop_sequence, last wins on tie.
	type destCandidate struct {
		stopID  string
		maxSeq  int
		hasSeq  bool
	}
	destinations := make(map[string]destCandidate)
	for _, st := range tables {
		for _, row := range st.stopTimes {
			tripID := strings.TrimSpace(row.TripID)
			seq, ok := parseOptionalInt(row.StopSequence)
			if !ok {
				return nil, errors.Errorf("stop_times.txt: trip %q has unparsable stop_sequence %q", tripID, row.StopSequence)
			}
			cur, exists := destinations[tripID]
			if !exists || seq >= cur.maxSeq {
				destinations[tripID] = destCandidate{stopID: strings.TrimSpace(row.StopID), maxSeq: seq, hasSeq: true}
			}
		}
	}

	// Pass 4: trip map.
	for _, st := range tables {
		for _, row := range st.trips {
			id := strings.TrimSpace(row.TripID)
			var directionID *int
			if v, ok := parseOptionalInt(row.DirectionID); ok {
				directionID = &v
			}
			idx.Trips[id] = &models.Trip{
				ID:                   id,
				RouteID:              strings.TrimSpace(row.RouteID),
				ServiceID:            strings.TrimSpace(row.ServiceID),
				Headsign:             strings.TrimSpace(row.TripHeadsign),
				ShortName:            strings.TrimSpace(row.TripShortName),
				PeakOffPeak:          strings.TrimSpace(row.PeakOffPeak),
				DirectionID:          directionID,
				Block:                strings.TrimSpace(row.BlockID),
				Shape:                strings.TrimSpace(row.ShapeID),
				System:               st.system,
				DestinationStopID:    destinations[id].stopID,
				WheelchairAccessible: models.Tristate(parseTristate(row.WheelchairAccessible)),
				BikesAllowed:         models.Tristate(parseTristate(row.BikesAllowed)),
			}
		}
	}

	// Pass 5: stop map.
	for _, st := range tables {
		for _, row := range st.stops {
			originalID := strings.TrimSpace(row.StopID)
			namespacedID := models.Namespace(st.system, originalID)

			stop := &models.Stop{
				ID:               namespacedID,
				OriginalID:       originalID,
				Name:             strings.TrimSpace(row.StopName),
				LocationType:     parseIntDefault(row.LocationType, 0),
				System:           st.system,
				ChildStopIDs:     make(map[string]struct{}),
				ServedByRouteIDs: make(map[string]struct{}),
				FeedURLs:         make(map[string]struct{}),
			}

			lat, latOK := parseFloatOK(row.StopLat)
			lon, lonOK := parseFloatOK(row.StopLon)
			if latOK && lonOK {
				stop.Lat = lat
				stop.Lon = lon
				stop.LatLonSet = true
			}

			if parent := strings.TrimSpace(row.ParentStation); parent != "" {
				stop.ParentID = models.Namespace(st.system, parent)
			}

			if stop.LatLonSet && geoLookup != nil {
				if region, ok := geoLookup.Region(stop.Lat, stop.Lon); ok {
					stop.Region = region
				}
			}

			idx.Stops[namespacedID] = stop
		}
	}

	// Pass 6: link children to parents.
	for _, stop := range idx.Stops {
		if stop.ParentID == "" {
			continue
		}
		if parent, ok := idx.Stops[stop.ParentID]; ok {
			parent.ChildStopIDs[stop.OriginalID] = struct{}{}
		}
	}

	// Pass 7: stop-time lookup keyed by (original stop id, trip id).
	for _, st := range tables {
		for _, row := range st.stopTimes {
			stopID := strings.TrimSpace(row.StopID)
			tripID := strings.TrimSpace(row.TripID)
			seq, _ := parseOptionalInt(row.StopSequence)

			byTrip, ok := idx.StopTimes[stopID]
			if !ok {
				byTrip = make(map[string]models.StopTime)
				idx.StopTimes[stopID] = byTrip
			}
			byTrip[tripID] = models.StopTime{
				StopID:             stopID,
				TripID:             tripID,
				ScheduledArrival:   strings.TrimSpace(row.ArrivalTime),
				ScheduledDeparture: strings.TrimSpace(row.DepartureTime),
				StopSequence:       seq,
				Track:              strings.TrimSpace(row.Track),
			}
		}
	}

	// Pass 8: final feed/route linkage pass.
	for stopID, byTrip := range idx.StopTimes {
		for tripID := range byTrip {
			trip, ok := idx.Trips[tripID]
			if !ok {
				continue
			}
			route, ok := idx.Routes[models.Namespace(trip.System, trip.RouteID)]
			if !ok {
				continue
			}
			namespacedStopID := models.Namespace(trip.System, stopID)
			stop, ok := idx.Stops[namespacedStopID]
			if !ok {
				continue
			}

			stop.ServedByRouteIDs[route.OriginalID] = struct{}{}
			var parent *models.Stop
			if stop.ParentID != "" {
				parent = idx.Stops[stop.ParentID]
				if parent != nil {
					parent.ServedByRouteIDs[route.OriginalID] = struct{}{}
				}
			}

			if feedURL, ok := feeds.RouteFeedURL(trip.System, route.OriginalID); ok {
				stop.FeedURLs[feedURL] = struct{}{}
				if parent != nil {
					parent.FeedURLs[feedURL] = struct{}{}
				}
			}
		}
	}

	// Pass 9: auxiliary indexes.
	for _, trip := range idx.Trips {
		if trip.ShortName != "" {
			idx.ShortNameIndex[trip.ShortName] = trip.ID
		}
	}
	for _, st := range tables {
		if st.system != models.SystemMNR {
			continue
		}
		for _, row := range st.trips {
			label := strings.TrimSpace(row.VehicleLabel)
			if label != "" {
				idx.VehicleLabelIndex[label] = strings.TrimSpace(row.TripID)
			}
		}
	}

	// Calendar resolvers, one per system.
	for _, st := range tables {
		services, err := buildServices(st, loc)
		if err != nil {
			return nil, err
		}
		idx.Calendars[st.system] = calendar.NewResolver(services, loc)
	}

	return idx, nil
}

// loadAllTables reads every system's six tables. Each system's tables are
// read concurrently with the other systems' (spec §4.1 step 1); a single
// goroutine per system reads that system's own tables in sequence, which
// keeps the fan-out bounded to one goroutine per system rather than one
// per file.
func loadAllTables(root string) ([]systemTables, error) {
	result := make([]systemTables, len(models.Systems))
	errs := make([]error, len(models.Systems))

	var wg sync.WaitGroup
	for i, system := range models.Systems {
		wg.Add(1)
		go func(i int, system models.System) {
			defer wg.Done()
			dir := filepath.Join(root, strings.ToLower(string(system)))
			st := systemTables{system: system}

			var err error
			if st.stops, err = readTable[stopRow](dir, stopsFile); err != nil {
				errs[i] = err
				return
			}
			if st.routes, err = readTable[routeRow](dir, routesFile); err != nil {
				errs[i] = err
				return
			}
			if st.trips, err = readTable[tripRow](dir, tripsFile); err != nil {
				errs[i] = err
				return
			}
			if st.stopTimes, err = readTable[stopTimeRow](dir, stopTimesFile); err != nil {
				errs[i] = err
				return
			}
			if st.calendars, err = readTable[calendarRow](dir, calendarFile); err != nil {
				errs[i] = err
				return
			}
			if st.calendarDates, err = readTable[calendarDateRow](dir, calendarDatesFile); err != nil {
				errs[i] = err
				return
			}
			result[i] = st
		}(i, system)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func buildServices(st systemTables, loc *time.Location) ([]calendar.Service, error) {
	byID := make(map[string]*calendar.Service)
	for _, row := range st.calendars {
		id := strings.TrimSpace(row.ServiceID)
		start, err := gtfsDate(row.StartDate, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "calendar.txt: service %q start_date %q", id, row.StartDate)
		}
		end, err := gtfsDate(row.EndDate, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "calendar.txt: service %q end_date %q", id, row.EndDate)
		}
		svc := &calendar.Service{
			ID:        id,
			StartDate: start,
			EndDate:   end,
			Added:     make(map[time.Time]bool),
			Removed:   make(map[time.Time]bool),
		}
		svc.Weekdays[time.Sunday] = row.Sunday == "1"
		svc.Weekdays[time.Monday] = row.Monday == "1"
		svc.Weekdays[time.Tuesday] = row.Tuesday == "1"
		svc.Weekdays[time.Wednesday] = row.Wednesday == "1"
		svc.Weekdays[time.Thursday] = row.Thursday == "1"
		svc.Weekdays[time.Friday] = row.Friday == "1"
		svc.Weekdays[time.Saturday] = row.Saturday == "1"
		byID[id] = svc
	}

	for _, row := range st.calendarDates {
		id := strings.TrimSpace(row.ServiceID)
		svc, ok := byID[id]
		if !ok {
			// calendar_dates.txt may define a service with no base
			// calendar.txt row at all (exception-only service).
			svc = &calendar.Service{ID: id, Added: make(map[time.Time]bool), Removed: make(map[time.Time]bool)}
			byID[id] = svc
		}
		date, err := gtfsDate(row.Date, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "calendar_dates.txt: service %q date %q", id, row.Date)
		}
		switch strings.TrimSpace(row.ExceptionType) {
		case "1":
			svc.Added[date] = true
		case "2":
			svc.Removed[date] = true
		default:
			return nil, errors.Errorf("calendar_dates.txt: service %q has unrecognized exception_type %q", id, row.ExceptionType)
		}
	}

	services := make([]calendar.Service, 0, len(byID))
	for _, svc := range byID {
		services = append(services, *svc)
	}
	return services, nil
}
