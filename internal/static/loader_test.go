package static

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jusunglee/transit-go/internal/geo"
	"github.com/jusunglee/transit-go/internal/models"
)

func writeFixture(t *testing.T, root, system, filename, content string) {
	t.Helper()
	dir := filepath.Join(root, system)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func lirrFixture(t *testing.T, root string) {
	writeFixture(t, root, "lirr", "stops.txt",
		"stop_id,stop_name,stop_lat,stop_lon,parent_station,location_type\n"+
			"237,Forest Hills,40.7177,-73.8448,,1\n")
	writeFixture(t, root, "lirr", "routes.txt",
		"route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color\n"+
			"1,LIRR,,Main Line,2,,\n")
	writeFixture(t, root, "lirr", "trips.txt",
		"route_id,service_id,trip_id,trip_headsign,trip_short_name,direction_id,block_id,shape_id,peak_offpeak,wheelchair_accessible,bikes_allowed\n"+
			"1,WEEKDAY,T100,Penn Station,,1,,,1,,\n")
	writeFixture(t, root, "lirr", "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence,track\n"+
			"T100,08:10:00,08:15:00,237,3,12\n"+
			"T100,08:30:00,08:32:00,1,5,\n")
	writeFixture(t, root, "lirr", "calendar.txt",
		"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n"+
			"WEEKDAY,1,1,1,1,1,0,0,20260101,20261231\n")
}

func emptySystemFixture(t *testing.T, root, system string) {
	writeFixture(t, root, system, "stops.txt", "stop_id,stop_name,stop_lat,stop_lon,parent_station,location_type\n")
	writeFixture(t, root, system, "routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color\n")
	writeFixture(t, root, system, "trips.txt", "route_id,service_id,trip_id,trip_headsign,trip_short_name,direction_id,block_id,shape_id,peak_offpeak,wheelchair_accessible,bikes_allowed\n")
	writeFixture(t, root, system, "stop_times.txt", "trip_id,arrival_time,departure_time,stop_id,stop_sequence,track\n")
	writeFixture(t, root, system, "calendar.txt", "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n")
}

func TestLoadBuildsDestinationAndLinkage(t *testing.T) {
	root := t.TempDir()
	lirrFixture(t, root)
	emptySystemFixture(t, root, "mnr")
	emptySystemFixture(t, root, "subway")

	feeds := DefaultFeedURLs("https://example.test/gtfs")
	idx, err := Load(root, feeds, geo.NewLookup(), time.UTC)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	trip, ok := idx.Trips["T100"]
	if !ok {
		t.Fatal("expected trip T100 in index")
	}
	if trip.DestinationStopID != "1" {
		t.Errorf("DestinationStopID = %q, want %q (max stop_sequence)", trip.DestinationStopID, "1")
	}

	stop, ok := idx.Stops[models.Namespace(models.SystemLIRR, "237")]
	if !ok {
		t.Fatal("expected stop LIRR:237")
	}
	if _, ok := stop.ServedByRouteIDs["1"]; !ok {
		t.Error("expected route 1 linked to stop 237")
	}
	if len(stop.FeedURLs) == 0 {
		t.Error("expected a feed URL linked to stop 237")
	}

	resolver, ok := idx.Calendars[models.SystemLIRR]
	if !ok {
		t.Fatal("expected a calendar resolver for LIRR")
	}
	active := resolver.ActiveServices(time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)) // a Monday
	if _, ok := active["WEEKDAY"]; !ok {
		t.Error("expected WEEKDAY service active")
	}
}

func TestLoadAbortsOnBadStopSequence(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "lirr", "stops.txt", "stop_id,stop_name,stop_lat,stop_lon,parent_station,location_type\n")
	writeFixture(t, root, "lirr", "routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color\n")
	writeFixture(t, root, "lirr", "trips.txt", "route_id,service_id,trip_id,trip_headsign,trip_short_name,direction_id,block_id,shape_id,peak_offpeak,wheelchair_accessible,bikes_allowed\n")
	writeFixture(t, root, "lirr", "stop_times.txt",
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence,track\n"+
			"T1,08:00:00,08:00:00,1,not-a-number,\n")
	writeFixture(t, root, "lirr", "calendar.txt", "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n")
	emptySystemFixture(t, root, "mnr")
	emptySystemFixture(t, root, "subway")

	_, err := Load(root, DefaultFeedURLs("https://example.test"), geo.NewLookup(), time.UTC)
	if err == nil {
		t.Fatal("expected Load to fail on an unparsable stop_sequence")
	}
}
