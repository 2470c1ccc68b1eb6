package static

import "github.com/jusunglee/transit-go/internal/models"

// FeedURLs is the route→feed URL mapping spec §4.1 step 8 calls "a static
// constant table of the implementation". SUBWAY splits its realtime feed
// by trunk line the way the MTA's own GTFS-RT endpoints do; LIRR and MNR
// each publish one combined trip-update feed for every route they run.
type FeedURLs struct {
	Base string // environment-configured base, e.g. "https://api.example.com/gtfs"

	// SubwayRouteGroup maps a subway original route-id to the logical
	// name of the sub-feed carrying it (the MTA groups lines into a
	// handful of protobuf feeds rather than one-per-route).
	SubwayRouteGroup map[string]string

	LIRRLogicalName    string
	MNRLogicalName      string
	SubwayAlertsName   string
	LIRRAlertsName     string
	MNRAlertsName      string
}

// DefaultFeedURLs mirrors the grouping the MTA's own subway GTFS-RT feeds
// use (one feed per small bundle of related trunk lines), and the single
// combined trip-update feed each commuter railroad publishes.
func DefaultFeedURLs(base string) FeedURLs {
	return FeedURLs{
		Base: base,
		SubwayRouteGroup: map[string]string{
			"1": "ace", "2": "ace", "3": "ace", "4": "nqrw", "5": "nqrw", "6": "nqrw",
			"A": "ace", "C": "ace", "E": "ace",
			"B": "bdfm", "D": "bdfm", "F": "bdfm", "M": "bdfm",
			"G": "g",
			"J": "jz", "Z": "jz",
			"L": "l",
			"N": "nqrw", "Q": "nqrw", "R": "nqrw", "W": "nqrw",
			"SI": "si",
			"7": "7",
		},
		LIRRLogicalName:   "lirr-trips",
		MNRLogicalName:    "mnr-trips",
		SubwayAlertsName:  "subway-alerts",
		LIRRAlertsName:    "lirr-alerts",
		MNRAlertsName:     "mnr-alerts",
	}
}

// RouteFeedURL resolves the trip-update feed URL serving a route, used by
// the loader to populate each stop's feedUrls (spec §4.1 step 8).
func (f FeedURLs) RouteFeedURL(system models.System, originalRouteID string) (string, bool) {
	switch system {
	case models.SystemSubway:
		group, ok := f.SubwayRouteGroup[originalRouteID]
		if !ok {
			return "", false
		}
		return f.Base + "/subway/nyct%2F" + group, true
	case models.SystemLIRR:
		return f.Base + "/" + f.LIRRLogicalName, true
	case models.SystemMNR:
		return f.Base + "/" + f.MNRLogicalName, true
	default:
		return "", false
	}
}

// AlertFeedURL resolves the consolidated alert feed for a system.
func (f FeedURLs) AlertFeedURL(system models.System) string {
	switch system {
	case models.SystemSubway:
		return f.Base + "/" + f.SubwayAlertsName
	case models.SystemLIRR:
		return f.Base + "/" + f.LIRRAlertsName
	case models.SystemMNR:
		return f.Base + "/" + f.MNRAlertsName
	default:
		return ""
	}
}

// SystemForFeedURL inverts RouteFeedURL/AlertFeedURL well enough for the
// departure engine to tag a fetched feed's entities with a system: every
// URL this table produces embeds one of the three logical segments.
func (f FeedURLs) SystemForFeedURL(url string) (models.System, bool) {
	switch {
	case contains(url, "/subway/"), contains(url, f.SubwayAlertsName):
		return models.SystemSubway, true
	case contains(url, f.LIRRLogicalName), contains(url, f.LIRRAlertsName):
		return models.SystemLIRR, true
	case contains(url, f.MNRLogicalName), contains(url, f.MNRAlertsName):
		return models.SystemMNR, true
	default:
		return "", false
	}
}

func contains(s, substr string) bool {
	return len(substr) > 0 && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}
