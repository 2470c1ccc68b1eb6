// Package alerts implements the service-alert aggregation engine (spec
// §4.5): fetch each system's consolidated alert feed, resolve informed
// entities to namespaced routes/stations, select a primary active
// period, convert HTML descriptions to plain text, and apply the three
// conjunctive filter predicates.
package alerts

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/jusunglee/transit-go/internal/gtfsrt"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// Filter is the alert engine's public query (spec §6 GET /alerts params).
type Filter struct {
	Lines         []string // namespaced route ids; empty means no line filter
	ActiveNow     bool
	StationID     string // namespaced; empty means no station filter
	IncludeLabels bool
}

// IndexProvider exposes the current Static Index snapshot, mirroring
// internal/departures.IndexProvider.
type IndexProvider interface {
	Index() *static.Index
}

// Engine is the alert aggregation engine.
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

type fetchedAlert struct {
	system models.System
	alert  gtfs.Alert
}

// Alerts runs the full pipeline for one query (spec §4.5).
func (e *Engine) Alerts(ctx context.Context, filter Filter) ([]models.Alert, error) {
	idx := e.indexes.Index()
	if idx == nil {
		return nil, nil
	}

	fetched := e.fetchAllSystems(ctx, idx)
	deduped := dedupeByID(fetched)

	now := e.now().In(e.loc)
	out := make([]models.Alert, 0, len(deduped))
	for _, fa := range deduped {
		lines, stations := resolveEntities(idx, fa.alert.InformedEntities)
		periods := periodsFromAlert(fa.alert.ActivePeriods)
		primary := primaryPeriod(periods, now)

		header := selectDescription(fa.alert.Header)
		description := selectDescription(fa.alert.Description)

		alert := models.Alert{
			ID:               fa.alert.ID,
			Header:           header,
			Description:      description,
			AffectedLines:    lines,
			AffectedStations: stations,
			ActivePeriods:    periods,
			PrimaryPeriod:    primary,
		}

		if !matchesFilter(idx, alert, filter, now) {
			continue
		}

		alert.Header = htmlToPlainText(alert.Header)
		alert.Description = htmlToPlainText(alert.Description)

		if filter.IncludeLabels {
			attachLabels(idx, &alert)
		}

		out = append(out, alert)
	}

	sortAlerts(out)
	return out, nil
}

// fetchAllSystems fetches every system's consolidated alert feed
// concurrently (mirrors internal/departures.fetchFeeds).
func (e *Engine) fetchAllSystems(ctx context.Context, idx *static.Index) []fetchedAlert {
	results := make([][]fetchedAlert, len(models.Systems))

	var wg sync.WaitGroup
	for i, system := range models.Systems {
		wg.Add(1)
		go func(i int, system models.System) {
			defer wg.Done()
			url := idx.Feeds.AlertFeedURL(system)
			if url == "" {
				return
			}
			decoded := e.fetcher.FetchAndDecode(ctx, system, url, path.Base(url))
			if decoded == nil {
				return
			}
			alerts := make([]fetchedAlert, len(decoded.Alerts))
			for j, a := range decoded.Alerts {
				alerts[j] = fetchedAlert{system: system, alert: a}
			}
			results[i] = alerts
		}(i, system)
	}
	wg.Wait()

	var out []fetchedAlert
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// dedupeByID keeps the first occurrence of each entity id (spec §4.5
// step 2).
func dedupeByID(fetched []fetchedAlert) []fetchedAlert {
	seen := make(map[string]struct{}, len(fetched))
	out := make([]fetchedAlert, 0, len(fetched))
	for _, fa := range fetched {
		if _, ok := seen[fa.alert.ID]; ok {
			continue
		}
		seen[fa.alert.ID] = struct{}{}
		out = append(out, fa)
	}
	return out
}

// matchesFilter implements spec §4.5 step 6's three conjunctive
// predicates.
func matchesFilter(idx *static.Index, alert models.Alert, filter Filter, now time.Time) bool {
	if filter.ActiveNow {
		active := false
		for _, p := range alert.ActivePeriods {
			if periodActiveAt(p, now) {
				active = true
				break
			}
		}
		if !active {
			return false
		}
	}

	if len(filter.Lines) > 0 {
		if !anyLineMatches(alert.AffectedLines, filter.Lines) {
			return false
		}
	}

	if filter.StationID != "" {
		if !stationMatches(idx, alert, filter.StationID) {
			return false
		}
	}

	return true
}

func anyLineMatches(affected, target []string) bool {
	for _, a := range affected {
		for _, t := range target {
			if strings.EqualFold(a, t) {
				return true
			}
		}
	}
	return false
}

func stationMatches(idx *static.Index, alert models.Alert, stationID string) bool {
	for _, s := range alert.AffectedStations {
		if strings.EqualFold(s, stationID) {
			return true
		}
	}

	stop, ok := idx.Stops[stationID]
	if !ok {
		return false
	}
	for _, routeID := range alert.AffectedLines {
		if _, ok := stop.ServedByRouteIDs[withoutNamespace(routeID)]; ok {
			return true
		}
	}
	return false
}

func withoutNamespace(id string) string {
	_, original, ok := models.SplitNamespaced(id)
	if !ok {
		return id
	}
	return original
}

// sortAlerts orders survivors by primary-period start descending, an
// absent start sorting as if it were the zero instant (spec §4.5 step 7).
func sortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return periodStart(alerts[i].PrimaryPeriod).After(periodStart(alerts[j].PrimaryPeriod))
	})
}

func periodStart(p models.TimePeriod) time.Time {
	if p.Start == nil {
		return time.Time{}
	}
	return *p.Start
}

// attachLabels fills in the rider-facing display labels for an alert's
// affected lines and stations (spec §4.5 step 9).
func attachLabels(idx *static.Index, alert *models.Alert) {
	if len(alert.AffectedLines) > 0 {
		alert.LineLabels = make(map[string]string, len(alert.AffectedLines))
		for _, id := range alert.AffectedLines {
			if route, ok := idx.Routes[id]; ok {
				alert.LineLabels[id] = route.DisplayLabel()
			}
		}
	}
	if len(alert.AffectedStations) > 0 {
		alert.StationLabels = make(map[string]string, len(alert.AffectedStations))
		for _, id := range alert.AffectedStations {
			if stop, ok := idx.Stops[id]; ok {
				alert.StationLabels[id] = stop.Name
			}
		}
	}
}
