package alerts

import (
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

func strp(s string) *string { return &s }
func tp(t time.Time) *time.Time { return &t }

func TestResolveEntitiesSkipsBusAndPropagatesParent(t *testing.T) {
	idx := &static.Index{
		Routes: map[string]*models.Route{
			models.Namespace(models.SystemSubway, "A"): {ID: models.Namespace(models.SystemSubway, "A"), OriginalID: "A", System: models.SystemSubway},
		},
		Stops: map[string]*models.Stop{
			models.Namespace(models.SystemSubway, "A32"): {
				ID: models.Namespace(models.SystemSubway, "A32"), OriginalID: "A32",
				ParentID: models.Namespace(models.SystemSubway, "A30"), System: models.SystemSubway,
			},
		},
	}

	informed := []gtfs.AlertInformedEntity{
		{AgencyID: strp("MTABC"), RouteID: strp("B1")}, // bus, skipped
		{AgencyID: strp("MTA NYCT"), RouteID: strp("A")},
		{StopID: strp("A32")},
	}

	lines, stations := resolveEntities(idx, informed)
	assert.Equal(t, []string{models.Namespace(models.SystemSubway, "A")}, lines)
	assert.ElementsMatch(t, []string{
		models.Namespace(models.SystemSubway, "A32"),
		models.Namespace(models.SystemSubway, "A30"),
	}, stations)
}

func TestPrimaryPeriodPrefersActiveNow(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	past := models.TimePeriod{Start: tp(now.Add(-2 * time.Hour)), End: tp(now.Add(-1 * time.Hour))}
	active := models.TimePeriod{Start: tp(now.Add(-1 * time.Hour)), End: tp(now.Add(1 * time.Hour))}
	future := models.TimePeriod{Start: tp(now.Add(2 * time.Hour))}

	got := primaryPeriod([]models.TimePeriod{past, future, active}, now)
	assert.Equal(t, active, got)
}

func TestPrimaryPeriodFallsBackToNearestFuture(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	far := models.TimePeriod{Start: tp(now.Add(5 * time.Hour))}
	near := models.TimePeriod{Start: tp(now.Add(1 * time.Hour))}

	got := primaryPeriod([]models.TimePeriod{far, near}, now)
	assert.Equal(t, near, got)
}

func TestPrimaryPeriodFallsBackToFirst(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	past1 := models.TimePeriod{Start: tp(now.Add(-5 * time.Hour)), End: tp(now.Add(-4 * time.Hour))}
	past2 := models.TimePeriod{Start: tp(now.Add(-3 * time.Hour)), End: tp(now.Add(-2 * time.Hour))}

	got := primaryPeriod([]models.TimePeriod{past1, past2}, now)
	assert.Equal(t, past1, got)
}

func TestDedupeByIDKeepsFirst(t *testing.T) {
	in := []fetchedAlert{
		{system: models.SystemSubway, alert: gtfs.Alert{ID: "1", Header: []gtfs.AlertText{{Text: "first"}}}},
		{system: models.SystemSubway, alert: gtfs.Alert{ID: "1", Header: []gtfs.AlertText{{Text: "second"}}}},
		{system: models.SystemLIRR, alert: gtfs.Alert{ID: "2"}},
	}
	out := dedupeByID(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].alert.Header[0].Text)
}

func TestMatchesFilterStationViaServedRoutes(t *testing.T) {
	idx := &static.Index{
		Stops: map[string]*models.Stop{
			"SUBWAY:A32": {OriginalID: "A32", ServedByRouteIDs: map[string]struct{}{"A": {}}},
		},
	}
	alert := models.Alert{AffectedLines: []string{"SUBWAY:A"}}
	assert.True(t, matchesFilter(idx, alert, Filter{StationID: "SUBWAY:A32"}, time.Now()))
	assert.False(t, matchesFilter(idx, alert, Filter{StationID: "SUBWAY:B99"}, time.Now()))
}

func TestSortAlertsDescendingByPrimaryStart(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	older := models.Alert{ID: "older", PrimaryPeriod: models.TimePeriod{Start: tp(now.Add(-2 * time.Hour))}}
	newer := models.Alert{ID: "newer", PrimaryPeriod: models.TimePeriod{Start: tp(now.Add(-1 * time.Hour))}}
	noStart := models.Alert{ID: "none"}

	all := []models.Alert{older, noStart, newer}
	sortAlerts(all)

	assert.Equal(t, []string{"newer", "older", "none"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestAttachLabelsSubwayAndRail(t *testing.T) {
	idx := &static.Index{
		Routes: map[string]*models.Route{
			"SUBWAY:A": {ShortName: "A", LongName: "8 Avenue Express", System: models.SystemSubway},
			"LIRR:1":   {LongName: "Main Line", System: models.SystemLIRR},
		},
		Stops: map[string]*models.Stop{
			"SUBWAY:A32": {Name: "145 St"},
		},
	}
	alert := &models.Alert{AffectedLines: []string{"SUBWAY:A", "LIRR:1"}, AffectedStations: []string{"SUBWAY:A32"}}
	attachLabels(idx, alert)

	assert.Equal(t, "`A` Express", alert.LineLabels["SUBWAY:A"])
	assert.Equal(t, "Main Line", alert.LineLabels["LIRR:1"])
	assert.Equal(t, "145 St", alert.StationLabels["SUBWAY:A32"])
}
