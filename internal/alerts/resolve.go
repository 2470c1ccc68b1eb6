package alerts

import (
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// resolveEntities walks one alert's informed_entity list (spec §4.5 step
// 3), producing the namespaced affected-line and affected-station sets.
// A parent station's namespaced id is recorded alongside a platform hit.
func resolveEntities(idx *static.Index, informed []gtfs.AlertInformedEntity) (lines []string, stations []string) {
	lineSet := make(map[string]struct{})
	stationSet := make(map[string]struct{})

	for _, e := range informed {
		if e.AgencyID != nil && isBusAgency(*e.AgencyID) {
			continue
		}

		if e.RouteID != nil && e.AgencyID != nil {
			if sys, ok := systemForAgency(*e.AgencyID); ok {
				namespaced := models.Namespace(sys, *e.RouteID)
				if _, ok := idx.Routes[namespaced]; ok {
					lineSet[namespaced] = struct{}{}
				}
			}
		}

		if e.StopID != nil {
			for _, sys := range models.Systems {
				namespaced := models.Namespace(sys, *e.StopID)
				stop, ok := idx.Stops[namespaced]
				if !ok {
					continue
				}
				stationSet[namespaced] = struct{}{}
				if stop.ParentID != "" {
					stationSet[stop.ParentID] = struct{}{}
				}
			}
		}
	}

	return setKeys(lineSet), setKeys(stationSet)
}

func setKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// periodsFromAlert converts an alert's raw active periods to TimePeriod
// values (spec §4.5 step 4).
func periodsFromAlert(raw []gtfs.AlertActivePeriod) []models.TimePeriod {
	out := make([]models.TimePeriod, 0, len(raw))
	for _, p := range raw {
		out = append(out, models.TimePeriod{Start: p.StartsAt, End: p.EndsAt})
	}
	return out
}

// primaryPeriod picks the active-now period if one exists, else the
// nearest future period, else the first period (spec §4.5 step 4). It
// returns the zero TimePeriod when periods is empty.
func primaryPeriod(periods []models.TimePeriod, now time.Time) models.TimePeriod {
	if len(periods) == 0 {
		return models.TimePeriod{}
	}

	for _, p := range periods {
		if periodActiveAt(p, now) {
			return p
		}
	}

	var nearest *models.TimePeriod
	for i := range periods {
		p := &periods[i]
		if p.Start == nil || p.Start.Before(now) {
			continue
		}
		if nearest == nil || p.Start.Before(*nearest.Start) {
			nearest = p
		}
	}
	if nearest != nil {
		return *nearest
	}

	return periods[0]
}

func periodActiveAt(p models.TimePeriod, now time.Time) bool {
	if p.Start != nil && now.Before(*p.Start) {
		return false
	}
	if p.End != nil && now.After(*p.End) {
		return false
	}
	return true
}

// selectDescription implements spec §4.5 step 5: prefer "en-html", else
// fall back to the plain "en" translation.
func selectDescription(texts []gtfs.AlertText) string {
	var enPlain string
	for _, t := range texts {
		lang := strings.ToLower(t.Language)
		if lang == "en-html" {
			return t.Text
		}
		if lang == "en" || (enPlain == "" && lang == "") {
			enPlain = t.Text
		}
	}
	if enPlain != "" {
		return enPlain
	}
	if len(texts) > 0 {
		return texts[0].Text
	}
	return ""
}
