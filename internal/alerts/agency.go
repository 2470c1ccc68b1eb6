package alerts

import "github.com/jusunglee/transit-go/internal/models"

// agencySystem is the static agency-id -> system table spec §4.5 step 3
// calls for. Each upstream GTFS-RT alert feed carries informed_entity
// records for every agency it covers, including bus agencies that this
// service does not aggregate.
var agencySystem = map[string]models.System{
	"MTA NYCT": models.SystemSubway,
	"MTASBWY":  models.SystemSubway,
	"LI":       models.SystemLIRR,
	"MTA LI":   models.SystemLIRR,
	"MNR":      models.SystemMNR,
	"MTAMNR":   models.SystemMNR,
}

// busAgencies lists agency-ids that denote a bus system, skipped entirely
// per spec §4.5 step 3 ("skip any entity whose agency-id denotes a bus
// system").
var busAgencies = map[string]struct{}{
	"MTABC": {},
	"MTA BUS": {},
	"NYCT Bus": {},
}

func isBusAgency(agencyID string) bool {
	_, ok := busAgencies[agencyID]
	return ok
}

func systemForAgency(agencyID string) (models.System, bool) {
	sys, ok := agencySystem[agencyID]
	return sys, ok
}
