// Package transit is the client façade api/handlers and cmd/server wire
// against, generalizing the teacher's pkg/mta.Client interface to the
// three-system station/departure/alert query surface (spec §2).
package transit

import (
	"context"
	"time"

	"github.com/jusunglee/transit-go/internal/alerts"
	"github.com/jusunglee/transit-go/internal/departures"
	"github.com/jusunglee/transit-go/internal/models"
)

// Client abstracts the single in-process Service behind an interface, the
// way the teacher's pkg/mta.Client abstracted local vs. remote data
// sources.
type Client interface {
	Stations(filter StationFilter) ([]*models.Stop, error)
	Departures(ctx context.Context, stationID string, opts departures.Options) ([]models.Departure, error)
	Alerts(ctx context.Context, filter alerts.Filter) ([]models.Alert, error)
	Health() Health
}

// StationFilter is GET /stations's query (spec §6).
type StationFilter struct {
	Query  string
	System models.System // empty means no system filter
}

// Health is GET /health's result (spec §6, SPEC_FULL §5 "degraded" vs
// "ok" supplement).
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Config configures a Service.
type Config struct {
	StaticRoot      string
	FeedBaseURL     string
	RefreshInterval time.Duration
	Location        *time.Location
}

// DefaultConfig mirrors the teacher's mta.DefaultConfig: a sane refresh
// cadence and UTC until the caller supplies an operational time zone.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 5 * time.Minute,
		Location:        time.UTC,
	}
}
