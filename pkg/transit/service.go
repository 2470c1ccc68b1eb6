package transit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jusunglee/transit-go/internal/alerts"
	"github.com/jusunglee/transit-go/internal/departures"
	"github.com/jusunglee/transit-go/internal/geo"
	"github.com/jusunglee/transit-go/internal/gtfsrt"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/internal/static"
)

// Service owns the process-wide state spec §5 describes: the Static
// Index published through an atomic pointer, the feed fetcher's cache,
// and the background refresh ticker. One Service is shared across every
// request; it implements departures.IndexProvider and
// alerts.IndexProvider directly.
type Service struct {
	cfg     Config
	index   atomic.Pointer[static.Index]
	fetcher *gtfsrt.Fetcher
	geo     *geo.Lookup

	engine      *departures.Engine
	alertEngine *alerts.Engine

	stop chan struct{}
}

// NewService builds a Service and performs the first, synchronous static
// load (spec §7: "Static-data unavailable ... treated as fatal at
// startup"). Call Start afterward to begin the background refresh
// ticker.
func NewService(cfg Config) (*Service, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}

	s := &Service{
		cfg:     cfg,
		fetcher: gtfsrt.NewFetcher(cfg.Location),
		geo:     geo.NewLookup(),
		stop:    make(chan struct{}),
	}
	s.engine = departures.NewEngine(s, s.fetcher, cfg.Location)
	s.alertEngine = alerts.NewEngine(s, s.fetcher, cfg.Location)

	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Index implements departures.IndexProvider and alerts.IndexProvider.
func (s *Service) Index() *static.Index {
	return s.index.Load()
}

func (s *Service) reload() error {
	idx, err := static.Load(s.cfg.StaticRoot, static.DefaultFeedURLs(s.cfg.FeedBaseURL), s.geo, s.cfg.Location)
	if err != nil {
		return err
	}
	s.index.Store(idx)
	return nil
}

// Start begins the background refresh ticker (spec §5 "Writers ...
// construct a complete new index and swap"). A reload failure after
// startup is logged and the previous index keeps serving requests: spec
// §7 reserves "fatal" for the very first load.
func (s *Service) Start() {
	go func() {
		ticker := time.NewTicker(s.cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.reload(); err != nil {
					slog.Warn("transit: static reload failed, continuing to serve the previous index", slog.Any("err", err))
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the background refresh ticker.
func (s *Service) Stop() {
	close(s.stop)
}

func (s *Service) Stations(filter StationFilter) ([]*models.Stop, error) {
	idx := s.Index()
	if idx == nil {
		return nil, nil
	}
	return idx.StationsMatching(filter.Query, filter.System), nil
}

func (s *Service) Departures(ctx context.Context, stationID string, opts departures.Options) ([]models.Departure, error) {
	return s.engine.Departures(ctx, stationID, opts)
}

func (s *Service) Alerts(ctx context.Context, filter alerts.Filter) ([]models.Alert, error) {
	return s.alertEngine.Alerts(ctx, filter)
}

// Health reports "degraded" once the static index has not yet been
// published (also true transiently at process start, before NewService
// returns). SPEC_FULL §5's /health supplement over spec §6's bare
// {status, timestamp} contract.
func (s *Service) Health() Health {
	status := "ok"
	if s.Index() == nil {
		status = "degraded"
	}
	return Health{Status: status, Timestamp: time.Now()}
}
