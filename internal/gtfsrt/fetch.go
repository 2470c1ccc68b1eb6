package gtfsrt

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/jusunglee/transit-go/internal/models"
)

const fetchTimeout = 25 * time.Second

// Fetcher is the process-wide, single-flighted, cached feed fetch+decode
// described in spec §4.2. One Fetcher is shared across all requests.
type Fetcher struct {
	client *http.Client
	cache  gcache.Cache
	group  singleflight.Group
	loc    *time.Location
}

// NewFetcher builds a Fetcher. loc is used to interpret any timestamp
// fields the decode step resolves relative to a civil date.
func NewFetcher(loc *time.Location) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  gcache.New(512).LRU().Build(),
		loc:    loc,
	}
}

// FetchAndDecode fetches and decodes feedURL, identified for caching and
// logging purposes by logicalName (e.g. "subway-ace", "lirr-trips",
// "mnr-alerts"). It never returns an error: any failure along the way is
// logged and nil is returned, per spec §4.2/§7.
func (f *Fetcher) FetchAndDecode(ctx context.Context, system models.System, feedURL, logicalName string) *Decoded {
	key := cacheKey(logicalName, feedURL)

	if v, err := f.cache.Get(key); err == nil {
		if d, ok := v.(*Decoded); ok {
			if !isEmpty(d) {
				return d
			}
			_ = f.cache.Remove(key)
		}
	}

	v, _, _ := f.group.Do(key, func() (interface{}, error) {
		return f.fetchAndDecodeUncached(ctx, system, feedURL, logicalName), nil
	})
	d, _ := v.(*Decoded)
	return d
}

func (f *Fetcher) fetchAndDecodeUncached(ctx context.Context, system models.System, feedURL, logicalName string) *Decoded {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		slog.Warn("gtfsrt: building request failed", slog.String("feed", logicalName), slog.Any("err", err))
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("gtfsrt: fetch failed", slog.String("feed", logicalName), slog.String("url", feedURL), slog.Any("err", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("gtfsrt: non-2xx response", slog.String("feed", logicalName), slog.Int("status", resp.StatusCode))
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "html") || strings.Contains(ct, "json") {
		slog.Warn("gtfsrt: unexpected content-type", slog.String("feed", logicalName), slog.String("contentType", ct))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("gtfsrt: reading body failed", slog.String("feed", logicalName), slog.Any("err", err))
		return nil
	}
	if len(body) == 0 {
		slog.Warn("gtfsrt: empty body", slog.String("feed", logicalName))
		return nil
	}

	decoded, err := decode(system, body, f.loc)
	if err != nil {
		slog.Warn("gtfsrt: decode failed", slog.String("feed", logicalName), slog.Any("err", err))
		return nil
	}

	key := cacheKey(logicalName, feedURL)
	_ = f.cache.SetWithExpire(key, decoded, ttlForKey(key))

	slog.Debug("gtfsrt: fetched feed",
		slog.String("feed", logicalName),
		slog.Int("trips", len(decoded.Trips)),
		slog.Int("alerts", len(decoded.Alerts)),
		slog.String("size", humanize.Bytes(uint64(len(body)))),
	)

	return decoded
}

func isEmpty(d *Decoded) bool {
	return d == nil || (len(d.Trips) == 0 && len(d.Alerts) == 0)
}

// cacheKey reproduces spec §4.2's {logicalName, sanitized-URL} key,
// stripping the query string so a rotating auth token doesn't fragment
// the cache.
func cacheKey(logicalName, feedURL string) string {
	sanitized := feedURL
	if u, err := url.Parse(feedURL); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		sanitized = u.String()
	}
	return logicalName + "\x00" + sanitized
}

// ttlForKey chooses a cache TTL by substring match on the cache key, as
// spec §4.2 specifies: SUBWAY short (high churn, trains every couple of
// minutes), LIRR/MNR medium, alerts longer (alerts change far less often
// than vehicle positions).
func ttlForKey(key string) time.Duration {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "alert"):
		return 5 * time.Minute
	case strings.Contains(lower, "subway"):
		return 15 * time.Second
	default:
		return 30 * time.Second
	}
}
