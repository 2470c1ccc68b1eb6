package static

import (
	"strconv"
	"strings"
	"time"
)

func trimmed(s string) string { return strings.TrimSpace(s) }

// parseOptionalInt returns (value, true) if s parses as an integer, and
// (0, false) for an empty or unparsable string — used for fields the spec
// says to treat as "none" rather than abort the load (direction_id,
// peak_offpeak is handled separately since it is kept verbatim).
func parseOptionalInt(s string) (int, bool) {
	s = trimmed(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseIntDefault parses s as an integer, defaulting to def on any parse
// failure. Used for attribute-only fields (location_type, route_type)
// where the loader tolerates a malformed value rather than aborting —
// an unparsable stop_sequence, by contrast, aborts the load.
func parseIntDefault(s string, def int) int {
	v, ok := parseOptionalInt(s)
	if !ok {
		return def
	}
	return v
}

// parseFloatOK parses s as a float64, preserving "unset" on failure
// instead of defaulting to zero (spec §4.1 step 5: a stop with an
// unparsable coordinate is still indexed, just without a region).
func parseFloatOK(s string) (float64, bool) {
	s = trimmed(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseTristate(s string) int {
	switch trimmed(s) {
	case "1":
		return 1
	case "2":
		return 2
	default:
		return 0
	}
}

// gtfsDate parses an 8-digit YYYYMMDD calendar date in loc.
func gtfsDate(s string, loc *time.Location) (time.Time, error) {
	s = trimmed(s)
	return time.ParseInLocation("20060102", s, loc)
}

// serviceTimeToDuration parses a GTFS "HH:MM:SS" scheduled time string,
// where HH may run 24-29 to represent the next civil day (spec §3).
// It returns the duration since midnight of the service day the string
// is relative to (not yet the calendar day it lands on — that's resolved
// by the caller, which knows "today" vs "tomorrow").
func serviceTimeToDuration(s string) (time.Duration, error) {
	s = trimmed(s)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
