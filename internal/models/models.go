// Package models holds the entities shared by the static index, the
// departure and alert engines, and the HTTP layer.
package models

import (
	"strings"
	"time"
)

// Tristate models a GTFS-style 0/1/unknown boolean column (e.g.
// wheelchair_accessible, bikes_allowed) where "unset" is a real, distinct
// value from both true and false.
type Tristate int

const (
	TristateUnknown Tristate = iota
	TristateYes
	TristateNo
)

// Stop is either a platform (child) or a station (parent); see
// LocationType.
type Stop struct {
	ID         string `json:"id"` // namespaced
	OriginalID string `json:"originalId"`
	Name       string `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	LatLonSet  bool    `json:"-"`

	ParentID     string `json:"parentId,omitempty"` // namespaced, empty if this stop has no parent
	LocationType int    `json:"locationType"`

	ChildStopIDs     map[string]struct{} `json:"-"` // original ids of platforms under this station
	ServedByRouteIDs map[string]struct{} `json:"-"` // original route ids
	FeedURLs         map[string]struct{} `json:"-"`

	System System `json:"system"`
	Region string `json:"region,omitempty"` // from geo lookup, empty if none
}

// Route is keyed by namespaced id in the Index.
type Route struct {
	ID         string `json:"id"` // namespaced
	OriginalID string `json:"originalId"`
	Agency     string `json:"agency,omitempty"`
	ShortName  string `json:"shortName,omitempty"`
	LongName   string `json:"longName,omitempty"`
	RouteType  int    `json:"routeType"`
	Color      string `json:"color,omitempty"`
	TextColor  string `json:"textColor,omitempty"`
	System     System `json:"system"`
}

// DisplayLabel renders a rider-facing label for the route, used by the
// alert engine's optional label attachment (spec §4.5 step 9).
func (r Route) DisplayLabel() string {
	if r.System == SystemSubway {
		if strings.Contains(strings.ToLower(r.LongName), "express") {
			return "`" + r.ShortName + "` Express"
		}
		return "`" + r.ShortName + "` Train"
	}
	if r.LongName != "" {
		return r.LongName
	}
	return r.ShortName
}

// Trip is keyed by raw (non-namespaced) trip id: realtime feeds key by the
// unnamespaced id, so the Trip map must too.
type Trip struct {
	ID        string
	RouteID   string // original
	ServiceID string
	Headsign  string
	ShortName string
	// PeakOffPeak is the verbatim upstream value: "0", "1", or "" (none).
	PeakOffPeak string
	// DirectionID is nil when the field was missing or empty upstream.
	DirectionID *int
	Block       string
	Shape       string
	System      System

	DestinationStopID string // original id, computed by the loader

	WheelchairAccessible Tristate
	BikesAllowed         Tristate
}

// PeakLabel renders the raw PeakOffPeak value for display. The mapping of
// "1" to Peak is carried over from upstream convention and is flagged as
// an open question in spec §9 — implemented as observed, not re-derived.
func (t Trip) PeakLabel() string {
	switch t.PeakOffPeak {
	case "1":
		return "Peak"
	case "0":
		return "Off-Peak"
	default:
		return ""
	}
}

// StopTime is keyed by (stop original id, trip id) within the Index's
// stop-time lookup.
type StopTime struct {
	StopID             string // original
	TripID             string
	ScheduledArrival   string // "HH:MM:SS", HH may be >= 24
	ScheduledDeparture string
	StopSequence       int
	Track              string
}

// TimePeriod is a [start, end] instant pair; either bound may be absent
// (open-ended).
type TimePeriod struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Departure is the unit returned by the departure engine.
type Departure struct {
	TripID  string `json:"tripId"` // for MNR scheduled rows, this is the trip short name
	RouteID string `json:"routeId"` // original
	System  System `json:"system"`

	Direction         Direction `json:"direction"`
	Destination       string    `json:"destination,omitempty"`
	DestinationRegion string    `json:"destinationRegion,omitempty"`

	ScheduledTime time.Time `json:"scheduledTime,omitempty"`
	HasTime       bool      `json:"-"`

	DelayMinutes      *int   `json:"delayMinutes,omitempty"`
	Status            string `json:"status"`
	IsTerminalArrival bool   `json:"isTerminalArrival,omitempty"`
	Track             string `json:"track,omitempty"`

	Peak                 string   `json:"peak,omitempty"`
	WheelchairAccessible Tristate `json:"wheelchairAccessible"`
	BikesAllowed         Tristate `json:"bikesAllowed"`

	Source string `json:"source"` // "realtime" or "scheduled"
}

// Alert is the unit returned by the alert engine, after HTML descriptions
// have been converted to plain text.
type Alert struct {
	ID          string `json:"id"`
	Header      string `json:"header"`
	Description string `json:"description,omitempty"`

	AffectedLines    []string `json:"affectedLines,omitempty"`    // namespaced route ids
	AffectedStations []string `json:"affectedStations,omitempty"` // namespaced stop ids

	ActivePeriods []TimePeriod `json:"activePeriods,omitempty"`
	PrimaryPeriod TimePeriod   `json:"primaryPeriod"`

	LineLabels    map[string]string `json:"lineLabels,omitempty"`    // namespaced route id -> display label
	StationLabels map[string]string `json:"stationLabels,omitempty"` // namespaced stop id -> display label
}
