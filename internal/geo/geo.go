// Package geo resolves a (lat, lon) coordinate to a containing named
// region. It is consumed only by the static loader, once per stop, at
// load time (spec §2 item 1).
package geo

import "github.com/jftuga/geodist"

// Region is a named area with an approximate centroid. The NYC-area
// upstream systems this service aggregates are all within a handful of
// boroughs/counties, so a small fixed table of centroids plus a
// nearest-under-radius check stands in for true polygon containment.
type Region struct {
	Name          string
	Lat, Lon      float64
	RadiusKM      float64
}

// defaultRegions are coarse centroids for the five NYC boroughs plus the
// Long Island and Hudson Valley/Connecticut commuter-rail territories LIRR
// and MNR reach into.
var defaultRegions = []Region{
	{Name: "Manhattan", Lat: 40.7831, Lon: -73.9712, RadiusKM: 9},
	{Name: "Brooklyn", Lat: 40.6782, Lon: -73.9442, RadiusKM: 11},
	{Name: "Queens", Lat: 40.7282, Lon: -73.7949, RadiusKM: 14},
	{Name: "Bronx", Lat: 40.8448, Lon: -73.8648, RadiusKM: 10},
	{Name: "Staten Island", Lat: 40.5795, Lon: -74.1502, RadiusKM: 12},
	{Name: "Long Island", Lat: 40.7891, Lon: -73.1350, RadiusKM: 60},
	{Name: "Hudson Valley", Lat: 41.2, Lon: -73.9, RadiusKM: 70},
	{Name: "Connecticut", Lat: 41.15, Lon: -73.3, RadiusKM: 50},
}

// Lookup is a region lookup backed by defaultRegions.
type Lookup struct {
	regions []Region
}

// NewLookup constructs a Lookup over the default borough/region table.
func NewLookup() *Lookup {
	return &Lookup{regions: defaultRegions}
}

// Region returns the name of the nearest region whose radius contains
// (lat, lon), or ("", false) if none does.
func (l *Lookup) Region(lat, lon float64) (string, bool) {
	here := geodist.Coord{Lat: lat, Lon: lon}

	best := ""
	bestKM := -1.0
	for _, r := range l.regions {
		_, km := geodist.HaversineDistance(here, geodist.Coord{Lat: r.Lat, Lon: r.Lon})
		if km > r.RadiusKM {
			continue
		}
		if bestKM < 0 || km < bestKM {
			bestKM = km
			best = r.Name
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
