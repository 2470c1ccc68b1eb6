package static

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"
)

// readTable unmarshals a GTFS CSV table into rows of T, stripping a
// leading UTF-8 byte-order-mark if present (several upstream GTFS
// publishers emit one). A missing file yields an empty slice: not every
// system exports every optional table (e.g. calendar_dates.txt, or MNR's
// vehicle_label column on trips.txt).
func readTable[T any](dir, filename string) ([]T, error) {
	path := filepath.Join(dir, filename)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.Unmarshal(bom.NewReader(f), &rows); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return rows, nil
}
