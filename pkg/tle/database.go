package tle

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unklstewy/orbit-globe/pkg/catalog"
)

// ErrEmpty is returned when building a catalog from an empty database.
var ErrEmpty = errors.New("no element sets loaded")

// Database collects element sets keyed by NORAD id. It is not safe for
// concurrent use.
type Database struct {
	records map[string]*Record
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{records: make(map[string]*Record)}
}

// Merge stores rec unless a newer element set for the same satellite is
// already present. A known owner survives a merge that carries none. It
// reports whether rec was stored.
func (db *Database) Merge(rec Record) bool {
	existing, ok := db.records[rec.NoradID]
	if !ok {
		r := rec
		db.records[rec.NoradID] = &r
		return true
	}
	if rec.Epoch.Before(existing.Epoch) {
		return false
	}
	owner := existing.Owner
	*existing = rec
	if existing.Owner == "" {
		existing.Owner = owner
	}
	return true
}

// SetOwner records the owner of an already known satellite. Unknown ids are
// ignored; it reports whether the owner was applied.
func (db *Database) SetOwner(noradID, owner string) bool {
	rec, ok := db.records[noradID]
	if !ok {
		return false
	}
	rec.Owner = owner
	return true
}

// Get returns the record for a NORAD id.
func (db *Database) Get(noradID string) (Record, bool) {
	rec, ok := db.records[noradID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of satellites.
func (db *Database) Len() int { return len(db.records) }

// Records returns every record ordered by NORAD id.
func (db *Database) Records() []Record {
	out := make([]Record, 0, len(db.records))
	for _, rec := range db.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].NoradID, out[j].NoradID) })
	return out
}

// lessID orders numeric ids numerically and falls back to string order.
func lessID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ImportFile reads a TLE or SATCAT file into the database. TLE records are
// tagged with the file's base name without extension.
func (db *Database) ImportFile(path string) (Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to read %s: %w", path, err)
	}

	format := Sniff(strings.Split(string(data), "\n"))
	switch format {
	case FormatTLE:
		set := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		recs, err := Parse(bytes.NewReader(data), set)
		if err != nil {
			return format, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, rec := range recs {
			db.Merge(rec)
		}
	case FormatSATCAT:
		owners, err := ParseSATCAT(bytes.NewReader(data))
		if err != nil {
			return format, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, o := range owners {
			db.SetOwner(o.NoradID, o.Owner)
		}
	default:
		return format, fmt.Errorf("cannot parse %s: %w", path, ErrUnknownFormat)
	}
	return format, nil
}

// Build produces a catalog whose epoch is the newest element epoch. Every
// mean anomaly is advanced from its own epoch to that common epoch, so the
// whole catalog can be animated from one clock.
func (db *Database) Build() (*catalog.File, error) {
	if len(db.records) == 0 {
		return nil, ErrEmpty
	}

	recs := db.Records()
	epoch := recs[0].Epoch
	for _, rec := range recs[1:] {
		if rec.Epoch.After(epoch) {
			epoch = rec.Epoch
		}
	}

	f := &catalog.File{Epoch: epoch, Sets: make(map[string][]catalog.Record)}
	for _, rec := range recs {
		days := epoch.Sub(rec.Epoch).Hours() / 24
		f.Sets[rec.Set] = append(f.Sets[rec.Set], catalog.Record{
			ID:           rec.NoradID,
			Inclination:  rec.Inclination,
			RAAN:         rec.RAAN,
			Eccentricity: rec.Eccentricity,
			ArgPeriapsis: rec.ArgPerigee,
			MeanAnomaly:  AdvanceMeanAnomaly(rec.MeanAnomaly, rec.MeanMotion, days),
			MeanMotion:   rec.MeanMotion,
			Owner:        rec.Owner,
		})
	}
	return f, nil
}

// AdvanceMeanAnomaly moves a mean anomaly (degrees) forward by days at the
// given mean motion (revolutions per day), wrapped to [0, 360).
func AdvanceMeanAnomaly(m0, meanMotion, days float64) float64 {
	m := math.Mod(m0+360*meanMotion*days, 360)
	if m < 0 {
		m += 360
	}
	return m
}
