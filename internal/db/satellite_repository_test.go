package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/tle"
)

func issRecord(epoch time.Time) tle.Record {
	return tle.Record{
		NoradID:        "25544",
		Name:           "ISS (ZARYA)",
		Set:            "stations",
		Classification: "U",
		IntlDesignator: "98067A",
		Epoch:          epoch,
		Inclination:    51.6416,
		RAAN:           247.4627,
		Eccentricity:   0.0006703,
		ArgPerigee:     130.536,
		MeanAnomaly:    325.0288,
		MeanMotion:     15.49,
		RevNumber:      12345,
	}
}

// TestRecordArgsMatchColumns tests that every column gets exactly one value.
func TestRecordArgsMatchColumns(t *testing.T) {
	columns := strings.Split(satelliteColumns, ",")
	args := recordArgs(issRecord(time.Now()))
	if len(args) != len(columns) {
		t.Fatalf("Expected %d args, got %d", len(columns), len(args))
	}
	if args[0] != "25544" {
		t.Errorf("Expected NORAD id first, got %v", args[0])
	}
}

// TestRecordArgsUTC tests that epochs are stored in UTC.
func TestRecordArgsUTC(t *testing.T) {
	local := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	args := recordArgs(issRecord(local))
	epoch := args[5].(time.Time)
	if epoch.Location() != time.UTC || !epoch.Equal(local) {
		t.Errorf("Expected %v in UTC, got %v", local, epoch)
	}
}

// TestUpsertRequiresID tests that records without an id are rejected
// before reaching the database.
func TestUpsertRequiresID(t *testing.T) {
	if _, err := upsert(context.Background(), nil, tle.Record{}); err == nil {
		t.Error("Expected error for record without NORAD id")
	}
}

func save(t *testing.T, repo *SatelliteRepository, recs ...tle.Record) int {
	t.Helper()
	src := tle.NewDatabase()
	for _, rec := range recs {
		src.Merge(rec)
	}
	n, err := repo.SaveDatabase(context.Background(), src)
	if err != nil {
		t.Fatalf("Failed to save database: %v", err)
	}
	return n
}

// TestSatelliteRepositoryRoundTrip exercises the repository against a live
// database.
func TestSatelliteRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewSatelliteRepository(db)
	ctx := context.Background()

	epoch := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := issRecord(epoch)
	first.Owner = "ISS"
	if n := save(t, repo, first); n != 1 {
		t.Fatalf("Expected first save to store 1, got %d", n)
	}

	// An older element set must not replace the stored one.
	older := issRecord(epoch.Add(-24 * time.Hour))
	older.MeanAnomaly = 1
	if n := save(t, repo, older); n != 0 {
		t.Error("Expected older epoch to be ignored")
	}

	// A newer one without an owner replaces it and keeps the owner.
	newer := issRecord(epoch.Add(time.Hour))
	newer.MeanAnomaly = 10
	if n := save(t, repo, newer); n != 1 {
		t.Fatalf("Expected newer record stored, got %d", n)
	}

	loaded, err := repo.LoadDatabase(ctx)
	if err != nil {
		t.Fatalf("Failed to load database: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Expected 1 satellite, got %d", loaded.Len())
	}
	rec, found := loaded.Get("25544")
	if !found {
		t.Fatal("Expected stored satellite")
	}
	if rec.MeanAnomaly != 10 {
		t.Errorf("Expected mean anomaly 10, got %f", rec.MeanAnomaly)
	}
	if rec.Owner != "ISS" {
		t.Errorf("Expected owner kept, got %q", rec.Owner)
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if counts["stations"] != 1 {
		t.Errorf("Expected 1 station, got %v", counts)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Satellites != 1 || stats.WithOwner != 1 || !stats.NewestEpoch.Equal(newer.Epoch) {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

// TestSaveDatabase tests the transactional bulk import.
func TestSaveDatabase(t *testing.T) {
	db := testDB(t)
	repo := NewSatelliteRepository(db)
	ctx := context.Background()

	src := tle.NewDatabase()
	epoch := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	src.Merge(issRecord(epoch))
	gps := issRecord(epoch)
	gps.NoradID = "24876"
	gps.Set = "gps-ops"
	gps.MeanMotion = 2.0056
	src.Merge(gps)

	n, err := repo.SaveDatabase(ctx, src)
	if err != nil {
		t.Fatalf("Failed to save database: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 stored, got %d", n)
	}

	pruned, err := db.PruneStale(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("Expected both 2024 element sets pruned, got %d", pruned)
	}
}
