package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/unklstewy/orbit-globe/pkg/tle"
)

// SatelliteRepository stores element sets in the satellites table.
type SatelliteRepository struct {
	db *DB
}

// NewSatelliteRepository creates a new satellite repository.
func NewSatelliteRepository(db *DB) *SatelliteRepository {
	return &SatelliteRepository{db: db}
}

const satelliteColumns = `norad_id, name, set_name, classification, intl_designator, epoch,
	inclination, raan, eccentricity, arg_perigee, mean_anomaly, mean_motion, rev_number,
	owner, line1, line2`

// upsertSQL keeps the stored row when it has a newer epoch, and keeps a
// known owner when the incoming record carries none.
const upsertSQL = `INSERT INTO satellites (` + satelliteColumns + `, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
	ON CONFLICT (norad_id) DO UPDATE SET
		name = EXCLUDED.name,
		set_name = EXCLUDED.set_name,
		classification = EXCLUDED.classification,
		intl_designator = EXCLUDED.intl_designator,
		epoch = EXCLUDED.epoch,
		inclination = EXCLUDED.inclination,
		raan = EXCLUDED.raan,
		eccentricity = EXCLUDED.eccentricity,
		arg_perigee = EXCLUDED.arg_perigee,
		mean_anomaly = EXCLUDED.mean_anomaly,
		mean_motion = EXCLUDED.mean_motion,
		rev_number = EXCLUDED.rev_number,
		owner = COALESCE(NULLIF(EXCLUDED.owner, ''), satellites.owner),
		line1 = EXCLUDED.line1,
		line2 = EXCLUDED.line2,
		updated_at = NOW()
	WHERE satellites.epoch <= EXCLUDED.epoch`

// recordArgs returns rec's values in satelliteColumns order.
func recordArgs(rec tle.Record) []any {
	return []any{
		rec.NoradID, rec.Name, rec.Set, rec.Classification, rec.IntlDesignator, rec.Epoch.UTC(),
		rec.Inclination, rec.RAAN, rec.Eccentricity, rec.ArgPerigee, rec.MeanAnomaly, rec.MeanMotion, rec.RevNumber,
		rec.Owner, rec.Line1, rec.Line2,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, rec tle.Record) (bool, error) {
	if rec.NoradID == "" {
		return false, fmt.Errorf("record has no NORAD id")
	}
	res, err := ex.ExecContext(ctx, upsertSQL, recordArgs(rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to upsert satellite %s: %w", rec.NoradID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upsert result: %w", err)
	}
	return n > 0, nil
}

// SaveDatabase writes every record of src in one transaction and returns
// how many rows were stored.
func (r *SatelliteRepository) SaveDatabase(ctx context.Context, src *tle.Database) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored := 0
	for _, rec := range src.Records() {
		ok, err := upsert(ctx, tx, rec)
		if err != nil {
			return 0, err
		}
		if ok {
			stored++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (tle.Record, error) {
	var rec tle.Record
	err := row.Scan(
		&rec.NoradID, &rec.Name, &rec.Set, &rec.Classification, &rec.IntlDesignator, &rec.Epoch,
		&rec.Inclination, &rec.RAAN, &rec.Eccentricity, &rec.ArgPerigee, &rec.MeanAnomaly, &rec.MeanMotion, &rec.RevNumber,
		&rec.Owner, &rec.Line1, &rec.Line2,
	)
	return rec, err
}

// LoadDatabase reads every stored satellite into a tle.Database, ready to
// Build into a catalog.
func (r *SatelliteRepository) LoadDatabase(ctx context.Context) (*tle.Database, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+satelliteColumns+` FROM satellites`)
	if err != nil {
		return nil, fmt.Errorf("failed to query satellites: %w", err)
	}
	defer rows.Close()

	out := tle.NewDatabase()
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan satellite: %w", err)
		}
		out.Merge(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read satellites: %w", err)
	}
	return out, nil
}

// CountByCategory returns the number of stored satellites per category.
func (r *SatelliteRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT set_name, COUNT(*) FROM satellites GROUP BY set_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count satellites: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var set string
		var n int
		if err := rows.Scan(&set, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[set] = n
	}
	return counts, rows.Err()
}
