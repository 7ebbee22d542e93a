package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/unklstewy/orbit-globe/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// ConnString builds the lib/pq connection string for cfg.
func ConnString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	sqlDB, err := sql.Open(driver, ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, config: cfg}, nil
}

// InitSchema creates the satellites table if it does not exist.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// PruneStale deletes satellites whose newest element set is older than
// maxAge. Decayed objects stop receiving element sets and would otherwise
// be drawn forever.
func (db *DB) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	res, err := db.ExecContext(ctx, `DELETE FROM satellites WHERE epoch < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale satellites: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned satellites: %w", err)
	}
	return n, nil
}

// Stats summarises the stored catalog.
type Stats struct {
	Satellites  int
	Categories  int
	WithOwner   int
	NewestEpoch time.Time
	OldestEpoch time.Time
}

// GetStats returns database statistics.
func (db *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	var newest, oldest sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(DISTINCT set_name),
		        COUNT(*) FILTER (WHERE owner <> ''),
		        MAX(epoch),
		        MIN(epoch)
		 FROM satellites`,
	).Scan(&s.Satellites, &s.Categories, &s.WithOwner, &newest, &oldest)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	s.NewestEpoch = newest.Time
	s.OldestEpoch = oldest.Time
	return s, nil
}
