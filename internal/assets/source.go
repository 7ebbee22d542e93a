package assets

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/unklstewy/orbit-globe/internal/db"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
	"github.com/unklstewy/orbit-globe/pkg/tle"
)

// LoadConfiguredCatalog loads the catalog from the satellites table when
// cfg.Catalog.FromDatabase is set and from cfg.Catalog.Path otherwise.
func LoadConfiguredCatalog(ctx context.Context, cfg *config.Config, opts ...orbit.Option) (*catalog.File, *orbit.Catalog, error) {
	if !cfg.Catalog.FromDatabase {
		return LoadCatalog(cfg.Catalog, opts...)
	}

	database, err := db.ReconnectWithRetry(ctx, cfg.Database, 3, time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return LoadDatabaseCatalog(ctx, database, cfg.Catalog, opts...)
}

// LoadDatabaseCatalog builds the catalog from the satellites table of an
// open connection. Dropped connections are retried.
func LoadDatabaseCatalog(ctx context.Context, database *db.DB, cfg config.CatalogConfig, opts ...orbit.Option) (*catalog.File, *orbit.Catalog, error) {
	repo := db.NewSatelliteRepository(database)

	var tles *tle.Database
	err := db.WithRetry(ctx, func() error {
		var err error
		tles, err = repo.LoadDatabase(ctx)
		return err
	}, 3)
	if err != nil {
		return nil, nil, err
	}

	file, err := tles.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog from database: %w", err)
	}
	log.Printf("Loaded %d satellites from database", tles.Len())

	c, err := BuildCatalog(file, cfg.SkipInvalid, opts...)
	if err != nil {
		return nil, nil, err
	}
	return file, c, nil
}
