package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/unklstewy/orbit-globe/internal/db"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/tle"
)

// tle-import merges TLE element files and SATCAT ownership files into one
// catalog. The catalog is written as data0 JSON/JS and optionally stored in
// the satellites table so viewers and the web server can load it from there.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	outPath := flag.String("out", "", "Catalog output path; .js writes data0 script, - writes to stdout (default: catalog path from config)")
	asJS := flag.Bool("js", false, "Write data0 script format when writing to stdout")
	toDB := flag.Bool("db", false, "Also store the satellites in the database")
	fromDB := flag.Bool("merge-db", false, "Start from the satellites already in the database")
	verify := flag.Bool("verify", false, "Drop element sets whose SGP4 position disagrees with the two-body orbit")
	tolerance := flag.Float64("tolerance", tle.DefaultToleranceKm, "Verification tolerance in km")
	prune := flag.Duration("prune", 0, "Delete database satellites not updated within this age (0 keeps all)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FILE...\n\nFILE is a TLE file (category = file name) or a SATCAT file.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && !*fromDB {
		flag.Usage()
		os.Exit(2)
	}

	log.Println("===========================================")
	log.Println("  Orbit Globe TLE Import")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outPath == "" {
		*outPath = cfg.Catalog.Path
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		database *db.DB
		repo     *db.SatelliteRepository
	)
	if *toDB || *fromDB {
		log.Println("Connecting to database...")
		database, err = db.ReconnectWithRetry(ctx, cfg.Database, 3, time.Second)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		if err := database.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("✓ Database connected")
		repo = db.NewSatelliteRepository(database)
	}

	tles := tle.NewDatabase()
	if *fromDB {
		err = db.WithRetry(ctx, func() error {
			var err error
			tles, err = repo.LoadDatabase(ctx)
			return err
		}, 3)
		if err != nil {
			log.Fatalf("Failed to load satellites from database: %v", err)
		}
		log.Printf("✓ Loaded %d satellites from database", tles.Len())
	}

	var summary Summary
	log.Printf("Importing %d files...", flag.NArg())
	if err := importFiles(tles, flag.Args(), &summary); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if *verify {
		log.Printf("Verifying %d element sets with SGP4 (tolerance %.0f km)...", tles.Len(), *tolerance)
		tles = verifyAll(tles, *tolerance, &summary)
		log.Printf("✓ %d verified, %d rejected", summary.Verified, len(summary.Rejected))
	}

	format := catalog.FormatJSON
	if *asJS {
		format = catalog.FormatJS
	}
	f, err := writeCatalog(tles, *outPath, os.Stdout, format, &summary)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("✓ Catalog: %d satellites in %d categories, epoch %s",
		summary.Satellites, summary.Categories, f.Epoch.UTC().Format(time.RFC3339))
	if *outPath != "-" {
		log.Printf("✓ Written to %s", *outPath)
	}

	if repo != nil && *toDB {
		var n int
		err := db.WithRetry(ctx, func() error {
			var err error
			n, err = repo.SaveDatabase(ctx, tles)
			return err
		}, 3)
		if err != nil {
			log.Fatalf("Failed to store satellites: %v", err)
		}
		log.Printf("✓ Stored %d new or newer element sets", n)

		if *prune > 0 {
			removed, err := database.PruneStale(ctx, *prune)
			if err != nil {
				log.Printf("⚠️  Prune failed: %v", err)
			} else {
				log.Printf("✓ Pruned %d stale satellites", removed)
			}
		}

		if stats, err := database.GetStats(ctx); err == nil {
			log.Printf("Database: %d satellites, %d categories, %d with owner",
				stats.Satellites, stats.Categories, stats.WithOwner)
		}
		if counts, err := repo.CountByCategory(ctx); err == nil {
			sets := make([]string, 0, len(counts))
			for set := range counts {
				sets = append(sets, set)
			}
			sort.Strings(sets)
			for _, set := range sets {
				log.Printf("  %-20s %6d", set, counts[set])
			}
		}
	}

	log.Printf("Done: %d TLE files, %d SATCAT files", summary.TLEFiles, summary.SATCATFiles)
}
