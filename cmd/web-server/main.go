// Orbit Globe web server.
// Serves the catalog as JSON and data0.js, rendered PNG frames of the globe,
// and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unklstewy/orbit-globe/internal/assets"
	"github.com/unklstewy/orbit-globe/internal/db"
	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
)

func main() {
	flag.Parse()

	log.Println("🚀 Starting Orbit Globe Web Server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		file    *catalog.File
		cat     *orbit.Catalog
		monitor *db.Monitor
	)
	if cfg.Catalog.FromDatabase {
		database, err := db.ReconnectWithRetry(ctx, cfg.Database, 3, time.Second)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		monitor = db.NewMonitor(database, cfg.Database)
		defer monitor.Close()

		file, cat, err = assets.LoadDatabaseCatalog(ctx, database, cfg.Catalog)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	} else {
		file, cat, err = assets.LoadCatalog(cfg.Catalog)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}
	log.Printf("🛰  Loaded %d satellites in %d categories", cat.Len(), len(cat.Sets()))

	texture, err := assets.LoadTexture(cfg.Render.TexturePath)
	if err != nil {
		log.Fatalf("Failed to load texture: %v", err)
	}

	metrics, err := observability.NewRenderCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	srv, err := NewServer(cfg, file, cat, texture, metrics)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	if monitor != nil {
		srv.WatchDatabase(monitor.Healthy)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("📡 Server listening on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("👋 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("✅ Server stopped")
}
