// Orbit Globe catalog browser.
// Lists catalog categories and their orbits, and picks the categories the
// viewers highlight at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unklstewy/orbit-globe/internal/assets"
	"github.com/unklstewy/orbit-globe/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	catalogPath := flag.String("catalog", "", "Catalog file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
		cfg.Catalog.FromDatabase = false
	}

	_, cat, err := assets.LoadConfiguredCatalog(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	p := tea.NewProgram(newModel(cfg, *configPath, cat), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
