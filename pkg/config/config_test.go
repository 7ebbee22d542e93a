package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unklstewy/orbit-globe/pkg/camera"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Viewer defaults
	if cfg.Viewer.FPS != 30 {
		t.Errorf("Expected default FPS 30, got %d", cfg.Viewer.FPS)
	}

	// Camera defaults
	if cfg.Camera.Distance != 15000 {
		t.Errorf("Expected default distance 15000, got %f", cfg.Camera.Distance)
	}
	if cfg.Camera.Pitch != 10 {
		t.Errorf("Expected default pitch 10, got %f", cfg.Camera.Pitch)
	}
	if len(cfg.Camera.Highlight) != 0 {
		t.Errorf("Expected no highlighted categories, got %v", cfg.Camera.Highlight)
	}

	// Render defaults
	if cfg.Render.TimeWarp != 100 {
		t.Errorf("Expected time warp 100, got %f", cfg.Render.TimeWarp)
	}
	if cfg.Render.LongitudeSegments != 64 || cfg.Render.LatitudeSegments != 48 {
		t.Errorf("Expected 64x48 globe, got %dx%d", cfg.Render.LongitudeSegments, cfg.Render.LatitudeSegments)
	}

	// Database defaults
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}

	// Server defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.FramesPerSecond <= 0 {
		t.Errorf("Expected a positive frame rate limit, got %f", cfg.Server.FramesPerSecond)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid configuration file.
func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	testConfig := DefaultConfig()
	testConfig.Camera.Distance = 42000
	testConfig.Camera.Highlight = []string{"stations", "gps-ops"}
	testConfig.Catalog.Path = "/srv/orbits/data0.js"
	testConfig.Database.Host = "db.example.com"
	testConfig.Server.Port = "9090"

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Expected db.example.com, got %s", cfg.Database.Host)
	}
	if cfg.Camera.Distance != 42000 {
		t.Errorf("Expected distance 42000, got %f", cfg.Camera.Distance)
	}
	if cfg.Catalog.Path != "/srv/orbits/data0.js" {
		t.Errorf("Expected catalog path from file, got %s", cfg.Catalog.Path)
	}
}

// TestLoadPartialConfig tests that sections missing from the file keep their defaults.
func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"viewer": {"fps": 12}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Viewer.FPS != 12 {
		t.Errorf("Expected FPS 12, got %d", cfg.Viewer.FPS)
	}
	if cfg.Render.TimeWarp != 100 {
		t.Errorf("Expected default time warp, got %f", cfg.Render.TimeWarp)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestSaveConfig tests saving configuration to file.
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Camera.Highlight = []string{"weather"}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if len(loaded.Camera.Highlight) != 1 || loaded.Camera.Highlight[0] != "weather" {
		t.Errorf("Expected highlight [weather], got %v", loaded.Camera.Highlight)
	}
}

// TestSaveSelectionModes tests that every selection mode survives a save
// and reload, including none, which has no category names.
func TestSaveSelectionModes(t *testing.T) {
	for _, sel := range []camera.Selection{camera.All(), camera.None(), camera.Subset("weather", "gps-ops")} {
		t.Run(sel.Mode().String(), func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.json")

			cfg := DefaultConfig()
			cfg.Camera.SetSelection(sel)
			if err := cfg.Save(configPath); err != nil {
				t.Fatalf("Failed to save config: %v", err)
			}

			loaded, err := Load(configPath)
			if err != nil {
				t.Fatalf("Failed to load saved config: %v", err)
			}
			got := loaded.Camera.State().Selection
			if got.Mode() != sel.Mode() {
				t.Errorf("Expected mode %s, got %s", sel.Mode(), got.Mode())
			}
			if strings.Join(got.Sets(), ",") != strings.Join(sel.Sets(), ",") {
				t.Errorf("Expected sets %v, got %v", sel.Sets(), got.Sets())
			}
		})
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ORBIT_GLOBE_PORT", "7777")
	t.Setenv("ORBIT_GLOBE_CATALOG", "/env/data0.json")
	t.Setenv("ORBIT_GLOBE_TEXTURE", "/env/earth.jpg")
	t.Setenv("ORBIT_GLOBE_DB_HOST", "env-db-host")
	t.Setenv("ORBIT_GLOBE_DB_PASSWORD", "env-password")
	t.Setenv("ORBIT_GLOBE_FPS", "15")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.Database.Password = "original-password"

	data, _ := json.Marshal(testCfg)
	os.WriteFile(configPath, data, 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "/env/data0.json" {
		t.Errorf("Expected catalog path from env, got %s", cfg.Catalog.Path)
	}
	if cfg.Render.TexturePath != "/env/earth.jpg" {
		t.Errorf("Expected texture path from env, got %s", cfg.Render.TexturePath)
	}
	if cfg.Database.Host != "env-db-host" {
		t.Errorf("Expected env-db-host from env, got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "env-password" {
		t.Errorf("Expected env-password from env, got %s", cfg.Database.Password)
	}
	if cfg.Viewer.FPS != 15 {
		t.Errorf("Expected FPS 15 from env, got %d", cfg.Viewer.FPS)
	}
}

// TestInvalidFPSOverrideIgnored tests that a malformed FPS override keeps the file value.
func TestInvalidFPSOverrideIgnored(t *testing.T) {
	t.Setenv("ORBIT_GLOBE_FPS", "fast")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Viewer.FPS != 30 {
		t.Errorf("Expected default FPS 30, got %d", cfg.Viewer.FPS)
	}
}

// TestCameraState tests the conversion of camera settings into an initial state.
func TestCameraState(t *testing.T) {
	tests := []struct {
		name      string
		config    CameraConfig
		distance  float64
		mode      camera.SelectionMode
		highlight []string
	}{
		{
			name:     "Defaults",
			config:   DefaultConfig().Camera,
			distance: 15000,
			mode:     camera.ShowAll,
		},
		{
			name:      "Highlighted categories",
			config:    CameraConfig{Distance: 30000, Highlight: []string{"stations", "amateur"}},
			distance:  30000,
			mode:      camera.ShowSubset,
			highlight: []string{"amateur", "stations"},
		},
		{
			name:     "Dim everything",
			config:   CameraConfig{Distance: 30000, Selection: "none"},
			distance: 30000,
			mode:     camera.ShowNone,
		},
		{
			name:     "All overrides stale highlight",
			config:   CameraConfig{Distance: 30000, Selection: "all", Highlight: []string{"stations"}},
			distance: 30000,
			mode:     camera.ShowAll,
		},
		{
			name:     "Zero distance falls back",
			config:   CameraConfig{},
			distance: camera.DefaultDistance,
			mode:     camera.ShowAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.config.State()
			if s.Distance != tt.distance {
				t.Errorf("Expected distance %f, got %f", tt.distance, s.Distance)
			}
			if s.Selection.Mode() != tt.mode {
				t.Errorf("Expected selection %s, got %s", tt.mode, s.Selection.Mode())
			}
			if tt.highlight != nil {
				got := s.Selection.Sets()
				if strings.Join(got, ",") != strings.Join(tt.highlight, ",") {
					t.Errorf("Expected highlighted %v, got %v", tt.highlight, got)
				}
			}
		})
	}
}

// TestCameraLimits tests that configured limits reach the controller.
func TestCameraLimits(t *testing.T) {
	cfg := CameraConfig{MinDistance: 8000, MaxDistance: 50000}
	ctrl := camera.NewController(camera.State{Distance: 20000}, cfg.Limits())

	for i := 0; i < 100; i++ {
		ctrl.Scroll(0.5)
	}
	if got := ctrl.Snapshot().Distance; got != 8000 {
		t.Errorf("Expected distance clamped to 8000, got %f", got)
	}
}
