package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/unklstewy/orbit-globe/pkg/camera"
)

// Config represents the complete application configuration.
type Config struct {
	Viewer   ViewerConfig   `json:"viewer"`
	Camera   CameraConfig   `json:"camera"`
	Render   RenderConfig   `json:"render"`
	Catalog  CatalogConfig  `json:"catalog"`
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
}

// ViewerConfig contains terminal and window viewer settings.
type ViewerConfig struct {
	// FPS is the target frame rate (default: 30)
	FPS int `json:"fps"`

	// ShowSidebar toggles the filter/telemetry/log panels in the terminal viewer
	ShowSidebar bool `json:"show_sidebar"`

	// WindowWidth and WindowHeight size the OpenGL window in pixels
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

// CameraConfig contains the initial camera and its limits.
type CameraConfig struct {
	// Distance from Earth's center in km (default: 15000)
	Distance float64 `json:"distance"`

	// Pitch and Yaw in degrees
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`

	// MinDistance and MaxDistance clamp zooming, in km
	MinDistance float64 `json:"min_distance"`
	MaxDistance float64 `json:"max_distance"`

	// Highlight lists the categories drawn highlighted at startup.
	// Empty means every category is shown with the default style.
	Highlight []string `json:"highlight"`

	// Selection is "all", "subset" or "none". When empty the mode follows
	// Highlight.
	Selection string `json:"selection,omitempty"`
}

// RenderConfig contains engine settings.
type RenderConfig struct {
	// TexturePath is the equirectangular Earth image (JPEG or PNG).
	// Empty uses the built-in procedural texture.
	TexturePath string `json:"texture_path"`

	// TimeWarp multiplies elapsed time for orbit animation (default: 100)
	TimeWarp float64 `json:"time_warp"`

	// AutoSpin is the idle camera spin in degrees per second (default: 1)
	// Negative disables spinning.
	AutoSpin float64 `json:"auto_spin"`

	// LongitudeSegments and LatitudeSegments set the globe tessellation
	LongitudeSegments int `json:"longitude_segments"`
	LatitudeSegments  int `json:"latitude_segments"`
}

// CatalogConfig contains where the orbit catalog comes from.
type CatalogConfig struct {
	// Path is a data0 JSON or JS file
	Path string `json:"path"`

	// SkipInvalid drops element sets that fail validation instead of
	// refusing to start
	SkipInvalid bool `json:"skip_invalid"`

	// FromDatabase builds the catalog from the satellites table instead of Path
	FromDatabase bool `json:"from_database"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Driver is the database driver (postgres)
	Driver string `json:"driver"`

	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// AllowedOrigins are the CORS origins (default: "*")
	AllowedOrigins []string `json:"allowed_origins"`

	// FramesPerSecond limits rendered frame requests across all clients
	FramesPerSecond float64 `json:"frames_per_second"`

	// FrameBurst is how many frame requests may arrive at once
	FrameBurst int `json:"frame_burst"`

	// MaxFrameWidth and MaxFrameHeight bound requested frame sizes in pixels
	MaxFrameWidth  int `json:"max_frame_width"`
	MaxFrameHeight int `json:"max_frame_height"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so missing sections keep sensible values
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:          30,
			ShowSidebar:  true,
			WindowWidth:  1280,
			WindowHeight: 800,
		},
		Camera: CameraConfig{
			Distance:    camera.DefaultDistance,
			Pitch:       camera.DefaultPitch,
			Yaw:         camera.DefaultYaw,
			MinDistance: camera.MinDistance,
			MaxDistance: camera.MaxDistance,
		},
		Render: RenderConfig{
			TimeWarp:          100,
			AutoSpin:          1,
			LongitudeSegments: 64,
			LatitudeSegments:  48,
		},
		Catalog: CatalogConfig{
			Path:        "data/data0.js",
			SkipInvalid: true,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5432,
			Database:     "orbitglobe",
			Username:     "orbitglobe",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			AllowedOrigins:  []string{"*"},
			FramesPerSecond: 10,
			FrameBurst:      5,
			MaxFrameWidth:   1920,
			MaxFrameHeight:  1080,
		},
	}
}

// State returns the initial camera state. Highlighted categories become a
// subset selection unless Selection says all or none.
func (c CameraConfig) State() camera.State {
	s := camera.State{
		Distance:  c.Distance,
		Pitch:     c.Pitch,
		Yaw:       c.Yaw,
		Selection: c.selection(),
	}
	if s.Distance <= 0 {
		s.Distance = camera.DefaultDistance
	}
	return s
}

func (c CameraConfig) selection() camera.Selection {
	switch c.Selection {
	case camera.ShowAll.String():
		return camera.All()
	case camera.ShowNone.String():
		return camera.None()
	default:
		return camera.Subset(c.Highlight...)
	}
}

// SetSelection records sel so that State restores it, including the all and
// none modes that carry no category names.
func (c *CameraConfig) SetSelection(sel camera.Selection) {
	c.Selection = sel.Mode().String()
	c.Highlight = sel.Sets()
}

// Limits returns the camera limits.
func (c CameraConfig) Limits() camera.Limits {
	return camera.Limits{MinDistance: c.MinDistance, MaxDistance: c.MaxDistance}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv("ORBIT_GLOBE_CATALOG"); path != "" {
		c.Catalog.Path = path
	}
	if path := os.Getenv("ORBIT_GLOBE_TEXTURE"); path != "" {
		c.Render.TexturePath = path
	}
	if port := os.Getenv("ORBIT_GLOBE_PORT"); port != "" {
		c.Server.Port = port
	}
	if host := os.Getenv("ORBIT_GLOBE_DB_HOST"); host != "" {
		c.Database.Host = host
	}
	if dbPassword := os.Getenv("ORBIT_GLOBE_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if fps := os.Getenv("ORBIT_GLOBE_FPS"); fps != "" {
		if n, err := strconv.Atoi(fps); err == nil && n > 0 {
			c.Viewer.FPS = n
		}
	}
}
