package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/geo"
	"github.com/unklstewy/orbit-globe/pkg/gfx/soft"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// frameSurface labels web frames in metrics.
const frameSurface = "web"

// FrameIDHeader carries a per-frame id so clients can correlate logs.
const FrameIDHeader = "X-Frame-ID"

// Server holds the HTTP server and its dependencies
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	file    *catalog.File
	catalog *orbit.Catalog
	metrics *observability.RenderCollector
	limiter *rate.Limiter

	// dbHealthy is set when the catalog is backed by the database.
	dbHealthy func(ctx context.Context) bool

	// The engine and its backend are not safe for concurrent use.
	mu      sync.Mutex
	backend *soft.Backend
	engine  *render.Engine
}

// NewServer builds the frame engine and the routes.
func NewServer(cfg *config.Config, file *catalog.File, c *orbit.Catalog, texture image.Image, metrics *observability.RenderCollector) (*Server, error) {
	backend := render.NewSoftBackend(1, 1)
	engine, err := render.NewEngine(backend, backend, render.Sources(), texture, c, render.EngineOptions{
		TimeWarp: cfg.Render.TimeWarp,
		AutoSpin: cfg.Render.AutoSpin,
		Globe: render.GlobeOptions{
			LongitudeSegments: cfg.Render.LongitudeSegments,
			LatitudeSegments:  cfg.Render.LatitudeSegments,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	metrics.SetCatalog(c)

	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		file:    file,
		catalog: c,
		metrics: metrics,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.FramesPerSecond), cfg.Server.FrameBurst),
		backend: backend,
		engine:  engine,
	}
	s.setupRoutes()
	return s, nil
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{FrameIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	// Catalog documents in the format the browser viewer loads directly
	r.With(middleware.Compress(5)).Get("/data0.js", s.handleCatalogFile(catalog.FormatJS))
	r.With(middleware.Compress(5)).Get("/data0.json", s.handleCatalogFile(catalog.FormatJSON))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleGetCatalog)
		r.Get("/catalog/{set}", s.handleGetCategory)
		r.Get("/frame.png", s.handleFrame)
	})
}

// WatchDatabase makes /healthz report the database through healthy.
func (s *Server) WatchDatabase(healthy func(ctx context.Context) bool) {
	s.dbHealthy = healthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":     "ok",
		"satellites": s.catalog.Len(),
	}
	code := http.StatusOK
	if s.dbHealthy != nil {
		if s.dbHealthy(r.Context()) {
			body["database"] = "ok"
		} else {
			body["database"] = "unavailable"
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, body)
}

func (s *Server) handleCatalogFile(format catalog.Format) http.HandlerFunc {
	contentType := "application/json"
	if format == catalog.FormatJS {
		contentType = "application/javascript"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if err := s.file.Encode(w, format); err != nil {
			log.Printf("Error encoding catalog: %v", err)
		}
	}
}

// CategoryResponse is one entry of the catalog listing.
type CategoryResponse struct {
	Set         string `json:"set"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Count       int    `json:"count"`
}

// CatalogResponse describes the loaded catalog.
type CatalogResponse struct {
	Epoch      time.Time          `json:"epoch"`
	Satellites int                `json:"satellites"`
	Categories []CategoryResponse `json:"categories"`
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	resp := CatalogResponse{
		Epoch:      s.catalog.Epoch().UTC(),
		Satellites: s.catalog.Len(),
	}
	for _, f := range catalog.CatalogFilters(s.catalog) {
		resp.Categories = append(resp.Categories, CategoryResponse{
			Set:         f.Set,
			Name:        f.Name,
			Description: f.Description,
			URL:         f.URL,
			Count:       f.Count,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// OrbitResponse summarises one satellite's orbit.
type OrbitResponse struct {
	ID            string  `json:"id"`
	Owner         string  `json:"owner,omitempty"`
	Inclination   float64 `json:"inclination"`
	Eccentricity  float64 `json:"eccentricity"`
	MeanMotion    float64 `json:"mean_motion"`
	PeriodMinutes float64 `json:"period_minutes"`
	PerigeeKm     float64 `json:"perigee_km"`
	ApogeeKm      float64 `json:"apogee_km"`

	// Position is the sub-satellite point at the time of the request.
	Position    geo.Geographic `json:"position"`
	FootprintKm float64        `json:"footprint_km"`
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	set := chi.URLParam(r, "set")
	orbits := s.catalog.Orbits(set)
	if orbits == nil {
		http.Error(w, "Unknown category", http.StatusNotFound)
		return
	}

	now := s.catalog.Now()
	resp := make([]OrbitResponse, 0, len(orbits))
	for _, o := range orbits {
		pos := geo.SatellitePoint(o, s.catalog.Epoch(), now)
		resp = append(resp, OrbitResponse{
			ID:            o.ID,
			Owner:         o.Elements.Owner,
			Inclination:   o.Elements.Inclination,
			Eccentricity:  o.Eccentricity,
			MeanMotion:    o.MeanMotion,
			PeriodMinutes: o.Period().Minutes(),
			PerigeeKm:     o.PerigeeAltitude(),
			ApogeeKm:      o.ApogeeAltitude(),
			Position:      pos,
			FootprintKm:   geo.FootprintKm(pos.Altitude),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"time":   now.UTC(),
		"set":    set,
		"label":  catalog.LabelFor(set).Name,
		"orbits": resp,
	})
}

// FrameRequest is a parsed /frame.png query.
type FrameRequest struct {
	Width, Height int
	State         camera.State
}

var errBadFrame = errors.New("bad frame request")

// ParseFrameRequest reads w, h, distance, pitch, yaw and sets from q.
// Missing values come from base; sizes beyond the limits are rejected and
// distance and pitch are clamped to bounds.
// sets is a comma list of categories to highlight, "all" or "none".
func ParseFrameRequest(q map[string][]string, base camera.State, limits config.ServerConfig, bounds camera.Limits) (FrameRequest, error) {
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	req := FrameRequest{Width: 640, Height: 480, State: base}

	ints := []struct {
		key string
		dst *int
		max int
	}{
		{"w", &req.Width, limits.MaxFrameWidth},
		{"h", &req.Height, limits.MaxFrameHeight},
	}
	for _, p := range ints {
		raw := get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return FrameRequest{}, fmt.Errorf("%w: %s must be a positive integer", errBadFrame, p.key)
		}
		if p.max > 0 && n > p.max {
			return FrameRequest{}, fmt.Errorf("%w: %s exceeds %d", errBadFrame, p.key, p.max)
		}
		*p.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"distance", &req.State.Distance},
		{"pitch", &req.State.Pitch},
		{"yaw", &req.State.Yaw},
	}
	for _, p := range floats {
		raw := get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return FrameRequest{}, fmt.Errorf("%w: %s is not a number", errBadFrame, p.key)
		}
		*p.dst = v
	}
	if req.State.Distance <= 0 {
		return FrameRequest{}, fmt.Errorf("%w: distance must be positive", errBadFrame)
	}
	req.State = bounds.Clamp(req.State)

	switch sets := get("sets"); sets {
	case "":
	case "all":
		req.State.Selection = camera.All()
	case "none":
		req.State.Selection = camera.None()
	default:
		req.State.Selection = camera.Subset(strings.Split(sets, ",")...)
	}
	return req, nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := ParseFrameRequest(r.URL.Query(), s.cfg.Camera.State(), s.cfg.Server, s.cfg.Camera.Limits())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.limiter.Allow() {
		s.metrics.FrameLimited(frameSurface)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Too many frame requests", http.StatusTooManyRequests)
		return
	}

	img, stats := s.renderFrame(req)
	s.metrics.ObserveFrame(frameSurface, stats)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(FrameIDHeader, uuid.NewString())
	if err := png.Encode(w, img); err != nil {
		log.Printf("Error encoding frame: %v", err)
	}
}

// renderFrame draws one frame and returns a copy of the framebuffer.
func (s *Server) renderFrame(req FrameRequest) (*image.RGBA, render.FrameStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backend.Resize(req.Width, req.Height)
	stats := s.engine.Draw(req.State)
	return s.backend.Image(), stats
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
