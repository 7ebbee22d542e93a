// Package observability exposes Prometheus metrics for the frame renderers
// and the HTTP surface.
package observability

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Frame results.
const (
	ResultRendered = "rendered"
	ResultSkipped  = "skipped"
	ResultLimited  = "limited"
)

// RenderCollector wires frame, catalog, and HTTP metrics into a registry.
type RenderCollector struct {
	gatherer prometheus.Gatherer

	Frames        *prometheus.CounterVec
	FrameDuration *prometheus.HistogramVec
	HTTPRequests  *prometheus.CounterVec
	CatalogOrbits *prometheus.GaugeVec
	CatalogEpoch  prometheus.Gauge
}

// NewRenderCollector registers the metrics against reg, or the default
// registerer when reg is nil.
func NewRenderCollector(reg prometheus.Registerer) (*RenderCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_globe_frames_total",
		Help: "Frames requested per surface, by result.",
	}, []string{"surface", "result"})
	frames, err := registerCounterVec(reg, frames, "orbit_globe_frames_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orbit_globe_frame_duration_seconds",
		Help:    "Time spent drawing one frame.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}, []string{"surface"})
	duration, err = registerHistogramVec(reg, duration, "orbit_globe_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_globe_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	requests, err = registerCounterVec(reg, requests, "orbit_globe_http_requests_total")
	if err != nil {
		return nil, err
	}

	orbits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orbit_globe_catalog_orbits",
		Help: "Orbits loaded per category.",
	}, []string{"set"})
	orbits, err = registerGaugeVec(reg, orbits, "orbit_globe_catalog_orbits")
	if err != nil {
		return nil, err
	}

	epoch := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_globe_catalog_epoch_seconds",
		Help: "Unix time of the catalog epoch.",
	})
	epoch, err = registerGauge(reg, epoch, "orbit_globe_catalog_epoch_seconds")
	if err != nil {
		return nil, err
	}

	return &RenderCollector{
		gatherer:      gatherer,
		Frames:        frames,
		FrameDuration: duration,
		HTTPRequests:  requests,
		CatalogOrbits: orbits,
		CatalogEpoch:  epoch,
	}, nil
}

// ObserveFrame records one engine frame for surface.
func (c *RenderCollector) ObserveFrame(surface string, stats render.FrameStats) {
	if c == nil {
		return
	}
	if stats.Skipped {
		c.Frames.WithLabelValues(surface, ResultSkipped).Inc()
		return
	}
	c.Frames.WithLabelValues(surface, ResultRendered).Inc()
	c.FrameDuration.WithLabelValues(surface).Observe(stats.Duration.Seconds())
}

// FrameLimited records a frame request refused by rate limiting.
func (c *RenderCollector) FrameLimited(surface string) {
	if c == nil {
		return
	}
	c.Frames.WithLabelValues(surface, ResultLimited).Inc()
}

// SetCatalog publishes per-category orbit counts and the epoch.
func (c *RenderCollector) SetCatalog(cat *orbit.Catalog) {
	if c == nil || cat == nil {
		return
	}
	c.CatalogOrbits.Reset()
	for _, name := range cat.Sets() {
		c.CatalogOrbits.WithLabelValues(name).Set(float64(cat.Count(name)))
	}
	c.CatalogEpoch.Set(float64(cat.Epoch().Unix()))
}

// Middleware counts requests by chi route pattern. Unmatched routes are
// recorded as "unmatched".
func (c *RenderCollector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	})
}

// Handler exposes the registered metrics for scraping.
func (c *RenderCollector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr from a background goroutine and returns the
// bound address, which resolves a ":0" port.
func (c *RenderCollector) Serve(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	go func() {
		if err := http.Serve(ln, c.Handler()); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	return ln.Addr(), nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return gauge, nil
}
