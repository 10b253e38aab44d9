package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/rgbnode/internal/api/models"
	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/loop"
	"github.com/smazurov/rgbnode/internal/settings"
	"github.com/smazurov/rgbnode/internal/updater"
	"github.com/smazurov/rgbnode/internal/version"
)

// Controller is the device surface the API needs. Its methods are only
// ever called on the loop goroutine through the Pump.
type Controller interface {
	Render() settings.Form
	Set(id string, value any) (bool, error)
	Snapshot() device.State
}

// Server serves the settings form, state, streams and update routes.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	pump       *loop.Pump
	device     Controller
	eventBus   *events.Bus
	logger     *slog.Logger
}

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Pump              *loop.Pump
	Device            Controller
	EventBus          *events.Bus
	UpdateService     updater.Service // Optional
	PrometheusHandler http.Handler    // Optional Prometheus metrics handler
}

// apiConfig describes the OpenAPI document. No servers are listed so the
// docs use relative paths from any host.
func apiConfig() huma.Config {
	config := huma.DefaultConfig("rgbnode API", version.Get().Version)
	config.Info.Description = "Settings form and state of an RGB LED strip controller"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {Type: "http", Scheme: "basic"},
	}
	return config
}

// NewServer builds the mux and registers every route. Nothing listens
// until Start.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()
	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	api := humago.New(mux, apiConfig())

	eventBus := opts.EventBus
	if eventBus == nil {
		eventBus = events.New()
	}

	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		pump:     opts.Pump,
		device:   opts.Device,
		eventBus: eventBus,
		logger:   logging.GetLogger("api"),
	}

	// Order matters: CORS, logging, auth.
	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Outside huma, so scrapes skip auth.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	// No bundled frontend; the root shows the API docs.
	mux.Handle("GET /{$}", http.RedirectHandler("/docs", http.StatusFound))

	server.registerRoutes()

	return server
}

// GetMux returns the mux serving both huma and plain routes.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the huma API.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves HTTP on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("API listening", "addr", addr, "docs", "/docs")
	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down immediately. SSE connections would keep a
// graceful shutdown waiting forever.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping API server")
	return s.httpServer.Close()
}

// open marks an operation as reachable without credentials.
var open = []map[string][]string{}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Liveness probe. Does not touch the device loop.",
		Tags:        []string{"system"},
		Security:    open,
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{Status: "ok", Message: "rgbnode is running"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Build information of the running binary.",
		Tags:        []string{"system"},
		Security:    open,
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerFormRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
	s.registerMetricsRoutes()
	s.registerUpdateRoutes()
}
