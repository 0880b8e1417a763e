package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/odatascope/odatascope/internal/fetch"
	"github.com/odatascope/odatascope/internal/store"
	"github.com/odatascope/odatascope/internal/ws"
)

// Server is the REST API server exposing the metadata explorer over HTTP.
type Server struct {
	store   *store.Store
	fetcher *fetch.Fetcher
	hub     *ws.Hub
	logger  *slog.Logger
	port    int
	server  *http.Server
	devMode bool
}

// Option configures the API server.
type Option func(*Server)

// WithDevMode enables CORS for development.
func WithDevMode(dev bool) Option {
	return func(s *Server) {
		s.devMode = dev
	}
}

// WithHub sets the WebSocket hub.
func WithHub(hub *ws.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithFetcher overrides the metadata fetcher, mainly for tests.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(s *Server) {
		s.fetcher = f
	}
}

// New creates a new API server around a metadata store.
func New(st *store.Store, logger *slog.Logger, port int, opts ...Option) *Server {
	s := &Server{
		store:   st,
		fetcher: fetch.New(),
		logger:  logger,
		port:    port,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var handler http.Handler = s.Handler()
	if s.devMode {
		handler = s.corsMiddleware(handler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: handler,
	}

	s.logger.Info("starting api server", "port", s.port, "dev_mode", s.devMode)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the route mux without the outer middleware. Exposed so
// tests can drive the API through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.requestLogger(mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /api/load", s.handleLoad)
	mux.HandleFunc("GET /api/entities", s.handleListEntities)
	mux.HandleFunc("GET /api/entities/{name}", s.handleGetEntity)
	mux.HandleFunc("GET /api/relationships", s.handleRelationships)
	mux.HandleFunc("GET /api/diagram", s.handleDiagram)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/diagram/root", s.handleDiagramRoot)
	mux.HandleFunc("POST /api/diagram/toggle", s.handleDiagramToggle)
	mux.HandleFunc("POST /api/diagram/reset", s.handleDiagramReset)
	mux.HandleFunc("POST /api/navigate", s.handleNavigate)

	if s.hub != nil {
		mux.HandleFunc("/api/ws", s.hub.HandleWebSocket)
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
