// Package server provides the local HTTP control API for mudra.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/quality"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Status is the pipeline state reported by /api/health.
type Status struct {
	Enabled bool   `json:"enabled"`
	Running bool   `json:"running"`
	Frames  uint64 `json:"frames"`
	Hands   int    `json:"hands"`
}

// Config holds the server configuration. Every component is optional; the
// routes that need a missing component are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Registry  *plugin.Registry
	Externals *plugin.Manager
	Quality   *quality.Controller
	Monitor   *quality.Monitor
	Bus       *event.Bus
	Status    func() Status
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  config.Clock.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		gestures := api.NewGestureHandler(s.config.Store)
		s.mux.Handle("/api/gestures", gestures)
		s.mux.Handle("/api/gestures/", gestures)

		// A nil *Manager must not become a non-nil Resolver.
		var resolver plugin.Resolver
		if s.config.Externals != nil {
			resolver = s.config.Externals
		}
		actions := api.NewActionHandler(s.config.Store, resolver)
		s.mux.Handle("/api/actions", actions)
		s.mux.Handle("/api/actions/", actions)
	}

	if s.config.Quality != nil {
		q := api.NewQualityHandler(s.config.Quality, s.config.Monitor)
		s.mux.Handle("/api/quality", q)
		s.mux.Handle("/api/quality/", q)
	}

	if s.config.Registry != nil {
		p := api.NewPluginHandler(s.config.Registry, s.config.Externals)
		s.mux.Handle("/api/plugins", p)
		s.mux.Handle("/api/plugins/", p)
	}

	if s.config.Bus != nil {
		s.events = NewEventsHandler(s.config.Bus, s.config.Clock, s.config.Logger)
		s.mux.Handle("/api/events", s.events)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": s.config.Clock.Now().Sub(s.start).String(),
	}
	if s.config.Status != nil {
		response["pipeline"] = s.config.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Clients returns the number of connected event stream clients.
func (s *Server) Clients() int {
	if s.events == nil {
		return 0
	}
	return s.events.Clients()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects event stream clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	return err
}

// Close disconnects every event stream client.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}
