// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api wires the HTTP surface: router, middleware chain, and
// handlers.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetops/dockside/internal/api/handlers"
	"github.com/fleetops/dockside/internal/api/middleware"
	"github.com/fleetops/dockside/internal/compose"
	"github.com/fleetops/dockside/internal/logengine"
	"github.com/fleetops/dockside/internal/orchestrator"
)

// Dependencies holds every collaborator the router's handlers need.
type Dependencies struct {
	Enumerator   *compose.Enumerator
	Orchestrator *orchestrator.Orchestrator
	Engine       *logengine.Engine
	// Liveness reports a service's observed "Up"/"Down" status. Callers
	// typically pass Orchestrator.Status directly.
	Liveness func(ctx context.Context, service string) (string, error)
}

// NewRouter builds the full dockside HTTP router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	serviceHandler := handlers.NewServiceHandler(deps.Enumerator, deps.Orchestrator, deps.Liveness)
	configHandler := handlers.NewConfigHandler(deps.Enumerator)
	logHandler := handlers.NewLogHandler(deps.Engine)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/services", serviceHandler.List).Methods("GET")
	api.HandleFunc("/services/{name}/status", serviceHandler.Status).Methods("GET")
	api.HandleFunc("/services/{name}/power", serviceHandler.Power).Methods("POST")
	api.HandleFunc("/services/{name}/config", configHandler.Get).Methods("GET")
	api.HandleFunc("/services/{name}/config-data", configHandler.GetData).Methods("GET")
	api.HandleFunc("/services/{name}/config/env", configHandler.SetEnv).Methods("POST")
	api.HandleFunc("/services/{name}/logs/files", logHandler.Files).Methods("GET")
	api.HandleFunc("/services/{name}/logs/read", logHandler.Read).Methods("GET")
	api.HandleFunc("/services/{name}/logs/time-range", logHandler.TimeRange).Methods("GET")
	api.HandleFunc("/services/{name}/logs/search", logHandler.Search).Methods("POST")

	r.HandleFunc("/ws/logs/{name}", logHandler.Stream).Methods("GET")

	return r
}

// ServerConfig holds the bind address for the HTTP server.
type ServerConfig struct {
	Host string
	Port int
}

// Server wraps the router in a long-lived http.Server for lifecycle
// management by internal/app.
type Server struct {
	cfg    ServerConfig
	router *mux.Router
	server *http.Server
}

// NewServer creates a Server from router dependencies.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	return &Server{cfg: cfg, router: NewRouter(deps)}
}

// Router returns the underlying router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.server = &http.Server{Addr: addr, Handler: s.router}
	log.Printf("API server listening on http://%s", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
