// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetops/dockside/internal/compose"
	"github.com/fleetops/dockside/internal/orchestrator"
)

// ServiceHandler implements the /api/services surface.
type ServiceHandler struct {
	enumerator   *compose.Enumerator
	orchestrator *orchestrator.Orchestrator
	liveness     func(ctx context.Context, service string) (string, error) // "Up" | "Down"
}

// NewServiceHandler creates a ServiceHandler.
func NewServiceHandler(enumerator *compose.Enumerator, orch *orchestrator.Orchestrator, liveness func(context.Context, string) (string, error)) *ServiceHandler {
	return &ServiceHandler{enumerator: enumerator, orchestrator: orch, liveness: liveness}
}

// List handles GET /api/services.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.enumerator.List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = s.Name
	}
	WriteJSON(w, http.StatusOK, names)
}

// Status handles GET /api/services/:name/status.
func (h *ServiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, err := h.enumerator.LogDir(name); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := h.liveness(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

type powerRequest struct {
	Action string `json:"action"`
}

type powerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// toOrchestratorAction maps the wire-level action, including "down" as
// an alias for "stop", to the orchestrator's Action type.
func toOrchestratorAction(action string) (orchestrator.Action, bool) {
	switch action {
	case "start":
		return orchestrator.ActionStart, true
	case "stop", "down":
		return orchestrator.ActionStop, true
	case "restart":
		return orchestrator.ActionRestart, true
	default:
		return "", false
	}
}

// Power handles POST /api/services/:name/power.
func (h *ServiceHandler) Power(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, err := h.enumerator.LogDir(name); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req powerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, ok := toOrchestratorAction(req.Action)
	if !ok {
		WriteError(w, http.StatusBadRequest, "unknown power action: "+req.Action)
		return
	}

	if err := h.orchestrator.Perform(r.Context(), name, action); err != nil {
		WriteJSON(w, http.StatusOK, powerResponse{Success: false, Message: err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, powerResponse{Success: true, Message: "ok"})
}
