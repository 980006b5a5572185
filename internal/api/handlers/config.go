// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/fleetops/dockside/internal/compose"
)

// ConfigHandler implements the /api/services/:name/config* surface.
type ConfigHandler struct {
	enumerator *compose.Enumerator
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(enumerator *compose.Enumerator) *ConfigHandler {
	return &ConfigHandler{enumerator: enumerator}
}

type configResponse struct {
	ManifestVersion string            `json:"manifestVersion"`
	Env             map[string]string `json:"env"`
}

// Get handles GET /api/services/:name/config: the parsed manifest
// version marker plus the current environment key/value map.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	manifestPath, err := h.enumerator.ManifestPath(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	version, err := compose.ParseManifestVersion(manifestPath)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	envPath, err := h.enumerator.EnvPath(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	lines, err := compose.ReadEnvFile(envPath)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, configResponse{ManifestVersion: version.String(), Env: compose.EnvMap(lines)})
}

// GetData handles GET /api/services/:name/config-data: the raw
// docker-compose.yml content, verbatim.
func (h *ConfigHandler) GetData(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	manifestPath, err := h.enumerator.ManifestPath(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type setEnvRequest struct {
	EnvData map[string]string `json:"envData"`
}

// SetEnv handles POST /api/services/:name/config/env: merges envData
// into the existing .env file, preserving comments and key order for
// untouched keys.
func (h *ConfigHandler) SetEnv(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	envPath, err := h.enumerator.EnvPath(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req setEnvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := compose.ReadEnvFile(envPath)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for k, v := range req.EnvData {
		lines = compose.SetEnvValue(lines, k, v)
	}
	if err := compose.WriteEnvFile(envPath, lines); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
