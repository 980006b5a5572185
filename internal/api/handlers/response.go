// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers implements the HTTP handlers for the dockside API
// surface: service listing/power, config/env editing, and log
// inspection (read/time-range/search/follow).
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fleetops/dockside/internal/logengine"
)

// WriteJSON writes data as a 200-shaped JSON body with the given
// status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes `{"error": message}` with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteEngineError maps a *logengine.Error to an HTTP status: 400 for
// validation, 499 for client cancellation, 500 otherwise (IO failure or
// a truncated result, the latter carrying a hint to narrow the range).
func WriteEngineError(w http.ResponseWriter, err error) {
	switch logengine.KindOf(err) {
	case logengine.KindValidation:
		WriteError(w, http.StatusBadRequest, err.Error())
	case logengine.KindCancelled:
		WriteError(w, 499, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
