// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigGet(t *testing.T) {
	srv := mockServer(t, jsonHandler(http.StatusOK, Config{
		ManifestVersion: "3.8",
		Env:             map[string]string{"PORT": "8080"},
	}))
	c := New(srv.URL)

	cfg, err := c.Config.Get(context.Background(), "web")
	require.NoError(t, err)
	require.Equal(t, "3.8", cfg.ManifestVersion)
	require.Equal(t, "8080", cfg.Env["PORT"])
}

func TestConfigGetData(t *testing.T) {
	srv := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("version: \"3.8\"\nservices:\n  web: {}\n"))
	})
	c := New(srv.URL)

	data, err := c.Config.GetData(context.Background(), "web")
	require.NoError(t, err)
	require.Contains(t, string(data), "services:")
}

func TestConfigSetEnv(t *testing.T) {
	var gotReq setEnvRequest
	srv := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/services/web/config/env", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		jsonHandler(http.StatusOK, map[string]bool{"success": true})(w, r)
	})
	c := New(srv.URL)

	err := c.Config.SetEnv(context.Background(), "web", map[string]string{"PORT": "9090"})
	require.NoError(t, err)
	require.Equal(t, "9090", gotReq.EnvData["PORT"])
}
