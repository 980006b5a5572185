// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestLogsFiles(t *testing.T) {
	srv := mockServer(t, jsonHandler(http.StatusOK, []string{"app.log", "app.log.1"}))
	c := New(srv.URL)

	files, err := c.Logs.Files(context.Background(), "web")
	require.NoError(t, err)
	require.Equal(t, []string{"app.log", "app.log.1"}, files)
}

func TestLogsRead(t *testing.T) {
	var gotQuery string
	srv := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		jsonHandler(http.StatusOK, map[string][]string{"lines": {"one", "two"}})(w, r)
	})
	c := New(srv.URL)

	lines, err := c.Logs.Read(context.Background(), "web", "app.log", -10, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, lines)
	require.Contains(t, gotQuery, "start=-10")
	require.Contains(t, gotQuery, "num=10")
}

func TestLogsTimeRange(t *testing.T) {
	start, end := int64(1704067200000), int64(1704153600000)
	srv := mockServer(t, jsonHandler(http.StatusOK, TimeRange{Start: &start, End: &end}))
	c := New(srv.URL)

	tr, err := c.Logs.TimeRange(context.Background(), "web", "app.log")
	require.NoError(t, err)
	require.Equal(t, &start, tr.Start)
}

func TestLogsSearch(t *testing.T) {
	var gotBody map[string]interface{}
	srv := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		jsonHandler(http.StatusOK, SearchResult{Lines: []string{"err: boom"}, Total: 1})(w, r)
	})
	c := New(srv.URL)

	result, err := c.Logs.Search(context.Background(), "web", "app.log", SearchOptions{
		From: "2024-01-01T00:00:00Z", Substring: "err", Limit: 50,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "err", gotBody["search"])
	require.Equal(t, "app.log", gotBody["file"])
}

func TestLogsFollowDialsWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/logs/web", r.URL.Path)
		require.Equal(t, "app.log", r.URL.Query().Get("file"))
		require.Equal(t, "err", r.URL.Query().Get("search"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.WriteJSON(map[string]string{"line": "err: boom"})
	})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New(wsURL)

	conn, err := c.Logs.Follow(context.Background(), "web", "app.log", "err")
	require.NoError(t, err)
	defer conn.Close()

	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "err: boom", msg["line"])
}
