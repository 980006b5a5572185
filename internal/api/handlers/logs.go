// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/fleetops/dockside/internal/logengine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LogHandler implements the /api/services/:name/logs* and
// /ws/logs/:name surface, backed directly by the log engine facade.
type LogHandler struct {
	engine *logengine.Engine
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(engine *logengine.Engine) *LogHandler {
	return &LogHandler{engine: engine}
}

// Files handles GET /api/services/:name/logs/files.
func (h *LogHandler) Files(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	files, err := h.engine.ListLogFiles(name)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, files)
}

// Read handles GET /api/services/:name/logs/read?file=…&start=…&num=….
func (h *LogHandler) Read(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()
	file := q.Get("file")
	if file == "" {
		WriteError(w, http.StatusBadRequest, "missing file")
		return
	}

	start, err := strconv.Atoi(q.Get("start"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid start")
		return
	}
	num, err := strconv.Atoi(q.Get("num"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid num")
		return
	}

	lines, engErr := h.engine.ReadLines(r.Context(), name, file, start, num)
	if engErr != nil {
		WriteEngineError(w, engErr)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"lines": lines})
}

// TimeRange handles GET /api/services/:name/logs/time-range?file=….
func (h *LogHandler) TimeRange(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	file := r.URL.Query().Get("file")
	if file == "" {
		WriteError(w, http.StatusBadRequest, "missing file")
		return
	}

	tr, err := h.engine.GetTimeRange(r.Context(), name, file)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"start": tr.Start, "end": tr.End})
}

type searchRequest struct {
	File   string `json:"file"`
	From   string `json:"from"`
	To     string `json:"to"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Search string `json:"search"`
}

// Search handles POST /api/services/:name/logs/search.
func (h *LogHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.File == "" {
		WriteError(w, http.StatusBadRequest, "missing file")
		return
	}

	result, err := h.engine.ReadTimeRange(r.Context(), name, req.File, req.From, req.To, req.Limit, req.Offset, req.Search)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"lines": result.Lines, "total": result.Total})
}

// clientControlMessage is a message the WebSocket client may send to
// change the active filter or close the stream early.
type clientControlMessage struct {
	Type   string `json:"type"`
	Filter string `json:"filter"`
}

// Stream handles WS /ws/logs/:name?file=…&search=…: the server pushes
// one JSON message per line until the socket closes.
func (h *LogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()
	file := q.Get("file")
	if file == "" {
		WriteError(w, http.StatusBadRequest, "missing file")
		return
	}
	filter := q.Get("search")

	sub, cancel, err := h.engine.Follow(name, file, filter)
	if err != nil {
		WriteEngineError(w, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("logs stream %s/%s: upgrade failed: %v", name, file, err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	var once sync.Once
	closeDone := func() { once.Do(func() { close(done) }) }

	go func() {
		ticker := time.NewTicker(54 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		defer closeDone()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ctrl clientControlMessage
			if err := json.Unmarshal(msg, &ctrl); err != nil {
				continue
			}
			if ctrl.Type == "close" {
				return
			}
			// Any other message, including a filter update, is ignored:
			// Subscriber.filter is immutable, so the stream keeps the
			// query-string filter given at connect time.
		}
	}()

	for {
		select {
		case line, ok := <-sub.Lines():
			if !ok {
				return
			}
			writeMu.Lock()
			err := conn.WriteJSON(map[string]string{"line": line})
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
