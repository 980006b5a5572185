// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
)

// LogClient provides access to a service's log files: listing,
// random-access reads, time-range search, and live follow.
type LogClient struct {
	c *Client
}

// Files lists the log files available for service.
func (l *LogClient) Files(ctx context.Context, service string) ([]string, error) {
	data, err := l.c.get(ctx, "/api/services/"+service+"/logs/files")
	if err != nil {
		return nil, err
	}
	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("parse files: %w", err)
	}
	return files, nil
}

// Read returns numLines lines of file starting at startLine (negative
// counts from the end).
func (l *LogClient) Read(ctx context.Context, service, file string, startLine, numLines int) ([]string, error) {
	q := url.Values{"file": {file}, "start": {fmt.Sprint(startLine)}, "num": {fmt.Sprint(numLines)}}
	data, err := l.c.get(ctx, "/api/services/"+service+"/logs/read?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var resp struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse read result: %w", err)
	}
	return resp.Lines, nil
}

// TimeRange returns the earliest and latest timestamps known for file.
func (l *LogClient) TimeRange(ctx context.Context, service, file string) (*TimeRange, error) {
	q := url.Values{"file": {file}}
	data, err := l.c.get(ctx, "/api/services/"+service+"/logs/time-range?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var tr TimeRange
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parse time range: %w", err)
	}
	return &tr, nil
}

// SearchOptions configures a time-range log search.
type SearchOptions struct {
	From      string
	To        string
	Limit     int
	Offset    int
	Substring string
}

// Search runs a time-range/substring query against file.
func (l *LogClient) Search(ctx context.Context, service, file string, opts SearchOptions) (*SearchResult, error) {
	body := map[string]interface{}{
		"file":   file,
		"from":   opts.From,
		"to":     opts.To,
		"limit":  opts.Limit,
		"offset": opts.Offset,
		"search": opts.Substring,
	}
	data, err := l.c.postJSON(ctx, "/api/services/"+service+"/logs/search", body)
	if err != nil {
		return nil, err
	}
	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse search result: %w", err)
	}
	return &result, nil
}

// Follow opens a live-tailing WebSocket connection for file, optionally
// filtered by substring. The caller is responsible for closing the
// returned connection.
func (l *LogClient) Follow(ctx context.Context, service, file, substring string) (*websocket.Conn, error) {
	u, err := url.Parse(l.c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/logs/" + service
	q := url.Values{"file": {file}}
	if substring != "" {
		q.Set("search", substring)
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial log stream: %w", err)
	}
	return conn, nil
}
