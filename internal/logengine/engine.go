// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logengine implements the log inspection engine: random-access
// reads by line index, binary-search time-range slicing, a
// rotation-aware time-range metadata cache, and live follow across
// rotations.
package logengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ServiceResolver validates a service name and resolves its log
// directory. It is implemented by the service enumerator (a
// collaborator outside this package).
type ServiceResolver interface {
	LogDir(service string) (string, error)
}

// Config configures an Engine.
type Config struct {
	Resolver     ServiceResolver
	Clock        *Clock
	SoftCapBytes int64
	Cache        CacheOptions
}

// Engine is the single entry point composing the engine's components
// behind its public read/search/follow operations.
type Engine struct {
	resolver     ServiceResolver
	clock        *Clock
	softCapBytes int64
	cache        CacheOptions
	followers    *FollowerRegistry
}

// New creates an Engine.
func New(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Engine{
		resolver:     cfg.Resolver,
		clock:        clock,
		softCapBytes: cfg.SoftCapBytes,
		cache:        cfg.Cache,
		followers:    NewFollowerRegistry(clock),
	}
}

// Shutdown cancels every follower and releases resources. Call on
// process teardown.
func (e *Engine) Shutdown() {
	e.followers.Shutdown()
}

// resolveFile validates service and file, returning the absolute path
// to the log file inside <root>/<service>/logs.
func (e *Engine) resolveFile(service, file string) (string, error) {
	if file == "" {
		return "", validationErr("resolveFile", "", fmt.Errorf("missing file"))
	}
	if strings.ContainsAny(file, "/\\") || file == ".." || strings.Contains(file, "..") {
		return "", validationErr("resolveFile", file, fmt.Errorf("invalid file name"))
	}
	dir, err := e.resolver.LogDir(service)
	if err != nil {
		return "", validationErr("resolveFile", service, err)
	}
	return filepath.Join(dir, file), nil
}

// isActiveFile reports whether name is an active (still-growing) log
// file; anything else is treated as an immutable rotated snapshot.
func isActiveFile(name string) bool {
	return strings.HasSuffix(name, ".log")
}

// ListLogFiles returns the log file names for a service, sorted by name
// in ascending order, filtering out cache sidecars and pruning sidecars whose
// companion log file no longer exists.
func (e *Engine) ListLogFiles(service string) ([]string, error) {
	dir, err := e.resolver.LogDir(service)
	if err != nil {
		return nil, validationErr("listLogFiles", service, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioErr("listLogFiles", service, err)
	}

	var names []string
	present := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".timecache") {
			continue
		}
		names = append(names, name)
		present[name] = true
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".timecache") {
			continue
		}
		companion := strings.TrimSuffix(name, ".timecache")
		if !present[companion] {
			os.Remove(filepath.Join(dir, name))
		}
	}

	sort.Strings(names)
	return names, nil
}

// ReadLines implements the line-index read. Cancelling ctx aborts the
// read at its next scan step and yields no partial lines.
func (e *Engine) ReadLines(ctx context.Context, service, file string, startLine, numLines int) ([]string, error) {
	path, err := e.resolveFile(service, file)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr("readLines", file, err)
	}
	defer f.Close()

	return readLines(ctx, file, f, startLine, numLines)
}

// ReadTimeRange implements the time-range read. Cancelling ctx aborts
// the read at its next I/O suspension point and yields no partial
// result.
func (e *Engine) ReadTimeRange(ctx context.Context, service, file string, fromStr, toStr string, limit, offset int, substring string) (RangeResult, error) {
	path, err := e.resolveFile(service, file)
	if err != nil {
		return RangeResult{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return RangeResult{}, ioErr("readTimeRange", file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return RangeResult{}, ioErr("readTimeRange", file, err)
	}

	q := RangeQuery{Limit: limit, Offset: offset, Substring: substring, SoftCapBytes: e.softCapBytes}
	if fromStr != "" {
		ms, err := e.clock.ParseRequestTime(fromStr)
		if err != nil {
			return RangeResult{}, validationErr("readTimeRange", file, err)
		}
		q.From, q.HasFrom = ms, true
	}
	if toStr != "" {
		ms, err := e.clock.ParseRequestTime(toStr)
		if err != nil {
			return RangeResult{}, validationErr("readTimeRange", file, err)
		}
		q.To, q.HasTo = ms, true
	}

	return readRange(ctx, file, f, info.Size(), q, e.clock)
}

// GetTimeRange implements the cached metadata read. Cancelling ctx
// aborts a recompute pass at its next ReadAt.
func (e *Engine) GetTimeRange(ctx context.Context, service, file string) (TimeRange, error) {
	path, err := e.resolveFile(service, file)
	if err != nil {
		return TimeRange{}, err
	}
	return getTimeRange(ctx, path, !isActiveFile(file), e.clock, e.cache)
}

// Follow implements live-follow registration. The
// returned Cancel is idempotent.
func (e *Engine) Follow(service, file, filter string) (*Subscriber, Cancel, error) {
	path, err := e.resolveFile(service, file)
	if err != nil {
		return nil, nil, err
	}
	if !isActiveFile(file) {
		return nil, nil, validationErr("follow", file, fmt.Errorf("cannot follow a rotated file"))
	}
	return e.followers.Subscribe(path, filter)
}

// ActiveFollowers reports how many distinct files currently have live
// subscribers, for status/diagnostics endpoints.
func (e *Engine) ActiveFollowers() int {
	return e.followers.ActiveFollowers()
}
