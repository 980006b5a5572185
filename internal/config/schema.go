// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and validation for
// the dockside server.
package config

// Config is the root configuration structure for dockside.
type Config struct {
	Root     string         `json:"root"`
	Server   ServerConfig   `json:"server"`
	Timezone string         `json:"timezone"`
	Cache    CacheConfig    `json:"cache"`
	Logs     LogsConfig     `json:"logs"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CacheConfig configures the time-range metadata cache's head/tail scan
// windows.
type CacheConfig struct {
	ScanHeadBytes int64 `json:"scan_head_bytes"`
	ScanTailBytes int64 `json:"scan_tail_bytes"`
}

// LogsConfig configures the log inspection engine.
type LogsConfig struct {
	SoftCapBytes  int64  `json:"soft_cap_bytes"`
	Monotonicity  string `json:"monotonicity"` // "assume" | "validate" | "linear-fallback"
}

// LoggingConfig configures the server's own structured logging.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" | "console"
}
