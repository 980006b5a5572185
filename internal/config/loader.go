// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches for a config file in the current directory,
// looking for dockside.hjson first, then dockside.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"dockside.hjson",
		"dockside.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for dockside.hjson, dockside.json)")
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		if env := os.Getenv("CONTAINER_DIR"); env != "" {
			cfg.Root = env
		} else {
			cfg.Root = "."
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}

	if cfg.Timezone == "" {
		if env := os.Getenv("TZ"); env != "" {
			cfg.Timezone = env
		}
		// An empty Timezone after this means "use time.Local", resolved
		// by the caller that turns Config into a logengine.Clock.
	}

	if cfg.Cache.ScanHeadBytes == 0 {
		cfg.Cache.ScanHeadBytes = envInt64("CACHE_SCAN_HEAD_BYTES", 50*1024)
	}
	if cfg.Cache.ScanTailBytes == 0 {
		cfg.Cache.ScanTailBytes = envInt64("CACHE_SCAN_TAIL_BYTES", 100*1024)
	}

	if cfg.Logs.SoftCapBytes == 0 {
		cfg.Logs.SoftCapBytes = envInt64("LOG_SOFT_CAP_BYTES", 64*1024*1024)
	}
	if cfg.Logs.Monotonicity == "" {
		cfg.Logs.Monotonicity = "assume"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// envInt64 reads an integer override from the environment, falling back
// to def when the variable is unset or unparseable.
func envInt64(name string, def int64) int64 {
	env := os.Getenv(name)
	if env == "" {
		return def
	}
	v, err := strconv.ParseInt(env, 10, 64)
	if err != nil {
		return def
	}
	return v
}
