// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ConfigClient provides access to /api/services/:name/config*.
type ConfigClient struct {
	c *Client
}

// Get returns the parsed manifest version and environment map.
func (cc *ConfigClient) Get(ctx context.Context, service string) (*Config, error) {
	data, err := cc.c.get(ctx, "/api/services/"+service+"/config")
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// GetData returns the raw docker-compose.yml content.
func (cc *ConfigClient) GetData(ctx context.Context, service string) ([]byte, error) {
	return cc.c.get(ctx, "/api/services/"+service+"/config-data")
}

type setEnvRequest struct {
	EnvData map[string]string `json:"envData"`
}

// SetEnv merges envData into the service's .env file.
func (cc *ConfigClient) SetEnv(ctx context.Context, service string, envData map[string]string) error {
	_, err := cc.c.postJSON(ctx, "/api/services/"+service+"/config/env", setEnvRequest{EnvData: envData})
	return err
}
