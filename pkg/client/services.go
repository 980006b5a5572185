// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ServiceClient provides access to /api/services.
type ServiceClient struct {
	c *Client
}

// List returns the names of every discovered service.
func (s *ServiceClient) List(ctx context.Context) ([]string, error) {
	data, err := s.c.get(ctx, "/api/services")
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse services: %w", err)
	}
	return names, nil
}

// Status reports a service's observed "Up"/"Down" state.
func (s *ServiceClient) Status(ctx context.Context, name string) (*ServiceStatus, error) {
	data, err := s.c.get(ctx, "/api/services/"+name+"/status")
	if err != nil {
		return nil, err
	}
	var status ServiceStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	return &status, nil
}

type powerRequest struct {
	Action string `json:"action"`
}

func (s *ServiceClient) power(ctx context.Context, name, action string) (*PowerResult, error) {
	data, err := s.c.postJSON(ctx, "/api/services/"+name+"/power", powerRequest{Action: action})
	if err != nil {
		return nil, err
	}
	var result PowerResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse power result: %w", err)
	}
	return &result, nil
}

// Start brings a service up.
func (s *ServiceClient) Start(ctx context.Context, name string) (*PowerResult, error) {
	return s.power(ctx, name, "start")
}

// Stop brings a service down.
func (s *ServiceClient) Stop(ctx context.Context, name string) (*PowerResult, error) {
	return s.power(ctx, name, "stop")
}

// Restart restarts a service.
func (s *ServiceClient) Restart(ctx context.Context, name string) (*PowerResult, error) {
	return s.power(ctx, name, "restart")
}
