package api

import (
	"context"
	"net/http"
)

// SystemStatus is the /health and /ready response shape.
type SystemStatus struct {
	Status string `json:"status"`
}

// SystemInfo describes the backend build.
type SystemInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Env     string `json:"env"`
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) (*SystemStatus, error) {
	var out SystemStatus
	if err := c.do(ctx, http.MethodGet, "system.health", "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready probes backend readiness.
func (c *Client) Ready(ctx context.Context) (*SystemStatus, error) {
	var out SystemStatus
	if err := c.do(ctx, http.MethodGet, "system.ready", "/ready", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info returns backend build metadata.
func (c *Client) Info(ctx context.Context) (*SystemInfo, error) {
	var out SystemInfo
	if err := c.do(ctx, http.MethodGet, "system.info", "/info", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
