// Package client is a thin SDK for the easel daemon's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a running easel daemon.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a new client.
// endpoint defaults to "http://127.0.0.1:8140" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8140"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			// Generation calls block until the provider finishes.
			Timeout: 5 * time.Minute,
		},
	}
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/v1/health", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// GetGraph fetches the full canvas state.
func (c *Client) GetGraph(ctx context.Context) (Graph, error) {
	var g Graph
	if err := c.getJSON(ctx, "/v1/graph", &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// Generate submits a generation request and blocks until the daemon
// has reconciled the result onto the canvas.
func (c *Client) Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error) {
	if opts.Prompt == "" || opts.Model == "" {
		return GenerateResult{}, fmt.Errorf("prompt and model are required")
	}
	var result GenerateResult
	if err := c.postJSON(ctx, "/v1/generate", opts, &result); err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

// GetModels fetches the model catalog.
func (c *Client) GetModels(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.getJSON(ctx, "/v1/models", &models); err != nil {
		return nil, err
	}
	return models, nil
}

// ClearCanvas wipes nodes, edges, and images. Credentials survive.
func (c *Client) ClearCanvas(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint+"/v1/graph", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon error (HTTP %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
