// Package flux implements the Black Forest Labs image API family
// (flux-pro, flux-kontext). The API is asynchronous: a submit call
// returns a polling URL which eventually yields a sample URL.
package flux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/easel-ai/easel/pkg/provider"
)

const (
	pollInterval = 2 * time.Second
	maxPolls     = 60
)

type Provider struct {
	client *http.Client
}

// New creates the Flux provider.
func New(client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Provider{client: client}
}

func (p *Provider) ID() provider.ID {
	return provider.Flux
}

type submitResponse struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url"`
	Detail     string `json:"detail"`
}

type pollResponse struct {
	Status string `json:"status"`
	Result *struct {
		Sample string `json:"sample"`
	} `json:"result"`
	Detail string `json:"detail"`
}

// Generate submits one task per requested image and polls each to
// completion. Flux tasks produce a single sample each.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	n := req.N
	if n < 1 {
		n = 1
	}

	var result provider.Result
	for i := 0; i < n; i++ {
		sample, err := p.generateOne(ctx, req)
		if err != nil {
			return provider.Result{}, err
		}
		result.Images = append(result.Images, sample)
	}
	return result, nil
}

func (p *Provider) generateOne(ctx context.Context, req provider.Request) (string, error) {
	body := map[string]any{
		"prompt": req.Prompt,
	}
	if w, h, ok := parseSize(req.Size); ok {
		body["width"] = w
		body["height"] = h
	}
	if len(req.SourceImages) > 0 {
		body["input_image"] = stripDataURI(req.SourceImages[0])
	}
	for k, v := range req.Params {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(req.Endpoint, "/") + "/" + req.Model

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-key", req.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("flux request failed: %w", err)
	}
	submitted, err := decodeJSON[submitResponse](resp)
	if err != nil {
		return "", err
	}
	if submitted.Detail != "" {
		return "", fmt.Errorf("flux: %s", submitted.Detail)
	}
	if submitted.PollingURL == "" {
		return "", fmt.Errorf("flux returned no polling URL")
	}

	return p.poll(ctx, submitted.PollingURL, req.APIKey)
}

func (p *Provider) poll(ctx context.Context, url, apiKey string) (string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("x-key", apiKey)

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return "", fmt.Errorf("flux poll failed: %w", err)
		}
		status, err := decodeJSON[pollResponse](resp)
		if err != nil {
			return "", err
		}

		switch status.Status {
		case "Ready":
			if status.Result == nil || status.Result.Sample == "" {
				return "", fmt.Errorf("flux task ready but no sample")
			}
			return status.Result.Sample, nil
		case "Error", "Content Moderated", "Request Moderated":
			if status.Detail != "" {
				return "", fmt.Errorf("flux: %s", status.Detail)
			}
			return "", fmt.Errorf("flux task failed: %s", status.Status)
		}
		// Pending / Task not found yet: keep polling.
	}
	return "", fmt.Errorf("flux task timeout after %s", time.Duration(maxPolls)*pollInterval)
}

func decodeJSON[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()
	var out T
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("failed to read flux response: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("malformed flux response (HTTP %d)", resp.StatusCode)
	}
	return out, nil
}

func parseSize(size string) (w, h int, ok bool) {
	if size == "" || size == "auto" {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
		return 0, 0, false
	}
	return w, h, true
}

func stripDataURI(payload string) string {
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		return payload[i+1:]
	}
	return payload
}
