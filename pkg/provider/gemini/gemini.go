// Package gemini implements the Google generative image family. The
// concrete variant (text-to-image, single edit, multi edit) is chosen
// by the orchestrator from the source-image count; this package only
// dispatches whatever variant it is handed.
package gemini

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

type Provider struct {
	client *http.Client
}

// New creates the Gemini provider.
func New(client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Provider{client: client}
}

func (p *Provider) ID() provider.ID {
	return provider.Gemini
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []part `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate calls generateContent once per requested image; the API
// yields one image per call.
func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	n := req.N
	if n < 1 {
		n = 1
	}

	var result provider.Result
	for i := 0; i < n; i++ {
		img, err := p.generateOne(ctx, req)
		if err != nil {
			return provider.Result{}, err
		}
		result.Images = append(result.Images, img)
	}
	return result, nil
}

func (p *Provider) generateOne(ctx context.Context, req provider.Request) (string, error) {
	parts := []part{{Text: req.Prompt}}
	for _, img := range req.SourceImages {
		mime, data := splitPayload(img)
		parts = append(parts, part{InlineData: &inlineData{MimeType: mime, Data: data}})
	}

	var body generateRequest
	body.Contents = make([]struct {
		Parts []part `json:"parts"`
	}, 1)
	body.Contents[0].Parts = parts

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimRight(req.Endpoint, "/"), req.Model, req.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed gemini response (HTTP %d)", resp.StatusCode)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: HTTP %d", resp.StatusCode)
	}

	for _, c := range parsed.Candidates {
		for _, pt := range c.Content.Parts {
			if pt.InlineData != nil && pt.InlineData.Data != "" {
				return pt.InlineData.Data, nil
			}
		}
	}
	return "", fmt.Errorf("gemini returned no image data")
}

// splitPayload separates a data URI into MIME type and base64 body.
// Bare base64 is assumed to be PNG.
func splitPayload(payload string) (mime, data string) {
	if strings.HasPrefix(payload, "data:") {
		rest := payload[len("data:"):]
		if i := strings.Index(rest, ";base64,"); i > 0 {
			return rest[:i], rest[i+len(";base64,"):]
		}
	}
	return "image/png", payload
}
