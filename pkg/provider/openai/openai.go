// Package openai implements the OpenAI image API family (gpt-image-1,
// dall-e-3).
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/easel-ai/easel/pkg/provider"
)

type Provider struct {
	client *http.Client
}

// New creates the OpenAI provider. A nil client gets a default with a
// generous timeout; image generation is slow.
func New(client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Provider{client: client}
}

func (p *Provider) ID() provider.ID {
	return provider.OpenAI
}

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	if req.Mode == provider.ModeEdit {
		return p.edit(ctx, req)
	}
	return p.generate(ctx, req)
}

type imageResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) generate(ctx context.Context, req provider.Request) (provider.Result, error) {
	body := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"n":      req.N,
	}
	if req.Size != "" && req.Size != "auto" {
		body["size"] = req.Size
	}
	for k, v := range req.Params {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(req.Endpoint, "/")
	if !strings.HasSuffix(url, "/generations") {
		url += "/generations"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return provider.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	return p.do(httpReq)
}

// edit posts multipart form data: the images API expects file parts for
// source and mask images, not JSON.
func (p *Provider) edit(ctx context.Context, req provider.Request) (provider.Result, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	_ = w.WriteField("model", req.Model)
	_ = w.WriteField("prompt", req.Prompt)
	_ = w.WriteField("n", strconv.Itoa(req.N))
	if req.Size != "" && req.Size != "auto" {
		_ = w.WriteField("size", req.Size)
	}
	for k, v := range req.Params {
		_ = w.WriteField(k, v)
	}

	for i, img := range req.SourceImages {
		if err := writeImagePart(w, "image[]", fmt.Sprintf("source_%d.png", i), img); err != nil {
			return provider.Result{}, err
		}
	}
	if req.MaskImage != "" {
		if err := writeImagePart(w, "mask", "mask.png", req.MaskImage); err != nil {
			return provider.Result{}, err
		}
	}
	if err := w.Close(); err != nil {
		return provider.Result{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := strings.TrimRight(strings.TrimSuffix(strings.TrimRight(req.Endpoint, "/"), "/generations"), "/") + "/edits"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return provider.Result{}, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	return p.do(httpReq)
}

func (p *Provider) do(httpReq *http.Request) (provider.Result, error) {
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.Result{}, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Result{}, fmt.Errorf("failed to read openai response: %w", err)
	}

	var parsed imageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return provider.Result{}, fmt.Errorf("malformed openai response (HTTP %d)", resp.StatusCode)
	}
	if parsed.Error != nil {
		return provider.Result{}, fmt.Errorf("openai: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.Result{}, fmt.Errorf("openai: HTTP %d", resp.StatusCode)
	}

	var result provider.Result
	for _, d := range parsed.Data {
		switch {
		case d.B64JSON != "":
			result.Images = append(result.Images, d.B64JSON)
		case d.URL != "":
			result.Images = append(result.Images, d.URL)
		}
		if d.RevisedPrompt != "" && result.RevisedPrompt == "" {
			result.RevisedPrompt = d.RevisedPrompt
		}
	}
	if len(result.Images) == 0 {
		return provider.Result{}, fmt.Errorf("openai returned no images")
	}
	return result, nil
}

func writeImagePart(w *multipart.Writer, field, filename, payload string) error {
	data := payload
	if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("failed to decode image payload: %w", err)
	}
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(decoded); err != nil {
		return fmt.Errorf("failed to write image part: %w", err)
	}
	return nil
}
