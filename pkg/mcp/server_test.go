package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func fakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/graph", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"nodes":[{"id":"node_1","type":"prompt"}],"edges":[]}`))
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"gpt-image-1","provider":"openai","max_images":4}]`))
	})
	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] == "not-a-model" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false, "error": "Unsupported model", "placeholder_ids": []string{"node_p"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"placeholder_ids": []string{"node_p"},
			"image_ids":       []string{"img_r"},
		})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestReadCanvasResource(t *testing.T) {
	s := NewServer(fakeDaemon(t).URL)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "easel://canvas"},
	}
	result, err := s.handleReadCanvas(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadCanvas: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(result))
	}

	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", result[0])
	}
	if content.MIMEType != "application/json" {
		t.Errorf("mime type = %q", content.MIMEType)
	}
	var graph map[string]any
	if err := json.Unmarshal([]byte(content.Text), &graph); err != nil {
		t.Fatalf("resource text not JSON: %v", err)
	}
}

func TestReadModelsResource(t *testing.T) {
	s := NewServer(fakeDaemon(t).URL)

	result, err := s.handleReadModels(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "easel://models"},
	})
	if err != nil {
		t.Fatalf("handleReadModels: %v", err)
	}
	content := result[0].(mcp.TextResourceContents)
	if !strings.Contains(content.Text, "gpt-image-1") {
		t.Errorf("model catalog missing: %s", content.Text)
	}
}

func TestGenerateImageTool(t *testing.T) {
	s := NewServer(fakeDaemon(t).URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "generate_image",
			Arguments: map[string]any{
				"prompt": "a fox",
				"model":  "gpt-image-1",
				"n":      float64(1),
			},
		},
	}
	result, err := s.handleGenerateImage(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGenerateImage: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}
	text := result.Content[0].(mcp.TextContent)
	if !strings.Contains(text.Text, "node_p") || !strings.Contains(text.Text, "img_r") {
		t.Errorf("result should name the created nodes and images: %s", text.Text)
	}
}

func TestGenerateImageToolFailure(t *testing.T) {
	s := NewServer(fakeDaemon(t).URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "generate_image",
			Arguments: map[string]any{
				"prompt": "a fox",
				"model":  "not-a-model",
			},
		},
	}
	result, err := s.handleGenerateImage(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGenerateImage: %v", err)
	}
	if !result.IsError {
		t.Errorf("daemon-reported failure should become an error result")
	}
}

func TestClearCanvasTool(t *testing.T) {
	s := NewServer(fakeDaemon(t).URL)

	result, err := s.handleClearCanvas(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleClearCanvas: %v", err)
	}
	if result.IsError {
		t.Errorf("expected success")
	}
}
