package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/easel-ai/easel/pkg/provider"
)

func TestGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"b64_json": "aW1hZ2Ux", "revised_prompt": "a detailed fox"},
				{"url": "https://cdn.example.com/img2.png"},
			},
		})
	}))
	defer srv.Close()

	p := New(srv.Client())
	result, err := p.Generate(context.Background(), provider.Request{
		Model:    "gpt-image-1",
		Endpoint: srv.URL,
		APIKey:   "sk-test",
		Prompt:   "a fox",
		Mode:     provider.ModeGenerate,
		N:        2,
		Size:     "1024x1024",
		Params:   map[string]string{"quality": "high"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(result.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(result.Images))
	}
	if result.Images[0] != "aW1hZ2Ux" || result.Images[1] != "https://cdn.example.com/img2.png" {
		t.Errorf("image payloads mismatch: %v", result.Images)
	}
	if result.RevisedPrompt != "a detailed fox" {
		t.Errorf("revised prompt mismatch: %q", result.RevisedPrompt)
	}

	if gotBody["model"] != "gpt-image-1" || gotBody["size"] != "1024x1024" || gotBody["quality"] != "high" {
		t.Errorf("request body mismatch: %v", gotBody)
	}
}

func TestGenerateOmitsAutoSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["size"]; ok {
			t.Errorf("size=auto must not be forwarded")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "aW1hZ2U="}},
		})
	}))
	defer srv.Close()

	p := New(srv.Client())
	if _, err := p.Generate(context.Background(), provider.Request{
		Endpoint: srv.URL, Prompt: "a fox", N: 1, Size: "auto",
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestEditSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/edits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart form: %v", err)
		}
		if got := r.FormValue("prompt"); got != "add a hat" {
			t.Errorf("prompt = %q", got)
		}
		if files := r.MultipartForm.File["image[]"]; len(files) != 2 {
			t.Errorf("got %d image parts, want 2", len(files))
		}
		if masks := r.MultipartForm.File["mask"]; len(masks) != 1 {
			t.Errorf("got %d mask parts, want 1", len(masks))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "ZWRpdGVk"}},
		})
	}))
	defer srv.Close()

	p := New(srv.Client())
	result, err := p.Generate(context.Background(), provider.Request{
		Model:    "gpt-image-1",
		Endpoint: srv.URL,
		Prompt:   "add a hat",
		Mode:     provider.ModeEdit,
		N:        1,
		SourceImages: []string{
			"data:image/png;base64,aW1hZ2Ux",
			"aW1hZ2Uy",
		},
		MaskImage: "bWFzaw==",
	})
	if err != nil {
		t.Fatalf("Generate (edit): %v", err)
	}
	if len(result.Images) != 1 || result.Images[0] != "ZWRpdGVk" {
		t.Errorf("edit result mismatch: %v", result.Images)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided"},
		})
	}))
	defer srv.Close()

	p := New(srv.Client())
	_, err := p.Generate(context.Background(), provider.Request{
		Endpoint: srv.URL, Prompt: "a fox", N: 1,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("provider message should pass through: %v", err)
	}
}
