package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/v1/graph", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{
				"nodes": []map[string]any{{"id": "node_1", "type": "prompt"}},
				"edges": []map[string]any{},
			})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		var req GenerateOptions
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model == "not-a-model" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unsupported model: not-a-model"})
			return
		}
		json.NewEncoder(w).Encode(GenerateResult{
			Success:        true,
			PlaceholderIDs: []string{"node_p1"},
			ImageIDs:       []string{"img_r1"},
		})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Model{{ID: "gpt-image-1", Provider: "openai", MaxImages: 4}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPing(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)
	status, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q", status.Status)
	}
}

func TestGetGraph(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)
	g, err := c.GetGraph(context.Background())
	if err != nil {
		t.Fatalf("GetGraph: %v", err)
	}
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "node_1" {
		t.Errorf("graph mismatch: %+v", g)
	}
}

func TestGenerate(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)

	result, err := c.Generate(context.Background(), GenerateOptions{Prompt: "a fox", Model: "gpt-image-1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Success || len(result.ImageIDs) != 1 {
		t.Errorf("result mismatch: %+v", result)
	}

	if _, err := c.Generate(context.Background(), GenerateOptions{Model: "gpt-image-1"}); err == nil {
		t.Errorf("missing prompt should fail client-side")
	}

	_, err = c.Generate(context.Background(), GenerateOptions{Prompt: "a fox", Model: "not-a-model"})
	if err == nil || !strings.Contains(err.Error(), "Unsupported model") {
		t.Errorf("daemon error not surfaced: %v", err)
	}
}

func TestGetModels(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)
	models, err := c.GetModels(context.Background())
	if err != nil {
		t.Fatalf("GetModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "gpt-image-1" {
		t.Errorf("models mismatch: %+v", models)
	}
}

func TestClearCanvas(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)
	if err := c.ClearCanvas(context.Background()); err != nil {
		t.Fatalf("ClearCanvas: %v", err)
	}
}

func TestWaitForDaemon(t *testing.T) {
	c := NewClient(fakeDaemon(t).URL)
	if err := c.WaitForDaemon(context.Background(), 3); err != nil {
		t.Fatalf("WaitForDaemon: %v", err)
	}

	down := NewClient("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := down.WaitForDaemon(ctx, 5); err == nil {
		t.Errorf("unreachable daemon should error")
	}
}
