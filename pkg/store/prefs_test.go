package store

import (
	"context"
	"testing"

	"github.com/easel-ai/easel/pkg/canvas"
)

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, found, err := s.GetPreference(ctx, PrefTutorialDismissed)
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if found {
		t.Errorf("unset preference reported as found")
	}

	if err := s.SetPreference(ctx, PrefTutorialDismissed, "true"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if err := s.SetPreference(ctx, PrefTutorialDismissed, "false"); err != nil {
		t.Fatalf("SetPreference (overwrite): %v", err)
	}

	value, found, err := s.GetPreference(ctx, PrefTutorialDismissed)
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if !found || value != "false" {
		t.Errorf("got (%q, %v), want (\"false\", true)", value, found)
	}
}

func TestCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key, err := s.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "" {
		t.Errorf("missing credential should be empty, got %q", key)
	}

	if err := s.SetCredential(ctx, "openai", "sk-test"); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	key, err = s.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("got %q, want sk-test", key)
	}

	if err := s.DeleteCredential(ctx, "openai"); err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}
	key, err = s.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "" {
		t.Errorf("deleted credential still present: %q", key)
	}
}

func TestClearAllPreservesPreferencesAndCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ApplyChanges(ctx, []Change{AddNode(promptNode("node_1", 0, 0))}); err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}
	if err := s.SaveEdges(ctx, []*canvas.Edge{{ID: "edge_1", Source: "a", Target: "b"}}); err != nil {
		t.Fatalf("SaveEdges: %v", err)
	}
	if err := s.SetPreference(ctx, PrefLastSelectedModel, "dall-e-3"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if err := s.SetCredential(ctx, "gemini", "key-123"); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	nodes, _ := s.LoadNodes(ctx)
	edges, _ := s.LoadEdges(ctx)
	if len(nodes) != 0 || len(edges) != 0 {
		t.Errorf("graph not cleared: %d nodes, %d edges", len(nodes), len(edges))
	}
	value, found, err := s.GetPreference(ctx, PrefLastSelectedModel)
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if !found || value != "dall-e-3" {
		t.Errorf("preferences must survive ClearAll, got %q (found=%v)", value, found)
	}

	key, err := s.Credential(ctx, "gemini")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "key-123" {
		t.Errorf("credentials must survive ClearAll, got %q", key)
	}
}
