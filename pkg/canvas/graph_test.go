package canvas

import (
	"strings"
	"testing"
)

func TestImageRefClassification(t *testing.T) {
	cases := []struct {
		ref    string
		blob   bool
		data   bool
		remote bool
	}{
		{"img_3f2a", true, false, false},
		{"data:image/png;base64,iVBOR", false, true, false},
		{"https://images.unsplash.com/photo-1", false, false, true},
		{"http://example.com/a.png", false, false, true},
		{"node_abc", false, false, false},
	}
	for _, c := range cases {
		r := ImageRef(c.ref)
		if r.IsBlobID() != c.blob || r.IsDataURI() != c.data || r.IsRemoteURL() != c.remote {
			t.Errorf("ref %q: got blob=%v data=%v remote=%v", c.ref, r.IsBlobID(), r.IsDataURI(), r.IsRemoteURL())
		}
	}
}

func TestNewID(t *testing.T) {
	a := NewID("node")
	b := NewID("node")
	if !strings.HasPrefix(a, "node_") {
		t.Errorf("unexpected id %q", a)
	}
	if a == b {
		t.Errorf("ids should be unique, got %q twice", a)
	}
}

func TestPruneOrphanEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "a", Type: NodePrompt})
	g.AddNode(&Node{ID: "b", Type: NodeImage})
	g.AddEdge(&Edge{ID: "e1", Source: "a", Target: "b"})
	g.AddEdge(&Edge{ID: "e2", Source: "a", Target: "gone"})
	g.AddEdge(&Edge{ID: "e3", Source: "gone", Target: "b"})

	if got := g.PruneOrphanEdges(); got != 2 {
		t.Fatalf("pruned %d edges, want 2", got)
	}
	if _, ok := g.Edges["e1"]; !ok {
		t.Errorf("valid edge e1 was pruned")
	}
}

func TestLiveImageIDs(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{
		ID:   "n1",
		Type: NodeImage,
		Image: &ImageData{
			Source:  SourceGenerated,
			ImageID: "img_result",
			Generation: &GenerationRecord{
				SourceImageIDs: []string{"img_src1", "img_src2"},
				MaskImageID:    "img_mask",
			},
		},
	})
	g.AddNode(&Node{ID: "n2", Type: NodePrompt})

	live := g.LiveImageIDs()
	want := map[string]bool{"img_result": true, "img_src1": true, "img_src2": true, "img_mask": true}
	if len(live) != len(want) {
		t.Fatalf("live ids %v, want %d entries", live, len(want))
	}
	for _, id := range live {
		if !want[id] {
			t.Errorf("unexpected live id %q", id)
		}
	}
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := &Node{
		ID:       "n1",
		Type:     NodeImage,
		Position: Position{X: 1, Y: 2},
		Image: &ImageData{
			Source: SourceGenerated,
			Generation: &GenerationRecord{
				Prompt:         "a fox",
				SourceImageIDs: []string{"img_a"},
				Params:         map[string]string{"size": "1024x1024"},
			},
		},
	}

	c := n.Clone()
	c.Image.Generation.SourceImageIDs[0] = "mutated"
	c.Image.Generation.Params["size"] = "512x512"
	c.Position.X = 999

	if n.Image.Generation.SourceImageIDs[0] != "img_a" {
		t.Errorf("clone shares source image slice")
	}
	if n.Image.Generation.Params["size"] != "1024x1024" {
		t.Errorf("clone shares params map")
	}
	if n.Position.X != 1 {
		t.Errorf("clone shares position")
	}
}

func TestDefaultGraph(t *testing.T) {
	g := DefaultGraph()
	if len(g.Nodes) != 1 {
		t.Fatalf("default graph has %d nodes, want 1", len(g.Nodes))
	}
	for _, n := range g.Nodes {
		if n.Type != NodePrompt || n.Prompt == nil || n.Prompt.Prompt == "" {
			t.Errorf("default node should be a filled prompt node, got %+v", n)
		}
	}
}
