package canvas

import "github.com/google/uuid"

// Graph is the in-memory node/edge state for one canvas.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges map[string]*Edge `json:"edges"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge inserts or replaces an edge.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges[e.ID] = e
}

// RemoveNode deletes a node. Edges referencing it are left in place;
// orphaned edges are tolerated and cleaned up opportunistically.
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
}

// RemoveEdge deletes an edge.
func (g *Graph) RemoveEdge(id string) {
	delete(g.Edges, id)
}

// PruneOrphanEdges drops edges whose endpoints no longer exist and
// returns how many were removed.
func (g *Graph) PruneOrphanEdges() int {
	removed := 0
	for id, e := range g.Edges {
		if _, ok := g.Nodes[e.Source]; !ok {
			delete(g.Edges, id)
			removed++
			continue
		}
		if _, ok := g.Nodes[e.Target]; !ok {
			delete(g.Edges, id)
			removed++
		}
	}
	return removed
}

// NodeList returns the nodes as a slice.
func (g *Graph) NodeList() []*Node {
	out := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n)
	}
	return out
}

// EdgeList returns the edges as a slice.
func (g *Graph) EdgeList() []*Edge {
	out := make([]*Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, e)
	}
	return out
}

// LiveImageIDs collects every blob ID referenced by an image node or a
// generation record, for orphan cleanup in the blob store.
func (g *Graph) LiveImageIDs() []string {
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		img := n.Image
		if img == nil {
			continue
		}
		if img.ImageID != "" {
			seen[img.ImageID] = true
		}
		if gen := img.Generation; gen != nil {
			for _, id := range gen.SourceImageIDs {
				seen[id] = true
			}
			if gen.MaskImageID != "" {
				seen[gen.MaskImageID] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// NewID returns a fresh node or edge identifier.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// DefaultGraph seeds a first-run canvas with a single prompt node.
func DefaultGraph() *Graph {
	g := NewGraph()
	g.AddNode(&Node{
		ID:         NewID("node"),
		Type:       NodePrompt,
		Position:   Position{X: 100, Y: 100},
		Selectable: true,
		Prompt: &PromptData{
			Prompt: "A watercolor fox in a misty forest",
			Model:  "gpt-image-1",
		},
	})
	return g
}
