package engine

import (
	"context"
	"sync"
	"time"

	"github.com/easel-ai/easel/pkg/canvas"
	"github.com/easel-ai/easel/pkg/layout"
)

const (
	// composeDelay debounces selection-driven composition on pointer
	// release so drag-selection ticks don't create duplicate nodes.
	composeDelay = 250 * time.Millisecond
	// placeholderGap separates a prompt node from its result column.
	placeholderGap = 60
)

// Controller reacts to user actions: it places placeholders, dispatches
// generation, and reconciles provider results back onto the exact
// placeholder identities. Requests from different prompt nodes run
// concurrently and reconcile independently.
type Controller struct {
	writer *GraphWriter
	orch   *Orchestrator
	placer *layout.Engine

	mu           sync.Mutex
	composeTimer *time.Timer
}

// NewController wires the lifecycle controller.
func NewController(writer *GraphWriter, orch *Orchestrator, placer *layout.Engine) *Controller {
	return &Controller{writer: writer, orch: orch, placer: placer}
}

// Generate runs one request through the full placeholder lifecycle and
// blocks until it is reconciled. promptNodeID, when set, names the
// originating prompt node; each placeholder gets an edge back to it.
// The returned node IDs are the placeholder identities.
func (c *Controller) Generate(ctx context.Context, req Request, promptNodeID string) ([]string, Result) {
	n := req.N
	if n < 1 {
		n = 1
	}

	anchor := req.TargetPosition
	if anchor == (canvas.Position{}) && promptNodeID != "" {
		if prompt, ok := c.writer.Node(promptNodeID); ok {
			w, _ := canvas.NodePrompt.Footprint()
			anchor = canvas.Position{X: prompt.Position.X + w + placeholderGap, Y: prompt.Position.Y}
		}
	}

	positions := c.placer.FindPositions(anchor, canvas.NodeImage, n, c.writer.Nodes())

	placeholderIDs := make([]string, 0, n)
	for _, pos := range positions {
		ph := &canvas.Node{
			ID:         canvas.NewID("node"),
			Type:       canvas.NodeImage,
			Position:   pos,
			Selectable: true,
			Image:      &canvas.ImageData{Source: canvas.SourceGenerated, IsLoading: true},
		}
		c.writer.AddNode(ph)
		placeholderIDs = append(placeholderIDs, ph.ID)

		if promptNodeID != "" {
			c.writer.AddEdge(&canvas.Edge{
				ID:     canvas.NewID("edge"),
				Source: promptNodeID,
				Target: ph.ID,
			})
		}
	}

	req.N = n
	req.PlaceholderID = placeholderIDs[0]
	req.TargetPosition = positions[0]

	result := c.orch.Process(ctx, req)
	c.reconcile(placeholderIDs, positions, result)
	return placeholderIDs, result
}

// reconcile maps provider results onto placeholders by positional
// index. On failure every placeholder of this request is demoted to an
// error card. Reconciling against a deleted placeholder is a no-op.
func (c *Controller) reconcile(placeholderIDs []string, positions []canvas.Position, result Result) {
	if !result.Success {
		for _, id := range placeholderIDs {
			ph, ok := c.writer.Node(id)
			if !ok {
				continue
			}
			ph.Image = &canvas.ImageData{
				Source:    canvas.SourceGenerated,
				IsLoading: false,
				Error:     result.Error,
			}
			c.writer.UpdateNode(ph)
		}
		return
	}

	for i, node := range result.Nodes {
		if i < len(placeholderIDs) {
			// Result order matches placeholder creation order; keep the
			// placeholder's identity and position, replace its data.
			updated := node.Clone()
			updated.ID = placeholderIDs[i]
			updated.Position = positions[i]
			c.writer.UpdateNode(updated)
			continue
		}
		// The provider returned more images than we made placeholders
		// for; place the extras individually.
		extra := node.Clone()
		pos, resolved := c.placer.FindPosition(node.Position, canvas.NodeImage, c.writer.Nodes())
		if !resolved {
			PlacementUnresolved.Inc()
		}
		extra.Position = pos
		c.writer.AddNode(extra)
	}

	// Placeholders beyond the result count have nothing to show.
	for i := len(result.Nodes); i < len(placeholderIDs); i++ {
		c.writer.RemoveNode(placeholderIDs[i])
	}
}

// PlaceNode finds a free position for a new node of the given type.
func (c *Controller) PlaceNode(anchor canvas.Position, t canvas.NodeType) canvas.Position {
	pos, resolved := c.placer.FindPosition(anchor, t, c.writer.Nodes())
	if !resolved {
		PlacementUnresolved.Inc()
	}
	return pos
}

// SelectionReleased schedules composition for the given selection,
// debounced on pointer-up. Successive calls within the window replace
// the pending selection.
func (c *Controller) SelectionReleased(selectedIDs []string) {
	ids := append([]string(nil), selectedIDs...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.composeTimer != nil {
		c.composeTimer.Stop()
	}
	c.composeTimer = time.AfterFunc(composeDelay, func() {
		c.Compose(ids)
	})
}

// Compose synthesizes a prompt node from two or more selected image
// nodes: the new node sits above their centroid, pre-populated with the
// selected images as sources, with an edge from every image to it.
// Selections with fewer than two resolvable images are ignored.
func (c *Controller) Compose(selectedIDs []string) *canvas.Node {
	type picked struct {
		id  string
		ref canvas.ImageRef
		pos canvas.Position
	}
	var images []picked
	for _, id := range selectedIDs {
		n, ok := c.writer.Node(id)
		if !ok || n.Type != canvas.NodeImage || n.Image == nil {
			continue
		}
		var ref canvas.ImageRef
		switch {
		case n.Image.ImageID != "":
			ref = canvas.ImageRef(n.Image.ImageID)
		case n.Image.ImageURL != "":
			ref = canvas.ImageRef(n.Image.ImageURL)
		default:
			continue
		}
		images = append(images, picked{id: id, ref: ref, pos: n.Position})
	}
	if len(images) < 2 {
		return nil
	}

	var cx, cy float64
	for _, img := range images {
		cx += img.pos.X
		cy += img.pos.Y
	}
	cx /= float64(len(images))
	cy /= float64(len(images))

	_, promptH := canvas.NodePrompt.Footprint()
	anchor := canvas.Position{X: cx, Y: cy - promptH - 80}
	pos, resolved := c.placer.FindPosition(anchor, canvas.NodePrompt, c.writer.Nodes())
	if !resolved {
		PlacementUnresolved.Inc()
	}

	refs := make([]canvas.ImageRef, 0, len(images))
	for _, img := range images {
		refs = append(refs, img.ref)
	}

	prompt := &canvas.Node{
		ID:         canvas.NewID("node"),
		Type:       canvas.NodePrompt,
		Position:   pos,
		Selectable: true,
		Prompt:     &canvas.PromptData{SourceImages: refs},
	}
	c.writer.AddNode(prompt)

	for _, img := range images {
		c.writer.AddEdge(&canvas.Edge{
			ID:     canvas.NewID("edge"),
			Source: img.id,
			Target: prompt.ID,
		})
	}
	return prompt
}
