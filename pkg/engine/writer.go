package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/easel-ai/easel/pkg/canvas"
	"github.com/easel-ai/easel/pkg/store"
)

const (
	// DeltaFlushDelay coalesces high-frequency mutations (drags) before
	// they hit the durable store.
	DeltaFlushDelay = 150 * time.Millisecond
	// SnapshotFlushDelay schedules the full-collection backstop save.
	SnapshotFlushDelay = 300 * time.Millisecond
)

// GraphWriter owns the authoritative in-memory graph and flushes it to
// durable storage on its own debounced schedule. Mutations go through
// its methods, never at the graph directly, so the flushed state is
// always the current state rather than a stale closure capture.
//
// Flushes run on their own timers and are not forced on shutdown; the
// small loss window on abrupt close is an accepted tradeoff.
type GraphWriter struct {
	st *store.Store

	mu      sync.Mutex
	graph   *canvas.Graph
	pending []store.Change

	deltaTimer    *time.Timer
	snapshotTimer *time.Timer
	deltaDelay    time.Duration
	snapshotDelay time.Duration
	closed        bool
}

// NewGraphWriter wraps a graph loaded via LoadGraph.
func NewGraphWriter(st *store.Store, g *canvas.Graph) *GraphWriter {
	w := &GraphWriter{
		st:            st,
		graph:         g,
		deltaDelay:    DeltaFlushDelay,
		snapshotDelay: SnapshotFlushDelay,
	}
	CanvasNodes.Set(float64(len(g.Nodes)))
	return w
}

// LoadGraph reads the persisted graph. Load errors are logged and
// swallowed; the caller always gets a usable graph, seeded with the
// default canvas when the store is empty or unreadable.
func LoadGraph(ctx context.Context, st *store.Store) *canvas.Graph {
	nodes, err := st.LoadNodes(ctx)
	if err != nil {
		log.Printf("engine: failed to load nodes, seeding default canvas: %v", err)
		return canvas.DefaultGraph()
	}
	edges, err := st.LoadEdges(ctx)
	if err != nil {
		log.Printf("engine: failed to load edges: %v", err)
		edges = nil
	}

	if len(nodes) == 0 {
		return canvas.DefaultGraph()
	}

	g := canvas.NewGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
	g.PruneOrphanEdges()
	return g
}

// AddNode inserts a node and queues its persistence.
func (w *GraphWriter) AddNode(n *canvas.Node) {
	w.mutate(func() {
		w.graph.AddNode(n.Clone())
		w.pending = append(w.pending, store.AddNode(n.Clone()))
	})
}

// UpdateNode replaces a node's full row. Updating a node that was
// deleted in the meantime is a no-op.
func (w *GraphWriter) UpdateNode(n *canvas.Node) {
	w.mutate(func() {
		if _, ok := w.graph.Nodes[n.ID]; !ok {
			return
		}
		w.graph.AddNode(n.Clone())
		w.pending = append(w.pending, store.UpdateNode(n.Clone()))
	})
}

// MoveNode rewrites a node's position (drag path).
func (w *GraphWriter) MoveNode(id string, pos canvas.Position) {
	w.mutate(func() {
		n, ok := w.graph.Nodes[id]
		if !ok {
			return
		}
		n.Position = pos
		w.pending = append(w.pending, store.MoveNode(id, pos))
	})
}

// RemoveNode deletes a node.
func (w *GraphWriter) RemoveNode(id string) {
	w.mutate(func() {
		w.graph.RemoveNode(id)
		w.pending = append(w.pending, store.RemoveNode(id))
	})
}

// AddEdge inserts an edge.
func (w *GraphWriter) AddEdge(e *canvas.Edge) {
	w.mutate(func() {
		w.graph.AddEdge(e.Clone())
		w.pending = append(w.pending, store.AddEdge(e.Clone()))
	})
}

// RemoveEdge deletes an edge.
func (w *GraphWriter) RemoveEdge(id string) {
	w.mutate(func() {
		w.graph.RemoveEdge(id)
		w.pending = append(w.pending, store.RemoveEdge(id))
	})
}

// Node returns a copy of a node.
func (w *GraphWriter) Node(id string) (*canvas.Node, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.graph.Nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Nodes returns copies of every node.
func (w *GraphWriter) Nodes() []*canvas.Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*canvas.Node, 0, len(w.graph.Nodes))
	for _, n := range w.graph.Nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Edges returns copies of every edge.
func (w *GraphWriter) Edges() []*canvas.Edge {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*canvas.Edge, 0, len(w.graph.Edges))
	for _, e := range w.graph.Edges {
		out = append(out, e.Clone())
	}
	return out
}

// LiveImageIDs snapshots the blob references held by the graph.
func (w *GraphWriter) LiveImageIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graph.LiveImageIDs()
}

// Reset swaps in a fresh graph (clear-all path) and snapshots it
// immediately rather than waiting out the debounce.
func (w *GraphWriter) Reset(ctx context.Context, g *canvas.Graph) {
	w.mu.Lock()
	w.graph = g
	w.pending = nil
	CanvasNodes.Set(float64(len(g.Nodes)))
	w.mu.Unlock()

	if err := w.st.SaveNodes(ctx, w.Nodes()); err != nil {
		log.Printf("engine: failed to snapshot nodes after reset: %v", err)
	}
	if err := w.st.SaveEdges(ctx, w.Edges()); err != nil {
		log.Printf("engine: failed to snapshot edges after reset: %v", err)
	}
}

// Close stops the flush timers. Pending writes inside the debounce
// window are dropped, matching the accepted loss window on close.
func (w *GraphWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.deltaTimer != nil {
		w.deltaTimer.Stop()
	}
	if w.snapshotTimer != nil {
		w.snapshotTimer.Stop()
	}
}

func (w *GraphWriter) mutate(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	fn()
	CanvasNodes.Set(float64(len(w.graph.Nodes)))
	w.schedule()
}

// schedule arms both debounce timers. Called with the lock held.
func (w *GraphWriter) schedule() {
	if w.deltaTimer == nil {
		w.deltaTimer = time.AfterFunc(w.deltaDelay, w.flushDeltas)
	} else {
		w.deltaTimer.Reset(w.deltaDelay)
	}
	if w.snapshotTimer == nil {
		w.snapshotTimer = time.AfterFunc(w.snapshotDelay, w.flushSnapshot)
	} else {
		w.snapshotTimer.Reset(w.snapshotDelay)
	}
}

// flushDeltas writes the coalesced change batch. Storage errors are
// logged, not surfaced: the snapshot backstop repairs missed deltas.
func (w *GraphWriter) flushDeltas() {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := w.st.ApplyChanges(context.Background(), batch); err != nil {
		log.Printf("engine: delta flush failed (%d changes): %v", len(batch), err)
	}
}

// flushSnapshot writes the full collections as the consistency
// backstop against missed deltas.
func (w *GraphWriter) flushSnapshot() {
	nodes := w.Nodes()
	edges := w.Edges()

	if err := w.st.SaveNodes(context.Background(), nodes); err != nil {
		log.Printf("engine: node snapshot failed: %v", err)
	}
	if err := w.st.SaveEdges(context.Background(), edges); err != nil {
		log.Printf("engine: edge snapshot failed: %v", err)
	}
}

// FlushNow forces both write paths synchronously. Tests use it to avoid
// waiting out the debounce windows.
func (w *GraphWriter) FlushNow(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) > 0 {
		if err := w.st.ApplyChanges(ctx, batch); err != nil {
			return err
		}
	}
	if err := w.st.SaveNodes(ctx, w.Nodes()); err != nil {
		return err
	}
	return w.st.SaveEdges(ctx, w.Edges())
}
