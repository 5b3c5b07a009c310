package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/easel-ai/easel/pkg/canvas"
)

// ApplyChanges applies a batch of delta operations in one transaction.
// The batch is all-or-nothing: any failure rolls the whole batch back.
func (s *Store) ApplyChanges(ctx context.Context, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		if err := applyChange(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

func applyChange(ctx context.Context, tx *sql.Tx, c Change) error {
	switch c.Type {
	case ChangeAddNode, ChangeUpdateNode:
		if c.Node == nil {
			return fmt.Errorf("%s change without node", c.Type)
		}
		data, err := marshalNodeData(c.Node)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes (id, type, position_x, position_y, data, selectable)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				type = excluded.type,
				position_x = excluded.position_x,
				position_y = excluded.position_y,
				data = excluded.data,
				selectable = excluded.selectable
		`, c.Node.ID, string(c.Node.Type), c.Node.Position.X, c.Node.Position.Y, data, c.Node.Selectable)
		if err != nil {
			return fmt.Errorf("failed to upsert node %s: %w", c.Node.ID, err)
		}

	case ChangeMoveNode:
		if c.Position == nil {
			return fmt.Errorf("move_node change without position")
		}
		// Missing rows are a no-op: the node may have been deleted while
		// the move was still queued.
		_, err := tx.ExecContext(ctx, `
			UPDATE nodes SET position_x = ?, position_y = ? WHERE id = ?
		`, c.Position.X, c.Position.Y, c.NodeID)
		if err != nil {
			return fmt.Errorf("failed to move node %s: %w", c.NodeID, err)
		}

	case ChangeRemoveNode:
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, c.NodeID); err != nil {
			return fmt.Errorf("failed to remove node %s: %w", c.NodeID, err)
		}

	case ChangeAddEdge:
		if c.Edge == nil {
			return fmt.Errorf("add_edge change without edge")
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edges (id, source, target, source_handle, target_handle)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				source = excluded.source,
				target = excluded.target,
				source_handle = excluded.source_handle,
				target_handle = excluded.target_handle
		`, c.Edge.ID, c.Edge.Source, c.Edge.Target, c.Edge.SourceHandle, c.Edge.TargetHandle)
		if err != nil {
			return fmt.Errorf("failed to upsert edge %s: %w", c.Edge.ID, err)
		}

	case ChangeRemoveEdge:
		if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, c.EdgeID); err != nil {
			return fmt.Errorf("failed to remove edge %s: %w", c.EdgeID, err)
		}

	default:
		return fmt.Errorf("unknown change type %q", c.Type)
	}
	return nil
}

// SaveNodes replaces the durable node set with the given one: every
// node present is upserted, every durable row absent from the set is
// deleted. Runs in a single transaction.
func (s *Store) SaveNodes(ctx context.Context, nodes []*canvas.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		keep[n.ID] = true
		if err := applyChange(ctx, tx, AddNode(n)); err != nil {
			return err
		}
	}

	if err := deleteAbsent(ctx, tx, "nodes", keep); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit node snapshot: %w", err)
	}
	return nil
}

// SaveEdges is the snapshot path for edges, with the same replace
// semantics as SaveNodes.
func (s *Store) SaveEdges(ctx context.Context, edges []*canvas.Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]bool, len(edges))
	for _, e := range edges {
		keep[e.ID] = true
		if err := applyChange(ctx, tx, AddEdge(e)); err != nil {
			return err
		}
	}

	if err := deleteAbsent(ctx, tx, "edges", keep); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit edge snapshot: %w", err)
	}
	return nil
}

// deleteAbsent garbage-collects rows whose id is not in keep.
func deleteAbsent(ctx context.Context, tx *sql.Tx, table string, keep map[string]bool) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s`, table))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
			return fmt.Errorf("failed to delete stale %s row %s: %w", table, id, err)
		}
	}
	return nil
}

// LoadNodes reads every node row. An empty store yields an empty slice,
// not an error; callers seed a default graph.
func (s *Store) LoadNodes(ctx context.Context) ([]*canvas.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, position_x, position_y, data, selectable FROM nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*canvas.Node
	for rows.Next() {
		var (
			n          canvas.Node
			typ, data  string
			selectable bool
		)
		if err := rows.Scan(&n.ID, &typ, &n.Position.X, &n.Position.Y, &data, &selectable); err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		n.Type = canvas.NodeType(typ)
		n.Selectable = selectable
		if err := unmarshalNodeData(&n, data); err != nil {
			return nil, err
		}
		nodes = append(nodes, &n)
	}
	return nodes, rows.Err()
}

// LoadEdges reads every edge row.
func (s *Store) LoadEdges(ctx context.Context) ([]*canvas.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, target, COALESCE(source_handle, ''), COALESCE(target_handle, '') FROM edges
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*canvas.Edge
	for rows.Next() {
		var e canvas.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// marshalNodeData serializes the variant payload matching the node type.
func marshalNodeData(n *canvas.Node) (string, error) {
	var payload any
	switch n.Type {
	case canvas.NodePrompt:
		payload = n.Prompt
	case canvas.NodeImage:
		payload = n.Image
	default:
		return "", fmt.Errorf("unknown node type %q", n.Type)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal node %s data: %w", n.ID, err)
	}
	return string(b), nil
}

func unmarshalNodeData(n *canvas.Node, data string) error {
	switch n.Type {
	case canvas.NodePrompt:
		n.Prompt = &canvas.PromptData{}
		if err := json.Unmarshal([]byte(data), n.Prompt); err != nil {
			return fmt.Errorf("failed to unmarshal prompt node %s: %w", n.ID, err)
		}
	case canvas.NodeImage:
		n.Image = &canvas.ImageData{}
		if err := json.Unmarshal([]byte(data), n.Image); err != nil {
			return fmt.Errorf("failed to unmarshal image node %s: %w", n.ID, err)
		}
	default:
		return fmt.Errorf("unknown node type %q", n.Type)
	}
	return nil
}
