package store

import "github.com/easel-ai/easel/pkg/canvas"

// ChangeType identifies one delta operation against the graph tables.
type ChangeType string

const (
	ChangeAddNode    ChangeType = "add_node"
	ChangeMoveNode   ChangeType = "move_node"
	ChangeUpdateNode ChangeType = "update_node"
	ChangeRemoveNode ChangeType = "remove_node"
	ChangeAddEdge    ChangeType = "add_edge"
	ChangeRemoveEdge ChangeType = "remove_edge"
)

// Change is a single delta operation. Exactly the fields relevant to
// its Type are set. Every operation is idempotent: adds upsert, moves
// and updates of missing rows are no-ops, removes of missing rows are
// no-ops.
type Change struct {
	Type     ChangeType
	Node     *canvas.Node     // add_node, update_node
	NodeID   string           // move_node, remove_node
	Position *canvas.Position // move_node
	Edge     *canvas.Edge     // add_edge
	EdgeID   string           // remove_edge
}

// AddNode builds a node upsert change.
func AddNode(n *canvas.Node) Change {
	return Change{Type: ChangeAddNode, Node: n}
}

// MoveNode builds a position-only update change.
func MoveNode(id string, pos canvas.Position) Change {
	return Change{Type: ChangeMoveNode, NodeID: id, Position: &pos}
}

// UpdateNode builds a full-row update change.
func UpdateNode(n *canvas.Node) Change {
	return Change{Type: ChangeUpdateNode, Node: n}
}

// RemoveNode builds a node delete change.
func RemoveNode(id string) Change {
	return Change{Type: ChangeRemoveNode, NodeID: id}
}

// AddEdge builds an edge upsert change.
func AddEdge(e *canvas.Edge) Change {
	return Change{Type: ChangeAddEdge, Edge: e}
}

// RemoveEdge builds an edge delete change.
func RemoveEdge(id string) Change {
	return Change{Type: ChangeRemoveEdge, EdgeID: id}
}

// Well-known preference keys.
const (
	PrefTutorialDismissed = "tutorial_dismissed"
	PrefLastSelectedModel = "last_selected_model"
)
