package layout

import (
	"math"

	"github.com/easel-ai/easel/pkg/canvas"
)

const (
	// DefaultMaxAttempts bounds the spiral search. Past the ceiling the
	// last candidate is returned even if it still overlaps.
	DefaultMaxAttempts = 50
	// DefaultAngleStep is the spiral increment in radians.
	DefaultAngleStep = 0.5
	// DefaultGridSize is the snap grid in canvas units.
	DefaultGridSize = 20
	// radiusPerRadian controls how fast the spiral widens.
	radiusPerRadian = 28
	// multiSpacing is the gap between simultaneously placed nodes.
	multiSpacing = 40
)

// Engine finds non-overlapping positions for new nodes. The zero value
// is not usable; construct with NewEngine.
type Engine struct {
	maxAttempts int
	angleStep   float64
	gridSize    float64
}

// NewEngine creates a placement engine with the default search bounds.
func NewEngine() *Engine {
	return &Engine{
		maxAttempts: DefaultMaxAttempts,
		angleStep:   DefaultAngleStep,
		gridSize:    DefaultGridSize,
	}
}

// FindPosition returns a position near anchor where a node of type t
// does not overlap any node in existing. The second return value is
// false when the attempt ceiling was reached while still overlapping;
// the position is then a best-effort candidate, not an error.
func (e *Engine) FindPosition(anchor canvas.Position, t canvas.NodeType, existing []*canvas.Node) (canvas.Position, bool) {
	w, h := t.Footprint()

	// Overlap is checked on the snapped candidate so snapping can never
	// reintroduce a collision after the search accepts a point.
	candidate := e.snap(anchor)
	if !e.overlaps(candidate, w, h, existing) {
		return candidate, true
	}

	angle := 0.0
	for i := 0; i < e.maxAttempts; i++ {
		angle += e.angleStep
		radius := angle * radiusPerRadian
		candidate = e.snap(canvas.Position{
			X: anchor.X + radius*math.Cos(angle),
			Y: anchor.Y + radius*math.Sin(angle),
		})
		if !e.overlaps(candidate, w, h, existing) {
			return candidate, true
		}
	}
	return candidate, false
}

// FindPositions lays out count nodes around anchor: a single point for
// one, a horizontal row for up to three, a square-ish grid beyond.
// Each layout point is then resolved through FindPosition independently
// so simultaneous placements start spread out before collision
// correction. Already chosen positions count as occupied for the
// remaining ones.
func (e *Engine) FindPositions(anchor canvas.Position, t canvas.NodeType, count int, existing []*canvas.Node) []canvas.Position {
	if count <= 0 {
		return nil
	}
	w, h := t.Footprint()

	points := make([]canvas.Position, 0, count)
	switch {
	case count == 1:
		points = append(points, anchor)
	case count <= 3:
		for i := 0; i < count; i++ {
			points = append(points, canvas.Position{
				X: anchor.X + float64(i)*(w+multiSpacing),
				Y: anchor.Y,
			})
		}
	default:
		cols := int(math.Ceil(math.Sqrt(float64(count))))
		for i := 0; i < count; i++ {
			points = append(points, canvas.Position{
				X: anchor.X + float64(i%cols)*(w+multiSpacing),
				Y: anchor.Y + float64(i/cols)*(h+multiSpacing),
			})
		}
	}

	occupied := make([]*canvas.Node, len(existing), len(existing)+count)
	copy(occupied, existing)

	out := make([]canvas.Position, 0, count)
	for _, p := range points {
		pos, _ := e.FindPosition(p, t, occupied)
		out = append(out, pos)
		occupied = append(occupied, &canvas.Node{Type: t, Position: pos})
	}
	return out
}

func (e *Engine) overlaps(p canvas.Position, w, h float64, existing []*canvas.Node) bool {
	r := canvas.Rect{X: p.X, Y: p.Y, W: w, H: h}
	for _, n := range existing {
		if r.Intersects(n.Bounds()) {
			return true
		}
	}
	return false
}

func (e *Engine) snap(p canvas.Position) canvas.Position {
	return canvas.Position{
		X: math.Round(p.X/e.gridSize) * e.gridSize,
		Y: math.Round(p.Y/e.gridSize) * e.gridSize,
	}
}
