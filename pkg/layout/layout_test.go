package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/easel-ai/easel/pkg/canvas"
)

func TestFindPositionEmptyCanvas(t *testing.T) {
	e := NewEngine()
	anchor := canvas.Position{X: 103, Y: 97}

	pos, resolved := e.FindPosition(anchor, canvas.NodeImage, nil)
	if !resolved {
		t.Fatalf("expected resolution on an empty canvas")
	}
	// Snapped to the 20-unit grid, near the anchor.
	if math.Mod(pos.X, DefaultGridSize) != 0 || math.Mod(pos.Y, DefaultGridSize) != 0 {
		t.Errorf("position %+v not snapped to grid", pos)
	}
	if math.Abs(pos.X-anchor.X) > DefaultGridSize || math.Abs(pos.Y-anchor.Y) > DefaultGridSize {
		t.Errorf("position %+v drifted from anchor %+v with no obstacles", pos, anchor)
	}
}

func TestFindPositionAvoidsOverlap(t *testing.T) {
	e := NewEngine()
	anchor := canvas.Position{X: 0, Y: 0}
	existing := []*canvas.Node{
		{Type: canvas.NodeImage, Position: canvas.Position{X: 0, Y: 0}},
	}

	pos, resolved := e.FindPosition(anchor, canvas.NodeImage, existing)
	if !resolved {
		t.Fatalf("single obstacle should resolve within the attempt ceiling")
	}
	w, h := canvas.NodeImage.Footprint()
	r := canvas.Rect{X: pos.X, Y: pos.Y, W: w, H: h}
	if r.Intersects(existing[0].Bounds()) {
		t.Errorf("resolved position %+v still overlaps obstacle", pos)
	}
}

// Non-overlap convergence: for random node sets of size <= 50, either
// the returned rectangle is overlap-free or the ceiling was reached.
func TestFindPositionConvergence(t *testing.T) {
	e := NewEngine()
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		count := rng.Intn(50) + 1
		existing := make([]*canvas.Node, 0, count)
		for i := 0; i < count; i++ {
			existing = append(existing, &canvas.Node{
				Type: canvas.NodeImage,
				Position: canvas.Position{
					X: float64(rng.Intn(2000) - 1000),
					Y: float64(rng.Intn(2000) - 1000),
				},
			})
		}
		anchor := canvas.Position{
			X: float64(rng.Intn(2000) - 1000),
			Y: float64(rng.Intn(2000) - 1000),
		}

		pos, resolved := e.FindPosition(anchor, canvas.NodeImage, existing)
		if !resolved {
			// Ceiling exhaustion is a legal best-effort outcome.
			continue
		}
		w, h := canvas.NodeImage.Footprint()
		r := canvas.Rect{X: pos.X, Y: pos.Y, W: w, H: h}
		for _, n := range existing {
			if r.Intersects(n.Bounds()) {
				t.Fatalf("trial %d: resolved position %+v overlaps node at %+v", trial, pos, n.Position)
			}
		}
	}
}

func TestFindPositionsSingle(t *testing.T) {
	e := NewEngine()
	got := e.FindPositions(canvas.Position{X: 40, Y: 40}, canvas.NodeImage, 1, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 position, got %d", len(got))
	}
}

func TestFindPositionsRowThenGrid(t *testing.T) {
	e := NewEngine()

	row := e.FindPositions(canvas.Position{}, canvas.NodeImage, 3, nil)
	if len(row) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(row))
	}
	if !(row[0].X < row[1].X && row[1].X < row[2].X) {
		t.Errorf("small counts should lay out as a row: %+v", row)
	}
	if row[0].Y != row[1].Y || row[1].Y != row[2].Y {
		t.Errorf("row should share one Y: %+v", row)
	}

	grid := e.FindPositions(canvas.Position{}, canvas.NodeImage, 5, nil)
	if len(grid) != 5 {
		t.Fatalf("expected 5 positions, got %d", len(grid))
	}
	rowsSeen := map[float64]bool{}
	for _, p := range grid {
		rowsSeen[p.Y] = true
	}
	if len(rowsSeen) < 2 {
		t.Errorf("larger counts should spread over multiple rows: %+v", grid)
	}
}

func TestFindPositionsMutuallyDisjoint(t *testing.T) {
	e := NewEngine()
	positions := e.FindPositions(canvas.Position{X: 100, Y: 100}, canvas.NodeImage, 4, nil)

	w, h := canvas.NodeImage.Footprint()
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			a := canvas.Rect{X: positions[i].X, Y: positions[i].Y, W: w, H: h}
			b := canvas.Rect{X: positions[j].X, Y: positions[j].Y, W: w, H: h}
			if a.Intersects(b) {
				t.Errorf("simultaneous placements %d and %d overlap: %+v %+v", i, j, positions[i], positions[j])
			}
		}
	}
}
