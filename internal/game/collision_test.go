package game

import (
	"math/rand"
	"testing"
)

// groundGrid is a 20x20 grid of 40 unit tiles with Ground from row 5 down.
func groundGrid() *Grid {
	grid := NewGrid(20, 20, 40, 10)
	grid.fillRows(5, 20, Ground)
	return grid
}

func TestResolveAxisZeroVelocity(t *testing.T) {
	grid := groundGrid()
	box := Box{X: 100, Y: 170, W: 30, H: 30} // Resting on row 5

	vel, _, ok := ResolveAxis(0, AxisY, box, grid)
	if vel != 0 || ok {
		t.Errorf("zero velocity should pass through unblocked, got vel=%g ok=%v", vel, ok)
	}
}

func TestResolveAxisFreeFall(t *testing.T) {
	grid := groundGrid()
	box := Box{X: 100, Y: 0, W: 30, H: 30}

	vel, _, ok := ResolveAxis(3, AxisY, box, grid)
	if ok {
		t.Error("nothing should block a fall through open sky")
	}
	if vel != 3 {
		t.Errorf("expected unchanged velocity 3, got %g", vel)
	}
}

func TestResolveAxisClampsToContact(t *testing.T) {
	grid := groundGrid()
	box := Box{X: 100, Y: 168, W: 30, H: 30} // bottom 198, ground top 200

	vel, cell, ok := ResolveAxis(3, AxisY, box, grid)
	if !ok {
		t.Fatal("expected ground to block the fall")
	}
	if vel != 2 {
		t.Errorf("expected clamp to the 2 unit gap, got %g", vel)
	}
	if cell != 5*20+2 {
		t.Errorf("expected blocking cell 102, got %d", cell)
	}
}

func TestResolveAxisEachDirection(t *testing.T) {
	grid := NewGrid(20, 20, 40, 10)
	// Solid ring around cell (row 5, col 5).
	for _, c := range []int{4*20 + 5, 6*20 + 5, 5*20 + 4, 5*20 + 6} {
		grid.setTile(c, Ground, 10)
	}
	// Box inside the free cell, 2 units from each wall.
	box := Box{X: 202, Y: 202, W: 36, H: 36}

	tests := []struct {
		name string
		vel  float64
		axis Axis
		want float64
		cell int
	}{
		{"down", 3, AxisY, 2, 6*20 + 5},
		{"up", -3, AxisY, -2, 4*20 + 5},
		{"right", 3, AxisX, 2, 5*20 + 6},
		{"left", -3, AxisX, -2, 5*20 + 4},
	}
	for _, tt := range tests {
		vel, cell, ok := ResolveAxis(tt.vel, tt.axis, box, grid)
		if !ok {
			t.Errorf("%s: expected a blocking tile", tt.name)
			continue
		}
		if vel != tt.want || cell != tt.cell {
			t.Errorf("%s: got vel=%g cell=%d, want vel=%g cell=%d", tt.name, vel, cell, tt.want, tt.cell)
		}
	}
}

func TestResolveAxisIgnoresAir(t *testing.T) {
	grid := groundGrid()
	grid.setTile(5*20+2, Ground, 0) // Dig out the tile under the box
	box := Box{X: 82, Y: 168, W: 30, H: 30}

	vel, _, ok := ResolveAxis(3, AxisY, box, grid)
	if ok || vel != 3 {
		t.Errorf("an Air tile must not block, got vel=%g ok=%v", vel, ok)
	}
}

func TestResolveTieBreakVertical(t *testing.T) {
	grid := groundGrid()
	// Box straddles columns 0 and 1; both tiles are 52 units away.
	box := Box{X: 20, Y: 168, W: 30, H: 30}

	_, cell, ok := ResolveAxis(3, AxisY, box, grid)
	if !ok {
		t.Fatal("expected a blocking tile")
	}
	if cell != 5*20+0 {
		t.Errorf("tie should keep the left-corner probe (cell 100), got %d", cell)
	}

	// Shifted right, column 1 is strictly nearer.
	box.X = 30
	_, cell, _ = ResolveAxis(3, AxisY, box, grid)
	if cell != 5*20+1 {
		t.Errorf("nearer tile should win (cell 101), got %d", cell)
	}
}

func TestResolveTieBreakHorizontal(t *testing.T) {
	grid := NewGrid(20, 20, 40, 10)
	grid.setTile(1*20+3, Ground, 10)
	grid.setTile(2*20+3, Ground, 10)
	// Box spans rows 1 and 2; both wall tiles are 51 units away.
	box := Box{X: 89, Y: 60, W: 30, H: 30}

	vel, cell, ok := ResolveAxis(1, AxisX, box, grid)
	if !ok {
		t.Fatal("expected a blocking tile")
	}
	if cell != 2*20+3 {
		t.Errorf("tie should keep the bottom-corner probe (cell 43), got %d", cell)
	}
	if vel != 1 {
		t.Errorf("expected clamp to the 1 unit gap, got %g", vel)
	}
}

func TestResolveTieBreakVerticalBeforeHorizontal(t *testing.T) {
	grid := NewGrid(20, 20, 40, 10)
	grid.setTile(2*20+1, Ground, 10) // Below, found by a vertical probe
	grid.setTile(1*20+2, Ground, 10) // Beside, found by a horizontal probe
	box := Box{X: 50, Y: 50, W: 30, H: 30}

	vx, vy, cell, ok := ResolveMove(1, 1, box, grid)
	if !ok {
		t.Fatal("expected a blocking tile")
	}
	if cell != 2*20+1 {
		t.Errorf("tie should keep the vertical probe (cell 41), got %d", cell)
	}
	if vx != 1 || vy != 0 {
		t.Errorf("expected only the vertical component clamped, got (%g, %g)", vx, vy)
	}
}

func TestResolveContainment(t *testing.T) {
	grid := groundGrid()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		box := Box{
			X: rng.Float64() * (grid.WorldWidth() - 30),
			Y: 120 + rng.Float64()*50, // bottom within 150..200
			W: 30,
			H: 30,
		}
		vel, cell, ok := ResolveAxis(3, AxisY, box, grid)
		moved := box.Translate(0, vel)
		if ok && moved.Bottom() > grid.Bounds(cell).Top() {
			t.Fatalf("box %+v sank into cell %d", moved, cell)
		}
		for c := 5 * 20; c < 6*20; c++ {
			if Overlaps(moved, grid.Bounds(c)) {
				t.Fatalf("box %+v overlaps solid cell %d", moved, c)
			}
		}
	}
}

func TestResolveWorldBorder(t *testing.T) {
	grid := NewGrid(20, 20, 40, 10)

	tests := []struct {
		name string
		vel  float64
		axis Axis
		box  Box
		want float64
	}{
		{"top", -3, AxisY, Box{X: 100, Y: 1, W: 30, H: 30}, -1},
		{"left", -1, AxisX, Box{X: 0, Y: 100, W: 30, H: 30}, 0},
		{"right", 3, AxisX, Box{X: 769, Y: 100, W: 30, H: 30}, 1},
		{"bottom", 3, AxisY, Box{X: 100, Y: 770, W: 30, H: 30}, 0},
	}
	for _, tt := range tests {
		vel, _, ok := ResolveAxis(tt.vel, tt.axis, tt.box, grid)
		if ok {
			t.Errorf("%s: the border is not a tile, got a blocking cell", tt.name)
		}
		if vel != tt.want {
			t.Errorf("%s: expected clamp to %g, got %g", tt.name, tt.want, vel)
		}
	}
}
