package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrOutOfBounds is returned when a world coordinate maps outside the grid.
var ErrOutOfBounds = errors.New("coordinate outside world grid")

// Grid is a flat, fixed-size collection of tiles stored row-major.
// Dimensions never change after construction.
type Grid struct {
	tiles  []Tile
	width  int
	height int
	size   float64
}

// NewGrid creates a grid of Air tiles, each with the given max HP.
func NewGrid(width, height int, tileSize float64, maxHP int) *Grid {
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i] = Tile{Cell: i, Type: Air, HP: maxHP, MaxHP: maxHP}
	}
	return &Grid{tiles: tiles, width: width, height: height, size: tileSize}
}

// GenerateGrid fills a new world.
//
// Layout rules:
//   - The first AboveGroundRows rows are Air
//   - Every other cell is Gold with probability GoldChance, otherwise Ground
//   - Seed 0 seeds from the wall clock
func GenerateGrid(config GameConfig) *Grid {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return generateGrid(config, rand.New(rand.NewSource(seed)))
}

func generateGrid(config GameConfig, rng *rand.Rand) *Grid {
	g := NewGrid(config.WorldWidth, config.WorldHeight, config.TileSize, config.TileMaxHP)

	for i := config.AboveGroundRows * config.WorldWidth; i < len(g.tiles); i++ {
		if rng.Float64() < config.GoldChance {
			g.tiles[i].Type = Gold
		} else {
			g.tiles[i].Type = Ground
		}
	}

	return g
}

func (g *Grid) Width() int { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) TileSize() float64 { return g.size }
func (g *Grid) Len() int { return len(g.tiles) }
func (g *Grid) WorldWidth() float64 { return float64(g.width) * g.size }
func (g *Grid) WorldHeight() float64 { return float64(g.height) * g.size }

// Tile returns a copy of the tile at cell.
func (g *Grid) Tile(cell int) (Tile, bool) {
	if cell < 0 || cell >= len(g.tiles) {
		return Tile{}, false
	}
	return g.tiles[cell], true
}

// CellAt maps a world coordinate to a cell index.
// Coordinates left of or above the origin, or past the last row or column,
// are rejected with ErrOutOfBounds.
func (g *Grid) CellAt(x, y float64) (int, error) {
	cell, ok := g.cellIndex(x, y)
	if !ok {
		return 0, fmt.Errorf("cell at (%g, %g): %w", x, y, ErrOutOfBounds)
	}
	return cell, nil
}

func (g *Grid) cellIndex(x, y float64) (int, bool) {
	if x < 0 || y < 0 || math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	col := int(math.Floor(x / g.size))
	row := int(math.Floor(y / g.size))
	if col >= g.width || row >= g.height {
		return 0, false
	}
	return row*g.width + col, true
}

// Bounds returns the world-space box of a cell.
func (g *Grid) Bounds(cell int) Box {
	row := cell / g.width
	col := cell % g.width
	return Box{
		X: float64(col) * g.size,
		Y: float64(row) * g.size,
		W: g.size,
		H: g.size,
	}
}

// Row returns the row a world y coordinate falls in, clamped to the grid.
func (g *Grid) Row(y float64) int {
	row := int(math.Floor(y / g.size))
	return min(max(row, 0), g.height-1)
}

// Rows copies the tiles of rows [first, first+n), clamped to the grid.
func (g *Grid) Rows(first, n int) []Tile {
	first = min(max(first, 0), g.height)
	last := min(first+max(n, 0), g.height)
	out := make([]Tile, (last-first)*g.width)
	copy(out, g.tiles[first*g.width:last*g.width])
	return out
}

// damage removes one hit point from the tile at cell. It reports the tile
// type before the hit and whether the hit destroyed it.
func (g *Grid) damage(cell int) (TileType, bool) {
	t := &g.tiles[cell]
	before := t.Type
	if !before.Solid() {
		return before, false
	}
	t.HP--
	if t.HP <= 0 {
		t.HP = 0
		t.Type = Air
		return before, true
	}
	return before, false
}
