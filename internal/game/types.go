package game

import (
	"fmt"
	"time"
)

// TileType represents the material of a cell in the world grid.
type TileType int

const (
	Air    TileType = iota // Passable
	Ground                 // Solid, diggable
	Gold                   // Solid, diggable, pays out when destroyed
)

func (t TileType) String() string {
	switch t {
	case Air:
		return "air"
	case Ground:
		return "ground"
	case Gold:
		return "gold"
	default:
		return fmt.Sprintf("tile(%d)", int(t))
	}
}

// Solid reports whether the tile blocks movement.
func (t TileType) Solid() bool {
	return t != Air
}

// Tile is one cell of the world grid. Its geometry is derived from Cell and
// the grid dimensions, see Grid.Bounds.
type Tile struct {
	Cell  int      `json:"cell"`
	Type  TileType `json:"type"`
	HP    int      `json:"hp"`
	MaxHP int      `json:"max_hp"`
}

// Axis selects which component of a velocity is being resolved.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// PlayerInput is the intent snapshot for one tick.
type PlayerInput struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Up    bool `json:"up"`
	Down  bool `json:"down"`
}

// Position is the top-left corner of the player box in world units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// PlayerState is an immutable per-tick snapshot of the player.
// Tick never modifies its argument; it builds the next value with nextState.
type PlayerState struct {
	Position     Position `json:"position"`
	Size         float64  `json:"size"`
	CameraOffset float64  `json:"camera_offset"`
	Money        int      `json:"money"`
	DigCooldown  float64  `json:"dig_cooldown"`  // Seconds between dig attempts
	NextDigTime  float64  `json:"next_dig_time"` // Absolute clock time, seconds
	OnGround     bool     `json:"on_ground"`
}

// Box returns the player's hitbox.
func (s PlayerState) Box() Box {
	return Box{X: s.Position.X, Y: s.Position.Y, W: s.Size, H: s.Size}
}

// GameConfig holds every tunable of a session. It is immutable once a
// Simulator or Engine has been built from it.
type GameConfig struct {
	WorldWidth      int           `json:"world_width" yaml:"world_width"`   // Cells per row
	WorldHeight     int           `json:"world_height" yaml:"world_height"` // Rows
	TileSize        float64       `json:"tile_size" yaml:"tile_size"`       // World units per tile edge
	AboveGroundRows int           `json:"above_ground_rows" yaml:"above_ground_rows"`
	TileMaxHP       int           `json:"tile_max_hp" yaml:"tile_max_hp"`
	GoldChance      float64       `json:"gold_chance" yaml:"gold_chance"` // 0.0 to 1.0
	Seed            int64         `json:"seed" yaml:"seed"`               // 0 seeds from the wall clock
	PlayerSize      float64       `json:"player_size" yaml:"player_size"`
	SpawnX          float64       `json:"spawn_x" yaml:"spawn_x"`
	SpawnY          float64       `json:"spawn_y" yaml:"spawn_y"`
	HorizontalSpeed float64       `json:"horizontal_speed" yaml:"horizontal_speed"` // Units per tick
	JumpSpeed       float64       `json:"jump_speed" yaml:"jump_speed"`             // Units per tick
	Gravity         float64       `json:"gravity" yaml:"gravity"`                   // Units per tick
	DigCooldown     time.Duration `json:"dig_cooldown" yaml:"dig_cooldown"`
	GoldReward      int           `json:"gold_reward" yaml:"gold_reward"`
	CameraFollowY   float64       `json:"camera_follow_y" yaml:"camera_follow_y"`
	ViewportHeight  float64       `json:"viewport_height" yaml:"viewport_height"` // World units visible at once
	TickRate        int           `json:"tick_rate" yaml:"tick_rate"`             // Ticks per second
}

// DefaultConfig returns the reference game configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		WorldWidth:      20,
		WorldHeight:     10000,
		TileSize:        40,
		AboveGroundRows: 5,
		TileMaxHP:       10,
		GoldChance:      0.10,
		PlayerSize:      30,
		SpawnX:          100,
		SpawnY:          0,
		HorizontalSpeed: 1,
		JumpSpeed:       3,
		Gravity:         3,
		DigCooldown:     150 * time.Millisecond,
		GoldReward:      5,
		CameraFollowY:   400,
		ViewportHeight:  600,
		TickRate:        60,
	}
}

// TickSeconds is the fixed simulation step length.
func (c GameConfig) TickSeconds() float64 {
	return 1 / float64(c.TickRate)
}

// ViewRows is how many rows a renderer needs to cover the viewport while the
// camera sits between two tile rows.
func (c GameConfig) ViewRows() int {
	return int(c.ViewportHeight/c.TileSize) + 2
}

// NewPlayerState returns the spawn state for a fresh session.
func NewPlayerState(config GameConfig) PlayerState {
	return PlayerState{
		Position:    Position{X: config.SpawnX, Y: config.SpawnY},
		Size:        config.PlayerSize,
		DigCooldown: config.DigCooldown.Seconds(),
	}
}
