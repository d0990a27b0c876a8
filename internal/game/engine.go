package game

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Snapshot is a read-only copy of what a renderer needs for one frame: the
// visible window of rows plus the player.
type Snapshot struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	TileSize float64     `json:"tile_size"`
	FirstRow int         `json:"first_row"`
	Tiles    []Tile      `json:"tiles"` // Rows FirstRow.., row-major
	Player   PlayerState `json:"player"`
	LastDig  DigResult   `json:"last_dig"`
	Ticks    uint64      `json:"ticks"`
}

// Rows is the number of rows held by the snapshot.
func (s Snapshot) Rows() int {
	if s.Width == 0 {
		return 0
	}
	return len(s.Tiles) / s.Width
}

// TileAt returns the tile at a grid row and column if the snapshot holds it.
func (s Snapshot) TileAt(row, col int) (Tile, bool) {
	r := row - s.FirstRow
	if col < 0 || col >= s.Width || r < 0 || r >= s.Rows() {
		return Tile{}, false
	}
	return s.Tiles[r*s.Width+col], true
}

// Engine owns the grid, the player state and the clock, and drives the
// simulation with a fixed-timestep accumulator.
type Engine struct {
	Config  GameConfig
	sim     *Simulator
	grid    *Grid
	state   PlayerState
	lastDig DigResult
	clock   Clock
	log     log.FieldLogger

	acc     float64
	ticks   uint64
	mu      sync.Mutex
	onFrame func(Snapshot) // Callback after each Advance/Step with a COPY of the view
}

// NewEngine creates an engine with a freshly generated world.
func NewEngine(config GameConfig, clock Clock, logger log.FieldLogger) *Engine {
	return NewEngineWithGrid(config, GenerateGrid(config), clock, logger)
}

// NewEngineWithGrid creates an engine around an existing grid. The engine
// takes ownership of grid.
func NewEngineWithGrid(config GameConfig, grid *Grid, clock Clock, logger log.FieldLogger) *Engine {
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Engine{
		Config: config,
		sim:    NewSimulator(config, logger),
		grid:   grid,
		state:  NewPlayerState(config),
		clock:  clock,
		log:    logger,
	}
}

// OnFrame sets a callback invoked after every Advance or Step with a snapshot
// of the default view. Used by the spectator server to broadcast frames.
func (e *Engine) OnFrame(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFrame = fn
}

// Advance feeds elapsed frame time into the accumulator and runs as many
// whole ticks as it covers, possibly none. It returns the number of ticks run.
func (e *Engine) Advance(frameSeconds float64, input PlayerInput) int {
	e.mu.Lock()

	step := e.Config.TickSeconds()
	if frameSeconds > 0 {
		e.acc += frameSeconds
	}

	now := e.clock.Now()
	n := 0
	for e.acc > step {
		e.acc -= step
		e.tickLocked(input, now)
		n++
	}

	snap, fn := e.snapshotLocked(0), e.onFrame

	// Release lock BEFORE calling the callback
	e.mu.Unlock()

	if fn != nil && n > 0 {
		fn(snap)
	}
	return n
}

// Step runs exactly one tick, bypassing the accumulator. Hosts that already
// call in at a fixed rate use this.
func (e *Engine) Step(input PlayerInput) PlayerState {
	e.mu.Lock()

	e.tickLocked(input, e.clock.Now())
	state := e.state
	snap, fn := e.snapshotLocked(0), e.onFrame

	e.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return state
}

// tickLocked runs one simulation tick.
// MUST be called while e.mu is held.
func (e *Engine) tickLocked(input PlayerInput, now float64) {
	var dig DigResult
	e.state, dig = e.sim.Tick(e.state, e.grid, input, now)
	if dig.Hit {
		e.lastDig = dig
	}
	e.ticks++
}

// State returns the current player state.
func (e *Engine) State() PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Ticks returns how many ticks have run.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Tile returns a copy of one grid tile.
func (e *Engine) Tile(cell int) (Tile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Tile(cell)
}

// Snapshot copies the rows visible from the camera. rows <= 0 uses the
// configured viewport.
func (e *Engine) Snapshot(rows int) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(rows)
}

// snapshotLocked creates a deep copy of the visible window.
// MUST be called while e.mu is held.
func (e *Engine) snapshotLocked(rows int) Snapshot {
	if rows <= 0 {
		rows = e.Config.ViewRows()
	}
	first := e.grid.Row(e.state.CameraOffset)

	return Snapshot{
		Width:    e.grid.Width(),
		Height:   e.grid.Height(),
		TileSize: e.grid.TileSize(),
		FirstRow: first,
		Tiles:    e.grid.Rows(first, rows),
		Player:   e.state,
		LastDig:  e.lastDig,
		Ticks:    e.ticks,
	}
}
