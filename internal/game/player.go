package game

import (
	log "github.com/sirupsen/logrus"
)

// Simulator runs the per-tick player transition for one configuration.
type Simulator struct {
	config GameConfig
	log    log.FieldLogger
}

// NewSimulator creates a simulator. A nil logger falls back to the logrus
// standard logger.
func NewSimulator(config GameConfig, logger log.FieldLogger) *Simulator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Simulator{config: config, log: logger}
}

// Config returns the simulator's configuration.
func (s *Simulator) Config() GameConfig {
	return s.config
}

// stepResult carries everything a tick computed that feeds the next state.
type stepResult struct {
	position    Position
	onGround    bool
	nextDigTime float64
	dig         DigResult
}

// Tick advances the player by one fixed step.
//
// Vertical motion is resolved first from the current position; horizontal
// motion is then resolved from the vertically moved position. The grid is
// only written by the dig at the end of the tick.
func (s *Simulator) Tick(state PlayerState, grid *Grid, input PlayerInput, now float64) (PlayerState, DigResult) {
	velX := 0.0
	switch {
	case input.Left:
		velX = -s.config.HorizontalSpeed
	case input.Right:
		velX = s.config.HorizontalSpeed
	}

	velY := s.config.Gravity
	if input.Up {
		velY = -s.config.JumpSpeed
	}

	box := state.Box()
	velY, cellY, blockedY := ResolveAxis(velY, AxisY, box, grid)

	provisional := box.Translate(0, velY)
	velX, _, blockedX := ResolveAxis(velX, AxisX, provisional, grid)

	onGround := false
	if blockedY {
		onGround = provisional.Top() < grid.Bounds(cellY).Top()
	}

	final := Position{X: state.Position.X + velX, Y: state.Position.Y + velY}

	// Down digs the tile the vertical move ran into: the floor while falling,
	// the ceiling while jumping. Sideways digging only happens while standing
	// against a wall.
	var digInput PlayerInput
	if input.Down && blockedY {
		digInput.Up = input.Up
		digInput.Down = !input.Up
	}
	if !input.Down && onGround && blockedX {
		digInput.Left = input.Left
		digInput.Right = input.Right && !input.Left
	}
	nextDigTime, dig := s.TryDig(state, final, grid, digInput, now)

	return s.nextState(state, stepResult{
		position:    final,
		onGround:    onGround,
		nextDigTime: nextDigTime,
		dig:         dig,
	}), dig
}

// nextState builds the successor snapshot. Every field is either carried
// from prev or taken from the step.
func (s *Simulator) nextState(prev PlayerState, step stepResult) PlayerState {
	return PlayerState{
		Position:     step.position,
		Size:         prev.Size,
		CameraOffset: max(0, step.position.Y-s.config.CameraFollowY),
		Money:        prev.Money + step.dig.Reward,
		DigCooldown:  prev.DigCooldown,
		NextDigTime:  step.nextDigTime,
		OnGround:     step.onGround,
	}
}
