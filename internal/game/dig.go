package game

import (
	log "github.com/sirupsen/logrus"
)

// DigResult describes one dig attempt.
type DigResult struct {
	Cell      int      `json:"cell"`
	Hit       bool     `json:"hit"`       // Cooldown allowed it and a target existed
	Destroyed bool     `json:"destroyed"` // The hit took the tile's last hit point
	Type      TileType `json:"type"`      // Tile type before the hit
	Reward    int      `json:"reward"`
}

// digDirection returns the unit direction a dig intent points at.
// Down beats Up, vertical beats sideways and Left beats Right.
func digDirection(input PlayerInput) (dx, dy float64, ok bool) {
	switch {
	case input.Down:
		return 0, 1, true
	case input.Up:
		return 0, -1, true
	case input.Left:
		return -1, 0, true
	case input.Right:
		return 1, 0, true
	default:
		return 0, 0, false
	}
}

// TryDig damages the tile next to the player in the direction of input.
//
// next is the player's post-move position. The attempt is a no-op while
// now < state.NextDigTime or when nothing solid is adjacent; the returned
// next dig time is then state.NextDigTime unchanged. A successful hit always
// restarts the cooldown, whether or not the tile broke.
func (s *Simulator) TryDig(state PlayerState, next Position, grid *Grid, input PlayerInput, now float64) (float64, DigResult) {
	dx, dy, ok := digDirection(input)
	if !ok || now < state.NextDigTime {
		return state.NextDigTime, DigResult{}
	}

	box := Box{X: next.X, Y: next.Y, W: state.Size, H: state.Size}
	cell, found, _ := nearestSolid(box, dx, dy, grid)
	if !found {
		return state.NextDigTime, DigResult{}
	}

	before, destroyed := grid.damage(cell)
	result := DigResult{
		Cell:      cell,
		Hit:       true,
		Destroyed: destroyed,
		Type:      before,
		Reward:    s.reward(before, destroyed),
	}

	if destroyed {
		s.log.WithFields(log.Fields{
			"cell":   cell,
			"type":   before.String(),
			"reward": result.Reward,
		}).Debug("tile destroyed")
	}

	return now + state.DigCooldown, result
}

// reward maps a destroyed tile to money.
func (s *Simulator) reward(t TileType, destroyed bool) int {
	if destroyed && t == Gold {
		return s.config.GoldReward
	}
	return 0
}
