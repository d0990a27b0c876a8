package game

// point is a probe coordinate in world space.
type point struct {
	x, y float64
}

// probes returns the leading-edge sample points of box for the given
// velocity. Vertical probes come first, then horizontal ones. The order
// decides ties in nearest-tile selection and must not change.
func probes(box Box, velX, velY float64) ([4]point, int) {
	var pts [4]point
	n := 0

	if velY > 0 {
		pts[n] = point{box.Left() + 1, box.Bottom()}
		pts[n+1] = point{box.Right() - 1, box.Bottom()}
		n += 2
	} else if velY < 0 {
		pts[n] = point{box.Left() + 1, box.Top()}
		pts[n+1] = point{box.Right() - 1, box.Top()}
		n += 2
	}

	if velX > 0 {
		pts[n] = point{box.Right(), box.Bottom() - 1}
		pts[n+1] = point{box.Right(), box.Top() + 1}
		n += 2
	} else if velX < 0 {
		pts[n] = point{box.Left(), box.Bottom() - 1}
		pts[n+1] = point{box.Left(), box.Top() + 1}
		n += 2
	}

	return pts, n
}

// nearestSolid finds the solid tile closest to the box's top-left corner
// among the probes offset by the velocity. Ties keep the earliest probe.
// offGrid reports whether any probe fell outside the grid.
func nearestSolid(box Box, velX, velY float64, grid *Grid) (cell int, found, offGrid bool) {
	pts, n := probes(box, velX, velY)

	var best float64
	for _, p := range pts[:n] {
		c, ok := grid.cellIndex(p.x+velX, p.y+velY)
		if !ok {
			offGrid = true
			continue
		}
		if !grid.tiles[c].Type.Solid() {
			continue
		}
		dist := manhattan(box, grid.Bounds(c))
		if !found || dist < best {
			cell, best, found = c, dist, true
		}
	}

	return cell, found, offGrid
}

// ResolveMove clamps a velocity so that box touches, but does not enter, the
// nearest solid tile in its direction of travel. It returns the clamped
// velocity and the blocking cell, if any.
//
// Only one component is clamped: vertical when velY is non-zero, otherwise
// horizontal. The clamp is a single move-to-contact step and assumes speeds
// well below one tile per call.
//
// Probes that fall outside the grid are never blocking tiles; the world
// border itself stops the box instead.
func ResolveMove(velX, velY float64, box Box, grid *Grid) (float64, float64, int, bool) {
	cell, found, offGrid := nearestSolid(box, velX, velY, grid)

	if found {
		tile := grid.Bounds(cell)
		switch {
		case velY > 0:
			return velX, tile.Top() - box.Bottom(), cell, true
		case velY < 0:
			return velX, tile.Bottom() - box.Top(), cell, true
		case velX > 0:
			return tile.Left() - box.Right(), velY, cell, true
		case velX < 0:
			return tile.Right() - box.Left(), velY, cell, true
		}
	}

	if offGrid {
		velX, velY = clampToWorld(velX, velY, box, grid)
	}

	return velX, velY, 0, false
}

// ResolveAxis resolves motion along a single axis.
// A zero velocity passes through without probing.
func ResolveAxis(vel float64, axis Axis, box Box, grid *Grid) (float64, int, bool) {
	if vel == 0 {
		return 0, 0, false
	}
	if axis == AxisY {
		_, vy, cell, ok := ResolveMove(0, vel, box, grid)
		return vy, cell, ok
	}
	vx, _, cell, ok := ResolveMove(vel, 0, box, grid)
	return vx, cell, ok
}

// clampToWorld limits velocity so the leading edges stay inside the grid.
// It never reverses the direction of travel.
func clampToWorld(velX, velY float64, box Box, grid *Grid) (float64, float64) {
	switch {
	case velY > 0:
		velY = min(velY, max(grid.WorldHeight()-box.Bottom(), 0))
	case velY < 0:
		velY = max(velY, min(-box.Top(), 0))
	}
	switch {
	case velX > 0:
		velX = min(velX, max(grid.WorldWidth()-box.Right(), 0))
	case velX < 0:
		velX = max(velX, min(-box.Left(), 0))
	}
	return velX, velY
}
