package game

// Hitbox is an axis-aligned rectangle in world coordinates.
type Hitbox interface {
	Top() float64
	Bottom() float64
	Left() float64
	Right() float64
}

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	X, Y float64
	W, H float64
}

func (b Box) Top() float64    { return b.Y }
func (b Box) Bottom() float64 { return b.Y + b.H }
func (b Box) Left() float64   { return b.X }
func (b Box) Right() float64  { return b.X + b.W }

// Translate returns the box moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	b.X += dx
	b.Y += dy
	return b
}

// Overlaps reports whether two hitboxes share interior area. Touching edges
// do not overlap.
func Overlaps(a, b Hitbox) bool {
	return a.Left() < b.Right() && b.Left() < a.Right() &&
		a.Top() < b.Bottom() && b.Top() < a.Bottom()
}

// manhattan is the distance between the top-left corners of two hitboxes.
func manhattan(a, b Hitbox) float64 {
	return abs(a.Left()-b.Left()) + abs(a.Top()-b.Top())
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
