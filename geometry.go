package area

// Fixed canvas geometry, in canvas units.
const (
	CardWidth        = 200.0
	CardHeight       = 80.0
	RemoveZoneHeight = 120.0
	CanvasWidth      = 4000.0
	CanvasHeight     = 4000.0
	HandleHitRadius  = 24.0
	GridSpacing      = 40.0
)

// Anchor returns the handle point on the given side of a card placed at pos.
// Handles sit on the vertical centre of the card edge.
func Anchor(pos Point, side Direction) Point {
	y := pos.Y + CardHeight/2
	if side == DirectionRight {
		return Point{X: pos.X + CardWidth, Y: y}
	}
	return Point{X: pos.X, Y: y}
}

// Contains reports whether p lies inside a card placed at pos.
func Contains(pos, p Point) bool {
	return p.X >= pos.X && p.X <= pos.X+CardWidth &&
		p.Y >= pos.Y && p.Y <= pos.Y+CardHeight
}
