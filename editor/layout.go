package editor

import "github.com/meikuraledutech/area"

// Linear layout used for areas loaded from the backend: actions in the
// left column, reactions in the right one.
const (
	slotMarginX = 80.0
	slotMarginY = 80.0
	slotColumn  = area.CardWidth + 200
	slotRow     = area.CardHeight + 60
)

// Slot returns the position of the i-th card of a kind in the linear layout.
func Slot(kind area.Kind, i int) area.Point {
	x := slotMarginX
	if kind == area.KindReaction {
		x += slotColumn
	}
	return area.Point{X: x, Y: slotMarginY + float64(i)*slotRow}
}
