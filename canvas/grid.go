package canvas

import (
	"sync"

	"github.com/meikuraledutech/area"
)

// Line is a straight segment.
type Line struct {
	From area.Point
	To   area.Point
}

type gridKey struct {
	w, h, spacing float64
}

var (
	gridMu    sync.Mutex
	gridCache = map[gridKey][]Line{}
)

// Grid returns the backdrop lines for a canvas of the given extent.
// Results are memoized and shared, callers must not modify them.
func Grid(width, height, spacing float64) []Line {
	if spacing <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	key := gridKey{width, height, spacing}

	gridMu.Lock()
	defer gridMu.Unlock()
	if lines, ok := gridCache[key]; ok {
		return lines
	}

	var lines []Line
	for x := 0.0; x <= width; x += spacing {
		lines = append(lines, Line{From: area.Point{X: x}, To: area.Point{X: x, Y: height}})
	}
	for y := 0.0; y <= height; y += spacing {
		lines = append(lines, Line{From: area.Point{Y: y}, To: area.Point{X: width, Y: y}})
	}
	gridCache[key] = lines
	return lines
}
