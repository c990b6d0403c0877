package canvas

import (
	"math"
	"time"
)

// Intensity is how visible the remove zone is.
type Intensity int

const (
	Hidden Intensity = iota
	Partial
	Full
)

// IntensityOf maps the drag state to a zone intensity.
func IntensityOf(isDragging, isActive bool) Intensity {
	switch {
	case !isDragging:
		return Hidden
	case isActive:
		return Full
	default:
		return Partial
	}
}

// Target is the progress value the zone animates toward.
func (i Intensity) Target() float64 {
	switch i {
	case Full:
		return 1
	case Partial:
		return 0.5
	default:
		return 0
	}
}

// ZoneSpeed is the progress covered per second of animation.
const ZoneSpeed = 5.0

// RemoveZone animates one progress value toward the target of the current
// intensity. It carries no model state.
type RemoveZone struct {
	progress  float64
	intensity Intensity
}

// Set updates the two inputs of the zone.
func (z *RemoveZone) Set(isDragging, isActive bool) {
	z.intensity = IntensityOf(isDragging, isActive)
}

// Intensity returns the current target intensity.
func (z *RemoveZone) Intensity() Intensity { return z.intensity }

// Progress returns the animated value in [0, 1].
func (z *RemoveZone) Progress() float64 { return z.progress }

// Settled reports whether the animation reached its target.
func (z *RemoveZone) Settled() bool { return z.progress == z.intensity.Target() }

// Step advances the animation by dt and returns the new progress.
func (z *RemoveZone) Step(dt time.Duration) float64 {
	target := z.intensity.Target()
	delta := ZoneSpeed * dt.Seconds()
	if z.progress < target {
		z.progress = math.Min(target, z.progress+delta)
	} else {
		z.progress = math.Max(target, z.progress-delta)
	}
	return z.progress
}
