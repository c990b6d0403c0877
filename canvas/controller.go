package canvas

import "github.com/meikuraledutech/area"

// Phase is the gesture state of one card.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMoving
	PhaseConnecting
)

func (p Phase) String() string {
	switch p {
	case PhaseMoving:
		return "moving"
	case PhaseConnecting:
		return "connecting"
	default:
		return "idle"
	}
}

// Listener receives the model events a card's gestures produce.
// Calls are delivered serially on the UI goroutine.
type Listener interface {
	DragStarted(id string)
	DragEnded(id string)
	ToggleRemoveZone(id string, active bool)
	MoveNode(id string, pos area.Point)
	RemoveNode(id string)
	StartConnection(id string, dir area.Direction, anchor area.Point)
	UpdateConnection(id string, p *area.Point)
	EndConnection(id string, p area.Point)
}

// Controller is the gesture state machine of one card.
//
// A card is either idle, being moved, or drawing a connection from one of its
// two handles. Begin calls that do not start from the idle state are refused,
// so a move and a connection never interleave on the same card. Every other
// call that does not match the current state is ignored.
type Controller struct {
	id       string
	listener Listener

	phase    Phase
	side     area.Direction
	ended    bool
	origin   area.Point
	position area.Point
	overZone bool
	zoneTop  float64
}

// NewController creates the controller of the card id placed at pos.
// zoneTop is the Y coordinate of the remove zone's top edge.
func NewController(id string, pos area.Point, zoneTop float64, l Listener) *Controller {
	return &Controller{
		id:       id,
		listener: l,
		origin:   pos,
		position: pos,
		zoneTop:  zoneTop,
	}
}

// ID returns the card id.
func (c *Controller) ID() string { return c.id }

// Phase returns the current gesture state.
func (c *Controller) Phase() Phase { return c.phase }

// Position returns the live position, which differs from the committed one
// while a move is in progress.
func (c *Controller) Position() area.Point { return c.position }

// OverRemoveZone reports whether the pointer is inside the remove zone.
func (c *Controller) OverRemoveZone() bool { return c.overZone }

// SetPosition syncs the controller with a position committed elsewhere.
// It is ignored while a move runs.
func (c *Controller) SetPosition(pos area.Point) {
	if c.phase == PhaseMoving {
		return
	}
	c.origin = pos
	c.position = pos
}

// SetZoneTop updates the remove zone edge after a viewport change.
func (c *Controller) SetZoneTop(y float64) { c.zoneTop = y }

// BeginMove starts a drag. It reports whether the drag was accepted.
func (c *Controller) BeginMove() bool {
	if c.phase != PhaseIdle {
		return false
	}
	c.phase = PhaseMoving
	c.origin = c.position
	c.listener.DragStarted(c.id)
	return true
}

// UpdateMove applies the total translation since BeginMove. pointer is the
// absolute pointer position used to detect the remove zone.
func (c *Controller) UpdateMove(translation, pointer area.Point) {
	if c.phase != PhaseMoving {
		return
	}
	c.position = c.origin.Add(translation)

	// edge-triggered: notify only when the pointer crosses the zone edge
	inside := pointer.Y >= c.zoneTop
	if inside != c.overZone {
		c.overZone = inside
		c.listener.ToggleRemoveZone(c.id, inside)
	}
}

// EndMove finishes a drag. Releasing inside the remove zone removes the card
// instead of moving it.
func (c *Controller) EndMove() {
	if c.phase != PhaseMoving {
		return
	}
	removed := c.overZone
	c.clearHover()
	c.phase = PhaseIdle

	if removed {
		c.listener.RemoveNode(c.id)
	} else {
		c.origin = c.position
		c.listener.MoveNode(c.id, c.position)
	}
	c.listener.DragEnded(c.id)
}

// CancelMove aborts a drag and restores the position it started from.
func (c *Controller) CancelMove() {
	if c.phase != PhaseMoving {
		return
	}
	c.clearHover()
	c.phase = PhaseIdle
	c.position = c.origin
	c.listener.DragEnded(c.id)
}

// BeginConnect starts drawing a connection from the handle on side.
// It reports whether the gesture was accepted.
func (c *Controller) BeginConnect(side area.Direction) bool {
	if c.phase != PhaseIdle {
		return false
	}
	c.phase = PhaseConnecting
	c.side = side
	c.ended = false
	c.listener.StartConnection(c.id, side, area.Anchor(c.position, side))
	return true
}

// UpdateConnect moves the loose end of the connection being drawn.
func (c *Controller) UpdateConnect(side area.Direction, pointer area.Point) {
	if !c.connecting(side) || c.ended {
		return
	}
	p := pointer
	c.listener.UpdateConnection(c.id, &p)
}

// EndConnect releases the connection at pointer. Whether an edge is
// committed is up to the listener.
func (c *Controller) EndConnect(side area.Direction, pointer area.Point) {
	if !c.connecting(side) || c.ended {
		return
	}
	c.ended = true
	c.listener.EndConnection(c.id, pointer)
}

// FinalizeConnect runs after every connection gesture, committed or cancelled.
func (c *Controller) FinalizeConnect(side area.Direction) {
	if !c.connecting(side) {
		return
	}
	c.phase = PhaseIdle
	c.ended = false
	c.listener.UpdateConnection(c.id, nil)
	c.clearHover()
}

func (c *Controller) connecting(side area.Direction) bool {
	return c.phase == PhaseConnecting && c.side == side
}

func (c *Controller) clearHover() {
	if c.overZone {
		c.overZone = false
		c.listener.ToggleRemoveZone(c.id, false)
	}
}
