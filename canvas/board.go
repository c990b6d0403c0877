// Package canvas holds the positioned card graph the editor draws, the
// gesture state machine of each card and the renderer-agnostic scene.
package canvas

import (
	"math"

	"github.com/meikuraledutech/area"
)

// Board is the card graph of one editor canvas.
// It is owned by the UI goroutine and is not safe for concurrent use.
type Board struct {
	cards    []area.Card
	conns    []area.Connection
	active   *area.ActiveConnection
	viewport area.Point
}

// NewBoard creates an empty board for a viewport of the given size.
func NewBoard(viewportWidth, viewportHeight float64) *Board {
	return &Board{viewport: area.Point{X: viewportWidth, Y: viewportHeight}}
}

// Viewport returns the viewport size.
func (b *Board) Viewport() area.Point { return b.viewport }

// SetViewport updates the viewport size.
func (b *Board) SetViewport(width, height float64) {
	b.viewport = area.Point{X: width, Y: height}
}

// RemoveZoneTop is the Y coordinate of the remove zone's top edge.
func (b *Board) RemoveZoneTop() float64 {
	return b.viewport.Y - area.RemoveZoneHeight
}

// AddCard places a card on the board. It returns false if the id is taken.
func (b *Board) AddCard(c area.Card) bool {
	if b.index(c.ID) >= 0 {
		return false
	}
	b.cards = append(b.cards, c)
	return true
}

// Card returns the card with the given id.
func (b *Board) Card(id string) (area.Card, bool) {
	if i := b.index(id); i >= 0 {
		return b.cards[i], true
	}
	return area.Card{}, false
}

// Cards returns the cards in insertion order.
func (b *Board) Cards() []area.Card {
	out := make([]area.Card, len(b.cards))
	copy(out, b.cards)
	return out
}

// MoveCard commits a new position for a card.
func (b *Board) MoveCard(id string, pos area.Point) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.cards[i].Position = pos
	return true
}

// ReplaceCard swaps the record wrapped by a card, keeping id, kind and position.
func (b *Board) ReplaceCard(c area.Card) bool {
	i := b.index(c.ID)
	if i < 0 || b.cards[i].Kind != c.Kind {
		return false
	}
	c.Position = b.cards[i].Position
	b.cards[i] = c
	return true
}

// RemoveCard deletes a card together with every connection touching it.
// It returns the removed connections.
func (b *Board) RemoveCard(id string) ([]area.Connection, bool) {
	i := b.index(id)
	if i < 0 {
		return nil, false
	}
	b.cards = append(b.cards[:i], b.cards[i+1:]...)

	var dropped []area.Connection
	kept := b.conns[:0]
	for _, c := range b.conns {
		if c.Touches(id) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	b.conns = kept
	if b.active != nil && b.active.From == id {
		b.active = nil
	}
	return dropped, true
}

// Clear removes all cards and connections.
func (b *Board) Clear() {
	b.cards = nil
	b.conns = nil
	b.active = nil
}

// Connections returns the committed connections.
func (b *Board) Connections() []area.Connection {
	out := make([]area.Connection, len(b.conns))
	copy(out, b.conns)
	return out
}

// Connect commits an edge between two existing cards. Self loops and edges
// joining an already connected pair are refused.
func (b *Board) Connect(from, to string) bool {
	if from == to || b.index(from) < 0 || b.index(to) < 0 {
		return false
	}
	c := area.Connection{From: from, To: to}
	for _, e := range b.conns {
		if e.Same(c) {
			return false
		}
	}
	b.conns = append(b.conns, c)
	return true
}

// Disconnect removes the edge between two cards, whichever way it points.
func (b *Board) Disconnect(from, to string) bool {
	c := area.Connection{From: from, To: to}
	for i, e := range b.conns {
		if e.Same(c) {
			b.conns = append(b.conns[:i], b.conns[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the connection being drawn, if any.
func (b *Board) Active() *area.ActiveConnection {
	if b.active == nil {
		return nil
	}
	a := *b.active
	return &a
}

// StartConnection begins drawing an edge from a card handle.
func (b *Board) StartConnection(from string, dir area.Direction, start area.Point) {
	if b.index(from) < 0 {
		return
	}
	b.active = &area.ActiveConnection{From: from, FromDirection: dir, Start: start, Point: start}
}

// UpdateConnection moves the loose end of the edge being drawn. A nil point
// clears the preview.
func (b *Board) UpdateConnection(p *area.Point) {
	if b.active == nil {
		return
	}
	if p == nil {
		b.active = nil
		return
	}
	b.active.Point = *p
}

// EndConnection hit-tests p against the other cards and commits a connection
// when it lands on one. Releasing over empty canvas is a silent cancel.
func (b *Board) EndConnection(p area.Point) (area.Connection, bool) {
	if b.active == nil {
		return area.Connection{}, false
	}
	from := b.active.From
	b.active = nil

	to, _, ok := b.HandleAt(p)
	if !ok {
		to, ok = b.CardAt(p)
	}
	if !ok || to == from {
		return area.Connection{}, false
	}
	if !b.Connect(from, to) {
		return area.Connection{}, false
	}
	return area.Connection{From: from, To: to}, true
}

// HandleAt returns the card and side of the handle closest to p within the hit radius.
func (b *Board) HandleAt(p area.Point) (string, area.Direction, bool) {
	best := area.HandleHitRadius
	var (
		id  string
		dir area.Direction
	)
	for i := len(b.cards) - 1; i >= 0; i-- {
		c := b.cards[i]
		for _, side := range []area.Direction{area.DirectionLeft, area.DirectionRight} {
			if d := distance(area.Anchor(c.Position, side), p); d <= best {
				best, id, dir = d, c.ID, side
			}
		}
	}
	return id, dir, id != ""
}

// CardAt returns the topmost card whose body contains p.
func (b *Board) CardAt(p area.Point) (string, bool) {
	for i := len(b.cards) - 1; i >= 0; i-- {
		if area.Contains(b.cards[i].Position, p) {
			return b.cards[i].ID, true
		}
	}
	return "", false
}

func (b *Board) index(id string) int {
	for i := range b.cards {
		if b.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func distance(a, b area.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
