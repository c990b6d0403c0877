package canvas

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/meikuraledutech/area"
)

// Curve is a cubic bézier between two handles.
type Curve struct {
	From    area.Point
	C1      area.Point
	C2      area.Point
	To      area.Point
	Pending bool
}

// Shape is a card as drawn.
type Shape struct {
	ID       string
	Kind     area.Kind
	Min      area.Point
	Width    float64
	Height   float64
	Label    string
	Selected bool
}

// Band is the remove zone as drawn. It is in viewport coordinates, so
// renderers draw it over the canvas rather than inside it.
type Band struct {
	Y       float64
	Width   float64
	Height  float64
	Opacity float64
}

// Scene is a renderer-agnostic draw list, back to front.
type Scene struct {
	Width  float64
	Height float64
	Grid   []Line
	Edges  []Curve
	Cards  []Shape
	Zone   *Band
}

// SceneOptions tune what Board.Scene draws.
type SceneOptions struct {
	// Label names a card. Defaults to the wrapped record's name.
	Label    func(area.Card) string
	Selected string
	Zone     *RemoveZone
	NoGrid   bool
}

// Scene builds the draw list for the current board.
func (b *Board) Scene(opts SceneOptions) Scene {
	s := Scene{Width: area.CanvasWidth, Height: area.CanvasHeight}
	if !opts.NoGrid {
		s.Grid = Grid(area.CanvasWidth, area.CanvasHeight, area.GridSpacing)
	}

	for _, c := range b.conns {
		from, okFrom := b.Card(c.From)
		to, okTo := b.Card(c.To)
		if !okFrom || !okTo {
			continue
		}
		s.Edges = append(s.Edges, curve(
			area.Anchor(from.Position, area.DirectionRight),
			area.Anchor(to.Position, area.DirectionLeft),
			false,
		))
	}
	if b.active != nil {
		s.Edges = append(s.Edges, curve(b.active.Start, b.active.Point, true))
	}

	label := opts.Label
	if label == nil {
		label = func(c area.Card) string { return c.Name() }
	}
	for _, c := range b.cards {
		s.Cards = append(s.Cards, Shape{
			ID:       c.ID,
			Kind:     c.Kind,
			Min:      c.Position,
			Width:    area.CardWidth,
			Height:   area.CardHeight,
			Label:    label(c),
			Selected: c.ID == opts.Selected,
		})
	}

	if opts.Zone != nil && opts.Zone.Progress() > 0 {
		s.Zone = &Band{
			Y:       b.RemoveZoneTop(),
			Width:   b.viewport.X,
			Height:  area.RemoveZoneHeight,
			Opacity: opts.Zone.Progress(),
		}
	}
	return s
}

func curve(from, to area.Point, pending bool) Curve {
	dx := math.Max(60, math.Abs(to.X-from.X)/2)
	return Curve{
		From:    from,
		C1:      area.Point{X: from.X + dx, Y: from.Y},
		C2:      area.Point{X: to.X - dx, Y: to.Y},
		To:      to,
		Pending: pending,
	}
}

// WriteSVG renders the scene as a standalone SVG document.
func (s Scene) WriteSVG(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		s.Width, s.Height, s.Width, s.Height)

	if len(s.Grid) > 0 {
		sb.WriteString(`<g stroke="#eeeeee" stroke-width="1">` + "\n")
		for _, l := range s.Grid {
			fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g"/>`+"\n", l.From.X, l.From.Y, l.To.X, l.To.Y)
		}
		sb.WriteString("</g>\n")
	}

	for _, e := range s.Edges {
		dash := ""
		if e.Pending {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&sb, `<path d="M %g %g C %g %g, %g %g, %g %g" fill="none" stroke="#555555" stroke-width="2"%s/>`+"\n",
			e.From.X, e.From.Y, e.C1.X, e.C1.Y, e.C2.X, e.C2.Y, e.To.X, e.To.Y, dash)
	}

	for _, c := range s.Cards {
		fill := "#dbeafe"
		if c.Kind == area.KindReaction {
			fill = "#dcfce7"
		}
		stroke := "#64748b"
		if c.Selected {
			stroke = "#2563eb"
		}
		fmt.Fprintf(&sb, `<g id="%s"><rect x="%g" y="%g" width="%g" height="%g" rx="8" fill="%s" stroke="%s"/>`,
			html.EscapeString(c.ID), c.Min.X, c.Min.Y, c.Width, c.Height, fill, stroke)
		fmt.Fprintf(&sb, `<text x="%g" y="%g" text-anchor="middle" font-family="sans-serif" font-size="14">%s</text></g>`+"\n",
			c.Min.X+c.Width/2, c.Min.Y+c.Height/2+5, html.EscapeString(c.Label))
	}

	if s.Zone != nil {
		fmt.Fprintf(&sb, `<g class="overlay"><rect x="0" y="%g" width="%g" height="%g" fill="#ef4444" fill-opacity="%.2f"/></g>`+"\n",
			s.Zone.Y, s.Zone.Width, s.Zone.Height, s.Zone.Opacity)
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
