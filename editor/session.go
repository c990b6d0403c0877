// Package editor wires the canvas, the working set and the link store into
// one editing session and saves it through an area.Service.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/canvas"
	"github.com/meikuraledutech/area/internal/logging"
	"github.com/meikuraledutech/area/link"
	"github.com/meikuraledutech/area/mapper"
	"github.com/meikuraledutech/area/workset"
)

// DraftStore keeps unsaved sessions around across restarts.
type DraftStore interface {
	Save(ctx context.Context, key string, snap *workset.Snapshot) error
	Load(ctx context.Context, key string) (*workset.Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// Outcome is the result class of a save.
type Outcome int

const (
	Saved Outcome = iota
	Invalid
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Invalid:
		return "invalid"
	default:
		return "network-error"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithCatalog sets the catalog used to label cards.
func WithCatalog(c area.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithDrafts keeps a copy of the session in d whenever a save fails on the network.
func WithDrafts(d DraftStore, key string) Option {
	return func(s *Session) {
		s.drafts = d
		s.draftKey = key
	}
}

// WithViewport sets the viewport size of the canvas.
func WithViewport(width, height float64) Option {
	return func(s *Session) { s.board.SetViewport(width, height) }
}

// Session is one open editor. It runs on the UI goroutine and is not safe
// for concurrent use; only the calls into the area service block.
type Session struct {
	svc     area.Service
	catalog area.Catalog
	log     *slog.Logger

	drafts   DraftStore
	draftKey string

	board       *canvas.Board
	zone        canvas.RemoveZone
	controllers map[string]*canvas.Controller
	ws          *workset.Set
	links       *link.Store

	areaID      string
	name        string
	description string
	selected    string
	dragging    int
}

// New creates an empty session saving through svc.
func New(svc area.Service, opts ...Option) *Session {
	s := &Session{
		svc:         svc,
		log:         logging.NewNop(),
		board:       canvas.NewBoard(1080, 1920),
		controllers: make(map[string]*canvas.Controller),
		ws:          workset.New(),
		links:       link.NewStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns the canvas model.
func (s *Session) Board() *canvas.Board { return s.board }

// WorkingSet returns the working set.
func (s *Session) WorkingSet() *workset.Set { return s.ws }

// Links returns the link store.
func (s *Session) Links() *link.Store { return s.links }

// Zone returns the remove zone animation state.
func (s *Session) Zone() *canvas.RemoveZone { return &s.zone }

// AreaID returns the id of the stored area, empty until the first save.
func (s *Session) AreaID() string { return s.areaID }

// SetName sets the area name.
func (s *Session) SetName(name string) { s.name = name }

// SetDescription sets the area description.
func (s *Session) SetDescription(d string) { s.description = d }

// Controller returns the gesture controller of a card.
func (s *Session) Controller(id string) (*canvas.Controller, bool) {
	c, ok := s.controllers[id]
	return c, ok
}

// SetViewport resizes the canvas and moves the remove zone edge.
func (s *Session) SetViewport(width, height float64) {
	s.board.SetViewport(width, height)
	for _, c := range s.controllers {
		c.SetZoneTop(s.board.RemoveZoneTop())
	}
}

// AttachAction adds an action to the working set and places its card.
// It returns the card id.
func (s *Session) AttachAction(rec area.ActionRecord, svc area.ServiceRef, def area.DefinitionRef, pos area.Point) string {
	i := s.ws.AddAction(rec, svc, def)
	key, _ := s.ws.KeyAt(area.KindAction, i)
	r := s.ws.Actions()[i].Record
	s.place(area.Card{ID: key, Kind: area.KindAction, Position: pos, Action: &r})
	s.log.Debug("action attached", "card", key, "index", i, "definition", def.ID)
	return key
}

// AttachReaction adds a reaction to the working set and places its card.
func (s *Session) AttachReaction(rec area.ReactionRecord, svc area.ServiceRef, def area.DefinitionRef, pos area.Point) string {
	i := s.ws.AddReaction(rec, svc, def)
	key, _ := s.ws.KeyAt(area.KindReaction, i)
	r := s.ws.Reactions()[i].Record
	s.place(area.Card{ID: key, Kind: area.KindReaction, Position: pos, Reaction: &r})
	s.log.Debug("reaction attached", "card", key, "index", i, "definition", def.ID)
	return key
}

// UpdateCard replaces the record behind a card, keeping its links.
func (s *Session) UpdateCard(id string, action *area.ActionRecord, reaction *area.ReactionRecord, svc area.ServiceRef, def area.DefinitionRef) bool {
	kind, i, ok := s.ws.IndexOf(id)
	if !ok {
		return false
	}
	switch {
	case kind == area.KindAction && action != nil:
		s.ws.UpdateAction(i, *action, svc, def)
		r := s.ws.Actions()[i].Record
		return s.board.ReplaceCard(area.Card{ID: id, Kind: kind, Action: &r})
	case kind == area.KindReaction && reaction != nil:
		s.ws.UpdateReaction(i, *reaction, svc, def)
		r := s.ws.Reactions()[i].Record
		return s.board.ReplaceCard(area.Card{ID: id, Kind: kind, Reaction: &r})
	}
	return false
}

func (s *Session) place(c area.Card) {
	s.board.AddCard(c)
	s.controllers[c.ID] = canvas.NewController(c.ID, c.Position, s.board.RemoveZoneTop(), s)
}

// SelectNode marks a card as selected. An unknown id clears the selection.
func (s *Session) SelectNode(id string) {
	if _, ok := s.board.Card(id); !ok {
		id = ""
	}
	s.selected = id
}

// Selected returns the selected card id.
func (s *Session) Selected() string { return s.selected }

// DragStarted implements canvas.Listener.
func (s *Session) DragStarted(string) {
	s.dragging++
	s.zone.Set(true, false)
}

// DragEnded implements canvas.Listener.
func (s *Session) DragEnded(string) {
	if s.dragging > 0 {
		s.dragging--
	}
	s.zone.Set(s.dragging > 0, false)
}

// ToggleRemoveZone implements canvas.Listener.
func (s *Session) ToggleRemoveZone(_ string, active bool) {
	s.zone.Set(s.dragging > 0, active)
}

// MoveNode implements canvas.Listener and commits a card position.
func (s *Session) MoveNode(id string, pos area.Point) {
	s.board.MoveCard(id, pos)
}

// RemoveNode implements canvas.Listener. The card, its edges, its working
// set entry and every link touching it go in one step.
func (s *Session) RemoveNode(id string) {
	dropped, ok := s.board.RemoveCard(id)
	if !ok {
		return
	}
	delete(s.controllers, id)
	if s.selected == id {
		s.selected = ""
	}

	kind, i, ok := s.ws.IndexOf(id)
	if !ok {
		return
	}
	n := s.links.DetachNode(kind, i)
	if kind == area.KindAction {
		s.ws.RemoveAction(i)
	} else {
		s.ws.RemoveReaction(i)
	}
	s.log.Info("node removed", "card", id, "kind", kind, "index", i, "edges", len(dropped), "links", n)
}

// StartConnection implements canvas.Listener.
func (s *Session) StartConnection(id string, dir area.Direction, anchor area.Point) {
	s.board.StartConnection(id, dir, anchor)
}

// UpdateConnection implements canvas.Listener.
func (s *Session) UpdateConnection(_ string, p *area.Point) {
	s.board.UpdateConnection(p)
}

// EndConnection implements canvas.Listener. A committed edge gets a default
// chain link unless one already exists for that pair.
func (s *Session) EndConnection(_ string, p area.Point) {
	conn, ok := s.board.EndConnection(p)
	if !ok {
		return
	}
	srcKind, src, okSrc := s.ws.IndexOf(conn.From)
	dstKind, dst, okDst := s.ws.IndexOf(conn.To)
	if !okSrc || !okDst {
		return
	}
	if _, exists := s.links.GetLinkBetween(src, dst, srcKind, dstKind); exists {
		return
	}
	s.links.AddLink(area.LinkConfig{
		SourceIndex: src,
		TargetIndex: dst,
		SourceType:  srcKind,
		TargetType:  dstKind,
		LinkType:    area.LinkChain,
		Mapping:     map[string]any{},
	})
}

// LinkDraft returns the draft for the link between two cards, pre-populated
// when a config exists.
func (s *Session) LinkDraft(from, to string) (link.Draft, bool) {
	srcKind, src, okSrc := s.ws.IndexOf(from)
	dstKind, dst, okDst := s.ws.IndexOf(to)
	if !okSrc || !okDst {
		return link.Draft{}, false
	}
	if cfg, ok := s.links.GetLinkBetween(src, dst, srcKind, dstKind); ok {
		return link.DraftFrom(cfg), true
	}
	d := link.NewDraft()
	d.SelectSource(src, srcKind)
	d.SelectTarget(dst, dstKind)
	return d, true
}

// ConfigureLink validates a draft and stores its config. The canvas gets the
// matching edge if it was not drawn yet.
func (s *Session) ConfigureLink(d link.Draft) (area.LinkConfig, error) {
	cfg, inserted, err := s.links.Save(d)
	if err != nil {
		return area.LinkConfig{}, err
	}
	from, okFrom := s.ws.KeyAt(cfg.SourceType, cfg.SourceIndex)
	to, okTo := s.ws.KeyAt(cfg.TargetType, cfg.TargetIndex)
	if okFrom && okTo {
		s.board.Connect(from, to)
	}
	s.log.Debug("link configured", "from", from, "to", to, "type", cfg.LinkType, "inserted", inserted)
	return cfg, nil
}

// RemoveLink deletes the link and the edge between two cards.
func (s *Session) RemoveLink(from, to string) bool {
	srcKind, src, okSrc := s.ws.IndexOf(from)
	dstKind, dst, okDst := s.ws.IndexOf(to)
	if !okSrc || !okDst {
		return false
	}
	n := s.links.RemoveLink(func(l area.LinkConfig) bool {
		return l.Between(src, dst, srcKind, dstKind) || l.Between(dst, src, dstKind, srcKind)
	})
	edge := s.board.Disconnect(from, to)
	return n > 0 || edge
}

// Scene returns the draw list of the canvas.
func (s *Session) Scene() canvas.Scene {
	return s.board.Scene(canvas.SceneOptions{
		Label:    s.label,
		Selected: s.selected,
		Zone:     &s.zone,
	})
}

func (s *Session) label(c area.Card) string {
	if s.catalog != nil {
		if l, ok := s.catalog.Lookup("", c.DefinitionID()); ok && l.Name != "" {
			return l.Name
		}
	}
	return c.Name()
}

// Request builds the save payload of the current working set.
func (s *Session) Request() *area.SaveRequest {
	return mapper.ToSaveRequest(s.name, s.description, s.ws, s.links.Links())
}

// Save validates and stores the session. On a network failure the working
// set is left as is, so the user can retry.
func (s *Session) Save(ctx context.Context) (Outcome, error) {
	if s.ws.IsSaving() {
		return Invalid, area.ErrSaveInProgress
	}
	req := s.Request()
	if err := mapper.Validate(req); err != nil {
		return Invalid, err
	}

	s.ws.SetSaving(true)
	defer s.ws.SetSaving(false)

	var (
		rec *area.AreaRecord
		err error
	)
	if s.areaID == "" {
		rec, err = s.svc.CreateAreaWithActions(ctx, req)
	} else {
		rec, err = s.svc.UpdateAreaComplete(ctx, s.areaID, req)
	}
	if err != nil {
		if errors.Is(err, area.ErrValidation) {
			return Invalid, err
		}
		s.log.Warn("area save failed", "area", s.areaID, "error", err)
		s.keepDraft(ctx)
		return NetworkError, fmt.Errorf("area: save: %w", err)
	}

	if rec != nil && rec.ID != "" {
		s.areaID = rec.ID
	}
	s.dropDraft(ctx)
	s.log.Info("area saved", "area", s.areaID, "actions", len(req.Actions),
		"reactions", len(req.Reactions), "connections", len(req.Connections))
	return Saved, nil
}

// Load replaces the session content with a stored area.
func (s *Session) Load(ctx context.Context, id string) error {
	rec, err := s.svc.GetArea(ctx, id)
	if err != nil {
		return fmt.Errorf("area: load %s: %w", id, err)
	}
	s.Open(rec)
	return nil
}

// Open replaces the session content with an already fetched area.
func (s *Session) Open(rec *area.AreaRecord) {
	loaded := mapper.FromArea(rec, s.catalog)
	if loaded.Dropped > 0 {
		s.log.Debug("stored connections not matched", "area", rec.ID, "dropped", loaded.Dropped)
	}
	s.restore(&workset.Snapshot{
		AreaID:      rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Actions:     loaded.Actions,
		Reactions:   loaded.Reactions,
		Links:       loaded.Links,
	})
}

// Snapshot copies the session into a serializable value.
func (s *Session) Snapshot() *workset.Snapshot {
	return &workset.Snapshot{
		AreaID:      s.areaID,
		Name:        s.name,
		Description: s.description,
		Actions:     s.ws.Actions(),
		Reactions:   s.ws.Reactions(),
		Links:       s.links.Links(),
	}
}

// RestoreDraft loads the draft kept by a failed save.
func (s *Session) RestoreDraft(ctx context.Context) error {
	if s.drafts == nil {
		return area.ErrDraftNotFound
	}
	snap, err := s.drafts.Load(ctx, s.draftKey)
	if err != nil {
		return err
	}
	s.restore(snap)
	return nil
}

// Discard drops everything the session holds.
func (s *Session) Discard() {
	s.ws.ClearAll()
	s.links.ClearLinks()
	s.board.Clear()
	s.controllers = make(map[string]*canvas.Controller)
	s.zone = canvas.RemoveZone{}
	s.areaID, s.name, s.description, s.selected = "", "", "", ""
	s.dragging = 0
}

func (s *Session) restore(snap *workset.Snapshot) {
	s.Discard()
	s.areaID = snap.AreaID
	s.name = snap.Name
	s.description = snap.Description
	s.ws.InitializeWithData(snap.Actions, snap.Reactions)
	s.links.InitializeLinks(snap.Links)

	for i, e := range s.ws.Actions() {
		r := e.Record
		s.place(area.Card{ID: e.Key, Kind: area.KindAction, Position: Slot(area.KindAction, i), Action: &r})
	}
	for i, e := range s.ws.Reactions() {
		r := e.Record
		s.place(area.Card{ID: e.Key, Kind: area.KindReaction, Position: Slot(area.KindReaction, i), Reaction: &r})
	}
	for _, l := range s.links.Links() {
		from, okFrom := s.ws.KeyAt(l.SourceType, l.SourceIndex)
		to, okTo := s.ws.KeyAt(l.TargetType, l.TargetIndex)
		if okFrom && okTo {
			s.board.Connect(from, to)
		}
	}
}

func (s *Session) keepDraft(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Save(ctx, s.draftKey, s.Snapshot()); err != nil {
		s.log.Warn("draft not kept", "key", s.draftKey, "error", err)
	}
}

func (s *Session) dropDraft(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Delete(ctx, s.draftKey); err != nil {
		s.log.Warn("draft not dropped", "key", s.draftKey, "error", err)
	}
}
