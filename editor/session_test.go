package editor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/editor"
	"github.com/meikuraledutech/area/workset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService records save requests and serves canned areas.
type fakeService struct {
	areas   map[string]*area.AreaRecord
	created []*area.SaveRequest
	updated []*area.SaveRequest
	err     error
}

func (f *fakeService) GetArea(_ context.Context, id string) (*area.AreaRecord, error) {
	if rec, ok := f.areas[id]; ok {
		return rec, nil
	}
	return nil, area.ErrAreaNotFound
}

func (f *fakeService) CreateAreaWithActions(_ context.Context, req *area.SaveRequest) (*area.AreaRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &area.AreaRecord{ID: "area-1", Name: req.Name}, nil
}

func (f *fakeService) UpdateAreaComplete(_ context.Context, id string, req *area.SaveRequest) (*area.AreaRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, req)
	return &area.AreaRecord{ID: id, Name: req.Name}, nil
}

// memDrafts is an in-memory editor.DraftStore.
type memDrafts map[string]*workset.Snapshot

func (m memDrafts) Save(_ context.Context, key string, snap *workset.Snapshot) error {
	m[key] = snap
	return nil
}

func (m memDrafts) Load(_ context.Context, key string) (*workset.Snapshot, error) {
	if s, ok := m[key]; ok {
		return s, nil
	}
	return nil, area.ErrDraftNotFound
}

func (m memDrafts) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

var (
	svcRef = area.ServiceRef{ID: "svc", Key: "github"}
	defRef = area.DefinitionRef{ID: "def"}
)

func newSession(t *testing.T, opts ...editor.Option) (*editor.Session, *fakeService) {
	t.Helper()
	svc := &fakeService{areas: map[string]*area.AreaRecord{}}
	s := editor.New(svc, append([]editor.Option{editor.WithViewport(800, 600)}, opts...)...)
	s.SetName("My area")
	return s, svc
}

func TestSave_DefaultChain(t *testing.T) {
	s, svc := newSession(t)
	s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{X: 50, Y: 50})
	s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400, Y: 50})

	outcome, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, editor.Saved, outcome)
	require.Len(t, svc.created, 1)

	conns := svc.created[0].Connections
	require.Len(t, conns, 1)
	assert.Equal(t, area.LinkChain, conns[0].LinkType)
	assert.Equal(t, "action_0", conns[0].SourceServiceID)
	assert.Equal(t, "reaction_0", conns[0].TargetServiceID)
	assert.Equal(t, "area-1", s.AreaID())

	_, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, svc.updated, 1, "second save updates the stored area")
}

func TestSave_Validation(t *testing.T) {
	s, svc := newSession(t)
	outcome, err := s.Save(context.Background())
	assert.Equal(t, editor.Invalid, outcome)
	assert.Equal(t, area.CodeNoActions, area.ValidationCode(err))

	s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	s.SetName("")
	_, err = s.Save(context.Background())
	assert.Equal(t, area.CodeMissingName, area.ValidationCode(err))
	assert.Empty(t, svc.created)
}

func TestSave_NetworkErrorKeepsWorkingSet(t *testing.T) {
	drafts := memDrafts{}
	s, svc := newSession(t, editor.WithDrafts(drafts, "draft-1"))
	s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	svc.err = errors.New("connection refused")

	outcome, err := s.Save(context.Background())
	assert.Equal(t, editor.NetworkError, outcome)
	assert.Error(t, err)
	assert.False(t, s.WorkingSet().IsSaving())
	assert.Equal(t, 1, s.WorkingSet().Len(area.KindAction))
	require.Contains(t, drafts, "draft-1")

	fresh := editor.New(svc, editor.WithDrafts(drafts, "draft-1"))
	require.NoError(t, fresh.RestoreDraft(context.Background()))
	assert.Equal(t, 1, fresh.WorkingSet().Len(area.KindAction))
	assert.Len(t, fresh.Board().Cards(), 1)

	svc.err = nil
	outcome, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, editor.Saved, outcome)
	assert.NotContains(t, drafts, "draft-1")
}

func TestSave_RefusesReentry(t *testing.T) {
	s, _ := newSession(t)
	s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	s.WorkingSet().SetSaving(true)

	_, err := s.Save(context.Background())
	assert.ErrorIs(t, err, area.ErrSaveInProgress)
}

func TestMoveGestureCommitsPosition(t *testing.T) {
	s, _ := newSession(t)
	id := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{X: 100, Y: 100})
	ctl, ok := s.Controller(id)
	require.True(t, ok)

	ctl.BeginMove()
	assert.Equal(t, 0.5, s.Zone().Intensity().Target())
	ctl.UpdateMove(area.Point{X: 30, Y: 40}, area.Point{X: 230, Y: 240})
	ctl.EndMove()

	card, ok := s.Board().Card(id)
	require.True(t, ok)
	assert.Equal(t, area.Point{X: 130, Y: 140}, card.Position)
	assert.Equal(t, 1, s.WorkingSet().Len(area.KindAction))
	assert.Equal(t, 0.0, s.Zone().Intensity().Target())
}

func TestRemoveZoneDropCascades(t *testing.T) {
	s, _ := newSession(t)
	a := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{X: 100, Y: 100})
	r := s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400, Y: 100})
	require.True(t, s.Board().Connect(a, r))
	d, ok := s.LinkDraft(a, r)
	require.True(t, ok)
	_, err := s.ConfigureLink(d)
	require.NoError(t, err)

	ctl, _ := s.Controller(a)
	ctl.BeginMove()
	ctl.UpdateMove(area.Point{Y: 400}, area.Point{X: 150, Y: 560})
	assert.Equal(t, 1.0, s.Zone().Intensity().Target())
	ctl.EndMove()

	_, ok = s.Board().Card(a)
	assert.False(t, ok)
	assert.Empty(t, s.Board().Connections())
	assert.Zero(t, s.WorkingSet().Len(area.KindAction))
	assert.Zero(t, s.Links().Len())
	_, ok = s.Controller(a)
	assert.False(t, ok)
}

func TestDrawConnectionCreatesChainLink(t *testing.T) {
	s, _ := newSession(t)
	a := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{X: 100, Y: 100})
	s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400, Y: 100})

	ctl, _ := s.Controller(a)
	ctl.BeginConnect(area.DirectionRight)
	require.NotNil(t, s.Board().Active())
	ctl.UpdateConnect(area.DirectionRight, area.Point{X: 380, Y: 140})
	ctl.EndConnect(area.DirectionRight, area.Point{X: 402, Y: 138})
	ctl.FinalizeConnect(area.DirectionRight)

	assert.Nil(t, s.Board().Active())
	assert.Len(t, s.Board().Connections(), 1)
	cfg, ok := s.Links().GetLinkBetween(0, 0, area.KindAction, area.KindReaction)
	require.True(t, ok)
	assert.Equal(t, area.LinkChain, cfg.LinkType)
}

func TestConfigureLink_InvalidConditionChangesNothing(t *testing.T) {
	s, _ := newSession(t)
	a := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	r := s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400})

	d, _ := s.LinkDraft(a, r)
	d.SetLinkType(area.LinkConditional)
	d.ConditionText = "{invalid"
	_, err := s.ConfigureLink(d)
	assert.Equal(t, area.CodeInvalidConditionJSON, area.ValidationCode(err))
	assert.Zero(t, s.Links().Len())
	assert.Empty(t, s.Board().Connections())

	d.ConditionText = `{"field":"state","equals":"open"}`
	cfg, err := s.ConfigureLink(d)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Condition)
	assert.Len(t, s.Board().Connections(), 1)

	again, _ := s.LinkDraft(a, r)
	assert.Equal(t, area.LinkConditional, again.LinkType)
}

func TestRemovedActionLinkIsNotEmitted(t *testing.T) {
	s, _ := newSession(t)
	a0 := s.AttachAction(area.ActionRecord{Name: "first"}, svcRef, defRef, area.Point{})
	a1 := s.AttachAction(area.ActionRecord{Name: "second"}, svcRef, defRef, area.Point{Y: 200})
	r := s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400})

	for _, from := range []string{a0, a1} {
		d, _ := s.LinkDraft(from, r)
		d.SetLinkType(area.LinkParallel)
		_, err := s.ConfigureLink(d)
		require.NoError(t, err)
	}
	d, _ := s.LinkDraft(a1, r)
	d.OrderText = "7"
	_, err := s.ConfigureLink(d)
	require.NoError(t, err)

	s.RemoveNode(a0)

	req := s.Request()
	require.Len(t, req.Actions, 1)
	assert.Equal(t, "second", req.Actions[0].Name)
	require.Len(t, req.Connections, 1)
	assert.Equal(t, "action_0", req.Connections[0].SourceServiceID)
	assert.Equal(t, 7, req.Connections[0].Order, "the surviving link is the one of the second action")
}

func TestRemoveLink(t *testing.T) {
	s, _ := newSession(t)
	a := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	r := s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 400})
	d, _ := s.LinkDraft(a, r)
	_, err := s.ConfigureLink(d)
	require.NoError(t, err)

	assert.True(t, s.RemoveLink(r, a))
	assert.Zero(t, s.Links().Len())
	assert.Empty(t, s.Board().Connections())
	assert.False(t, s.RemoveLink(a, "missing"))
}

func TestLoadReconcilesByName(t *testing.T) {
	s, svc := newSession(t)
	svc.areas["stored"] = &area.AreaRecord{
		ID:        "stored",
		Name:      "Stored",
		Actions:   []area.ActionRecord{{Name: "On push"}, {Name: "On tag"}},
		Reactions: []area.ReactionRecord{{Name: "Send mail"}},
		Connections: []area.AreaConnection{
			{SourceName: "On tag", TargetName: "Send mail", LinkType: area.LinkChain},
			{SourceName: "Deleted", TargetName: "Send mail", LinkType: area.LinkChain},
		},
	}

	require.NoError(t, s.Load(context.Background(), "stored"))
	require.Equal(t, 1, s.Links().Len())
	cfg := s.Links().Links()[0]
	assert.Equal(t, 1, cfg.SourceIndex)
	assert.Equal(t, 0, cfg.TargetIndex)
	assert.Equal(t, area.KindAction, cfg.SourceType)
	assert.Equal(t, area.KindReaction, cfg.TargetType)
	assert.Len(t, s.Board().Cards(), 3)
	assert.Len(t, s.Board().Connections(), 1)
	assert.Equal(t, "stored", s.AreaID())

	err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, area.ErrAreaNotFound)
}

func TestOpen_CollidingRecordIDs(t *testing.T) {
	s, _ := newSession(t)
	s.Open(&area.AreaRecord{
		ID:        "stored",
		Name:      "Stored",
		Actions:   []area.ActionRecord{{ID: "1", Name: "On push"}},
		Reactions: []area.ReactionRecord{{ID: "1", Name: "Send mail"}},
		Connections: []area.AreaConnection{
			{SourceName: "On push", TargetName: "Send mail", SourceType: area.KindAction, TargetType: area.KindReaction, LinkType: area.LinkChain},
		},
	})

	require.Len(t, s.Board().Cards(), 2)
	assert.Len(t, s.Board().Connections(), 1)
	assert.Equal(t, 1, s.Links().Len())

	reaction := s.WorkingSet().Reactions()[0].Key
	assert.NotEqual(t, "1", reaction)
	_, ok := s.Controller(reaction)
	require.True(t, ok)

	s.RemoveNode(reaction)
	assert.Len(t, s.Board().Cards(), 1)
	assert.Empty(t, s.Board().Connections())
	assert.Equal(t, 1, s.WorkingSet().Len(area.KindAction))
	assert.Zero(t, s.WorkingSet().Len(area.KindReaction))
	assert.Zero(t, s.Links().Len())

	s.RemoveNode("1")
	assert.Empty(t, s.Board().Cards())
	assert.Zero(t, s.WorkingSet().Len(area.KindAction))
}

func TestDiscard(t *testing.T) {
	s, _ := newSession(t)
	id := s.AttachAction(area.ActionRecord{Name: "push"}, svcRef, defRef, area.Point{})
	s.SelectNode(id)
	assert.Equal(t, id, s.Selected())

	s.Discard()
	assert.Empty(t, s.Board().Cards())
	assert.Zero(t, s.WorkingSet().Len(area.KindAction))
	assert.Empty(t, s.Selected())
}

type labels map[string]string

func (l labels) Lookup(_, id string) (area.Label, bool) {
	n, ok := l[id]
	return area.Label{Name: n}, ok
}

func TestSceneUsesCatalogLabels(t *testing.T) {
	s, _ := newSession(t, editor.WithCatalog(labels{"def": "GitHub push"}))
	id := s.AttachAction(area.ActionRecord{Name: "push", ActionDefinitionID: "def"}, svcRef, defRef, area.Point{})
	s.SelectNode(id)

	scene := s.Scene()
	require.Len(t, scene.Cards, 1)
	assert.Equal(t, "GitHub push", scene.Cards[0].Label)
	assert.True(t, scene.Cards[0].Selected)
}

func TestUpdateCard(t *testing.T) {
	s, _ := newSession(t)
	id := s.AttachReaction(area.ReactionRecord{Name: "mail"}, svcRef, defRef, area.Point{X: 10, Y: 10})

	assert.False(t, s.UpdateCard(id, &area.ActionRecord{Name: "wrong kind"}, nil, svcRef, defRef))
	assert.True(t, s.UpdateCard(id, nil, &area.ReactionRecord{Name: "chat"}, svcRef, defRef))

	card, _ := s.Board().Card(id)
	assert.Equal(t, "chat", card.Name())
	assert.Equal(t, area.Point{X: 10, Y: 10}, card.Position)
	assert.Equal(t, "chat", s.WorkingSet().Reactions()[0].Record.Name)
}
