package area_test

import (
	"errors"
	"testing"

	"github.com/meikuraledutech/area"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceID(t *testing.T) {
	kind, i, err := area.ParseServiceID(area.ServiceID(area.KindReaction, 12))
	require.NoError(t, err)
	assert.Equal(t, area.KindReaction, kind)
	assert.Equal(t, 12, i)

	for _, bad := range []string{"", "action", "action_", "trigger_1", "action_-1", "_3"} {
		_, _, err := area.ParseServiceID(bad)
		assert.ErrorIs(t, err, area.ErrUnknownServiceID, bad)
	}
}

func TestValidationError(t *testing.T) {
	err := area.Invalid(area.CodeInvalidMappingJSON, errors.New("unexpected end"))
	assert.ErrorIs(t, err, area.ErrValidation)
	assert.Equal(t, area.CodeInvalidMappingJSON, area.ValidationCode(err))
	assert.Empty(t, area.ValidationCode(area.ErrAreaNotFound))
}

func TestCloneMapIsDeep(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": []any{1.0, map[string]any{"c": "d"}}}}
	dst := area.CloneMap(src)
	dst["a"].(map[string]any)["b"].([]any)[1].(map[string]any)["c"] = "changed"

	assert.Equal(t, "d", src["a"].(map[string]any)["b"].([]any)[1].(map[string]any)["c"])
	assert.Nil(t, area.CloneMap(nil))
}

func TestAnchor(t *testing.T) {
	pos := area.Point{X: 10, Y: 20}
	assert.Equal(t, area.Point{X: 10, Y: 20 + area.CardHeight/2}, area.Anchor(pos, area.DirectionLeft))
	assert.Equal(t, area.Point{X: 10 + area.CardWidth, Y: 20 + area.CardHeight/2}, area.Anchor(pos, area.DirectionRight))
	assert.True(t, area.Contains(pos, area.Point{X: 15, Y: 25}))
	assert.False(t, area.Contains(pos, area.Point{X: 5, Y: 25}))
}

func TestResolveConnections(t *testing.T) {
	req := &area.SaveRequest{
		Actions:   []area.ActionRecord{{Name: "On push"}},
		Reactions: []area.ReactionRecord{{Name: "Send mail"}, {Name: "Post message"}},
		Connections: []area.SavedConnection{
			{SourceServiceID: "action_0", TargetServiceID: "reaction_0", LinkType: area.LinkChain},
			{SourceServiceID: "reaction_0", TargetServiceID: "reaction_1", LinkType: area.LinkSequential, Order: 2},
		},
	}
	conns, err := area.ResolveConnections(req, []string{"a1"}, []string{"r1", "r2"})
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "a1", conns[0].SourceID)
	assert.Equal(t, "Send mail", conns[0].TargetName)
	assert.Equal(t, area.KindReaction, conns[1].SourceType)
	assert.Equal(t, 2, conns[1].Order)

	req.Connections = append(req.Connections, area.SavedConnection{SourceServiceID: "action_3", TargetServiceID: "reaction_0"})
	_, err = area.ResolveConnections(req, []string{"a1"}, []string{"r1", "r2"})
	assert.ErrorIs(t, err, area.ErrUnknownServiceID)
}

func TestValidateAcyclic(t *testing.T) {
	line := []area.AreaConnection{
		{SourceID: "a", TargetID: "b"},
		{SourceID: "b", TargetID: "c"},
	}
	assert.NoError(t, area.ValidateAcyclic(line))

	loop := append(line, area.AreaConnection{SourceID: "c", TargetID: "a"})
	assert.ErrorIs(t, area.ValidateAcyclic(loop), area.ErrCycleDetected)
}
