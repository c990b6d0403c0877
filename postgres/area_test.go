package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/area"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveRequest() *area.SaveRequest {
	return &area.SaveRequest{
		Name:      "Release notifier",
		Actions:   []area.ActionRecord{{Name: "New release", Parameters: map[string]any{"repo": "octo/cat"}}},
		Reactions: []area.ReactionRecord{{Name: "Send mail"}, {Name: "Post message"}},
		Connections: []area.SavedConnection{
			{SourceServiceID: "action_0", TargetServiceID: "reaction_0", LinkType: area.LinkChain},
			{SourceServiceID: "reaction_0", TargetServiceID: "reaction_1", LinkType: area.LinkConditional,
				Condition: map[string]any{"status": "sent"}},
		},
	}
}

func TestPrepare(t *testing.T) {
	req := saveRequest()
	rec, err := prepare(req)
	require.NoError(t, err)

	assert.Equal(t, area.LayoutLinear, rec.LayoutMode)
	require.Len(t, rec.Actions, 1)
	require.Len(t, rec.Reactions, 2)
	assert.NotEmpty(t, rec.Actions[0].ID)
	assert.Empty(t, req.Actions[0].ID, "request is not mutated")

	require.Len(t, rec.Connections, 2)
	assert.Equal(t, rec.Actions[0].ID, rec.Connections[0].SourceID)
	assert.Equal(t, rec.Reactions[0].ID, rec.Connections[0].TargetID)
	assert.Equal(t, "Post message", rec.Connections[1].TargetName)
	assert.NotEmpty(t, rec.Connections[1].ID)
}

func TestPrepare_Rejects(t *testing.T) {
	req := saveRequest()
	req.Connections = append(req.Connections, area.SavedConnection{SourceServiceID: "reaction_1", TargetServiceID: "action_0"})
	_, err := prepare(req)
	assert.ErrorIs(t, err, area.ErrCycleDetected)

	req = saveRequest()
	req.Connections[0].TargetServiceID = "reaction_9"
	_, err = prepare(req)
	assert.ErrorIs(t, err, area.ErrUnknownServiceID)
}

// TestPGStore runs against a real database when DATABASE_URL is set.
func TestPGStore(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	store := New(pool)
	require.NoError(t, store.CreateSchema(ctx))
	t.Cleanup(func() { _ = store.DropSchema(ctx) })

	created, err := store.CreateAreaWithActions(ctx, saveRequest())
	require.NoError(t, err)

	got, err := store.GetArea(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Release notifier", got.Name)
	assert.Len(t, got.Actions, 1)
	assert.Len(t, got.Reactions, 2)
	require.Len(t, got.Connections, 2)
	assert.Equal(t, "New release", got.Connections[0].SourceName)
	assert.Equal(t, area.KindReaction, got.Connections[1].SourceType)

	upd := saveRequest()
	upd.Name = "Renamed"
	upd.Connections = upd.Connections[:1]
	_, err = store.UpdateAreaComplete(ctx, created.ID, upd)
	require.NoError(t, err)

	got, err = store.GetArea(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Connections, 1)

	list, err := store.ListAreas(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.UpdateAreaComplete(ctx, "missing", upd)
	assert.ErrorIs(t, err, area.ErrAreaNotFound)

	require.NoError(t, store.DeleteArea(ctx, created.ID))
	_, err = store.GetArea(ctx, created.ID)
	assert.ErrorIs(t, err, area.ErrAreaNotFound)
}
