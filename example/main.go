package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/editor"
	"github.com/meikuraledutech/area/internal/logging"
	"github.com/meikuraledutech/area/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// The editor saves straight into postgres here; the CLI goes through the API.
	store := postgres.New(pool)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	s := editor.New(store, editor.WithLogger(logging.New(logging.ParseLevel("debug"))))
	s.SetName("Release notifier")

	github := area.ServiceRef{ID: "svc-github", Key: "github", Name: "GitHub"}
	mail := area.ServiceRef{ID: "svc-mail", Key: "mail", Name: "Mail"}

	// ── Place cards ───────────────────────────────────────────────────
	release := s.AttachAction(area.ActionRecord{
		ActionDefinitionID: "github.release",
		Name:               "New release",
		Parameters:         map[string]any{"repo": "octo/cat"},
	}, github, area.DefinitionRef{ID: "github.release"}, area.Point{X: 80, Y: 80})
	notify := s.AttachReaction(area.ReactionRecord{
		ActionDefinitionID: "mail.send",
		Name:               "Send mail",
		Parameters:         map[string]any{"to": "team@example.com"},
	}, mail, area.DefinitionRef{ID: "mail.send"}, area.Point{X: 480, Y: 80})
	archive := s.AttachReaction(area.ReactionRecord{
		ActionDefinitionID: "mail.archive",
		Name:               "Archive mail",
	}, mail, area.DefinitionRef{ID: "mail.archive"}, area.Point{X: 880, Y: 80})

	// ── Draw a connection from the action's right handle ─────────────
	ctl, _ := s.Controller(release)
	ctl.BeginConnect(area.DirectionRight)
	target := area.Point{X: 482, Y: 120}
	ctl.UpdateConnect(area.DirectionRight, target)
	ctl.EndConnect(area.DirectionRight, target)
	ctl.FinalizeConnect(area.DirectionRight)
	fmt.Printf("connections after drawing: %d\n", len(s.Board().Connections()))

	// ── Configure a conditional link between the two reactions ───────
	d, _ := s.LinkDraft(notify, archive)
	d.SetLinkType(area.LinkConditional)
	d.ConditionText = `{"field": "status", "equals": "sent"}`
	d.OrderText = "1"
	if _, err := s.ConfigureLink(d); err != nil {
		log.Fatalf("configure link: %v", err)
	}

	// ── Save ──────────────────────────────────────────────────────────
	outcome, err := s.Save(ctx)
	if err != nil {
		log.Fatalf("save (%s): %v", outcome, err)
	}
	fmt.Printf("\narea saved: %s\n", s.AreaID())

	// ── Reload into a fresh session ───────────────────────────────────
	reopened := editor.New(store)
	if err := reopened.Load(ctx, s.AreaID()); err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Println("\nreloaded request:")
	printJSON(reopened.Request())

	// ── Render ────────────────────────────────────────────────────────
	f, err := os.Create("area.svg")
	if err != nil {
		log.Fatalf("create svg: %v", err)
	}
	defer f.Close()
	if err := reopened.Scene().WriteSVG(f); err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Println("\nscene written to area.svg")

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteArea(ctx, s.AreaID()); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\narea deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
