package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/area"
)

// connectionData is the JSONB payload of a stored connection.
type connectionData struct {
	LinkType  area.LinkType  `json:"linkType"`
	Order     int            `json:"order"`
	Mapping   map[string]any `json:"mapping,omitempty"`
	Condition map[string]any `json:"condition,omitempty"`
}

// prepare assigns record ids, resolves the synthetic service ids of the
// connections and checks the graph is acyclic. Nothing touches the database.
func prepare(req *area.SaveRequest) (*area.AreaRecord, error) {
	rec := &area.AreaRecord{
		Name:        req.Name,
		Description: req.Description,
		LayoutMode:  req.LayoutMode,
	}
	if rec.LayoutMode == "" {
		rec.LayoutMode = area.LayoutLinear
	}

	actionIDs := make([]string, len(req.Actions))
	for i, a := range req.Actions {
		a = a.Clone()
		a.ID = uuid.NewString()
		actionIDs[i] = a.ID
		rec.Actions = append(rec.Actions, a)
	}
	reactionIDs := make([]string, len(req.Reactions))
	for i, r := range req.Reactions {
		r = r.Clone()
		r.ID = uuid.NewString()
		reactionIDs[i] = r.ID
		rec.Reactions = append(rec.Reactions, r)
	}

	conns, err := area.ResolveConnections(req, actionIDs, reactionIDs)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		conns[i].ID = uuid.NewString()
	}
	if err := area.ValidateAcyclic(conns); err != nil {
		return nil, err
	}
	rec.Connections = conns
	return rec, nil
}

// CreateAreaWithActions saves a full area (records + connections) in one transaction.
// Connection service ids ("action_0", ...) are resolved to the generated record ids.
func (s *PGStore) CreateAreaWithActions(ctx context.Context, req *area.SaveRequest) (*area.AreaRecord, error) {
	rec, err := prepare(req)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("area: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO areas (id, name, description, layout_mode) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Name, rec.Description, rec.LayoutMode,
	); err != nil {
		return nil, fmt.Errorf("area: insert area: %w", err)
	}
	if err := writeGraph(ctx, tx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("area: commit: %w", err)
	}
	return rec, nil
}

// UpdateAreaComplete replaces every record and connection of an area.
// Returns ErrAreaNotFound if the area doesn't exist.
func (s *PGStore) UpdateAreaComplete(ctx context.Context, id string, req *area.SaveRequest) (*area.AreaRecord, error) {
	rec, err := prepare(req)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("area: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE areas SET name = $1, description = $2, layout_mode = $3, updated_at = NOW() WHERE id = $4`,
		rec.Name, rec.Description, rec.LayoutMode, id,
	)
	if err != nil {
		return nil, fmt.Errorf("area: update area: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, area.ErrAreaNotFound
	}

	// Replace semantics: connections go with their records.
	if _, err := tx.Exec(ctx, `DELETE FROM area_connections WHERE area_id = $1`, id); err != nil {
		return nil, fmt.Errorf("area: delete connections: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM area_records WHERE area_id = $1`, id); err != nil {
		return nil, fmt.Errorf("area: delete records: %w", err)
	}
	if err := writeGraph(ctx, tx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("area: commit: %w", err)
	}
	return rec, nil
}

func writeGraph(ctx context.Context, tx pgx.Tx, rec *area.AreaRecord) error {
	insert := func(id string, kind area.Kind, pos int, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("area: encode %s %s: %w", kind, id, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO area_records (id, area_id, kind, position, data) VALUES ($1, $2, $3, $4, $5)`,
			id, rec.ID, string(kind), pos, json.RawMessage(data),
		); err != nil {
			return fmt.Errorf("area: insert %s %s: %w", kind, id, err)
		}
		return nil
	}

	for i, a := range rec.Actions {
		if err := insert(a.ID, area.KindAction, i, a); err != nil {
			return err
		}
	}
	for i, r := range rec.Reactions {
		if err := insert(r.ID, area.KindReaction, i, r); err != nil {
			return err
		}
	}

	for i, c := range rec.Connections {
		data, err := json.Marshal(connectionData{
			LinkType:  c.LinkType,
			Order:     c.Order,
			Mapping:   c.Mapping,
			Condition: c.Condition,
		})
		if err != nil {
			return fmt.Errorf("area: encode connection %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO area_connections (id, area_id, source_id, target_id, position, data) VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, rec.ID, c.SourceID, c.TargetID, i, json.RawMessage(data),
		); err != nil {
			return fmt.Errorf("area: insert connection %s: %w", c.ID, err)
		}
	}
	return nil
}

// GetArea retrieves a full area (records + connections) by its ID.
// Returns ErrAreaNotFound if no such area exists.
func (s *PGStore) GetArea(ctx context.Context, id string) (*area.AreaRecord, error) {
	rec := &area.AreaRecord{ID: id}
	err := s.db.QueryRow(ctx,
		`SELECT name, description, layout_mode FROM areas WHERE id = $1`, id,
	).Scan(&rec.Name, &rec.Description, &rec.LayoutMode)
	if err != nil {
		if isNoRows(err) {
			return nil, area.ErrAreaNotFound
		}
		return nil, fmt.Errorf("area: get area: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, kind, data FROM area_records WHERE area_id = $1 ORDER BY kind, position`, id)
	if err != nil {
		return nil, fmt.Errorf("area: query records: %w", err)
	}
	defer rows.Close()

	type named struct {
		name string
		kind area.Kind
	}
	names := make(map[string]named)
	for rows.Next() {
		var (
			recID, kind string
			data        []byte
		)
		if err := rows.Scan(&recID, &kind, &data); err != nil {
			return nil, fmt.Errorf("area: scan record: %w", err)
		}
		switch area.Kind(kind) {
		case area.KindAction:
			var a area.ActionRecord
			if err := json.Unmarshal(data, &a); err != nil {
				return nil, fmt.Errorf("area: decode action %s: %w", recID, err)
			}
			a.ID = recID
			rec.Actions = append(rec.Actions, a)
			names[recID] = named{a.Name, area.KindAction}
		case area.KindReaction:
			var r area.ReactionRecord
			if err := json.Unmarshal(data, &r); err != nil {
				return nil, fmt.Errorf("area: decode reaction %s: %w", recID, err)
			}
			r.ID = recID
			rec.Reactions = append(rec.Reactions, r)
			names[recID] = named{r.Name, area.KindReaction}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("area: rows records: %w", err)
	}

	rows, err = s.db.Query(ctx,
		`SELECT id, source_id, target_id, data FROM area_connections WHERE area_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("area: query connections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c    area.AreaConnection
			data []byte
			cd   connectionData
		)
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TargetID, &data); err != nil {
			return nil, fmt.Errorf("area: scan connection: %w", err)
		}
		if err := json.Unmarshal(data, &cd); err != nil {
			return nil, fmt.Errorf("area: decode connection %s: %w", c.ID, err)
		}
		src, dst := names[c.SourceID], names[c.TargetID]
		c.SourceName, c.SourceType = src.name, src.kind
		c.TargetName, c.TargetType = dst.name, dst.kind
		c.LinkType, c.Order, c.Mapping, c.Condition = cd.LinkType, cd.Order, cd.Mapping, cd.Condition
		rec.Connections = append(rec.Connections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("area: rows connections: %w", err)
	}

	return rec, nil
}

// ListAreas returns a summary of every area, most recently updated first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListAreas(ctx context.Context) ([]area.AreaSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, updated_at FROM areas ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("area: list areas: %w", err)
	}
	defer rows.Close()

	out := []area.AreaSummary{}
	for rows.Next() {
		var a area.AreaSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("area: scan area: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("area: rows areas: %w", err)
	}
	return out, nil
}

// DeleteArea removes an area with its records and connections.
// No error if the area doesn't exist.
func (s *PGStore) DeleteArea(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM areas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("area: delete area: %w", err)
	}
	return nil
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
