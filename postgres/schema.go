package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS areas (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    layout_mode TEXT NOT NULL DEFAULT 'linear',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS area_records (
    id       TEXT PRIMARY KEY,
    area_id  TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
    kind     TEXT NOT NULL CHECK (kind IN ('action', 'reaction')),
    position INT  NOT NULL,
    data     JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS area_connections (
    id        TEXT PRIMARY KEY,
    area_id   TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
    source_id TEXT NOT NULL REFERENCES area_records(id) ON DELETE CASCADE,
    target_id TEXT NOT NULL REFERENCES area_records(id) ON DELETE CASCADE,
    position  INT  NOT NULL,
    data      JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_area_records_area_id     ON area_records(area_id);
CREATE INDEX IF NOT EXISTS idx_area_connections_area_id ON area_connections(area_id);
`

// CreateSchema creates the area tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the area tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS area_connections, area_records, areas CASCADE;`)
	return err
}
