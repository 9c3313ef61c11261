package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	artist       TEXT NOT NULL,
	album        TEXT,
	release_date TEXT,
	duration_ms  INT,
	popularity   INT,
	features     DOUBLE PRECISION[],
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS playlist_tracks (
	playlist_id TEXT NOT NULL,
	track_id    TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	PRIMARY KEY (playlist_id, track_id)
);

CREATE TABLE IF NOT EXISTS analyses (
	id         UUID PRIMARY KEY,
	bucket     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS analyses_bucket_created_idx ON analyses (bucket, created_at DESC);

CREATE TABLE IF NOT EXISTS video_annotations (
	analysis_id UUID NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	seq         INT NOT NULL,
	kind        TEXT NOT NULL,
	video_id    TEXT NOT NULL,
	label       TEXT NOT NULL,
	category    TEXT NOT NULL,
	start_sec   DOUBLE PRECISION,
	end_sec     DOUBLE PRECISION,
	confidence  DOUBLE PRECISION,
	PRIMARY KEY (analysis_id, seq)
);
`

// Migrate creates any missing tables. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
