package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const trackColumns = `t.id, t.name, t.artist, t.album, t.release_date, t.duration_ms, t.popularity, t.features, t.created_at`

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch inserts or updates multiple tracks efficiently. Stored features
// are only replaced when the new row carries some.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (id, name, artist, album, release_date, duration_ms, popularity, created_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::int[], $7::int[], $8::timestamptz[])
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			album = EXCLUDED.album,
			release_date = EXCLUDED.release_date,
			duration_ms = EXCLUDED.duration_ms,
			popularity = EXCLUDED.popularity
	`

	ids := make([]string, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	albums := make([]*string, len(tracks))
	releases := make([]*string, len(tracks))
	durations := make([]*int, len(tracks))
	popularities := make([]*int, len(tracks))
	createdAts := make([]time.Time, len(tracks))

	now := time.Now()
	for i, t := range tracks {
		ids[i] = t.ID
		names[i] = t.Name
		artists[i] = t.Artist
		albums[i] = t.Album
		releases[i] = t.ReleaseDate
		durations[i] = t.DurationMs
		popularities[i] = t.Popularity
		createdAts[i] = now
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, ids, names, artists, albums, releases, durations, popularities, createdAts); err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}

	// Feature vectors are two-dimensional and cannot ride through unnest.
	batch := &pgx.Batch{}
	for _, t := range tracks {
		if t.Features != nil {
			batch.Queue(`UPDATE tracks SET features = $2 WHERE id = $1`, t.ID, t.Features)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("storing track features: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a track by ID.
func (r *TrackRepository) Get(ctx context.Context, id string) (*Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t WHERE t.id = $1`
	track, err := scanTrack(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// List retrieves every stored track ordered by name.
func (r *TrackRepository) List(ctx context.Context) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks t ORDER BY t.name, t.id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	return collectTracks(rows)
}

// GetPlaylistTracks retrieves the tracks of a playlist in playlist order.
func (r *TrackRepository) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN playlist_tracks pt ON t.id = pt.track_id
		WHERE pt.playlist_id = $1
		ORDER BY pt.position
	`
	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying playlist tracks: %w", err)
	}
	return collectTracks(rows)
}

// LinkBatchToPlaylist replaces the membership of a playlist.
func (r *TrackRepository) LinkBatchToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("clearing playlist: %w", err)
	}

	if len(trackIDs) > 0 {
		positions := make([]int, len(trackIDs))
		for i := range positions {
			positions[i] = i
		}
		query := `
			INSERT INTO playlist_tracks (playlist_id, track_id, position)
			SELECT $1, * FROM unnest($2::text[], $3::int[])
			ON CONFLICT (playlist_id, track_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, query, playlistID, trackIDs, positions); err != nil {
			return fmt.Errorf("linking tracks to playlist: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func scanTrack(row pgx.Row) (Track, error) {
	var track Track
	err := row.Scan(
		&track.ID,
		&track.Name,
		&track.Artist,
		&track.Album,
		&track.ReleaseDate,
		&track.DurationMs,
		&track.Popularity,
		&track.Features,
		&track.CreatedAt,
	)
	return track, err
}

func collectTracks(rows pgx.Rows) ([]Track, error) {
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
