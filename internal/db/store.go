package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// SavePlaylist stores tracks and records them as the playlist's contents.
func (db *DB) SavePlaylist(ctx context.Context, playlistID string, tracks []music.Track) error {
	if err := db.SaveTracks(ctx, tracks); err != nil {
		return err
	}
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return db.Tracks().LinkBatchToPlaylist(ctx, playlistID, ids)
}

// SaveTracks upserts tracks, including their features when present.
func (db *DB) SaveTracks(ctx context.Context, tracks []music.Track) error {
	rows := make([]Track, len(tracks))
	for i, t := range tracks {
		rows[i] = FromTrack(t)
	}
	return db.Tracks().UpsertBatch(ctx, rows)
}

// LoadTracks returns every stored track.
func (db *DB) LoadTracks(ctx context.Context) ([]music.Track, error) {
	rows, err := db.Tracks().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]music.Track, len(rows))
	for i, r := range rows {
		out[i] = r.ToTrack()
	}
	return out, nil
}

// SaveAnalysis stores a bucket analysis and returns its ID.
func (db *DB) SaveAnalysis(ctx context.Context, bucket string, analysis video.Analysis) (uuid.UUID, error) {
	an := &Analysis{Bucket: bucket}
	if err := db.Analyses().Create(ctx, an, analysis); err != nil {
		return uuid.Nil, err
	}
	return an.ID, nil
}

// LatestAnalysis returns the newest stored analysis of a bucket.
func (db *DB) LatestAnalysis(ctx context.Context, bucket string) (uuid.UUID, video.Analysis, error) {
	an, err := db.Analyses().Latest(ctx, bucket)
	if err != nil {
		return uuid.Nil, video.Analysis{}, err
	}
	annotations, err := db.Analyses().GetAnnotations(ctx, an.ID)
	if err != nil {
		return uuid.Nil, video.Analysis{}, fmt.Errorf("loading analysis %s: %w", an.ID, err)
	}
	return an.ID, annotations, nil
}
