package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/yuyongju/music-emotion-classification/internal/export"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/spotify"
)

// FetchCatalog fetches the given playlists (the configured ones when empty),
// merges them without duplicates, persists them when a store is set and
// writes the catalogue workbook.
func (s *Service) FetchCatalog(ctx context.Context, playlistIDs ...string) (tracks []music.Track, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveStage(metrics.StageFetch, started, err) }()

	if s.source == nil {
		return nil, ErrNoSource
	}
	if len(playlistIDs) == 0 {
		playlistIDs = s.cfg.Spotify.PlaylistIDs
	}
	if len(playlistIDs) == 0 {
		playlistIDs = []string{spotify.DefaultPlaylistID}
	}

	var merged []music.Track
	for _, id := range playlistIDs {
		fetched, err := s.source.FetchPlaylistTracks(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching playlist %s: %w", id, err)
		}

		if s.store != nil {
			if err := s.store.SavePlaylist(ctx, id, spotify.Dedupe(fetched)); err != nil {
				return nil, fmt.Errorf("saving playlist %s: %w", id, err)
			}
		}
		merged = append(merged, fetched...)
	}
	tracks = spotify.Dedupe(merged)
	s.metrics.AddTracksFetched(len(tracks))

	if err := export.WriteTracks(s.cfg.Files.SpotifyData, tracks); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "catalogue fetched",
		logger.Int("playlists", len(playlistIDs)),
		logger.Int("tracks", len(tracks)),
		logger.String("file", s.cfg.Files.SpotifyData),
	)
	return tracks, nil
}

// loadCatalog reads the catalogue workbook written by FetchCatalog, or the
// stored tracks when the workbook is missing.
func (s *Service) loadCatalog(ctx context.Context) ([]music.Track, error) {
	path := s.cfg.Files.SpotifyData
	ok, err := export.Exists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.storedCatalog(ctx, path)
	}

	tracks, err := export.ReadTracks(path)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoCatalog, path)
	}
	return tracks, nil
}

func (s *Service) storedCatalog(ctx context.Context, path string) ([]music.Track, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s not found, fetch the catalogue first", ErrNoCatalog, path)
	}
	tracks, err := s.store.LoadTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored catalogue: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s not found and no tracks stored", ErrNoCatalog, path)
	}
	s.log.Info(ctx, "catalogue loaded from database", logger.Int("tracks", len(tracks)))
	return tracks, nil
}
