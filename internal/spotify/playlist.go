package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/music"
)

const (
	maxTracksPerRequest = 100
	playlistPageSize    = 100
)

// FetchPlaylistTracks retrieves every track of a playlist, following pages.
// Episodes, local files and removed tracks are skipped.
func (c *Client) FetchPlaylistTracks(ctx context.Context, playlistID string) ([]music.Track, error) {
	var tracks []music.Track

	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(playlistPageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	for {
		for _, item := range page.Items {
			if track, ok := convertTrack(item); ok {
				tracks = append(tracks, track)
			}
		}

		c.log.Debug(ctx, "fetched playlist page",
			logger.String("playlist", playlistID),
			logger.Int("tracks", len(tracks)),
		)

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page of playlist %s: %w", playlistID, err)
		}
	}

	c.log.Info(ctx, "fetched playlist",
		logger.String("playlist", playlistID),
		logger.Int("tracks", len(tracks)),
	)
	return tracks, nil
}

// Dedupe drops repeated track IDs, keeping the first occurrence.
func Dedupe(tracks []music.Track) []music.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]music.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
