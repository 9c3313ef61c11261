package spotify

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/zmb3/spotify/v2"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// ErrMissingFeatures is returned when Spotify has no audio features for a track.
var ErrMissingFeatures = errors.New("audio features unavailable")

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their audio features.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features keep nil Features.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []music.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string][]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = append(indexByID[t.ID], i)
	}

	total := len(ids)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := ids[i:end]

		c.log.Debug(ctx, "fetching audio features",
			logger.Int("from", i+1),
			logger.Int("to", end),
			logger.Int("total", total),
		)

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			for _, idx := range indexByID[f.ID.String()] {
				converted := convertFeatures(f, tracks[idx])
				tracks[idx].Features = &converted
			}
		}
	}

	c.log.Info(ctx, "fetched audio features", logger.Int("tracks", total))
	return nil
}

// Synthesize returns measured audio features for every track, in order.
// It fails with ErrMissingFeatures if Spotify has none for some track.
func (c *Client) Synthesize(ctx context.Context, tracks []music.Track) ([]music.Features, error) {
	work := make([]music.Track, len(tracks))
	copy(work, tracks)
	for i := range work {
		work[i].Features = nil
	}

	if err := c.FetchAudioFeatures(ctx, work); err != nil {
		return nil, err
	}

	out := make([]music.Features, len(work))
	missing := 0
	for i, t := range work {
		if t.Features == nil {
			missing++
			continue
		}
		out[i] = *t.Features
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d of %d tracks", ErrMissingFeatures, missing, len(work))
	}
	return out, nil
}

// convertFeatures maps Spotify audio features onto the fixed schema.
// Duration and popularity come from the track metadata. Values are clamped
// into their documented ranges.
func convertFeatures(f *spotify.AudioFeatures, t music.Track) music.Features {
	return music.Features{
		Danceability:     unit(float64(f.Danceability)),
		Energy:           unit(float64(f.Energy)),
		Key:              min(max(int(f.Key), 0), 11),
		Loudness:         math.Min(0, math.Max(-60, float64(f.Loudness))),
		Mode:             min(max(int(f.Mode), 0), 1),
		Speechiness:      unit(float64(f.Speechiness)),
		Acousticness:     unit(float64(f.Acousticness)),
		Instrumentalness: unit(float64(f.Instrumentalness)),
		Liveness:         unit(float64(f.Liveness)),
		Valence:          unit(float64(f.Valence)),
		Tempo:            math.Max(0, float64(f.Tempo)),
		DurationMs:       max(t.DurationMs, 0),
		Popularity:       min(max(t.Popularity, 0), 100),
	}
}

func unit(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
