package spotify

import (
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// convertTrack converts a playlist item to music.Track.
// Artists are joined by ", ". It reports false for items without a track.
func convertTrack(item spotify.PlaylistItem) (music.Track, bool) {
	full := item.Track.Track
	if full == nil || full.ID == "" {
		return music.Track{}, false
	}

	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	return music.Track{
		ID:          full.ID.String(),
		Name:        full.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       full.Album.Name,
		ReleaseDate: full.Album.ReleaseDate,
		DurationMs:  int(full.Duration),
		Popularity:  int(full.Popularity),
	}, true
}
