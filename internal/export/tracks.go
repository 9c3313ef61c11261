package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// TrackSheet holds the catalogue metadata.
const TrackSheet = "Tracks"

var trackHeader = []string{"track_id", "track_name", "artist", "album_name", "release_date", "duration_ms", "popularity"}

// WriteTracks writes catalogue metadata, one track per row.
func WriteTracks(path string, tracks []music.Track) error {
	rows := make([][]any, len(tracks))
	for i, t := range tracks {
		rows[i] = []any{t.ID, t.Name, t.Artist, t.Album, t.ReleaseDate, t.DurationMs, t.Popularity}
	}
	return writeWorkbook(path, []sheet{{name: TrackSheet, header: trackHeader, rows: rows}})
}

// ReadTracks reads a workbook written by WriteTracks. Features and
// predictions are not stored and come back nil.
func ReadTracks(path string) ([]music.Track, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := readSheet(f, TrackSheet, "track_name", "artist", "duration_ms", "popularity")
	if err != nil {
		return nil, err
	}

	out := make([]music.Track, 0, len(t.rows))
	for i, row := range t.rows {
		duration, err := atoi(t.get(row, "duration_ms"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d duration_ms: %v", ErrMalformed, i+2, err)
		}
		popularity, err := atoi(t.get(row, "popularity"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d popularity: %v", ErrMalformed, i+2, err)
		}
		out = append(out, music.Track{
			ID:          t.get(row, "track_id"),
			Name:        t.get(row, "track_name"),
			Artist:      t.get(row, "artist"),
			Album:       t.get(row, "album_name"),
			ReleaseDate: t.get(row, "release_date"),
			DurationMs:  duration,
			Popularity:  popularity,
		})
	}
	return out, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
