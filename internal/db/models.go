package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// Track is a catalogue track row.
type Track struct {
	ID          string
	Name        string
	Artist      string
	Album       *string   // nullable
	ReleaseDate *string   // nullable
	DurationMs  *int      // nullable
	Popularity  *int      // nullable
	Features    []float64 // nullable, ordered like music.FeatureNames
	CreatedAt   time.Time
}

// PlaylistTrack links a track to a source playlist.
type PlaylistTrack struct {
	PlaylistID string
	TrackID    string
	Position   int
}

// Analysis is one video analysis run over a bucket.
type Analysis struct {
	ID        uuid.UUID
	Bucket    string
	CreatedAt time.Time
}

// FromTrack converts a domain track to a row. Empty text and zero metadata
// become NULL.
func FromTrack(t music.Track) Track {
	row := Track{
		ID:          t.ID,
		Name:        t.Name,
		Artist:      t.Artist,
		Album:       optionalString(t.Album),
		ReleaseDate: optionalString(t.ReleaseDate),
		DurationMs:  optionalInt(t.DurationMs),
		Popularity:  optionalInt(t.Popularity),
	}
	if t.Features != nil {
		row.Features = t.Features.Values()
	}
	return row
}

// ToTrack converts a row back to a domain track. A stored feature vector of
// the wrong width is dropped.
func (t Track) ToTrack() music.Track {
	out := music.Track{
		ID:     t.ID,
		Name:   t.Name,
		Artist: t.Artist,
	}
	if t.Album != nil {
		out.Album = *t.Album
	}
	if t.ReleaseDate != nil {
		out.ReleaseDate = *t.ReleaseDate
	}
	if t.DurationMs != nil {
		out.DurationMs = *t.DurationMs
	}
	if t.Popularity != nil {
		out.Popularity = *t.Popularity
	}
	if f, err := music.FeaturesFromValues(t.Features); err == nil {
		out.Features = &f
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// annotationRow flattens an annotation for CopyFrom.
func annotationRow(analysisID uuid.UUID, seq int, a video.Annotation) []any {
	return []any{analysisID, seq, string(a.Kind), a.VideoID, a.Label, a.Category, a.Start, a.End, a.Confidence}
}

// addAnnotation appends a to the slice matching its kind.
func addAnnotation(an *video.Analysis, a video.Annotation) {
	switch a.Kind {
	case video.KindExplicit:
		an.Explicit = append(an.Explicit, a)
	case video.KindShot:
		an.Shots = append(an.Shots, a)
	default:
		an.Labels = append(an.Labels, a)
	}
}
