// Package music defines the track, feature and mood types shared by every
// stage of the recommendation pipeline.
package music

// Track represents a song with its catalogue metadata.
// Metadata is fixed once fetched; Features and Prediction are filled in by
// later pipeline stages.
type Track struct {
	ID          string
	Name        string
	Artist      string // Comma-separated artist names
	Album       string
	ReleaseDate string
	DurationMs  int
	Popularity  int // 0-100

	// Features is nil until synthesized or fetched.
	Features *Features

	// Prediction is nil until the classifier has labeled the track.
	Prediction *Prediction
}

// Prediction is a classifier verdict for one track.
type Prediction struct {
	Mood   Mood
	Scores []float64 // Per-class probability, ordered like Moods
}

// Energy returns the track's energy feature, or 0 if features are missing.
func (t Track) Energy() float64 {
	if t.Features == nil {
		return 0
	}
	return t.Features.Energy
}
