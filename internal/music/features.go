package music

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFeatures is returned when a feature value is outside its range.
var ErrInvalidFeatures = errors.New("invalid features")

// FeatureNames is the fixed column order used for training and prediction.
// Changing it invalidates every persisted model.
var FeatureNames = []string{
	"danceability",
	"energy",
	"key",
	"loudness",
	"mode",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
	"duration_ms",
	"popularity",
}

// NumFeatures is the width of a feature vector.
const NumFeatures = 13

// Features is the fixed-schema numeric descriptor of a track.
type Features struct {
	Danceability     float64 // [0,1]
	Energy           float64 // [0,1]
	Key              int     // 0-11, pitch class
	Loudness         float64 // [-60,0] dB
	Mode             int     // 0 minor, 1 major
	Speechiness      float64 // [0,1]
	Acousticness     float64 // [0,1]
	Instrumentalness float64 // [0,1]
	Liveness         float64 // [0,1]
	Valence          float64 // [0,1]
	Tempo            float64 // BPM, >= 0
	DurationMs       int     // >= 0
	Popularity       int     // 0-100
}

// Values returns the vector in FeatureNames order.
func (f Features) Values() []float64 {
	return []float64{
		f.Danceability,
		f.Energy,
		float64(f.Key),
		f.Loudness,
		float64(f.Mode),
		f.Speechiness,
		f.Acousticness,
		f.Instrumentalness,
		f.Liveness,
		f.Valence,
		f.Tempo,
		float64(f.DurationMs),
		float64(f.Popularity),
	}
}

// FeaturesFromValues builds Features from a vector in FeatureNames order and validates it.
func FeaturesFromValues(v []float64) (Features, error) {
	if len(v) != NumFeatures {
		return Features{}, fmt.Errorf("%w: got %d values, want %d", ErrInvalidFeatures, len(v), NumFeatures)
	}
	f := Features{
		Danceability:     v[0],
		Energy:           v[1],
		Key:              int(math.Round(v[2])),
		Loudness:         v[3],
		Mode:             int(math.Round(v[4])),
		Speechiness:      v[5],
		Acousticness:     v[6],
		Instrumentalness: v[7],
		Liveness:         v[8],
		Valence:          v[9],
		Tempo:            v[10],
		DurationMs:       int(math.Round(v[11])),
		Popularity:       int(math.Round(v[12])),
	}
	if err := f.Validate(); err != nil {
		return Features{}, err
	}
	return f, nil
}

// Validate checks every field against its documented range.
func (f Features) Validate() error {
	unit := []struct {
		name  string
		value float64
	}{
		{"danceability", f.Danceability},
		{"energy", f.Energy},
		{"speechiness", f.Speechiness},
		{"acousticness", f.Acousticness},
		{"instrumentalness", f.Instrumentalness},
		{"liveness", f.Liveness},
		{"valence", f.Valence},
	}
	for _, u := range unit {
		if math.IsNaN(u.value) || u.value < 0 || u.value > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidFeatures, u.name, u.value)
		}
	}

	switch {
	case f.Key < 0 || f.Key > 11:
		return fmt.Errorf("%w: key=%d outside 0-11", ErrInvalidFeatures, f.Key)
	case math.IsNaN(f.Loudness) || f.Loudness < -60 || f.Loudness > 0:
		return fmt.Errorf("%w: loudness=%v outside [-60,0]", ErrInvalidFeatures, f.Loudness)
	case f.Mode != 0 && f.Mode != 1:
		return fmt.Errorf("%w: mode=%d not 0 or 1", ErrInvalidFeatures, f.Mode)
	case math.IsNaN(f.Tempo) || f.Tempo < 0:
		return fmt.Errorf("%w: tempo=%v negative", ErrInvalidFeatures, f.Tempo)
	case f.DurationMs < 0:
		return fmt.Errorf("%w: duration_ms=%d negative", ErrInvalidFeatures, f.DurationMs)
	case f.Popularity < 0 || f.Popularity > 100:
		return fmt.Errorf("%w: popularity=%d outside 0-100", ErrInvalidFeatures, f.Popularity)
	}
	return nil
}
