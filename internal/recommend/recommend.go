// Package recommend scores tracks against the moods a video calls for.
package recommend

import (
	"math"
	"sort"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// Default scoring configuration.
const (
	defaultBaseScore       = 100
	defaultPopularityCap   = 30
	defaultProximityWeight = 20

	// DefaultTopK is how many recommendations are kept per video.
	DefaultTopK = 10
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithBaseScore sets the score granted for a mood match.
func WithBaseScore(v float64) Option {
	return func(s *Scorer) {
		if v >= 0 {
			s.base = v
		}
	}
}

// WithPopularityCap caps the popularity bonus.
func WithPopularityCap(v int) Option {
	return func(s *Scorer) {
		if v >= 0 {
			s.popularityCap = v
		}
	}
}

// WithProximityWeight sets the maximum energy-proximity bonus.
func WithProximityWeight(v float64) Option {
	return func(s *Scorer) {
		if v >= 0 {
			s.proximityWeight = v
		}
	}
}

// Recommendation is a scored track.
type Recommendation struct {
	Track music.Track
	Mood  music.Mood
	Score float64
}

// Scorer computes match scores. It holds no mutable state.
type Scorer struct {
	base            float64
	popularityCap   int
	proximityWeight float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		base:            defaultBaseScore,
		popularityCap:   defaultPopularityCap,
		proximityWeight: defaultProximityWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScorer = NewScorer()

// Score scores with the default configuration.
func Score(track music.Track, predicted music.Mood, targets music.MoodSet, meanConfidence, energy float64) float64 {
	return defaultScorer.Score(track, predicted, targets, meanConfidence, energy)
}

// Score returns 0 when predicted is not a target mood. Otherwise it returns
// base + min(popularity, cap) + (1 - |meanConfidence - energy|) * weight.
// Popularity is clamped to 0-100 and both ratios to [0,1].
func (s *Scorer) Score(track music.Track, predicted music.Mood, targets music.MoodSet, meanConfidence, energy float64) float64 {
	if !targets.Contains(predicted) {
		return 0
	}

	popularity := min(max(track.Popularity, 0), 100, s.popularityCap)
	proximity := 1 - math.Abs(unit(meanConfidence)-unit(energy))

	return s.base + float64(popularity) + proximity*s.proximityWeight
}

// Rank scores every track that has a prediction and orders them by score,
// highest first. Equal scores keep input order.
func (s *Scorer) Rank(tracks []music.Track, targets music.MoodSet, meanConfidence float64) []Recommendation {
	out := make([]Recommendation, 0, len(tracks))
	for _, t := range tracks {
		if t.Prediction == nil {
			continue
		}
		out = append(out, Recommendation{
			Track: t,
			Mood:  t.Prediction.Mood,
			Score: s.Score(t, t.Prediction.Mood, targets, meanConfidence, t.Energy()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Top returns the first k recommendations.
func Top(recs []Recommendation, k int) []Recommendation {
	if k < 0 {
		k = 0
	}
	if len(recs) > k {
		return recs[:k]
	}
	return recs
}

// Matching drops recommendations whose mood missed the targets.
func Matching(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Score > 0 {
			out = append(out, r)
		}
	}
	return out
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
