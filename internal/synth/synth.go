// Package synth produces feature vectors for tracks.
//
// Two sources exist: Random generates placeholder vectors (useful for tests
// and demos), and the Spotify client fetches measured audio features. The
// source is picked from configuration through New.
package synth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// Feature source names accepted by New.
const (
	SourceRandom  = "random"
	SourceSpotify = "spotify"
)

// ErrUnknownSource is returned for an unrecognised feature source.
var ErrUnknownSource = errors.New("unknown feature source")

// Synthesizer produces one feature vector per track, in input order.
type Synthesizer interface {
	Synthesize(ctx context.Context, tracks []music.Track) ([]music.Features, error)
}

// New selects a Synthesizer by source name. remote is used for SourceSpotify
// and may be nil otherwise.
func New(source string, seed int64, remote Synthesizer) (Synthesizer, error) {
	switch source {
	case "", SourceRandom:
		return NewRandom(seed), nil
	case SourceSpotify:
		if remote == nil {
			return nil, fmt.Errorf("%w: %s source needs a client", ErrUnknownSource, source)
		}
		return remote, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

// Random generates uniformly distributed placeholder features.
// Duration and popularity are copied from the track metadata.
// It is safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random synthesizer with a fixed seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // placeholder data, not security sensitive
}

// Synthesize implements Synthesizer.
func (r *Random) Synthesize(ctx context.Context, tracks []music.Track) ([]music.Features, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]music.Features, len(tracks))
	for i, t := range tracks {
		out[i] = music.Features{
			Danceability:     r.rng.Float64(),
			Energy:           r.rng.Float64(),
			Key:              r.rng.Intn(12),
			Loudness:         -60 * r.rng.Float64(),
			Mode:             r.rng.Intn(2),
			Speechiness:      r.rng.Float64(),
			Acousticness:     r.rng.Float64(),
			Instrumentalness: r.rng.Float64(),
			Liveness:         r.rng.Float64(),
			Valence:          r.rng.Float64(),
			Tempo:            50 + 150*r.rng.Float64(),
			DurationMs:       max(t.DurationMs, 0),
			Popularity:       min(max(t.Popularity, 0), 100),
		}
	}
	return out, nil
}

// Attach synthesizes features and stores them on the tracks in place.
func Attach(ctx context.Context, s Synthesizer, tracks []music.Track) error {
	features, err := s.Synthesize(ctx, tracks)
	if err != nil {
		return fmt.Errorf("synthesizing features: %w", err)
	}
	if len(features) != len(tracks) {
		return fmt.Errorf("synthesizing features: got %d vectors for %d tracks", len(features), len(tracks))
	}
	for i := range tracks {
		f := features[i]
		tracks[i].Features = &f
	}
	return nil
}
