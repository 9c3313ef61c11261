package labeler

import (
	"math/rand"
	"testing"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		features music.Features
		want     music.Mood
	}{
		{
			name:     "high energy high valence is happy",
			features: music.Features{Energy: 0.9, Valence: 0.8, Loudness: -10},
			want:     music.Happy,
		},
		{
			name:     "happy wins over aggressive thresholds",
			features: music.Features{Energy: 0.75, Valence: 0.75, Loudness: -3},
			want:     music.Happy,
		},
		{
			name:     "low energy low valence is sad",
			features: music.Features{Energy: 0.2, Valence: 0.1, Acousticness: 0.9},
			want:     music.Sad,
		},
		{
			name:     "very energetic and loud",
			features: music.Features{Energy: 0.85, Valence: 0.5, Loudness: -4.5},
			want:     music.Energetic,
		},
		{
			name:     "energetic rule checked before aggressive",
			features: music.Features{Energy: 0.9, Valence: 0.2, Loudness: -2},
			want:     music.Energetic,
		},
		{
			name:     "quiet acoustic is calm",
			features: music.Features{Energy: 0.3, Valence: 0.6, Acousticness: 0.8},
			want:     music.Calm,
		},
		{
			name:     "loud dark mid-high energy is aggressive",
			features: music.Features{Energy: 0.75, Valence: 0.3, Loudness: -3},
			want:     music.Aggressive,
		},
		{
			name:     "nothing matches",
			features: music.Features{Energy: 0.5, Valence: 0.5, Loudness: -20},
			want:     music.Energetic,
		},
		{
			name:     "boundary energy 0.7 valence 0.7 is not happy",
			features: music.Features{Energy: 0.7, Valence: 0.7, Loudness: -20},
			want:     music.Energetic,
		},
		{
			name:     "boundary energy 0.4 is not sad",
			features: music.Features{Energy: 0.4, Valence: 0.1, Acousticness: 0.9},
			want:     music.Energetic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.features); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func randomFeatures(rng *rand.Rand) music.Features {
	return music.Features{
		Danceability:     rng.Float64(),
		Energy:           rng.Float64(),
		Key:              rng.Intn(12),
		Loudness:         -60 * rng.Float64(),
		Mode:             rng.Intn(2),
		Speechiness:      rng.Float64(),
		Acousticness:     rng.Float64(),
		Instrumentalness: rng.Float64(),
		Liveness:         rng.Float64(),
		Valence:          rng.Float64(),
		Tempo:            50 + 150*rng.Float64(),
		DurationMs:       rng.Intn(400000),
		Popularity:       rng.Intn(101),
	}
}

func TestLabelProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		f := randomFeatures(rng)
		got := Label(f)

		if !got.Valid() {
			t.Fatalf("Label(%+v) = %q, not in the closed set", f, got)
		}
		if f.Energy > 0.7 && f.Valence > 0.7 && got != music.Happy {
			t.Fatalf("Label(%+v) = %q, want happy", f, got)
		}
		if f.Energy < 0.4 && f.Valence < 0.4 && got != music.Sad {
			t.Fatalf("Label(%+v) = %q, want sad", f, got)
		}

		matchesAny := false
		for _, r := range rules {
			if r.match(f) {
				matchesAny = true
				break
			}
		}
		if !matchesAny && got != DefaultMood {
			t.Fatalf("Label(%+v) = %q, want default %q", f, got, DefaultMood)
		}
	}
}

func TestLabelAll(t *testing.T) {
	features := []music.Features{
		{Energy: 0.9, Valence: 0.9},
		{Energy: 0.1, Valence: 0.1},
		{Energy: 0.5, Valence: 0.5, Loudness: -30},
	}
	want := []music.Mood{music.Happy, music.Sad, music.Energetic}

	got := LabelAll(features)
	if len(got) != len(want) {
		t.Fatalf("LabelAll() returned %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LabelAll()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
