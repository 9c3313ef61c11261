package clustering

import (
	"strings"
	"testing"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

func TestGenerateMoodName(t *testing.T) {
	tests := []struct {
		name     string
		centroid map[string]float64
		want     string
	}{
		{
			name:     "high energy high valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.7, "acousticness": 0.2},
			want:     "Upbeat Party",
		},
		{
			name:     "high energy low valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.3, "acousticness": 0.2},
			want:     "Intense & Dark",
		},
		{
			name:     "low energy high valence",
			centroid: map[string]float64{"energy": 0.4, "valence": 0.7, "acousticness": 0.3},
			want:     "Chill & Happy",
		},
		{
			name:     "low energy low valence",
			centroid: map[string]float64{"energy": 0.3, "valence": 0.3, "acousticness": 0.4},
			want:     "Reflective & Melancholy",
		},
		{
			name:     "high acousticness adds modifier",
			centroid: map[string]float64{"energy": 0.4, "valence": 0.7, "acousticness": 0.8},
			want:     "Chill & Happy (Acoustic)",
		},
		{
			name:     "boundary energy exactly 0.6 is low",
			centroid: map[string]float64{"energy": 0.6, "valence": 0.7, "acousticness": 0.2},
			want:     "Chill & Happy",
		},
		{
			name:     "boundary valence exactly 0.5 is low",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.5, "acousticness": 0.2},
			want:     "Intense & Dark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateMoodName(tt.centroid); got != tt.want {
				t.Errorf("generateMoodName() = %q, want %q", got, tt.want)
			}
			if describeMood(tt.centroid) == "" {
				t.Error("describeMood() should not be empty")
			}
		})
	}
}

func track(id string, energy, valence float64) music.Track {
	return music.Track{
		ID:       id,
		Name:     "Song " + id,
		Artist:   "Artist",
		Features: &music.Features{Energy: energy, Valence: valence, Danceability: energy, Acousticness: 1 - energy},
	}
}

func TestGroupByMood(t *testing.T) {
	var tracks []music.Track
	for i := 0; i < 6; i++ {
		tracks = append(tracks, track("hi"+string(rune('a'+i)), 0.9, 0.9))
		tracks = append(tracks, track("lo"+string(rune('a'+i)), 0.1, 0.1))
	}
	tracks = append(tracks, music.Track{ID: "nofeatures"})

	groups, outliers, err := GroupByMood(tracks, Config{NumClusters: 2, MinClusterSize: 1})
	if err != nil {
		t.Fatalf("GroupByMood() error = %v", err)
	}

	total := len(outliers)
	for _, g := range groups {
		total += len(g.Tracks)
		if g.Name == "" || len(g.Centroid) != len(featureNames) {
			t.Errorf("incomplete group %+v", g)
		}
	}
	if total != len(tracks) {
		t.Errorf("grouped %d tracks, want %d", total, len(tracks))
	}

	found := false
	for _, o := range outliers {
		if o.ID == "nofeatures" {
			found = true
		}
	}
	if !found {
		t.Error("track without features should be an outlier")
	}

	for i := 1; i < len(groups); i++ {
		if len(groups[i].Tracks) > len(groups[i-1].Tracks) {
			t.Error("groups should be ordered largest first")
		}
	}
}

func TestGroupByMoodIdenticalTracks(t *testing.T) {
	tracks := []music.Track{track("a", 0.9, 0.9), track("b", 0.9, 0.9), track("c", 0.9, 0.9)}

	groups, outliers, err := GroupByMood(tracks, Config{NumClusters: 1, MinClusterSize: 2})
	if err != nil {
		t.Fatalf("GroupByMood() error = %v", err)
	}
	if len(groups) != 1 || len(outliers) != 0 {
		t.Fatalf("got %d groups and %d outliers, want 1 and 0", len(groups), len(outliers))
	}
	if groups[0].Name != "Upbeat Party" {
		t.Errorf("Name = %q, want Upbeat Party", groups[0].Name)
	}
	for i, tr := range groups[0].Tracks {
		if tr.ID != tracks[i].ID {
			t.Errorf("member order changed: got %s at %d", tr.ID, i)
		}
	}
}

func TestGroupByMoodTooFewTracks(t *testing.T) {
	tracks := []music.Track{track("a", 0.5, 0.5)}

	groups, outliers, err := GroupByMood(tracks, Config{NumClusters: 3})
	if err != nil {
		t.Fatalf("GroupByMood() error = %v", err)
	}
	if len(groups) != 0 || len(outliers) != 1 {
		t.Errorf("got %d groups and %d outliers, want 0 and 1", len(groups), len(outliers))
	}
}

func TestGroupByMoodEmpty(t *testing.T) {
	groups, outliers, err := GroupByMood(nil, DefaultConfig())
	if err != nil || groups != nil || outliers != nil {
		t.Errorf("GroupByMood(nil) = %v, %v, %v", groups, outliers, err)
	}
}

func TestFormatGroupSummary(t *testing.T) {
	groups := []Group{
		{Name: "Upbeat Party", Tracks: []music.Track{
			{Name: "One", Artist: "A"}, {Name: "Two", Artist: "B"},
			{Name: "Three", Artist: "C"}, {Name: "Four", Artist: "D"},
		}},
		{Name: "Chill & Happy", Tracks: []music.Track{{Name: "Five", Artist: "E"}}},
	}

	got := FormatGroupSummary(groups, 2)
	for _, want := range []string{
		"Found 2 mood groups from 7 tracks (2 outliers skipped)",
		"Group 1: Upbeat Party (4 tracks)",
		`"Three" - C`,
		"... and 1 more",
		"Group 2: Chill & Happy (1 track)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	if got := FormatGroupSummary(nil, 3); got != "No mood groups found from 3 tracks (3 outliers skipped)\n" {
		t.Errorf("empty summary = %q", got)
	}
}
