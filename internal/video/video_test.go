package video

import (
	"math"
	"slices"
	"testing"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

func labeled(label, category string, confidence *float64) Annotation {
	return Annotation{VideoID: "v.mp4", Label: label, Category: category, Confidence: confidence, Kind: KindLabel}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 5)
	if len(s.TopLabels) != 0 || len(s.TopCategories) != 0 {
		t.Errorf("got %+v, want empty lists", s)
	}
	if s.TopLabels == nil || s.TopCategories == nil {
		t.Error("empty summary should hold empty, non-nil lists")
	}
	if s.MeanConfidence != 0 {
		t.Errorf("MeanConfidence = %v, want 0", s.MeanConfidence)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name           string
		annotations    []Annotation
		topN           int
		wantLabels     []string
		wantCategories []string
		wantMean       float64
	}{
		{
			name: "frequency then first occurrence",
			annotations: []Annotation{
				labeled("dance", "Entertainment", Float(0.9)),
				labeled("dance", "", Float(0.7)),
				labeled("music", "", nil),
			},
			topN:           2,
			wantLabels:     []string{"dance", "music"},
			wantCategories: []string{"Entertainment"},
			wantMean:       0.8,
		},
		{
			name: "ties keep first occurrence",
			annotations: []Annotation{
				labeled("b", "y", nil),
				labeled("a", "x", nil),
				labeled("a", "x", nil),
				labeled("b", "y", nil),
				labeled("c", "z", nil),
			},
			topN:           2,
			wantLabels:     []string{"b", "a"},
			wantCategories: []string{"y", "x"},
		},
		{
			name:           "zero top",
			annotations:    []Annotation{labeled("a", "x", Float(0.5))},
			topN:           0,
			wantLabels:     []string{},
			wantCategories: []string{},
			wantMean:       0.5,
		},
		{
			name: "shot rows carry no confidence",
			annotations: []Annotation{
				{Label: ShotLabel, Category: NoCategory, Kind: KindShot},
				labeled("sky", "Nature", Float(0.4)),
			},
			topN:           5,
			wantLabels:     []string{ShotLabel, "sky"},
			wantCategories: []string{NoCategory, "Nature"},
			wantMean:       0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.annotations, tt.topN)
			if !slices.Equal(s.TopLabels, tt.wantLabels) {
				t.Errorf("TopLabels = %v, want %v", s.TopLabels, tt.wantLabels)
			}
			if !slices.Equal(s.TopCategories, tt.wantCategories) {
				t.Errorf("TopCategories = %v, want %v", s.TopCategories, tt.wantCategories)
			}
			if math.Abs(s.MeanConfidence-tt.wantMean) > 1e-9 {
				t.Errorf("MeanConfidence = %v, want %v", s.MeanConfidence, tt.wantMean)
			}
		})
	}
}

func TestMapMoods(t *testing.T) {
	tests := []struct {
		name       string
		labels     []string
		categories []string
		want       []music.Mood
	}{
		{"nothing matches", []string{"table"}, nil, []music.Mood{music.Happy, music.Energetic}},
		{"dance adds nothing new", []string{"dance"}, nil, []music.Mood{music.Happy, music.Energetic}},
		{"romance", []string{"romance"}, nil, []music.Mood{music.Happy, music.Sad, music.Energetic, music.Calm}},
		{"case insensitive category", nil, []string{"ACTION movie"}, []music.Mood{music.Happy, music.Energetic, music.Aggressive}},
		{"substring", []string{"waterfall"}, []string{"Skyline"}, []music.Mood{music.Happy, music.Energetic, music.Calm}},
		{"empty", nil, nil, []music.Mood{music.Happy, music.Energetic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapMoods(tt.labels, tt.categories)
			if want := music.NewMoodSet(tt.want...); !got.Equal(want) {
				t.Errorf("MapMoods() = {%s}, want {%s}", got, want)
			}
		})
	}
}

func TestMapMoodsIsPure(t *testing.T) {
	labels := []string{"night", "fight"}
	first := MapMoods(labels, []string{"Drama"})
	second := MapMoods(labels, []string{"Drama"})
	if !first.Equal(second) {
		t.Errorf("repeated calls differ: {%s} vs {%s}", first, second)
	}
	for _, m := range DefaultMoods {
		if !first.Contains(m) {
			t.Errorf("default mood %s missing", m)
		}
	}
}

func TestSampleAnnotations(t *testing.T) {
	got := SampleAnnotations()
	if len(got) != 25 {
		t.Fatalf("got %d rows, want 25", len(got))
	}
	last := got[24]
	if *last.Start != 120 || *last.End != 124 || *last.Confidence != 0.59 {
		t.Errorf("last row = %+v", last)
	}

	summary, moods := TargetMoods(got, 5)
	if !slices.Equal(summary.TopLabels, []string{"dance", "music", "performance", "concert", "singing"}) {
		t.Errorf("TopLabels = %v", summary.TopLabels)
	}
	if !moods.Contains(music.Calm) {
		t.Errorf("Art category should add calm, got {%s}", moods)
	}
}

func TestFallbackAnnotations(t *testing.T) {
	got := FallbackAnnotations()
	if len(got) != 25 {
		t.Fatalf("got %d rows, want 25", len(got))
	}
	s := Summarize(got, 5)
	if !slices.Equal(s.TopLabels, []string{"anime", "mangaka", "illustration", "song", "flame"}) {
		t.Errorf("TopLabels = %v", s.TopLabels)
	}
	if math.Abs(s.MeanConfidence-0.7) > 1e-9 {
		t.Errorf("MeanConfidence = %v, want 0.7", s.MeanConfidence)
	}
}

func TestGroupByVideo(t *testing.T) {
	in := []Annotation{{VideoID: "b"}, {VideoID: "a"}, {VideoID: "b"}}
	ids, groups := GroupByVideo(in)
	if !slices.Equal(ids, []string{"b", "a"}) {
		t.Errorf("ids = %v", ids)
	}
	if len(groups["b"]) != 2 || len(groups["a"]) != 1 {
		t.Errorf("groups = %v", groups)
	}
}

func TestAnalysisAll(t *testing.T) {
	a := Analysis{Labels: []Annotation{{Kind: KindLabel}}}
	a.Append(Analysis{Explicit: []Annotation{{Kind: KindExplicit}}, Shots: []Annotation{{Kind: KindShot}}})
	all := a.All()
	if a.Len() != 3 || len(all) != 3 || all[0].Kind != KindLabel || all[2].Kind != KindShot {
		t.Errorf("All() = %+v", all)
	}
}
