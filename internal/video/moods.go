package video

import (
	"strings"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// DefaultMoods are always part of a video's target moods.
var DefaultMoods = []music.Mood{music.Energetic, music.Happy}

type keyword struct {
	key   string
	moods []music.Mood
}

// keywords maps label and category text to moods. Matching is a
// case-insensitive substring test.
var keywords = []keyword{
	{"dance", []music.Mood{music.Energetic, music.Happy}},
	{"performance", []music.Mood{music.Energetic}},
	{"music", []music.Mood{music.Happy, music.Energetic}},
	{"fun", []music.Mood{music.Happy}},
	{"smile", []music.Mood{music.Happy}},
	{"nature", []music.Mood{music.Calm}},
	{"water", []music.Mood{music.Calm}},
	{"sky", []music.Mood{music.Calm}},
	{"sunset", []music.Mood{music.Calm}},
	{"fight", []music.Mood{music.Aggressive}},
	{"explosion", []music.Mood{music.Aggressive}},
	{"romance", []music.Mood{music.Calm, music.Sad}},
	{"love", []music.Mood{music.Happy, music.Calm}},
	{"night", []music.Mood{music.Calm, music.Sad}},
	{"cry", []music.Mood{music.Sad}},
	{"food", []music.Mood{music.Happy}},
	{"sports", []music.Mood{music.Energetic}},
	{"game", []music.Mood{music.Energetic}},
	{"party", []music.Mood{music.Happy, music.Energetic}},
	{"entertainment", []music.Mood{music.Happy, music.Energetic}},
	{"art", []music.Mood{music.Calm}},
	{"action", []music.Mood{music.Energetic, music.Aggressive}},
	{"drama", []music.Mood{music.Sad, music.Calm}},
	{"comedy", []music.Mood{music.Happy}},
	{"adventure", []music.Mood{music.Energetic}},
}

// MapMoods returns the default moods plus every mood whose keyword occurs in
// a label or category.
func MapMoods(labels, categories []string) music.MoodSet {
	set := music.NewMoodSet(DefaultMoods...)
	for _, texts := range [][]string{labels, categories} {
		for _, text := range texts {
			lower := strings.ToLower(text)
			for _, kw := range keywords {
				if strings.Contains(lower, kw.key) {
					set.Add(kw.moods...)
				}
			}
		}
	}
	return set
}

// TargetMoods summarises annotations and maps the top labels and categories
// to moods.
func TargetMoods(annotations []Annotation, topN int) (Summary, music.MoodSet) {
	s := Summarize(annotations, topN)
	return s, MapMoods(s.TopLabels, s.TopCategories)
}
