// Package labeler assigns bootstrap mood labels to feature vectors with an
// ordered set of threshold rules.
package labeler

import "github.com/yuyongju/music-emotion-classification/internal/music"

// DefaultMood is returned when no rule matches.
// Every unmatched input lands here, so energetic is over-represented in
// bootstrap labels.
const DefaultMood = music.Energetic

// rule pairs a predicate with the mood it yields.
type rule struct {
	mood  music.Mood
	match func(f music.Features) bool
}

// rules are evaluated in order; the first match wins. Several predicates
// overlap (e.g. high energy + high valence + loud), so the order is significant.
var rules = []rule{
	{music.Happy, func(f music.Features) bool { return f.Energy > 0.7 && f.Valence > 0.7 }},
	{music.Sad, func(f music.Features) bool { return f.Energy < 0.4 && f.Valence < 0.4 }},
	{music.Energetic, func(f music.Features) bool { return f.Energy > 0.8 && f.Loudness > -5 }},
	{music.Calm, func(f music.Features) bool { return f.Energy < 0.4 && f.Acousticness > 0.6 }},
	{music.Aggressive, func(f music.Features) bool { return f.Energy > 0.7 && f.Loudness > -4 && f.Valence < 0.4 }},
}

// Label returns the mood of the first matching rule, or DefaultMood.
func Label(f music.Features) music.Mood {
	for _, r := range rules {
		if r.match(f) {
			return r.mood
		}
	}
	return DefaultMood
}

// LabelAll labels each feature vector in order.
func LabelAll(features []music.Features) []music.Mood {
	labels := make([]music.Mood, len(features))
	for i, f := range features {
		labels[i] = Label(f)
	}
	return labels
}
