package music

import (
	"errors"
	"fmt"
	"strings"
)

// Mood is one of the five closed emotion categories.
type Mood string

// Mood categories.
const (
	Happy      Mood = "happy"
	Sad        Mood = "sad"
	Energetic  Mood = "energetic"
	Calm       Mood = "calm"
	Aggressive Mood = "aggressive"
)

// NumMoods is the width of every one-hot encoding and score vector.
const NumMoods = 5

// Moods lists every category in canonical order. Score vectors and one-hot
// encodings are laid out in this order.
var Moods = [NumMoods]Mood{Happy, Sad, Energetic, Calm, Aggressive}

// ErrUnknownMood is returned when parsing text outside the closed set.
var ErrUnknownMood = errors.New("unknown mood")

// ParseMood converts text to a Mood, ignoring case and surrounding space.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
	}
	return m, nil
}

// Index returns the mood's position in Moods, or -1 if it is not a valid mood.
func (m Mood) Index() int {
	for i, candidate := range Moods {
		if candidate == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m belongs to the closed set.
func (m Mood) Valid() bool {
	return m.Index() >= 0
}

func (m Mood) String() string {
	return string(m)
}
