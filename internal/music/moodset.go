package music

import "strings"

// MoodSet is an unordered set of moods.
type MoodSet map[Mood]struct{}

// NewMoodSet creates a set containing the given moods.
func NewMoodSet(moods ...Mood) MoodSet {
	s := make(MoodSet, len(moods))
	s.Add(moods...)
	return s
}

// Add inserts moods into the set.
func (s MoodSet) Add(moods ...Mood) {
	for _, m := range moods {
		s[m] = struct{}{}
	}
}

// Contains reports whether m is in the set.
func (s MoodSet) Contains(m Mood) bool {
	_, ok := s[m]
	return ok
}

// Len returns the number of moods in the set.
func (s MoodSet) Len() int {
	return len(s)
}

// Sorted returns the members in canonical Moods order.
func (s MoodSet) Sorted() []Mood {
	out := make([]Mood, 0, len(s))
	for _, m := range Moods {
		if s.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// Equal reports whether both sets hold the same moods.
func (s MoodSet) Equal(other MoodSet) bool {
	if len(s) != len(other) {
		return false
	}
	for m := range s {
		if !other.Contains(m) {
			return false
		}
	}
	return true
}

func (s MoodSet) String() string {
	sorted := s.Sorted()
	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
