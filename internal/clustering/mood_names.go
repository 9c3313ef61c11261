package clustering

// generateMoodName creates a descriptive name based on audio feature centroid values.
// Uses a 2x2 energy/valence quadrant system with acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness modifier: if > 0.6, appends "Acoustic" to the name.
func generateMoodName(centroid map[string]float64) string {
	var baseName string
	switch quadrant(centroid) {
	case quadrantUpbeat:
		baseName = "Upbeat Party"
	case quadrantIntense:
		baseName = "Intense & Dark"
	case quadrantChill:
		baseName = "Chill & Happy"
	default:
		baseName = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return baseName + " (Acoustic)"
	}
	return baseName
}

// describeMood returns a short description for a centroid's quadrant.
func describeMood(centroid map[string]float64) string {
	switch quadrant(centroid) {
	case quadrantUpbeat:
		return "High-energy, positive vibes - perfect for dancing and celebrations"
	case quadrantIntense:
		return "Intense, driving energy with darker emotional tones"
	case quadrantChill:
		return "Relaxed and uplifting - great for unwinding"
	default:
		return "Contemplative and introspective - ideal for quiet moments"
	}
}

type moodQuadrant int

const (
	quadrantReflective moodQuadrant = iota
	quadrantChill
	quadrantIntense
	quadrantUpbeat
)

func quadrant(centroid map[string]float64) moodQuadrant {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	switch {
	case highEnergy && highValence:
		return quadrantUpbeat
	case highEnergy:
		return quadrantIntense
	case highValence:
		return quadrantChill
	default:
		return quadrantReflective
	}
}
