package video

// SampleVideoID names the demonstration video.
const SampleVideoID = "sample_video.mp4"

var (
	sampleLabels = []string{
		"dance", "music", "performance", "concert", "singing",
		"party", "fun", "entertainment", "crowd", "stage",
		"night", "light", "colorful", "excitement", "joy",
		"energy", "movement", "happy", "young", "group",
		"song", "artist", "band", "festival", "celebration",
	}
	sampleCategories = []string{
		"Entertainment", "Music", "Performance", "Art", "Event",
		"Concert", "Culture", "Dance", "Leisure", "Nightlife",
		"Social", "Recreation", "Festival", "Celebration", "Group",
		"Activity", "Fun", "Performing Arts", "Stage", "Audience",
		"Show", "Live", "Party", "Crowd", "Lighting",
	}
	sampleConfidence = []float64{
		0.95, 0.92, 0.88, 0.85, 0.83,
		0.80, 0.79, 0.77, 0.76, 0.75,
		0.74, 0.72, 0.71, 0.70, 0.69,
		0.68, 0.67, 0.66, 0.65, 0.64,
		0.63, 0.62, 0.61, 0.60, 0.59,
	}
)

// SampleAnnotations returns a fixed 25-row label set describing a dance
// performance, one row per five-second segment.
func SampleAnnotations() []Annotation {
	out := make([]Annotation, len(sampleLabels))
	for i := range sampleLabels {
		start := float64(i) * 5
		out[i] = Annotation{
			VideoID:    SampleVideoID,
			Label:      sampleLabels[i],
			Category:   sampleCategories[i],
			Start:      Float(start),
			End:        Float(start + 4),
			Confidence: Float(sampleConfidence[i]),
			Kind:       KindLabel,
		}
	}
	return out
}

// FallbackAnnotations is used when no analysis is available at all.
func FallbackAnnotations() []Annotation {
	labels := []string{"anime", "mangaka", "illustration", "song", "flame"}
	categories := []string{"artwork", "person", "art", "music", "fire"}
	confidence := []float64{0.9, 0.8, 0.7, 0.6, 0.5}

	var out []Annotation
	for round := 0; round < 5; round++ {
		for i := range labels {
			out = append(out, Annotation{
				Label:      labels[i],
				Category:   categories[i],
				Confidence: Float(confidence[i]),
				Kind:       KindLabel,
			})
		}
	}
	return out
}
